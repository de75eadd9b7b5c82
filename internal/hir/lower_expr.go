package hir

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/types"
)

func (l *lowerer) kindOf(id types.TypeID) types.Kind {
	t, ok := l.types.Lookup(id)
	if !ok {
		return types.KindInvalid
	}
	return t.Kind
}

// resolveTypeExpr turns a syntactic annotation into an interned TypeID.
func (l *lowerer) resolveTypeExpr(te *ast.TypeExpr) (types.TypeID, error) {
	if te == nil {
		return l.types.Builtins().Unit, nil
	}
	if te.IsArray {
		elem, err := l.resolveTypeExpr(te.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return l.types.Array(elem), nil
	}
	b := l.types.Builtins()
	switch te.Name {
	case "unit":
		return b.Unit, nil
	case "bool":
		return b.Bool, nil
	case "i32":
		return b.I32, nil
	case "i64":
		return b.I64, nil
	case "f64":
		return b.F64, nil
	case "string":
		return b.String, nil
	}
	if l.module.Struct(te.Name) != nil {
		return l.types.Struct(te.Name), nil
	}
	return types.NoTypeID, diag.ReportError(l.reporter, diag.TypeUnknownName, te.Span,
		fmt.Sprintf("unknown type %q", te.Name))
}

// lowerExpr infers the type of e bottom-up. expected is a hint used only
// to pick the width of unsuffixed integer literals and the element type
// of empty array literals; it never coerces.
func (fl *funcLowerer) lowerExpr(e *ast.Expr, expected types.TypeID) (*Expr, error) {
	l := fl.l
	b := l.types.Builtins()
	switch e.Kind {
	case ast.ExprParen:
		// Grouping carries no semantics; unwrap so no artifact survives.
		return fl.lowerExpr(e.Data.(ast.ParenData).Inner, expected)

	case ast.ExprIntLit:
		data := e.Data.(ast.IntLitData)
		ty := b.I32
		switch data.Suffix {
		case "i64":
			ty = b.I64
		case "i32", "":
			if data.Suffix == "" && l.kindOf(expected).IsInteger() {
				ty = expected
			}
		default:
			return nil, diag.ReportError(l.reporter, diag.TypeUnknownName, e.Span,
				fmt.Sprintf("unknown integer suffix %q", data.Suffix))
		}
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: ty,
			Data: LiteralData{Kind: LitInt, Int: data.Value}}, nil

	case ast.ExprFloatLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.F64,
			Data: LiteralData{Kind: LitFloat, Float: e.Data.(ast.FloatLitData).Value}}, nil

	case ast.ExprBoolLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.Bool,
			Data: LiteralData{Kind: LitBool, Bool: e.Data.(ast.BoolLitData).Value}}, nil

	case ast.ExprStringLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.String,
			Data: LiteralData{Kind: LitString, String: e.Data.(ast.StringLitData).Value}}, nil

	case ast.ExprIdent:
		return fl.lowerIdent(e)

	case ast.ExprUnary:
		return fl.lowerUnary(e)

	case ast.ExprBinary:
		return fl.lowerBinary(e, expected)

	case ast.ExprCall:
		return fl.lowerCall(e)

	case ast.ExprField:
		return fl.lowerField(e)

	case ast.ExprIndex:
		return fl.lowerIndex(e)

	case ast.ExprStructLit:
		return fl.lowerStructLit(e)

	case ast.ExprArrayLit:
		return fl.lowerArrayLit(e, expected)

	default:
		return nil, diag.ReportError(l.reporter, diag.UnknownCode, e.Span,
			fmt.Sprintf("unsupported expression kind %s", e.Kind))
	}
}

func (fl *funcLowerer) lowerIdent(e *ast.Expr) (*Expr, error) {
	name := e.Data.(ast.IdentData).Name
	if id, ok := fl.scopes.resolve(name); ok {
		decl := fl.fn.Local(id)
		return &Expr{Kind: ExprVarRef, Span: e.Span, Type: decl.Type,
			Data: VarRefData{Name: name, Local: id}}, nil
	}
	if idx, ok := fl.l.globals[name]; ok {
		g := &fl.l.module.Globals[idx]
		return &Expr{Kind: ExprVarRef, Span: e.Span, Type: g.Type,
			Data: VarRefData{Name: name, Local: NoLocalID, Global: true}}, nil
	}
	return nil, diag.ReportError(fl.l.reporter, diag.NameUnresolved, e.Span,
		fmt.Sprintf("unresolved name %q", name))
}

func (fl *funcLowerer) lowerUnary(e *ast.Expr) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.UnaryData)
	operand, err := fl.lowerExpr(data.Operand, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	kind := l.kindOf(operand.Type)
	switch data.Op {
	case ast.UnNeg:
		if !kind.IsNumeric() {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator - requires a numeric operand, got %s", l.types.String(operand.Type)))
		}
	case ast.UnNot:
		if kind != types.KindBool {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator ! requires bool, got %s", l.types.String(operand.Type)))
		}
	}
	return &Expr{Kind: ExprUnary, Span: e.Span, Type: operand.Type,
		Data: UnaryData{Op: data.Op, Operand: operand}}, nil
}

func (fl *funcLowerer) lowerBinary(e *ast.Expr, expected types.TypeID) (*Expr, error) {
	l := fl.l
	b := l.types.Builtins()
	data := e.Data.(ast.BinaryData)

	operandHint := types.NoTypeID
	if data.Op.IsArithmetic() {
		operandHint = expected
	}
	left, err := fl.lowerExpr(data.Left, operandHint)
	if err != nil {
		return nil, err
	}
	right, err := fl.lowerExpr(data.Right, left.Type)
	if err != nil {
		return nil, err
	}
	if left.Type != right.Type {
		return nil, diag.ReportError(l.reporter, diag.TypeMismatch, e.Span,
			fmt.Sprintf("operator %s applied to %s and %s",
				data.Op, l.types.String(left.Type), l.types.String(right.Type)))
	}

	kind := l.kindOf(left.Type)
	result := left.Type
	switch {
	case data.Op.IsShortCircuit():
		if kind != types.KindBool {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator %s requires bool operands, got %s", data.Op, l.types.String(left.Type)))
		}
		result = b.Bool
	case data.Op.IsComparison():
		ok := kind.IsNumeric() || kind == types.KindString ||
			(kind == types.KindBool && (data.Op == ast.BinEq || data.Op == ast.BinNe))
		if !ok {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator %s cannot compare values of type %s", data.Op, l.types.String(left.Type)))
		}
		result = b.Bool
	case data.Op == ast.BinMod:
		if !kind.IsInteger() {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator %% requires integer operands, got %s", l.types.String(left.Type)))
		}
	case data.Op == ast.BinAdd && kind == types.KindString:
		// String concatenation.
	default:
		if !kind.IsNumeric() {
			return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
				fmt.Sprintf("operator %s requires numeric operands, got %s", data.Op, l.types.String(left.Type)))
		}
	}
	return &Expr{Kind: ExprBinary, Span: e.Span, Type: result,
		Data: BinaryData{Op: data.Op, Left: left, Right: right}}, nil
}

func (fl *funcLowerer) lowerCall(e *ast.Expr) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.CallData)
	sig, ok := l.sigs[data.Callee]
	if !ok {
		// A callee that resolves to a value is a distinct mistake from a
		// name that resolves to nothing.
		if _, isLocal := fl.scopes.resolve(data.Callee); isLocal {
			return nil, diag.ReportError(l.reporter, diag.TypeNotCallable, e.Span,
				fmt.Sprintf("%q is a variable, not a function", data.Callee))
		}
		if _, isGlobal := l.globals[data.Callee]; isGlobal {
			return nil, diag.ReportError(l.reporter, diag.TypeNotCallable, e.Span,
				fmt.Sprintf("%q is a global, not a function", data.Callee))
		}
		return nil, diag.ReportError(l.reporter, diag.NameUnresolved, e.Span,
			fmt.Sprintf("call to undefined function %q", data.Callee))
	}
	if len(data.Args) != len(sig.params) {
		return nil, diag.ReportError(l.reporter, diag.TypeWrongArgCount, e.Span,
			fmt.Sprintf("%q expects %d argument(s), got %d", data.Callee, len(sig.params), len(data.Args)))
	}
	args := make([]*Expr, 0, len(data.Args))
	for i, a := range data.Args {
		arg, err := fl.lowerExpr(a, sig.params[i])
		if err != nil {
			return nil, err
		}
		if arg.Type != sig.params[i] {
			return nil, diag.ReportError(l.reporter, diag.TypeMismatch, arg.Span,
				fmt.Sprintf("argument %d of %q has type %s, expected %s",
					i+1, data.Callee, l.types.String(arg.Type), l.types.String(sig.params[i])))
		}
		args = append(args, arg)
	}
	return &Expr{Kind: ExprCall, Span: e.Span, Type: sig.result,
		Data: CallData{Callee: data.Callee, Args: args, Builtin: sig.builtin}}, nil
}

func (fl *funcLowerer) lowerField(e *ast.Expr) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.FieldData)
	object, err := fl.lowerExpr(data.Object, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	t, _ := l.types.Lookup(object.Type)
	if t.Kind != types.KindStruct {
		return nil, diag.ReportError(l.reporter, diag.TypeBadField, e.Span,
			fmt.Sprintf("type %s has no fields", l.types.String(object.Type)))
	}
	decl := l.module.Struct(t.Name)
	idx := decl.Def.FieldIndex(data.Name)
	if idx < 0 {
		return nil, diag.ReportError(l.reporter, diag.TypeBadField, e.Span,
			fmt.Sprintf("struct %q has no field %q", t.Name, data.Name))
	}
	return &Expr{Kind: ExprField, Span: e.Span, Type: decl.Def.Fields[idx].Type,
		Data: FieldData{Object: object, Name: data.Name, Index: idx}}, nil
}

func (fl *funcLowerer) lowerIndex(e *ast.Expr) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.IndexData)
	object, err := fl.lowerExpr(data.Object, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	t, _ := l.types.Lookup(object.Type)
	if t.Kind != types.KindArray {
		return nil, diag.ReportError(l.reporter, diag.TypeNotIndexable, e.Span,
			fmt.Sprintf("type %s cannot be indexed", l.types.String(object.Type)))
	}
	index, err := fl.lowerExpr(data.Index, l.types.Builtins().I32)
	if err != nil {
		return nil, err
	}
	if !l.kindOf(index.Type).IsInteger() {
		return nil, diag.ReportError(l.reporter, diag.TypeMismatch, index.Span,
			fmt.Sprintf("array index must be an integer, got %s", l.types.String(index.Type)))
	}
	return &Expr{Kind: ExprIndex, Span: e.Span, Type: t.Elem,
		Data: IndexData{Object: object, Index: index}}, nil
}

// lowerStructLit checks that every declared field is initialized exactly
// once and reorders values into declaration order.
func (fl *funcLowerer) lowerStructLit(e *ast.Expr) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.StructLitData)
	decl := l.module.Struct(data.Name)
	if decl == nil {
		return nil, diag.ReportError(l.reporter, diag.TypeUnknownName, e.Span,
			fmt.Sprintf("unknown struct %q", data.Name))
	}
	values := make([]*Expr, len(decl.Def.Fields))
	for i := range data.Fields {
		init := &data.Fields[i]
		idx := decl.Def.FieldIndex(init.Name)
		if idx < 0 {
			return nil, diag.ReportError(l.reporter, diag.TypeBadField, init.Span,
				fmt.Sprintf("struct %q has no field %q", data.Name, init.Name))
		}
		if values[idx] != nil {
			return nil, diag.ReportError(l.reporter, diag.NameDuplicate, init.Span,
				fmt.Sprintf("field %q initialized twice", init.Name))
		}
		fieldType := decl.Def.Fields[idx].Type
		value, err := fl.lowerExpr(init.Value, fieldType)
		if err != nil {
			return nil, err
		}
		if value.Type != fieldType {
			return nil, diag.ReportError(l.reporter, diag.TypeMismatch, init.Span,
				fmt.Sprintf("field %q has type %s, got %s",
					init.Name, l.types.String(fieldType), l.types.String(value.Type)))
		}
		values[idx] = value
	}
	for i, v := range values {
		if v == nil {
			return nil, diag.ReportError(l.reporter, diag.TypeMismatch, e.Span,
				fmt.Sprintf("struct %q literal is missing field %q", data.Name, decl.Def.Fields[i].Name))
		}
	}
	return &Expr{Kind: ExprStructLit, Span: e.Span, Type: decl.Type,
		Data: StructLitData{Name: data.Name, Values: values}}, nil
}

func (fl *funcLowerer) lowerArrayLit(e *ast.Expr, expected types.TypeID) (*Expr, error) {
	l := fl.l
	data := e.Data.(ast.ArrayLitData)
	if len(data.Elems) == 0 {
		t, ok := l.types.Lookup(expected)
		if !ok || t.Kind != types.KindArray {
			return nil, diag.ReportError(l.reporter, diag.TypeMismatch, e.Span,
				"empty array literal needs a type annotation")
		}
		return &Expr{Kind: ExprArrayLit, Span: e.Span, Type: expected, Data: ArrayLitData{}}, nil
	}
	elemHint := types.NoTypeID
	if t, ok := l.types.Lookup(expected); ok && t.Kind == types.KindArray {
		elemHint = t.Elem
	}
	first, err := fl.lowerExpr(data.Elems[0], elemHint)
	if err != nil {
		return nil, err
	}
	elems := []*Expr{first}
	for _, el := range data.Elems[1:] {
		v, err := fl.lowerExpr(el, first.Type)
		if err != nil {
			return nil, err
		}
		if v.Type != first.Type {
			return nil, diag.ReportError(l.reporter, diag.TypeMismatch, v.Span,
				fmt.Sprintf("array element has type %s, expected %s",
					l.types.String(v.Type), l.types.String(first.Type)))
		}
		elems = append(elems, v)
	}
	return &Expr{Kind: ExprArrayLit, Span: e.Span, Type: l.types.Array(first.Type),
		Data: ArrayLitData{Elems: elems}}, nil
}

// foldConst evaluates a constant AST expression to an HIR literal.
// Global initializers are restricted to such expressions so globals need
// no init code.
func (l *lowerer) foldConst(e *ast.Expr) (*Expr, error) {
	if e == nil {
		return nil, diag.ReportError(l.reporter, diag.GlobalNotConst, source.Span{},
			"global declaration needs an initializer")
	}
	b := l.types.Builtins()
	switch e.Kind {
	case ast.ExprParen:
		return l.foldConst(e.Data.(ast.ParenData).Inner)
	case ast.ExprIntLit:
		data := e.Data.(ast.IntLitData)
		ty := b.I32
		if data.Suffix == "i64" {
			ty = b.I64
		}
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: ty,
			Data: LiteralData{Kind: LitInt, Int: data.Value}}, nil
	case ast.ExprFloatLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.F64,
			Data: LiteralData{Kind: LitFloat, Float: e.Data.(ast.FloatLitData).Value}}, nil
	case ast.ExprBoolLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.Bool,
			Data: LiteralData{Kind: LitBool, Bool: e.Data.(ast.BoolLitData).Value}}, nil
	case ast.ExprStringLit:
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: b.String,
			Data: LiteralData{Kind: LitString, String: e.Data.(ast.StringLitData).Value}}, nil
	case ast.ExprUnary:
		return l.foldConstUnary(e)
	case ast.ExprBinary:
		return l.foldConstBinary(e)
	default:
		return nil, diag.ReportError(l.reporter, diag.GlobalNotConst, e.Span,
			fmt.Sprintf("%s expression is not a constant", e.Kind))
	}
}

func (l *lowerer) foldConstUnary(e *ast.Expr) (*Expr, error) {
	data := e.Data.(ast.UnaryData)
	operand, err := l.foldConst(data.Operand)
	if err != nil {
		return nil, err
	}
	lit := operand.Data.(LiteralData)
	switch {
	case data.Op == ast.UnNeg && lit.Kind == LitInt:
		lit.Int = -lit.Int
	case data.Op == ast.UnNeg && lit.Kind == LitFloat:
		lit.Float = -lit.Float
	case data.Op == ast.UnNot && lit.Kind == LitBool:
		lit.Bool = !lit.Bool
	default:
		return nil, diag.ReportError(l.reporter, diag.TypeBadOperator, e.Span,
			fmt.Sprintf("operator %s is not constant-foldable for this operand", data.Op))
	}
	return &Expr{Kind: ExprLiteral, Span: e.Span, Type: operand.Type, Data: lit}, nil
}

func (l *lowerer) foldConstBinary(e *ast.Expr) (*Expr, error) {
	data := e.Data.(ast.BinaryData)
	left, err := l.foldConst(data.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.foldConst(data.Right)
	if err != nil {
		return nil, err
	}
	if left.Type != right.Type {
		return nil, diag.ReportError(l.reporter, diag.TypeMismatch, e.Span,
			fmt.Sprintf("operator %s applied to %s and %s",
				data.Op, l.types.String(left.Type), l.types.String(right.Type)))
	}
	ll := left.Data.(LiteralData)
	rl := right.Data.(LiteralData)
	if ll.Kind == LitInt && data.Op.IsArithmetic() {
		out := ll
		switch data.Op {
		case ast.BinAdd:
			out.Int = ll.Int + rl.Int
		case ast.BinSub:
			out.Int = ll.Int - rl.Int
		case ast.BinMul:
			out.Int = ll.Int * rl.Int
		case ast.BinDiv:
			if rl.Int == 0 {
				return nil, diag.ReportError(l.reporter, diag.GlobalNotConst, e.Span,
					"division by zero in constant expression")
			}
			out.Int = ll.Int / rl.Int
		case ast.BinMod:
			if rl.Int == 0 {
				return nil, diag.ReportError(l.reporter, diag.GlobalNotConst, e.Span,
					"division by zero in constant expression")
			}
			out.Int = ll.Int % rl.Int
		}
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: left.Type, Data: out}, nil
	}
	if ll.Kind == LitFloat && data.Op.IsArithmetic() && data.Op != ast.BinMod {
		out := ll
		switch data.Op {
		case ast.BinAdd:
			out.Float = ll.Float + rl.Float
		case ast.BinSub:
			out.Float = ll.Float - rl.Float
		case ast.BinMul:
			out.Float = ll.Float * rl.Float
		case ast.BinDiv:
			out.Float = ll.Float / rl.Float
		}
		return &Expr{Kind: ExprLiteral, Span: e.Span, Type: left.Type, Data: out}, nil
	}
	return nil, diag.ReportError(l.reporter, diag.GlobalNotConst, e.Span,
		fmt.Sprintf("operator %s is not constant-foldable here", data.Op))
}
