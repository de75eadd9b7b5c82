package hir

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/types"
)

// signature is one callable's registered shape. Cross-function calls
// resolve against the signature table, never against function pointers.
type signature struct {
	params  []types.TypeID
	result  types.TypeID
	builtin bool
	span    source.Span
}

// LowerProgram transforms an AST program into a typed, name-resolved HIR
// module. It registers every top-level signature first so forward
// references resolve, then lowers each body bottom-up. The first user
// error aborts lowering; the same diagnostic is reported to reporter and
// returned as the error.
func LowerProgram(prog *ast.Program, reporter diag.Reporter) (*Module, error) {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	l := &lowerer{
		reporter: reporter,
		types:    types.NewInterner(),
		sigs:     make(map[string]signature),
		globals:  make(map[string]int),
	}
	l.module = &Module{Types: l.types}
	if prog == nil {
		return l.module, nil
	}
	l.module.Name = prog.Unit

	l.registerBuiltins()
	if err := l.registerStructNames(prog); err != nil {
		return nil, err
	}
	if err := l.registerSignatures(prog); err != nil {
		return nil, err
	}
	if err := l.lowerBodies(prog); err != nil {
		return nil, err
	}
	return l.module, nil
}

// lowerer holds per-invocation state. Nothing here is shared between
// compilations; concurrent LowerProgram calls are independent.
type lowerer struct {
	reporter diag.Reporter
	module   *Module
	types    *types.Interner
	sigs     map[string]signature
	globals  map[string]int // name -> index into module.Globals
}

func (l *lowerer) registerBuiltins() {
	b := l.types.Builtins()
	l.sigs["print"] = signature{params: []types.TypeID{b.String}, result: b.Unit, builtin: true}
	l.sigs["print_int"] = signature{params: []types.TypeID{b.I32}, result: b.Unit, builtin: true}
}

// registerStructNames interns every struct name before field resolution
// so struct fields can reference structs declared later in the unit.
func (l *lowerer) registerStructNames(prog *ast.Program) error {
	for i := range prog.Items {
		item := &prog.Items[i]
		if item.Kind != ast.ItemStruct {
			continue
		}
		data := item.Data.(ast.StructData)
		if l.module.Struct(data.Name) != nil {
			return diag.ReportError(l.reporter, diag.NameDuplicate, item.Span,
				fmt.Sprintf("struct %q declared twice", data.Name))
		}
		l.module.Structs = append(l.module.Structs, StructDecl{
			Name: data.Name,
			Type: l.types.Struct(data.Name),
			Span: item.Span,
		})
	}
	return nil
}

// registerSignatures resolves struct fields, function signatures and
// global declarations in one pass over the items.
func (l *lowerer) registerSignatures(prog *ast.Program) error {
	for i := range prog.Items {
		item := &prog.Items[i]
		switch item.Kind {
		case ast.ItemStruct:
			if err := l.registerStructFields(item); err != nil {
				return err
			}
		case ast.ItemFunc:
			if err := l.registerFuncSignature(item); err != nil {
				return err
			}
		case ast.ItemGlobal:
			if err := l.registerGlobal(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *lowerer) registerStructFields(item *ast.Item) error {
	data := item.Data.(ast.StructData)
	decl := l.module.Struct(data.Name)
	def := &types.TypeDef{Name: data.Name}
	seen := make(map[string]bool, len(data.Fields))
	for _, fd := range data.Fields {
		if seen[fd.Name] {
			return diag.ReportError(l.reporter, diag.NameDuplicate, fd.Span,
				fmt.Sprintf("field %q declared twice in struct %q", fd.Name, data.Name))
		}
		seen[fd.Name] = true
		ft, err := l.resolveTypeExpr(fd.Type)
		if err != nil {
			return err
		}
		def.Fields = append(def.Fields, types.Field{Name: fd.Name, Type: ft})
	}
	decl.Def = def
	return nil
}

func (l *lowerer) registerFuncSignature(item *ast.Item) error {
	data := item.Data.(ast.FuncData)
	if sig, exists := l.sigs[data.Name]; exists {
		if sig.builtin {
			return diag.ReportError(l.reporter, diag.NameAmbiguous, item.Span,
				fmt.Sprintf("function %q collides with a builtin of the same name", data.Name))
		}
		return diag.ReportError(l.reporter, diag.NameDuplicate, item.Span,
			fmt.Sprintf("function %q declared twice", data.Name))
	}
	sig := signature{span: item.Span}
	for _, p := range data.Params {
		pt, err := l.resolveTypeExpr(p.Type)
		if err != nil {
			return err
		}
		sig.params = append(sig.params, pt)
	}
	result := l.types.Builtins().Unit
	if data.Result != nil {
		rt, err := l.resolveTypeExpr(data.Result)
		if err != nil {
			return err
		}
		result = rt
	}
	sig.result = result
	l.sigs[data.Name] = sig
	return nil
}

func (l *lowerer) registerGlobal(item *ast.Item) error {
	data := item.Data.(ast.GlobalData)
	if _, exists := l.globals[data.Name]; exists {
		return diag.ReportError(l.reporter, diag.NameDuplicate, item.Span,
			fmt.Sprintf("global %q declared twice", data.Name))
	}
	value, err := l.foldConst(data.Value)
	if err != nil {
		return err
	}
	declared := value.Type
	if data.Type != nil {
		annotated, terr := l.resolveTypeExpr(data.Type)
		if terr != nil {
			return terr
		}
		if annotated != value.Type {
			return diag.ReportError(l.reporter, diag.TypeMismatch, item.Span,
				fmt.Sprintf("global %q annotated as %s but initializer has type %s",
					data.Name, l.types.String(annotated), l.types.String(value.Type)))
		}
		declared = annotated
	}
	l.globals[data.Name] = len(l.module.Globals)
	l.module.Globals = append(l.module.Globals, GlobalDecl{
		Name:  data.Name,
		Type:  declared,
		IsMut: data.IsMut,
		Value: value,
		Span:  item.Span,
	})
	return nil
}

func (l *lowerer) lowerBodies(prog *ast.Program) error {
	for i := range prog.Items {
		item := &prog.Items[i]
		if item.Kind != ast.ItemFunc {
			continue
		}
		data := item.Data.(ast.FuncData)
		fn, err := l.lowerFunc(item, data)
		if err != nil {
			return err
		}
		l.module.Funcs = append(l.module.Funcs, fn)
	}
	return nil
}

// funcLowerer carries the per-function scope chain and slot allocation.
type funcLowerer struct {
	l      *lowerer
	fn     *Func
	scopes scopeChain
	sig    signature
}

func (l *lowerer) lowerFunc(item *ast.Item, data ast.FuncData) (*Func, error) {
	sig := l.sigs[data.Name]
	fn := &Func{
		Name:   data.Name,
		Result: sig.result,
		IsMain: data.Name == "main" && len(data.Params) == 0,
		Span:   item.Span,
	}
	fl := &funcLowerer{l: l, fn: fn, sig: sig}
	fl.scopes.push()
	for i, p := range data.Params {
		id, err := fl.declareLocal(p.Name, sig.params[i], false, true, p.Span)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: sig.params[i], Local: id, Span: p.Span})
	}
	body, err := fl.lowerStmts(data.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	fl.scopes.pop()

	if fn.Result != l.types.Builtins().Unit && !stmtsAlwaysReturn(fn.Body) {
		return nil, diag.ReportError(l.reporter, diag.CtrlMissingReturn, item.Span,
			fmt.Sprintf("function %q must return a value of type %s on every path",
				fn.Name, l.types.String(fn.Result)))
	}
	return fn, nil
}

func (fl *funcLowerer) declareLocal(name string, ty types.TypeID, isMut, isParam bool, sp source.Span) (LocalID, error) {
	if !fl.scopes.declare(name, LocalID(len(fl.fn.Locals))) {
		return NoLocalID, diag.ReportError(fl.l.reporter, diag.NameDuplicate, sp,
			fmt.Sprintf("%q declared twice in this scope", name))
	}
	id := LocalID(len(fl.fn.Locals))
	fl.fn.Locals = append(fl.fn.Locals, LocalDecl{
		Name:    name,
		Type:    ty,
		IsMut:   isMut,
		IsParam: isParam,
		Span:    sp,
	})
	return id, nil
}

func (fl *funcLowerer) lowerStmts(stmts []ast.Stmt) ([]Stmt, error) {
	out := make([]Stmt, 0, len(stmts))
	for i := range stmts {
		s, err := fl.lowerStmt(&stmts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (fl *funcLowerer) lowerStmt(s *ast.Stmt) (*Stmt, error) {
	switch s.Kind {
	case ast.StmtLet:
		return fl.lowerLet(s)
	case ast.StmtAssign:
		return fl.lowerAssign(s)
	case ast.StmtExpr:
		data := s.Data.(ast.ExprStmtData)
		e, err := fl.lowerExpr(data.Expr, types.NoTypeID)
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtExpr, Span: s.Span, Data: ExprStmtData{Expr: e}}, nil
	case ast.StmtReturn:
		return fl.lowerReturn(s)
	case ast.StmtBreak:
		return &Stmt{Kind: StmtBreak, Span: s.Span, Data: BreakData{}}, nil
	case ast.StmtContinue:
		return &Stmt{Kind: StmtContinue, Span: s.Span, Data: ContinueData{}}, nil
	case ast.StmtIf:
		return fl.lowerIf(s)
	case ast.StmtWhile:
		return fl.lowerWhile(s)
	case ast.StmtFor:
		return fl.lowerFor(s)
	case ast.StmtMatch:
		return fl.lowerMatch(s)
	case ast.StmtBlock:
		data := s.Data.(ast.BlockData)
		fl.scopes.push()
		stmts, err := fl.lowerStmts(data.Stmts)
		fl.scopes.pop()
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtBlock, Span: s.Span, Data: BlockData{Stmts: stmts}}, nil
	default:
		return nil, diag.ReportError(fl.l.reporter, diag.UnknownCode, s.Span,
			fmt.Sprintf("unsupported statement kind %s", s.Kind))
	}
}

func (fl *funcLowerer) lowerLet(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.LetData)
	var expected types.TypeID
	if data.Type != nil {
		t, err := fl.l.resolveTypeExpr(data.Type)
		if err != nil {
			return nil, err
		}
		expected = t
	}
	value, err := fl.lowerExpr(data.Value, expected)
	if err != nil {
		return nil, err
	}
	declared := value.Type
	if expected.IsValid() {
		if expected != value.Type {
			return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, s.Span,
				fmt.Sprintf("let %q annotated as %s but initializer has type %s",
					data.Name, fl.l.types.String(expected), fl.l.types.String(value.Type)))
		}
		declared = expected
	}
	id, err := fl.declareLocal(data.Name, declared, data.IsMut, false, s.Span)
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtLet, Span: s.Span, Data: LetData{Local: id, Value: value}}, nil
}

func (fl *funcLowerer) lowerAssign(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.AssignData)
	target, err := fl.lowerExpr(data.Target, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	if err := fl.checkAssignable(target); err != nil {
		return nil, err
	}
	value, err := fl.lowerExpr(data.Value, target.Type)
	if err != nil {
		return nil, err
	}
	if value.Type != target.Type {
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, s.Span,
			fmt.Sprintf("cannot assign %s to target of type %s",
				fl.l.types.String(value.Type), fl.l.types.String(target.Type)))
	}
	return &Stmt{Kind: StmtAssign, Span: s.Span, Data: AssignData{Target: target, Value: value}}, nil
}

// checkAssignable verifies the target is a place rooted in a mutable
// binding.
func (fl *funcLowerer) checkAssignable(target *Expr) error {
	root := target
	for {
		switch root.Kind {
		case ExprField:
			root = root.Data.(FieldData).Object
		case ExprIndex:
			root = root.Data.(IndexData).Object
		case ExprVarRef:
			vr := root.Data.(VarRefData)
			if vr.Global {
				g := &fl.l.module.Globals[fl.l.globals[vr.Name]]
				if !g.IsMut {
					return diag.ReportError(fl.l.reporter, diag.TypeNotAssignable, target.Span,
						fmt.Sprintf("global %q is immutable", vr.Name))
				}
				return nil
			}
			decl := fl.fn.Local(vr.Local)
			if decl == nil || !decl.IsMut {
				return diag.ReportError(fl.l.reporter, diag.TypeNotAssignable, target.Span,
					fmt.Sprintf("%q is immutable; declare it with `let mut`", vr.Name))
			}
			return nil
		default:
			return diag.ReportError(fl.l.reporter, diag.TypeNotAssignable, target.Span,
				"assignment target is not a place expression")
		}
	}
}

func (fl *funcLowerer) lowerReturn(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.ReturnData)
	unit := fl.l.types.Builtins().Unit
	if data.Value == nil {
		if fl.fn.Result != unit {
			return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, s.Span,
				fmt.Sprintf("bare return in function returning %s", fl.l.types.String(fl.fn.Result)))
		}
		return &Stmt{Kind: StmtReturn, Span: s.Span, Data: ReturnData{}}, nil
	}
	value, err := fl.lowerExpr(data.Value, fl.fn.Result)
	if err != nil {
		return nil, err
	}
	if value.Type != fl.fn.Result {
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, s.Span,
			fmt.Sprintf("return value has type %s, function returns %s",
				fl.l.types.String(value.Type), fl.l.types.String(fl.fn.Result)))
	}
	return &Stmt{Kind: StmtReturn, Span: s.Span, Data: ReturnData{Value: value}}, nil
}

func (fl *funcLowerer) lowerCond(e *ast.Expr) (*Expr, error) {
	cond, err := fl.lowerExpr(e, fl.l.types.Builtins().Bool)
	if err != nil {
		return nil, err
	}
	if cond.Type != fl.l.types.Builtins().Bool {
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, cond.Span,
			fmt.Sprintf("condition must be bool, got %s", fl.l.types.String(cond.Type)))
	}
	return cond, nil
}

func (fl *funcLowerer) lowerIf(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.IfData)
	cond, err := fl.lowerCond(data.Cond)
	if err != nil {
		return nil, err
	}
	fl.scopes.push()
	then, err := fl.lowerStmts(data.Then)
	fl.scopes.pop()
	if err != nil {
		return nil, err
	}
	var els []Stmt
	if data.Else != nil {
		fl.scopes.push()
		els, err = fl.lowerStmts(data.Else)
		fl.scopes.pop()
		if err != nil {
			return nil, err
		}
	}
	return &Stmt{Kind: StmtIf, Span: s.Span, Data: IfData{Cond: cond, Then: then, Else: els}}, nil
}

func (fl *funcLowerer) lowerWhile(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.WhileData)
	cond, err := fl.lowerCond(data.Cond)
	if err != nil {
		return nil, err
	}
	fl.scopes.push()
	body, err := fl.lowerStmts(data.Body)
	fl.scopes.pop()
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtWhile, Span: s.Span, Data: WhileData{Cond: cond, Body: body}}, nil
}

func (fl *funcLowerer) lowerFor(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.ForData)
	from, err := fl.lowerExpr(data.From, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	if !fl.l.kindOf(from.Type).IsInteger() {
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, from.Span,
			fmt.Sprintf("for range bound must be an integer, got %s", fl.l.types.String(from.Type)))
	}
	to, err := fl.lowerExpr(data.To, from.Type)
	if err != nil {
		return nil, err
	}
	if to.Type != from.Type {
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, to.Span,
			fmt.Sprintf("for range bounds disagree: %s vs %s",
				fl.l.types.String(from.Type), fl.l.types.String(to.Type)))
	}
	fl.scopes.push()
	// The counter is visible to the body but owned by the loop; MIR adds
	// the hidden mutable increment slot.
	id, err := fl.declareLocal(data.Var, from.Type, false, false, s.Span)
	if err != nil {
		fl.scopes.pop()
		return nil, err
	}
	body, err := fl.lowerStmts(data.Body)
	fl.scopes.pop()
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtFor, Span: s.Span, Data: ForData{Local: id, From: from, To: to, Body: body}}, nil
}

func (fl *funcLowerer) lowerMatch(s *ast.Stmt) (*Stmt, error) {
	data := s.Data.(ast.MatchData)
	scrut, err := fl.lowerExpr(data.Scrutinee, types.NoTypeID)
	if err != nil {
		return nil, err
	}
	switch fl.l.kindOf(scrut.Type) {
	case types.KindBool, types.KindI32, types.KindI64, types.KindString:
	default:
		return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, scrut.Span,
			fmt.Sprintf("cannot match on type %s", fl.l.types.String(scrut.Type)))
	}
	arms := make([]MatchArm, 0, len(data.Arms))
	for i := range data.Arms {
		arm := &data.Arms[i]
		var pattern *Expr
		if arm.Pattern != nil {
			pattern, err = fl.lowerExpr(arm.Pattern, scrut.Type)
			if err != nil {
				return nil, err
			}
			if pattern.Kind != ExprLiteral {
				return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, pattern.Span,
					"match pattern must be a literal or _")
			}
			if pattern.Type != scrut.Type {
				return nil, diag.ReportError(fl.l.reporter, diag.TypeMismatch, pattern.Span,
					fmt.Sprintf("pattern type %s does not match scrutinee type %s",
						fl.l.types.String(pattern.Type), fl.l.types.String(scrut.Type)))
			}
		}
		fl.scopes.push()
		body, berr := fl.lowerStmts(arm.Body)
		fl.scopes.pop()
		if berr != nil {
			return nil, berr
		}
		arms = append(arms, MatchArm{Pattern: pattern, Body: body, Span: arm.Span})
	}
	return &Stmt{Kind: StmtMatch, Span: s.Span, Data: MatchData{Scrutinee: scrut, Arms: arms}}, nil
}

// stmtsAlwaysReturn reports whether execution of stmts cannot fall
// through: every path ends in a return.
func stmtsAlwaysReturn(stmts []Stmt) bool {
	for i := range stmts {
		if stmtAlwaysReturns(&stmts[i]) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(s *Stmt) bool {
	switch s.Kind {
	case StmtReturn:
		return true
	case StmtIf:
		data := s.Data.(IfData)
		return data.Else != nil && stmtsAlwaysReturn(data.Then) && stmtsAlwaysReturn(data.Else)
	case StmtMatch:
		data := s.Data.(MatchData)
		hasWildcard := false
		for i := range data.Arms {
			if !stmtsAlwaysReturn(data.Arms[i].Body) {
				return false
			}
			if data.Arms[i].Pattern == nil {
				hasWildcard = true
			}
		}
		return hasWildcard && len(data.Arms) > 0
	case StmtBlock:
		return stmtsAlwaysReturn(s.Data.(BlockData).Stmts)
	default:
		return false
	}
}
