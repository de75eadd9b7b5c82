package mir

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
)

// lowerExpr lowers an HIR expression to an operand, emitting whatever
// instructions and blocks the value needs into the current block chain.
func (fl *funcLowerer) lowerExpr(e *hir.Expr) (Operand, error) {
	switch e.Kind {
	case hir.ExprLiteral:
		lit := e.Data.(hir.LiteralData)
		c := ConstValue{Kind: ConstUnit}
		switch lit.Kind {
		case hir.LitInt:
			c = ConstValue{Kind: ConstInt, Int: lit.Int}
		case hir.LitFloat:
			c = ConstValue{Kind: ConstFloat, Float: lit.Float}
		case hir.LitBool:
			c = ConstValue{Kind: ConstBool, Bool: lit.Bool}
		case hir.LitString:
			c = ConstValue{Kind: ConstString, String: lit.String}
		}
		return Operand{Kind: OperandConst, Const: c, Type: fl.mapType(e.Type)}, nil

	case hir.ExprVarRef:
		place, err := fl.lowerPlace(e)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandCopy, Place: place, Type: fl.mapType(e.Type)}, nil

	case hir.ExprUnary:
		data := e.Data.(hir.UnaryData)
		operand, err := fl.lowerExpr(data.Operand)
		if err != nil {
			return Operand{}, err
		}
		ty := fl.mapType(e.Type)
		dst := fl.newTemp(ty, "un", e.Span)
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: dst},
			Src: RValue{Kind: RValueUnary, Unary: UnaryRValue{Op: data.Op, Operand: operand}},
		}})
		return Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: dst}, Type: ty}, nil

	case hir.ExprBinary:
		data := e.Data.(hir.BinaryData)
		if data.Op.IsShortCircuit() {
			return fl.lowerShortCircuit(e, data)
		}
		left, err := fl.lowerExpr(data.Left)
		if err != nil {
			return Operand{}, err
		}
		right, err := fl.lowerExpr(data.Right)
		if err != nil {
			return Operand{}, err
		}
		ty := fl.mapType(e.Type)
		dst := fl.newTemp(ty, "bin", e.Span)
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: dst},
			Src: RValue{Kind: RValueBinary, Binary: BinaryRValue{Op: data.Op, Left: left, Right: right}},
		}})
		return Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: dst}, Type: ty}, nil

	case hir.ExprCall:
		return fl.lowerCall(e)

	case hir.ExprField, hir.ExprIndex:
		place, err := fl.lowerPlace(e)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandCopy, Place: place, Type: fl.mapType(e.Type)}, nil

	case hir.ExprStructLit:
		return fl.lowerStructLit(e)

	case hir.ExprArrayLit:
		return fl.lowerArrayLit(e)

	case hir.ExprParen:
		// Grouping is removed before MIR; tolerate a leftover rather than
		// crash so the validator gets to report it.
		return fl.lowerExpr(e.Data.(hir.ParenData).Inner)

	default:
		return Operand{}, diag.ReportError(fl.l.reporter, diag.UnknownCode, e.Span,
			fmt.Sprintf("cannot lower expression kind %s", e.Kind))
	}
}

// lowerShortCircuit lowers && and || into a branch over the right-hand
// side with a bool result temp. The right operand only evaluates when
// the left one did not decide the result.
func (fl *funcLowerer) lowerShortCircuit(e *hir.Expr, data hir.BinaryData) (Operand, error) {
	boolType := fl.l.out.TypeInterner.Builtins().Bool
	result := fl.newTemp(boolType, "sc", e.Span)
	resultPlace := Place{Kind: PlaceLocal, Local: result}
	resultOp := Operand{Kind: OperandCopy, Place: resultPlace, Type: boolType}

	left, err := fl.lowerExpr(data.Left)
	if err != nil {
		return Operand{}, err
	}
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: resultPlace,
		Src: RValue{Kind: RValueUse, Use: left},
	}})

	rhsBB := fl.newBlock()
	joinBB := fl.newBlock()
	if data.Op == ast.BinAnd {
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: resultOp, Then: rhsBB, Else: joinBB}})
	} else {
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: resultOp, Then: joinBB, Else: rhsBB}})
	}

	fl.startBlock(rhsBB)
	right, err := fl.lowerExpr(data.Right)
	if err != nil {
		return Operand{}, err
	}
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: resultPlace,
		Src: RValue{Kind: RValueUse, Use: right},
	}})
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})

	fl.startBlock(joinBB)
	return resultOp, nil
}

// lowerCall emits an InstrCall. Unit-returning calls get no destination
// and yield a unit constant operand.
func (fl *funcLowerer) lowerCall(e *hir.Expr) (Operand, error) {
	data := e.Data.(hir.CallData)
	args := make([]Operand, 0, len(data.Args))
	for _, a := range data.Args {
		op, err := fl.lowerExpr(a)
		if err != nil {
			return Operand{}, err
		}
		args = append(args, op)
	}
	ty := fl.mapType(e.Type)
	instr := Instr{Kind: InstrCall, Call: CallInstr{
		Callee:  data.Callee,
		Builtin: data.Builtin,
		Args:    args,
	}}
	if ty == fl.l.out.TypeInterner.Builtins().Unit {
		fl.emit(instr)
		return Operand{Kind: OperandConst, Const: ConstValue{Kind: ConstUnit}, Type: ty}, nil
	}
	dst := fl.newTemp(ty, "call", e.Span)
	instr.Call.HasDst = true
	instr.Call.Dst = Place{Kind: PlaceLocal, Local: dst}
	fl.emit(instr)
	return Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: dst}, Type: ty}, nil
}

// lowerStructLit decomposes a struct literal into per-field assignments
// to a fresh temp, in field declaration order.
func (fl *funcLowerer) lowerStructLit(e *hir.Expr) (Operand, error) {
	data := e.Data.(hir.StructLitData)
	def := fl.l.out.Types[data.Name]
	if def == nil {
		return Operand{}, diag.ReportError(fl.l.reporter, diag.TypeUnknownName, e.Span,
			fmt.Sprintf("unknown struct type %q", data.Name))
	}
	ty := fl.mapType(e.Type)
	dst := fl.newTemp(ty, "lit", e.Span)
	for i, value := range data.Values {
		op, err := fl.lowerExpr(value)
		if err != nil {
			return Operand{}, err
		}
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: dst, Proj: []PlaceProj{{
				Kind:      PlaceProjField,
				FieldName: def.Fields[i].Name,
				FieldIdx:  i,
			}}},
			Src: RValue{Kind: RValueUse, Use: op},
		}})
	}
	return Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: dst}, Type: ty}, nil
}

// lowerArrayLit decomposes an array literal into per-element assignments
// to a fresh temp. Element indexes are materialized as constants in
// index locals so the place grammar stays flat.
func (fl *funcLowerer) lowerArrayLit(e *hir.Expr) (Operand, error) {
	data := e.Data.(hir.ArrayLitData)
	ty := fl.mapType(e.Type)
	i32 := fl.l.out.TypeInterner.Builtins().I32
	dst := fl.newTemp(ty, "lit", e.Span)
	for i, elem := range data.Elems {
		op, err := fl.lowerExpr(elem)
		if err != nil {
			return Operand{}, err
		}
		idx := fl.newTemp(i32, "idx", elem.Span)
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: idx},
			Src: RValue{Kind: RValueUse, Use: Operand{
				Kind: OperandConst, Const: ConstValue{Kind: ConstInt, Int: int64(i)}, Type: i32,
			}},
		}})
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: dst, Proj: []PlaceProj{{
				Kind:       PlaceProjIndex,
				IndexLocal: idx,
			}}},
			Src: RValue{Kind: RValueUse, Use: op},
		}})
	}
	return Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: dst}, Type: ty}, nil
}

// lowerPlace lowers an expression in place position. Non-place
// expressions (call results, literals) are materialized into a temp so
// projections always have a storable root.
func (fl *funcLowerer) lowerPlace(e *hir.Expr) (Place, error) {
	switch e.Kind {
	case hir.ExprVarRef:
		data := e.Data.(hir.VarRefData)
		if data.Global {
			return Place{Kind: PlaceGlobal, Global: data.Name}, nil
		}
		return Place{Kind: PlaceLocal, Local: LocalID(data.Local)}, nil

	case hir.ExprField:
		data := e.Data.(hir.FieldData)
		base, err := fl.lowerPlace(data.Object)
		if err != nil {
			return Place{}, err
		}
		base.Proj = append(base.Proj, PlaceProj{
			Kind:      PlaceProjField,
			FieldName: data.Name,
			FieldIdx:  data.Index,
		})
		return base, nil

	case hir.ExprIndex:
		data := e.Data.(hir.IndexData)
		base, err := fl.lowerPlace(data.Object)
		if err != nil {
			return Place{}, err
		}
		idx, err := fl.lowerExpr(data.Index)
		if err != nil {
			return Place{}, err
		}
		base.Proj = append(base.Proj, PlaceProj{
			Kind:       PlaceProjIndex,
			IndexLocal: fl.materializeLocal(idx, data.Index),
		})
		return base, nil

	case hir.ExprParen:
		return fl.lowerPlace(e.Data.(hir.ParenData).Inner)

	default:
		op, err := fl.lowerExpr(e)
		if err != nil {
			return Place{}, err
		}
		return Place{Kind: PlaceLocal, Local: fl.materializeLocal(op, e)}, nil
	}
}

// materializeLocal pins an operand into a plain local so it can serve
// as a place root or index. An operand that already copies an
// unprojected local is reused as-is.
func (fl *funcLowerer) materializeLocal(op Operand, src *hir.Expr) LocalID {
	if op.Kind == OperandCopy && op.Place.Kind == PlaceLocal && len(op.Place.Proj) == 0 {
		return op.Place.Local
	}
	dst := fl.newTemp(op.Type, "pin", src.Span)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueUse, Use: op},
	}})
	return dst
}
