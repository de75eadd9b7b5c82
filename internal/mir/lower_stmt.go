package mir

import (
	"fmt"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/source"
	"mica/internal/types"
)

// funcLowerer drives block emission for one function. The block-id and
// temp counters live here, never in process-wide state, so concurrent
// compilations stay independent.
type funcLowerer struct {
	l        *moduleLowerer
	unit     *hir.Module
	fn       *Func
	cur      BlockID
	loops    []loopFrame
	nextTemp int
}

// loopFrame records where break and continue jump within the innermost
// loop.
type loopFrame struct {
	continueTo BlockID
	breakTo    BlockID
}

func (fl *funcLowerer) newBlock() BlockID {
	id := BlockID(len(fl.fn.Blocks))
	fl.fn.Blocks = append(fl.fn.Blocks, Block{ID: id})
	return id
}

func (fl *funcLowerer) startBlock(id BlockID) {
	fl.cur = id
}

func (fl *funcLowerer) curBlock() *Block {
	return fl.fn.Block(fl.cur)
}

func (fl *funcLowerer) emit(instr Instr) {
	b := fl.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Instrs = append(b.Instrs, instr)
}

func (fl *funcLowerer) setTerm(t Terminator) {
	b := fl.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Term = t
}

// newTemp allocates a lowering temporary slot.
func (fl *funcLowerer) newTemp(ty types.TypeID, hint string, sp source.Span) LocalID {
	fl.nextTemp++
	id := LocalID(len(fl.fn.Locals))
	fl.fn.Locals = append(fl.fn.Locals, Local{
		Name:   fmt.Sprintf("%s.%d", hint, fl.nextTemp),
		Type:   ty,
		IsMut:  true,
		IsTemp: true,
		Span:   sp,
	})
	return id
}

func (fl *funcLowerer) mapType(id types.TypeID) types.TypeID {
	return fl.l.mapType(fl.unit.Types, id)
}

// lowerStmts lowers a statement run into the current block chain.
// Statements after the block terminates (dead code after return, break
// or continue) are dropped with one warning spanning the first dropped
// statement.
func (fl *funcLowerer) lowerStmts(stmts []hir.Stmt) error {
	for i := range stmts {
		if fl.curBlock().Terminated() {
			diag.ReportWarning(fl.l.reporter, diag.CtrlUnreachableCode, stmts[i].Span,
				"unreachable code is never executed")
			return nil
		}
		if err := fl.lowerStmt(&stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (fl *funcLowerer) lowerStmt(s *hir.Stmt) error {
	switch s.Kind {
	case hir.StmtLet:
		data := s.Data.(hir.LetData)
		value, err := fl.lowerExpr(data.Value)
		if err != nil {
			return err
		}
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: LocalID(data.Local)},
			Src: RValue{Kind: RValueUse, Use: value},
		}})
		return nil

	case hir.StmtAssign:
		data := s.Data.(hir.AssignData)
		dst, err := fl.lowerPlace(data.Target)
		if err != nil {
			return err
		}
		value, err := fl.lowerExpr(data.Value)
		if err != nil {
			return err
		}
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: dst,
			Src: RValue{Kind: RValueUse, Use: value},
		}})
		return nil

	case hir.StmtExpr:
		_, err := fl.lowerExpr(s.Data.(hir.ExprStmtData).Expr)
		return err

	case hir.StmtReturn:
		data := s.Data.(hir.ReturnData)
		term := Terminator{Kind: TermReturn}
		if data.Value != nil {
			value, err := fl.lowerExpr(data.Value)
			if err != nil {
				return err
			}
			term.Return = ReturnTerm{HasValue: true, Value: value}
		}
		fl.setTerm(term)
		return nil

	case hir.StmtBreak:
		if len(fl.loops) == 0 {
			return diag.ReportError(fl.l.reporter, diag.CtrlBreakOutsideLoop, s.Span,
				"break is only allowed inside a loop")
		}
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: fl.loops[len(fl.loops)-1].breakTo}})
		return nil

	case hir.StmtContinue:
		if len(fl.loops) == 0 {
			return diag.ReportError(fl.l.reporter, diag.CtrlContinueOutsideLoop, s.Span,
				"continue is only allowed inside a loop")
		}
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: fl.loops[len(fl.loops)-1].continueTo}})
		return nil

	case hir.StmtIf:
		return fl.lowerIf(s.Data.(hir.IfData))

	case hir.StmtWhile:
		return fl.lowerWhile(s.Data.(hir.WhileData))

	case hir.StmtFor:
		return fl.lowerFor(s.Span, s.Data.(hir.ForData))

	case hir.StmtMatch:
		return fl.lowerMatch(s.Span, s.Data.(hir.MatchData))

	case hir.StmtBlock:
		return fl.lowerStmts(s.Data.(hir.BlockData).Stmts)

	default:
		return diag.ReportError(fl.l.reporter, diag.UnknownCode, s.Span,
			fmt.Sprintf("cannot lower statement kind %s", s.Kind))
	}
}

// lowerIf emits a conditional branch to fresh then/else blocks joined by
// a shared join block. With no else branch the false edge goes straight
// to the join block.
func (fl *funcLowerer) lowerIf(data hir.IfData) error {
	cond, err := fl.lowerExpr(data.Cond)
	if err != nil {
		return err
	}
	thenBB := fl.newBlock()
	joinBB := fl.newBlock()
	elseBB := joinBB
	if data.Else != nil {
		elseBB = fl.newBlock()
	}
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	fl.startBlock(thenBB)
	if err := fl.lowerStmts(data.Then); err != nil {
		return err
	}
	thenFlows := !fl.curBlock().Terminated()
	if thenFlows {
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})
	}

	elseFlows := true
	if data.Else != nil {
		fl.startBlock(elseBB)
		if err := fl.lowerStmts(data.Else); err != nil {
			return err
		}
		elseFlows = !fl.curBlock().Terminated()
		if elseFlows {
			fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})
		}
	}

	fl.startBlock(joinBB)
	if !thenFlows && !elseFlows {
		// Both branches transferred control; the join is dead. A return
		// terminator here makes trailing statements report as
		// unreachable, and pruning drops the whole block.
		fl.setTerm(Terminator{Kind: TermReturn})
	}
	return nil
}

// lowerWhile emits header/body/exit blocks. The condition re-evaluates
// in the header on every iteration; continue jumps to the header.
func (fl *funcLowerer) lowerWhile(data hir.WhileData) error {
	headerBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headerBB}})

	fl.startBlock(headerBB)
	cond, err := fl.lowerExpr(data.Cond)
	if err != nil {
		return err
	}
	bodyBB := fl.newBlock()
	exitBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: exitBB}})

	fl.startBlock(bodyBB)
	fl.loops = append(fl.loops, loopFrame{continueTo: headerBB, breakTo: exitBB})
	err = fl.lowerStmts(data.Body)
	fl.loops = fl.loops[:len(fl.loops)-1]
	if err != nil {
		return err
	}
	if !fl.curBlock().Terminated() {
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headerBB}})
	}

	fl.startBlock(exitBB)
	return nil
}

// lowerFor desugars `for i in lo..hi` into a counter-based while. The
// bound is evaluated once before the loop; a hidden mutable counter
// drives iteration and the visible binding is refreshed per iteration.
// continue jumps to the increment block so it still advances.
func (fl *funcLowerer) lowerFor(sp source.Span, data hir.ForData) error {
	counterType := fl.fn.Locals[data.Local].Type

	from, err := fl.lowerExpr(data.From)
	if err != nil {
		return err
	}
	counter := fl.newTemp(counterType, "for", sp)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: counter},
		Src: RValue{Kind: RValueUse, Use: from},
	}})
	to, err := fl.lowerExpr(data.To)
	if err != nil {
		return err
	}
	bound := fl.newTemp(counterType, "bound", sp)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: bound},
		Src: RValue{Kind: RValueUse, Use: to},
	}})

	headerBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headerBB}})

	fl.startBlock(headerBB)
	boolType := fl.l.out.TypeInterner.Builtins().Bool
	condTemp := fl.newTemp(boolType, "cond", sp)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: condTemp},
		Src: RValue{Kind: RValueBinary, Binary: BinaryRValue{
			Op:    ast.BinLt,
			Left:  Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: counter}, Type: counterType},
			Right: Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: bound}, Type: counterType},
		}},
	}})
	bodyBB := fl.newBlock()
	incrBB := fl.newBlock()
	exitBB := fl.newBlock()
	fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
		Cond: Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: condTemp}, Type: boolType},
		Then: bodyBB,
		Else: exitBB,
	}})

	fl.startBlock(bodyBB)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: LocalID(data.Local)},
		Src: RValue{Kind: RValueUse, Use: Operand{
			Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: counter}, Type: counterType,
		}},
	}})
	fl.loops = append(fl.loops, loopFrame{continueTo: incrBB, breakTo: exitBB})
	err = fl.lowerStmts(data.Body)
	fl.loops = fl.loops[:len(fl.loops)-1]
	if err != nil {
		return err
	}
	if !fl.curBlock().Terminated() {
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: incrBB}})
	}

	fl.startBlock(incrBB)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: counter},
		Src: RValue{Kind: RValueBinary, Binary: BinaryRValue{
			Op:    ast.BinAdd,
			Left:  Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: counter}, Type: counterType},
			Right: Operand{Kind: OperandConst, Const: ConstValue{Kind: ConstInt, Int: 1}, Type: counterType},
		}},
	}})
	fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: headerBB}})

	fl.startBlock(exitBB)
	return nil
}

// lowerMatch emits a decision tree of equality tests, one block per arm
// and a shared join block. A missing wildcard falls through to the join.
func (fl *funcLowerer) lowerMatch(sp source.Span, data hir.MatchData) error {
	scrut, err := fl.lowerExpr(data.Scrutinee)
	if err != nil {
		return err
	}
	scrutType := fl.mapType(data.Scrutinee.Type)
	scrutTemp := fl.newTemp(scrutType, "match", sp)
	fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: scrutTemp},
		Src: RValue{Kind: RValueUse, Use: scrut},
	}})
	scrutOp := Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: scrutTemp}, Type: scrutType}

	joinBB := fl.newBlock()
	boolType := fl.l.out.TypeInterner.Builtins().Bool

	for i := range data.Arms {
		arm := &data.Arms[i]
		armBB := fl.newBlock()
		if arm.Pattern == nil {
			// Wildcard: unconditional transfer, remaining arms are
			// unreachable and already rejected by the front end.
			fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: armBB}})
			if aerr := fl.lowerMatchArm(arm, armBB, joinBB); aerr != nil {
				return aerr
			}
			fl.startBlock(joinBB)
			return nil
		}
		pattern, perr := fl.lowerExpr(arm.Pattern)
		if perr != nil {
			return perr
		}
		test := fl.newTemp(boolType, "arm", arm.Span)
		fl.emit(Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: test},
			Src: RValue{Kind: RValueBinary, Binary: BinaryRValue{
				Op:    ast.BinEq,
				Left:  scrutOp,
				Right: pattern,
			}},
		}})
		nextBB := joinBB
		if i+1 < len(data.Arms) {
			nextBB = fl.newBlock()
		}
		fl.setTerm(Terminator{Kind: TermIf, If: IfTerm{
			Cond: Operand{Kind: OperandCopy, Place: Place{Kind: PlaceLocal, Local: test}, Type: boolType},
			Then: armBB,
			Else: nextBB,
		}})
		if aerr := fl.lowerMatchArm(arm, armBB, joinBB); aerr != nil {
			return aerr
		}
		fl.startBlock(nextBB)
	}
	return nil
}

func (fl *funcLowerer) lowerMatchArm(arm *hir.MatchArm, armBB, joinBB BlockID) error {
	fl.startBlock(armBB)
	if err := fl.lowerStmts(arm.Body); err != nil {
		return err
	}
	if !fl.curBlock().Terminated() {
		fl.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: joinBB}})
	}
	return nil
}

// prune drops blocks unreachable from the entry and renumbers the rest
// compactly, rewriting every terminator target. Dead joins left by
// always-returning branches disappear here; what remains must satisfy
// the well-formedness invariants.
func (fl *funcLowerer) prune() {
	f := fl.fn
	if len(f.Blocks) == 0 {
		return
	}
	reachable := make([]bool, len(f.Blocks))
	var visit func(id BlockID)
	visit = func(id BlockID) {
		if !id.IsValid() || int(id) >= len(f.Blocks) || reachable[id] {
			return
		}
		reachable[id] = true
		for _, t := range f.Blocks[id].Term.Targets() {
			visit(t)
		}
	}
	visit(f.Entry)

	remap := make([]BlockID, len(f.Blocks))
	kept := make([]Block, 0, len(f.Blocks))
	for i := range f.Blocks {
		if !reachable[i] {
			remap[i] = NoBlockID
			continue
		}
		remap[i] = BlockID(len(kept))
		kept = append(kept, f.Blocks[i])
	}
	for i := range kept {
		kept[i].ID = BlockID(i)
		term := &kept[i].Term
		switch term.Kind {
		case TermGoto:
			term.Goto.Target = remap[term.Goto.Target]
		case TermIf:
			term.If.Then = remap[term.If.Then]
			term.If.Else = remap[term.If.Else]
		}
	}
	f.Blocks = kept
	f.Entry = remap[f.Entry]
}
