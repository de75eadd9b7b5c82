package mir

import (
	"fmt"
	"strings"

	"mica/internal/diag"
	"mica/internal/source"
)

// Violation is one structural invariant breach. It always indicates a
// defect in the lowering that produced the module, never a user error.
type Violation struct {
	Code      diag.Code
	Invariant string
	Node      string
	Span      source.Span
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s [%s] %s at %s", v.Code.ID(), v.Invariant, v.Node, v.Span)
}

// ValidationError aggregates every violation found in one pass.
type ValidationError struct {
	Violations []*Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return "internal compiler error: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation carries code.
func (e *ValidationError) Has(code diag.Code) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Validate checks the well-formedness invariants of a lowered module:
// every block terminated, every terminator target in range, every block
// reachable from the entry, every local reference declared, and no
// aggregate rvalues. All violations are accumulated before returning.
func Validate(m *Module) error {
	v := &mirValidator{module: m}
	v.run()
	return v.result()
}

// ValidateInvariants is the pass run before handing the module to a
// backend. Every MIR check is structural, so it is the same pass as
// Validate; the name mirrors the HIR pipeline stage.
func ValidateInvariants(m *Module) error {
	return Validate(m)
}

type mirValidator struct {
	module     *Module
	fn         *Func
	violations []*Violation
}

func (v *mirValidator) add(code diag.Code, invariant, node string, sp source.Span) {
	v.violations = append(v.violations, &Violation{
		Code:      code,
		Invariant: invariant,
		Node:      node,
		Span:      sp,
	})
}

func (v *mirValidator) result() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

func (v *mirValidator) run() {
	if v.module == nil {
		return
	}
	if v.module.Entry.IsValid() {
		entry := v.module.Funcs[v.module.Entry]
		if entry == nil {
			v.add(diag.IceMirBadEntry, "entry-point-exists",
				fmt.Sprintf("entry id %d names no function", v.module.Entry), source.Span{})
		} else if !entry.IsMain {
			v.add(diag.IceMirBadEntry, "entry-point-exists",
				fmt.Sprintf("entry function %q is not marked main", entry.Name), entry.Span)
		}
	}
	for _, fn := range v.module.SortedFuncs() {
		v.fn = fn
		v.checkFunc(fn)
		v.fn = nil
	}
}

func (v *mirValidator) checkFunc(fn *Func) {
	name := fmt.Sprintf("func %q", fn.Name)
	if fn.Block(fn.Entry) == nil {
		v.add(diag.IceMirBadEntry, "entry-block-exists",
			fmt.Sprintf("%s entry block %d does not exist", name, fn.Entry), fn.Span)
		return
	}

	reachable := make([]bool, len(fn.Blocks))
	stack := []BlockID{fn.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		for _, t := range fn.Blocks[id].Term.Targets() {
			if fn.Block(t) != nil && !reachable[t] {
				stack = append(stack, t)
			}
		}
	}

	for i := range fn.Blocks {
		b := &fn.Blocks[i]
		node := fmt.Sprintf("%s block %d", name, b.ID)
		if b.Term.Kind == TermNone {
			v.add(diag.IceMirUnterminated, "blocks-terminated", node+" has no terminator", fn.Span)
		}
		for _, t := range b.Term.Targets() {
			if fn.Block(t) == nil {
				v.add(diag.IceMirBadTarget, "targets-exist",
					fmt.Sprintf("%s jumps to missing block %d", node, t), fn.Span)
			}
		}
		if !reachable[i] {
			v.add(diag.IceMirOrphanBlock, "no-orphan-blocks", node+" is unreachable from the entry", fn.Span)
		}
		for j := range b.Instrs {
			v.checkInstr(&b.Instrs[j], node)
		}
		v.checkTerm(&b.Term, node)
	}
}

func (v *mirValidator) checkInstr(instr *Instr, node string) {
	switch instr.Kind {
	case InstrAssign:
		v.checkPlace(&instr.Assign.Dst, node)
		v.checkRValue(&instr.Assign.Src, node)
	case InstrCall:
		if instr.Call.HasDst {
			v.checkPlace(&instr.Call.Dst, node)
		}
		for i := range instr.Call.Args {
			v.checkOperand(&instr.Call.Args[i], node)
		}
	}
}

func (v *mirValidator) checkRValue(rv *RValue, node string) {
	switch rv.Kind {
	case RValueUse:
		v.checkOperand(&rv.Use, node)
	case RValueUnary:
		v.checkOperand(&rv.Unary.Operand, node)
	case RValueBinary:
		v.checkOperand(&rv.Binary.Left, node)
		v.checkOperand(&rv.Binary.Right, node)
	case RValueAggregate:
		v.add(diag.IceMirAggregate, "aggregates-decomposed",
			node+" holds an aggregate rvalue", v.fn.Span)
		for i := range rv.Aggregate.Elems {
			v.checkOperand(&rv.Aggregate.Elems[i], node)
		}
	}
}

func (v *mirValidator) checkTerm(t *Terminator, node string) {
	switch t.Kind {
	case TermIf:
		v.checkOperand(&t.If.Cond, node)
	case TermReturn:
		if t.Return.HasValue {
			v.checkOperand(&t.Return.Value, node)
		}
	}
}

func (v *mirValidator) checkOperand(op *Operand, node string) {
	if op.Kind == OperandCopy {
		v.checkPlace(&op.Place, node)
	}
}

func (v *mirValidator) checkPlace(p *Place, node string) {
	switch p.Kind {
	case PlaceLocal:
		v.checkLocal(p.Local, node)
	case PlaceGlobal:
		if !v.hasGlobal(p.Global) {
			v.add(diag.IceMirBadLocal, "locals-declared",
				fmt.Sprintf("%s references undeclared global %q", node, p.Global), v.fn.Span)
		}
	}
	for i := range p.Proj {
		if p.Proj[i].Kind == PlaceProjIndex {
			v.checkLocal(p.Proj[i].IndexLocal, node)
		}
	}
}

func (v *mirValidator) checkLocal(id LocalID, node string) {
	if v.fn.Local(id) == nil {
		v.add(diag.IceMirBadLocal, "locals-declared",
			fmt.Sprintf("%s references undeclared local %d", node, id), v.fn.Span)
	}
}

func (v *mirValidator) hasGlobal(name string) bool {
	for i := range v.module.Globals {
		if v.module.Globals[i].Name == name {
			return true
		}
	}
	return false
}
