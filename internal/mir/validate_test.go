package mir_test

import (
	"errors"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/mir"
)

func checkedModule(t *testing.T) *mir.Module {
	t.Helper()
	return lowerMIR(t, mainFn(
		letMut("x", intLit(0)),
		ifS(boolLit(true),
			[]ast.Stmt{assign(ident("x"), intLit(1))},
			[]ast.Stmt{assign(ident("x"), intLit(2))}),
		exprS(callE("print_int", ident("x"))),
	))
}

func asValidation(t *testing.T, err error) *mir.ValidationError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a validation error")
	}
	var ve *mir.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *mir.ValidationError", err)
	}
	return ve
}

func TestValidateAcceptsLoweredModule(t *testing.T) {
	if err := mir.Validate(checkedModule(t)); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}
}

func TestValidateFlagsUnterminatedBlock(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	fn.Blocks[len(fn.Blocks)-1].Term = mir.Terminator{Kind: mir.TermNone}

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirUnterminated) {
		t.Fatalf("missing terminator not flagged: %v", ve)
	}
}

func TestValidateFlagsBadTarget(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	for i := range fn.Blocks {
		if fn.Blocks[i].Term.Kind == mir.TermGoto {
			fn.Blocks[i].Term.Goto.Target = mir.BlockID(len(fn.Blocks) + 7)
			break
		}
	}

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirBadTarget) {
		t.Fatalf("dangling target not flagged: %v", ve)
	}
}

func TestValidateFlagsOrphanBlock(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	fn.Blocks = append(fn.Blocks, mir.Block{
		ID:   mir.BlockID(len(fn.Blocks)),
		Term: mir.Terminator{Kind: mir.TermReturn},
	})

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirOrphanBlock) {
		t.Fatalf("orphan block not flagged: %v", ve)
	}
}

func TestValidateFlagsAggregate(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	fn.Blocks[0].Instrs[0].Assign.Src = mir.RValue{
		Kind:      mir.RValueAggregate,
		Aggregate: mir.AggregateRValue{TypeName: "Point"},
	}

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirAggregate) {
		t.Fatalf("aggregate rvalue not flagged: %v", ve)
	}
}

func TestValidateFlagsBadLocal(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	fn.Blocks[0].Instrs[0].Assign.Dst = mir.Place{
		Kind:  mir.PlaceLocal,
		Local: mir.LocalID(len(fn.Locals) + 3),
	}

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirBadLocal) {
		t.Fatalf("undeclared local not flagged: %v", ve)
	}
}

func TestValidateFlagsBadEntry(t *testing.T) {
	m := checkedModule(t)
	m.Entry = mir.FuncID(41)

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirBadEntry) {
		t.Fatalf("dangling entry point not flagged: %v", ve)
	}
}

func TestValidateAccumulates(t *testing.T) {
	m := checkedModule(t)
	fn := m.Func("main")
	fn.Blocks[len(fn.Blocks)-1].Term = mir.Terminator{Kind: mir.TermNone}
	fn.Blocks = append(fn.Blocks, mir.Block{
		ID:   mir.BlockID(len(fn.Blocks)),
		Term: mir.Terminator{Kind: mir.TermReturn},
	})

	ve := asValidation(t, mir.Validate(m))
	if !ve.Has(diag.IceMirUnterminated) || !ve.Has(diag.IceMirOrphanBlock) {
		t.Fatalf("violations not accumulated: %v", ve)
	}
}

func TestValidateInvariantsMatchesValidate(t *testing.T) {
	m := checkedModule(t)
	if err := mir.ValidateInvariants(m); err != nil {
		t.Fatalf("strict pass rejected a valid module: %v", err)
	}
	fn := m.Func("main")
	fn.Blocks[0].Term = mir.Terminator{Kind: mir.TermNone}
	if mir.ValidateInvariants(m) == nil {
		t.Fatalf("strict pass missed a broken block")
	}
}
