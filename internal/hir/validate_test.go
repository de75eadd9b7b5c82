package hir_test

import (
	"errors"
	"testing"

	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/types"
)

func validModule(t *testing.T) *hir.Module {
	t.Helper()
	return mustLower(t, prog(mainFn(
		letS("x", nil, intLit(1)),
		exprS(callE("print_int", ident("x"))),
	)))
}

func asValidation(t *testing.T, err error) *hir.ValidationError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a validation error")
	}
	var ve *hir.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *hir.ValidationError", err)
	}
	return ve
}

func TestValidatePassesLoweredModule(t *testing.T) {
	m := validModule(t)
	if err := hir.Validate(m); err != nil {
		t.Fatalf("valid module rejected: %v", err)
	}
	if err := hir.ValidateInvariants(m); err != nil {
		t.Fatalf("valid module rejected by strict pass: %v", err)
	}
}

func TestValidateFlagsUnknownType(t *testing.T) {
	m := validModule(t)
	m.Funcs[0].Locals[0].Type = m.Types.Intern(types.Type{Kind: types.KindUnknown})

	ve := asValidation(t, hir.Validate(m))
	if !ve.Has(diag.IceHirUnknownType) {
		t.Fatalf("placeholder type not flagged: %v", ve)
	}
}

func TestValidateFlagsInvalidTypeID(t *testing.T) {
	m := validModule(t)
	m.Funcs[0].Result = types.NoTypeID

	ve := asValidation(t, hir.Validate(m))
	if !ve.Has(diag.IceHirUnknownType) {
		t.Fatalf("missing type id not flagged: %v", ve)
	}
}

func TestValidateFlagsUnresolvedName(t *testing.T) {
	m := validModule(t)
	data := m.Funcs[0].Body[0].Data.(hir.LetData)
	data.Value.Kind = hir.ExprVarRef
	data.Value.Data = hir.VarRefData{Name: "ghost", Local: hir.NoLocalID}

	ve := asValidation(t, hir.Validate(m))
	if !ve.Has(diag.IceHirUnresolvedName) {
		t.Fatalf("unresolved reference not flagged: %v", ve)
	}
}

func TestStrictFlagsLoweringLeftover(t *testing.T) {
	m := validModule(t)
	data := m.Funcs[0].Body[0].Data.(hir.LetData)
	inner := *data.Value
	data.Value.Kind = hir.ExprParen
	data.Value.Data = hir.ParenData{Inner: &inner}

	// The lenient pass tolerates the wrapper, the strict pre-MIR pass
	// does not.
	if err := hir.Validate(m); err != nil {
		ve := asValidation(t, err)
		if ve.Has(diag.IceHirLoweringLeftover) {
			t.Fatalf("lenient pass flagged the grouping wrapper")
		}
	}
	ve := asValidation(t, hir.ValidateInvariants(m))
	if !ve.Has(diag.IceHirLoweringLeftover) {
		t.Fatalf("strict pass missed the grouping wrapper: %v", ve)
	}
}

func TestValidateAccumulates(t *testing.T) {
	m := validModule(t)
	m.Funcs[0].Result = types.NoTypeID
	data := m.Funcs[0].Body[0].Data.(hir.LetData)
	data.Value.Kind = hir.ExprVarRef
	data.Value.Data = hir.VarRefData{Name: "ghost", Local: hir.NoLocalID}

	ve := asValidation(t, hir.Validate(m))
	if len(ve.Violations) < 2 {
		t.Fatalf("got %d violations, want both reported", len(ve.Violations))
	}
	if !ve.Has(diag.IceHirUnknownType) || !ve.Has(diag.IceHirUnresolvedName) {
		t.Fatalf("violations missing a code: %v", ve)
	}
}

func TestValidateNilModule(t *testing.T) {
	if err := hir.Validate(nil); err != nil {
		t.Fatalf("nil module: %v", err)
	}
}
