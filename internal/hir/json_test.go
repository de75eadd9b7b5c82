package hir_test

import (
	"bytes"
	"testing"

	"mica/internal/ast"
	"mica/internal/hir"
)

func richModule(t *testing.T) *hir.Module {
	t.Helper()
	return mustLower(t, prog(
		structItem("Point", fdecl("x", tyName("i32")), fdecl("y", tyName("i32"))),
		globalItem("limit", nil, intLit(10), false),
		fnItem("dist2", []ast.Param{param("p", tyName("Point"))}, tyName("i32"),
			ret(bin(ast.BinAdd,
				bin(ast.BinMul, fieldE(ident("p"), "x"), fieldE(ident("p"), "x")),
				bin(ast.BinMul, fieldE(ident("p"), "y"), fieldE(ident("p"), "y"))))),
		mainFn(
			letS("p", nil, structLit("Point", finit("x", intLit(3)), finit("y", intLit(4)))),
			letMut("acc", nil, intLit(0)),
			forS("i", intLit(0), ident("limit"),
				assign(ident("acc"), bin(ast.BinAdd, ident("acc"), callE("dist2", ident("p"))))),
			ifS(bin(ast.BinGt, ident("acc"), intLit(100)),
				[]ast.Stmt{exprS(callE("print", strLit("big")))},
				[]ast.Stmt{exprS(callE("print_int", ident("acc")))}),
			matchS(ident("acc"),
				arm(intLit(0), exprS(callE("print", strLit("zero")))),
				arm(nil)),
			whileS(boolLit(false), brk()),
			letS("xs", nil, arrayLit(intLit(1), intLit(2))),
			exprS(callE("print_int", indexE(ident("xs"), intLit(0)))),
		),
	))
}

func TestJSONRoundTrip(t *testing.T) {
	m := richModule(t)

	first, err := hir.ToJSON(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := hir.FromJSON(first)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := hir.ToJSON(back)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip is not byte-stable:\n%s\n---\n%s", first, second)
	}
	if err := hir.ValidateInvariants(back); err != nil {
		t.Fatalf("deserialized module fails validation: %v", err)
	}
}

func TestJSONPreservesDump(t *testing.T) {
	m := richModule(t)
	data, err := hir.ToJSON(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := hir.FromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var a, b bytes.Buffer
	if err := hir.Dump(&a, m); err != nil {
		t.Fatalf("dump original: %v", err)
	}
	if err := hir.Dump(&b, back); err != nil {
		t.Fatalf("dump round-tripped: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("dump changed across serialization:\n%s\n---\n%s", a.String(), b.String())
	}
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	if _, err := hir.FromJSON([]byte("{")); err == nil {
		t.Fatalf("truncated input accepted")
	}
	if _, err := hir.FromJSON(nil); err == nil {
		t.Fatalf("empty input accepted")
	}
}
