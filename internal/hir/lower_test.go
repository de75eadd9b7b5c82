package hir_test

import (
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
)

func mainFn(body ...ast.Stmt) ast.Item {
	return fnItem("main", nil, nil, body...)
}

func TestMainRecognized(t *testing.T) {
	m := mustLower(t, prog(
		mainFn(),
		fnItem("helper", nil, nil),
	))
	if !m.Func("main").IsMain {
		t.Fatalf("main not flagged as entry point")
	}
	if m.Func("helper").IsMain {
		t.Fatalf("helper flagged as entry point")
	}
}

func TestMainWithParamsIsNotEntry(t *testing.T) {
	m := mustLower(t, prog(
		fnItem("main", []ast.Param{param("x", tyName("i32"))}, nil),
	))
	if m.Func("main").IsMain {
		t.Fatalf("main with parameters must not be the entry point")
	}
}

func TestLiteralDefaults(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		letS("a", nil, intLit(1)),
		letS("b", nil, floatLit(1.5)),
		letS("c", tyName("i64"), intLit(2)),
		letS("d", nil, intSuf(3, "i64")),
		letS("e", nil, boolLit(true)),
	)))
	b := m.Types.Builtins()
	fn := m.Func("main")
	want := []struct {
		name string
		ty   string
	}{
		{"a", m.Types.String(b.I32)},
		{"b", m.Types.String(b.F64)},
		{"c", m.Types.String(b.I64)},
		{"d", m.Types.String(b.I64)},
		{"e", m.Types.String(b.Bool)},
	}
	for i, w := range want {
		got := m.Types.String(fn.Locals[i].Type)
		if fn.Locals[i].Name != w.name || got != w.ty {
			t.Fatalf("local %d = %s %s, want %s %s", i, fn.Locals[i].Name, got, w.name, w.ty)
		}
	}
}

func TestStringConcat(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		letS("s", nil, bin(ast.BinAdd, strLit("a"), strLit("b"))),
	)))
	fn := m.Func("main")
	if fn.Locals[0].Type != m.Types.Builtins().String {
		t.Fatalf("string + string inferred %s", m.Types.String(fn.Locals[0].Type))
	}
}

func TestParenUnwrapped(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		letS("x", nil, paren(bin(ast.BinMul, intLit(2), intLit(3)))),
	)))
	data := m.Func("main").Body[0].Data.(hir.LetData)
	if data.Value.Kind != hir.ExprBinary {
		t.Fatalf("grouping survived lowering: %s", data.Value.Kind)
	}
}

func TestDiagnosticCodes(t *testing.T) {
	cases := []struct {
		name string
		prog *ast.Program
		want diag.Code
	}{
		{"unresolved ident",
			prog(mainFn(letS("x", nil, ident("nope")))),
			diag.NameUnresolved},
		{"unresolved callee",
			prog(mainFn(exprS(callE("missing")))),
			diag.NameUnresolved},
		{"callee is a variable",
			prog(mainFn(letS("x", nil, intLit(1)), exprS(callE("x")))),
			diag.TypeNotCallable},
		{"callee is a global",
			prog(globalItem("limit", nil, intLit(10), false), mainFn(exprS(callE("limit")))),
			diag.TypeNotCallable},
		{"duplicate function",
			prog(mainFn(), fnItem("f", nil, nil), fnItem("f", nil, nil)),
			diag.NameDuplicate},
		{"duplicate local in scope",
			prog(mainFn(letS("x", nil, intLit(1)), letS("x", nil, intLit(2)))),
			diag.NameDuplicate},
		{"function shadows builtin",
			prog(mainFn(), fnItem("print", nil, nil)),
			diag.NameAmbiguous},
		{"annotation mismatch",
			prog(mainFn(letS("x", tyName("bool"), intLit(1)))),
			diag.TypeMismatch},
		{"condition not bool",
			prog(mainFn(ifS(intLit(1), nil, nil))),
			diag.TypeMismatch},
		{"unknown type name",
			prog(mainFn(letS("x", tyName("quux"), intLit(1)))),
			diag.TypeUnknownName},
		{"unknown int suffix",
			prog(mainFn(letS("x", nil, intSuf(1, "i7")))),
			diag.TypeUnknownName},
		{"bool arithmetic",
			prog(mainFn(letS("x", nil, bin(ast.BinAdd, boolLit(true), boolLit(false))))),
			diag.TypeBadOperator},
		{"negate string",
			prog(mainFn(letS("x", nil, un(ast.UnNeg, strLit("s"))))),
			diag.TypeBadOperator},
		{"wrong arg count",
			prog(mainFn(exprS(callE("print")))),
			diag.TypeWrongArgCount},
		{"bad builtin arg type",
			prog(mainFn(exprS(callE("print", intLit(1))))),
			diag.TypeMismatch},
		{"field on non-struct",
			prog(mainFn(letS("x", nil, intLit(1)), letS("y", nil, fieldE(ident("x"), "f")))),
			diag.TypeBadField},
		{"index non-array",
			prog(mainFn(letS("x", nil, intLit(1)), letS("y", nil, indexE(ident("x"), intLit(0))))),
			diag.TypeNotIndexable},
		{"assign immutable",
			prog(mainFn(letS("x", nil, intLit(1)), assign(ident("x"), intLit(2)))),
			diag.TypeNotAssignable},
		{"missing return",
			prog(fnItem("f", nil, tyName("i32"), ifS(boolLit(true), []ast.Stmt{ret(intLit(1))}, nil))),
			diag.CtrlMissingReturn},
		{"global initializer not const",
			prog(globalItem("g", nil, callE("print", strLit("x")), false), mainFn()),
			diag.GlobalNotConst},
		{"global division by zero",
			prog(globalItem("g", nil, bin(ast.BinDiv, intLit(1), intLit(0)), false), mainFn()),
			diag.GlobalNotConst},
		{"match scrutinee pattern mismatch",
			prog(mainFn(
				letS("x", nil, intLit(1)),
				matchS(ident("x"), arm(boolLit(true)), arm(nil)),
			)),
			diag.TypeMismatch},
		{"empty array without hint",
			prog(mainFn(letS("x", nil, arrayLit()))),
			diag.TypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hir.LowerProgram(tc.prog, diag.NopReporter{})
			if err == nil {
				t.Fatalf("expected error %s, got none", tc.want.ID())
			}
			if got := codeOf(t, err); got != tc.want {
				t.Fatalf("code = %s, want %s (%v)", got.ID(), tc.want.ID(), err)
			}
		})
	}
}

func TestGlobalConstFolding(t *testing.T) {
	m := mustLower(t, prog(
		globalItem("g", nil, bin(ast.BinAdd, intLit(2), bin(ast.BinMul, intLit(3), intLit(4))), false),
		mainFn(),
	))
	g := m.Globals[0]
	lit, ok := g.Value.Data.(hir.LiteralData)
	if !ok {
		t.Fatalf("global initializer not folded: %s", g.Value.Kind)
	}
	if lit.Kind != hir.LitInt || lit.Int != 14 {
		t.Fatalf("folded to %+v, want int 14", lit)
	}
}

func TestStructLitFieldsInDeclOrder(t *testing.T) {
	m := mustLower(t, prog(
		structItem("Point", fdecl("x", tyName("i32")), fdecl("y", tyName("i32"))),
		mainFn(letS("p", nil, structLit("Point",
			finit("y", intLit(2)),
			finit("x", intLit(1)),
		))),
	))
	data := m.Func("main").Body[0].Data.(hir.LetData)
	sl := data.Value.Data.(hir.StructLitData)
	if len(sl.Values) != 2 {
		t.Fatalf("struct literal has %d values", len(sl.Values))
	}
	first := sl.Values[0].Data.(hir.LiteralData)
	second := sl.Values[1].Data.(hir.LiteralData)
	if first.Int != 1 || second.Int != 2 {
		t.Fatalf("values not reordered to declaration order: %d, %d", first.Int, second.Int)
	}
}

func TestStructLitDiagnostics(t *testing.T) {
	pt := structItem("Point", fdecl("x", tyName("i32")), fdecl("y", tyName("i32")))
	cases := []struct {
		name string
		lit  *ast.Expr
		want diag.Code
	}{
		{"unknown struct", structLit("Nope", finit("x", intLit(1))), diag.TypeUnknownName},
		{"unknown field", structLit("Point", finit("z", intLit(1))), diag.TypeBadField},
		{"field set twice", structLit("Point",
			finit("x", intLit(1)), finit("x", intLit(2))), diag.NameDuplicate},
		{"missing field", structLit("Point", finit("x", intLit(1))), diag.TypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hir.LowerProgram(prog(pt, mainFn(letS("p", nil, tc.lit))), diag.NopReporter{})
			if err == nil {
				t.Fatalf("expected %s", tc.want.ID())
			}
			if got := codeOf(t, err); got != tc.want {
				t.Fatalf("code = %s, want %s (%v)", got.ID(), tc.want.ID(), err)
			}
		})
	}
}

func TestForCounterImmutable(t *testing.T) {
	_, err := hir.LowerProgram(prog(mainFn(
		forS("i", intLit(0), intLit(10), assign(ident("i"), intLit(5))),
	)), diag.NopReporter{})
	if err == nil {
		t.Fatalf("assignment to loop counter accepted")
	}
	if got := codeOf(t, err); got != diag.TypeNotAssignable {
		t.Fatalf("code = %s, want %s", got.ID(), diag.TypeNotAssignable.ID())
	}
}

func TestBlockShadowing(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		letS("x", nil, intLit(1)),
		blockS(letS("x", nil, boolLit(true))),
	)))
	fn := m.Func("main")
	if len(fn.Locals) != 2 {
		t.Fatalf("shadowed binding shares a slot: %d locals", len(fn.Locals))
	}
	b := m.Types.Builtins()
	if fn.Locals[0].Type != b.I32 || fn.Locals[1].Type != b.Bool {
		t.Fatalf("slot types: %s, %s", m.Types.String(fn.Locals[0].Type), m.Types.String(fn.Locals[1].Type))
	}
}

func TestMutableAssignment(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		letMut("x", nil, intLit(1)),
		assign(ident("x"), intLit(2)),
	)))
	fn := m.Func("main")
	if !fn.Locals[0].IsMut {
		t.Fatalf("let mut lost mutability")
	}
	if fn.Body[1].Kind != hir.StmtAssign {
		t.Fatalf("assignment lowered to %s", fn.Body[1].Kind)
	}
}

func TestCallResolvedWithTypes(t *testing.T) {
	m := mustLower(t, prog(
		fnItem("add", []ast.Param{param("a", tyName("i32")), param("b", tyName("i32"))},
			tyName("i32"), ret(bin(ast.BinAdd, ident("a"), ident("b")))),
		mainFn(letS("r", nil, callE("add", intLit(1), intLit(2)))),
	))
	fn := m.Func("main")
	data := fn.Body[0].Data.(hir.LetData)
	if data.Value.Kind != hir.ExprCall {
		t.Fatalf("call lowered to %s", data.Value.Kind)
	}
	if data.Value.Type != m.Types.Builtins().I32 {
		t.Fatalf("call result type %s", m.Types.String(data.Value.Type))
	}
	cd := data.Value.Data.(hir.CallData)
	if cd.Builtin {
		t.Fatalf("user function marked builtin")
	}
}

func TestBuiltinCall(t *testing.T) {
	m := mustLower(t, prog(mainFn(
		exprS(callE("print", strLit("hi"))),
		exprS(callE("print_int", intLit(1))),
	)))
	fn := m.Func("main")
	for i := range fn.Body {
		cd := fn.Body[i].Data.(hir.ExprStmtData).Expr.Data.(hir.CallData)
		if !cd.Builtin {
			t.Fatalf("stmt %d: builtin call not flagged", i)
		}
	}
}
