package mir_test

import (
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/mir"
	"mica/internal/source"
)

// Test programs are built as AST and pushed through the real HIR
// lowerer so the MIR builder always sees well-typed input.

var off uint32

func sp() source.Span {
	off += 4
	return source.Span{Start: off, End: off + 2}
}

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIntLit, Span: sp(), Data: ast.IntLitData{Value: v}}
}

func boolLit(v bool) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBoolLit, Span: sp(), Data: ast.BoolLitData{Value: v}}
}

func strLit(v string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprStringLit, Span: sp(), Data: ast.StringLitData{Value: v}}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Span: sp(), Data: ast.IdentData{Name: name}}
}

func bin(op ast.BinOp, l, r *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprBinary, Span: sp(), Data: ast.BinaryData{Op: op, Left: l, Right: r}}
}

func callE(callee string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprCall, Span: sp(), Data: ast.CallData{Callee: callee, Args: args}}
}

func fieldE(obj *ast.Expr, name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprField, Span: sp(), Data: ast.FieldData{Object: obj, Name: name}}
}

func indexE(obj, idx *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIndex, Span: sp(), Data: ast.IndexData{Object: obj, Index: idx}}
}

func structLit(name string, inits ...ast.FieldInit) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprStructLit, Span: sp(), Data: ast.StructLitData{Name: name, Fields: inits}}
}

func finit(name string, v *ast.Expr) ast.FieldInit {
	return ast.FieldInit{Name: name, Value: v, Span: sp()}
}

func arrayLit(elems ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprArrayLit, Span: sp(), Data: ast.ArrayLitData{Elems: elems}}
}

func tyName(name string) *ast.TypeExpr {
	return &ast.TypeExpr{Name: name, Span: sp()}
}

func letS(name string, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtLet, Span: sp(), Data: ast.LetData{Name: name, Value: value}}
}

func letMut(name string, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtLet, Span: sp(), Data: ast.LetData{Name: name, Value: value, IsMut: true}}
}

func assign(target, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtAssign, Span: sp(), Data: ast.AssignData{Target: target, Value: value}}
}

func exprS(e *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtExpr, Span: sp(), Data: ast.ExprStmtData{Expr: e}}
}

func ret(v *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtReturn, Span: sp(), Data: ast.ReturnData{Value: v}}
}

func brk() ast.Stmt {
	return ast.Stmt{Kind: ast.StmtBreak, Span: sp(), Data: ast.BreakData{}}
}

func contS() ast.Stmt {
	return ast.Stmt{Kind: ast.StmtContinue, Span: sp(), Data: ast.ContinueData{}}
}

func ifS(cond *ast.Expr, then, els []ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtIf, Span: sp(), Data: ast.IfData{Cond: cond, Then: then, Else: els}}
}

func whileS(cond *ast.Expr, body ...ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtWhile, Span: sp(), Data: ast.WhileData{Cond: cond, Body: body}}
}

func forS(name string, from, to *ast.Expr, body ...ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtFor, Span: sp(), Data: ast.ForData{Var: name, From: from, To: to, Body: body}}
}

func matchS(scrutinee *ast.Expr, arms ...ast.MatchArm) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtMatch, Span: sp(), Data: ast.MatchData{Scrutinee: scrutinee, Arms: arms}}
}

func arm(pattern *ast.Expr, body ...ast.Stmt) ast.MatchArm {
	return ast.MatchArm{Pattern: pattern, Body: body, Span: sp()}
}

func fnItem(name string, params []ast.Param, result *ast.TypeExpr, body ...ast.Stmt) ast.Item {
	return ast.Item{Kind: ast.ItemFunc, Span: sp(),
		Data: ast.FuncData{Name: name, Params: params, Result: result, Body: body}}
}

func mainFn(body ...ast.Stmt) ast.Item {
	return fnItem("main", nil, nil, body...)
}

func structItem(name string, fields ...ast.FieldDecl) ast.Item {
	return ast.Item{Kind: ast.ItemStruct, Span: sp(), Data: ast.StructData{Name: name, Fields: fields}}
}

func fdecl(name string, ty *ast.TypeExpr) ast.FieldDecl {
	return ast.FieldDecl{Name: name, Type: ty, Span: sp()}
}

func buildHIR(t *testing.T, items ...ast.Item) *hir.Module {
	t.Helper()
	m, err := hir.LowerProgram(&ast.Program{Unit: "test.mi", Items: items}, diag.NopReporter{})
	if err != nil {
		t.Fatalf("hir lowering failed: %v", err)
	}
	if err := hir.ValidateInvariants(m); err != nil {
		t.Fatalf("hir module invalid: %v", err)
	}
	return m
}

func lowerMIR(t *testing.T, items ...ast.Item) *mir.Module {
	t.Helper()
	m, err := mir.LowerModule(buildHIR(t, items...), diag.NopReporter{})
	if err != nil {
		t.Fatalf("mir lowering failed: %v", err)
	}
	if err := mir.Validate(m); err != nil {
		t.Fatalf("lowered module invalid: %v", err)
	}
	return m
}

// termsOfKind collects every terminator of kind k in block order.
func termsOfKind(fn *mir.Func, k mir.TermKind) []*mir.Terminator {
	var out []*mir.Terminator
	for i := range fn.Blocks {
		if fn.Blocks[i].Term.Kind == k {
			out = append(out, &fn.Blocks[i].Term)
		}
	}
	return out
}

func countInstrs(fn *mir.Func) int {
	n := 0
	for i := range fn.Blocks {
		n += len(fn.Blocks[i].Instrs)
	}
	return n
}
