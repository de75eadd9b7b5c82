package hir_test

import (
	"errors"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/source"
)

// AST construction helpers. Spans are synthetic; offsets only need to be
// distinct enough for diagnostics to point somewhere.

var nextOff uint32

func sp() source.Span {
	nextOff += 4
	return source.Span{File: 0, Start: nextOff, End: nextOff + 2}
}

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIntLit, Span: sp(), Data: ast.IntLitData{Value: v}}
}

func intSuf(v int64, suffix string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIntLit, Span: sp(), Data: ast.IntLitData{Value: v, Suffix: suffix}}
}

func floatLit(v float64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprFloatLit, Span: sp(), Data: ast.FloatLitData{Value: v}}
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

func un(op ast.UnOp, operand *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprUnary, Span: sp(), Data: ast.UnaryData{Op: op, Operand: operand}}
}

func paren(inner *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprParen, Span: sp(), Data: ast.ParenData{Inner: inner}}
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

func tyArr(elem *ast.TypeExpr) *ast.TypeExpr {
	return &ast.TypeExpr{IsArray: true, Elem: elem, Span: sp()}
}

func letS(name string, ty *ast.TypeExpr, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtLet, Span: sp(), Data: ast.LetData{Name: name, Type: ty, Value: value}}
}

func letMut(name string, ty *ast.TypeExpr, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtLet, Span: sp(), Data: ast.LetData{Name: name, Type: ty, Value: value, IsMut: true}}
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

func blockS(stmts ...ast.Stmt) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtBlock, Span: sp(), Data: ast.BlockData{Stmts: stmts}}
}

func param(name string, ty *ast.TypeExpr) ast.Param {
	return ast.Param{Name: name, Type: ty, Span: sp()}
}

func fnItem(name string, params []ast.Param, result *ast.TypeExpr, body ...ast.Stmt) ast.Item {
	return ast.Item{Kind: ast.ItemFunc, Span: sp(),
		Data: ast.FuncData{Name: name, Params: params, Result: result, Body: body}}
}

func structItem(name string, fields ...ast.FieldDecl) ast.Item {
	return ast.Item{Kind: ast.ItemStruct, Span: sp(), Data: ast.StructData{Name: name, Fields: fields}}
}

func fdecl(name string, ty *ast.TypeExpr) ast.FieldDecl {
	return ast.FieldDecl{Name: name, Type: ty, Span: sp()}
}

func globalItem(name string, ty *ast.TypeExpr, value *ast.Expr, isMut bool) ast.Item {
	return ast.Item{Kind: ast.ItemGlobal, Span: sp(),
		Data: ast.GlobalData{Name: name, Type: ty, Value: value, IsMut: isMut}}
}

func prog(items ...ast.Item) *ast.Program {
	return &ast.Program{Unit: "test.mi", Items: items}
}

func mustLower(t *testing.T, p *ast.Program) *hir.Module {
	t.Helper()
	m, err := hir.LowerProgram(p, diag.NopReporter{})
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	return m
}

func codeOf(t *testing.T, err error) diag.Code {
	t.Helper()
	var de *diag.Error
	if !errors.As(err, &de) {
		t.Fatalf("error is %T, not a diagnostic: %v", err, err)
	}
	return de.Diagnostic.Code
}
