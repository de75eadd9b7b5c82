package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/driver"
	"mica/internal/hir"
	"mica/internal/source"
	"mica/internal/types"
)

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIntLit, Data: ast.IntLitData{Value: v}}
}

func strLit(v string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprStringLit, Data: ast.StringLitData{Value: v}}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdent, Data: ast.IdentData{Name: name}}
}

func callE(callee string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprCall, Data: ast.CallData{Callee: callee, Args: args}}
}

func letS(name string, value *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtLet, Data: ast.LetData{Name: name, Value: value}}
}

func exprS(e *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.StmtExpr, Data: ast.ExprStmtData{Expr: e}}
}

func fnItem(name string, body ...ast.Stmt) ast.Item {
	return ast.Item{Kind: ast.ItemFunc, Data: ast.FuncData{Name: name, Body: body}}
}

func mainProg() *ast.Program {
	return &ast.Program{Unit: "main.mi", Items: []ast.Item{
		fnItem("main",
			letS("x", intLit(41)),
			exprS(callE("print_int", ident("x"))),
		),
	}}
}

func TestCompileEndToEnd(t *testing.T) {
	res, err := driver.Compile(mainProg(), driver.Options{})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if res.MIR == nil {
		t.Fatalf("no MIR produced")
	}
	if len(res.HIR) != 1 {
		t.Fatalf("got %d HIR units, want 1", len(res.HIR))
	}
	if res.MIR.Func("main") == nil {
		t.Fatalf("main lost in lowering")
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
}

func TestCompileReportsUserError(t *testing.T) {
	prog := &ast.Program{Unit: "bad.mi", Items: []ast.Item{
		fnItem("main", letS("x", ident("missing"))),
	}}
	res, err := driver.Compile(prog, driver.Options{})
	if err == nil {
		t.Fatalf("unresolved name compiled")
	}
	if res.MIR != nil {
		t.Fatalf("MIR produced despite the error")
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("diagnostic not collected in the bag")
	}
	if res.Bag.Items()[0].Code != diag.NameUnresolved {
		t.Fatalf("collected %s", res.Bag.Items()[0].Code.ID())
	}
}

func TestCompileUnitsLinksAcrossUnits(t *testing.T) {
	caller := &ast.Program{Unit: "a.mi", Items: []ast.Item{
		fnItem("main", exprS(callE("print", strLit("hi")))),
	}}
	helper := &ast.Program{Unit: "b.mi", Items: []ast.Item{
		fnItem("helper"),
	}}
	res, err := driver.CompileUnits([]*ast.Program{caller, helper}, driver.Options{})
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if res.MIR.Func("helper") == nil {
		t.Fatalf("second unit not linked")
	}
}

func TestLinkHIRRejectsBrokenUnit(t *testing.T) {
	unit := buildUnit(t)
	unit.Funcs[0].Result = types.NoTypeID
	if _, err := driver.LinkHIR([]*hir.Module{unit}, driver.Options{}); err == nil {
		t.Fatalf("invalid unit passed validation")
	}
}

func buildUnit(t *testing.T) *hir.Module {
	t.Helper()
	unit, err := hir.LowerProgram(mainProg(), diag.NopReporter{})
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	return unit
}

func writeUnit(t *testing.T, dir, name string, unit *hir.Module) string {
	t.Helper()
	data, err := hir.ToJSON(unit)
	if err != nil {
		t.Fatalf("marshal unit: %v", err)
	}
	path := filepath.Join(dir, name+driver.UnitExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	return path
}

func TestListUnitFiles(t *testing.T) {
	dir := t.TempDir()
	unit := buildUnit(t)
	b := writeUnit(t, dir, "b", unit)
	a := writeUnit(t, dir, "a", unit)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := driver.ListUnitFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Fatalf("files = %v, want sorted interchange files only", files)
	}
}

func TestCompileDir(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "main", buildUnit(t))

	res, err := driver.CompileDir(context.Background(), dir, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatalf("compile dir: %v", err)
	}
	if res.MIR == nil || res.MIR.Func("main") == nil {
		t.Fatalf("directory compile lost the unit")
	}
}

func TestCompileFilesCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "main", buildUnit(t))
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := driver.Options{Cache: cache}

	cold, err := driver.CompileFiles(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("cold compile: %v", err)
	}
	warm, err := driver.CompileFiles(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("warm compile: %v", err)
	}
	if warm.MIR == nil || warm.MIR.Func("main") == nil {
		t.Fatalf("cached result unusable")
	}
	if len(warm.MIR.Funcs) != len(cold.MIR.Funcs) {
		t.Fatalf("cache changed the module shape")
	}
}

func TestLoadUnitsHonorsCancel(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "main", buildUnit(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, _, err := driver.LoadUnits(ctx, []string{path}, 1); err == nil {
		t.Fatalf("canceled context not observed")
	}
}

func TestLoadUnitsBuildsFileSet(t *testing.T) {
	dir := t.TempDir()
	a := writeUnit(t, dir, "a", buildUnit(t))
	b := writeUnit(t, dir, "b", buildUnit(t))

	_, _, files, err := driver.LoadUnits(context.Background(), []string{a, b}, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if files.Len() != 2 {
		t.Fatalf("registered %d files, want 2", files.Len())
	}
	// Ids are positional: file 0 is the first input.
	if got := files.Get(0).Path; got != filepath.ToSlash(a) {
		t.Fatalf("file 0 is %q, want %q", got, a)
	}
	pos := files.Position(source.Span{File: 0, Start: 0, End: 1})
	if pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("span did not resolve to the file start: %+v", pos)
	}
}

func TestLoadUnitsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken"+driver.UnitExt)
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := driver.LoadUnits(context.Background(), []string{path}, 4); err == nil {
		t.Fatalf("undecodable unit accepted")
	}
}
