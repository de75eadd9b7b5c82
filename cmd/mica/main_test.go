package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mica/internal/ast"
	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/source"
)

func writeMainUnit(t *testing.T, dir, name string) string {
	t.Helper()
	prog := &ast.Program{Unit: name, Items: []ast.Item{{
		Kind: ast.ItemFunc,
		Data: ast.FuncData{Name: "main", Body: []ast.Stmt{{
			Kind: ast.StmtExpr,
			Data: ast.ExprStmtData{Expr: &ast.Expr{
				Kind: ast.ExprCall,
				Data: ast.CallData{Callee: "print_int", Args: []*ast.Expr{{
					Kind: ast.ExprIntLit, Data: ast.IntLitData{Value: 7},
				}}},
			}},
		}}},
	}}}
	unit, err := hir.LowerProgram(prog, diag.NopReporter{})
	if err != nil {
		t.Fatalf("lower unit: %v", err)
	}
	data, err := hir.ToJSON(unit)
	if err != nil {
		t.Fatalf("marshal unit: %v", err)
	}
	path := filepath.Join(dir, name+".hir.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	return path
}

// A manifest entry narrows a directory argument to the entry unit. The
// second unit here also defines main, so linking both would fail with a
// duplicate entry point.
func TestCheckHonorsManifestEntry(t *testing.T) {
	dir := t.TempDir()
	writeMainUnit(t, dir, "main")
	writeMainUnit(t, dir, "extra")
	manifest := "[package]\nname = \"demo\"\nentry = \"main.hir.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, "mica.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"check", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "ok: 1 unit(s)") {
		t.Fatalf("entry unit not selected, output: %q", out.String())
	}
}

func TestCheckWithoutManifestLinksEverything(t *testing.T) {
	dir := t.TempDir()
	writeMainUnit(t, dir, "main")
	writeMainUnit(t, dir, "extra")

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"check", dir})
	if err := root.Execute(); err == nil {
		t.Fatalf("two entry points linked without error")
	}
}

func TestProjectForWalksUp(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mica.toml"), []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	nested := filepath.Join(dir, "units")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := writeMainUnit(t, nested, "main")

	m := projectFor(path)
	if m == nil || m.Package.Name != "demo" {
		t.Fatalf("manifest not found from unit path, got %+v", m)
	}
}

func TestSpanLabel(t *testing.T) {
	files := source.NewFileSet()
	files.Add("u.hir.json", []byte("ab\ncd\n"))

	if got := spanLabel(files, source.Span{File: 0, Start: 3, End: 4}); got != "u.hir.json:2:1" {
		t.Fatalf("resolved label = %q", got)
	}
	if got := spanLabel(nil, source.Span{File: 0, Start: 3, End: 4}); got != "0:3-4" {
		t.Fatalf("fallback label = %q", got)
	}
	if got := spanLabel(files, source.Span{File: 9, Start: 1, End: 2}); got != "9:1-2" {
		t.Fatalf("unknown file label = %q", got)
	}
}
