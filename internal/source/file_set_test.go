package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"mica/internal/source"
)

func TestAddAndLookup(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("pkg/main.hir.json", []byte("{}"))
	if fs.Len() != 1 {
		t.Fatalf("len = %d, want 1", fs.Len())
	}
	got, ok := fs.Lookup("pkg/main.hir.json")
	if !ok || got != id {
		t.Fatalf("Lookup = (%d, %v), want (%d, true)", got, ok, id)
	}
	// Windows-style paths normalize to slashes.
	fs.Add(`sub\other.hir.json`, nil)
	if _, ok := fs.Lookup("sub/other.hir.json"); !ok {
		t.Fatalf("backslash path not normalized")
	}
}

func TestPosition(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("a.mi", []byte("fn main() {\n    let x = 1;\n}\n"))

	cases := []struct {
		name   string
		offset uint32
		line   uint32
		col    uint32
	}{
		{"start", 0, 1, 1},
		{"mid first line", 3, 1, 4},
		{"second line start", 12, 2, 1},
		{"second line indent", 16, 2, 5},
		{"third line", 27, 3, 1},
	}
	for _, tc := range cases {
		pos := fs.Position(source.Span{File: id, Start: tc.offset, End: tc.offset})
		if pos.Line != tc.line || pos.Column != tc.col {
			t.Fatalf("%s: got %d:%d, want %d:%d", tc.name, pos.Line, pos.Column, tc.line, tc.col)
		}
		if pos.Path != "a.mi" || pos.Offset != tc.offset {
			t.Fatalf("%s: path/offset wrong: %+v", tc.name, pos)
		}
	}
}

func TestPositionNoFile(t *testing.T) {
	fs := source.NewFileSet()
	pos := fs.Position(source.Span{File: source.NoFileID, Start: 10, End: 12})
	if pos != (source.Position{}) {
		t.Fatalf("synthetic span resolved to %+v", pos)
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.hir.json")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q, want BOM stripped and CRLF collapsed", f.Content)
	}
	pos := fs.Position(source.Span{File: id, Start: 2, End: 3})
	if pos.Line != 2 || pos.Column != 1 {
		t.Fatalf("position after normalization = %d:%d, want 2:1", pos.Line, pos.Column)
	}
}

func TestSpanCover(t *testing.T) {
	a := source.Span{File: 0, Start: 4, End: 8}
	b := source.Span{File: 0, Start: 2, End: 6}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Fatalf("cover = %v", got)
	}
	other := source.Span{File: 1, Start: 0, End: 100}
	if a.Cover(other) != a {
		t.Fatalf("cover across files must not merge")
	}
}
