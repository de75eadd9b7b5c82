package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// FileSet manages a collection of files and resolves spans to positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file from normalized bytes, computes the line index and
// content hash, and returns a fresh FileID.
func (fs *FileSet) Add(path string, content []byte) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a UTF-8 BOM and normalizes CRLF,
// then calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the caller
	if err != nil {
		return NoFileID, err
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return fs.Add(path, content), nil
}

// Get returns the file for id, or nil if id is out of range.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the id registered for path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// normalizePath makes separators uniform regardless of the platform the
// interchange file was produced on.
func normalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Len returns the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Position resolves the start of a span to a path, 1-based line/column
// and byte offset. Spans with no backing file resolve to a zero Position.
func (fs *FileSet) Position(sp Span) Position {
	f := fs.Get(sp.File)
	if f == nil {
		return Position{}
	}
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > sp.Start
	})
	// line is now the 1-based line number; LineIdx[line-1] is the line start.
	col := sp.Start - f.LineIdx[line-1] + 1
	lineU, err := safecast.Conv[uint32](line)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return Position{
		Path:   f.Path,
		Line:   lineU,
		Column: col,
		Offset: sp.Start,
	}
}

func buildLineIndex(content []byte) []uint32 {
	idx := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("file too large: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}
