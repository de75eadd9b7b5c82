package source

// FileID identifies a file within a FileSet.
type FileID uint32

// NoFileID marks a span with no backing file (synthetic nodes).
const NoFileID FileID = ^FileID(0)

// File is one loaded source or interchange file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offset of each line start, LineIdx[0] == 0
	Hash    [32]byte
}

// Position is a resolved human-readable location: 1-based line and
// column plus the raw byte offset.
type Position struct {
	Path   string
	Line   uint32
	Column uint32
	Offset uint32
}
