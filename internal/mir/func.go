package mir

import (
	"mica/internal/source"
	"mica/internal/types"
)

// Func is one lowered function: an indexed block collection, a flat
// locals frame and a designated entry block.
type Func struct {
	ID        FuncID
	Name      string
	IsMain    bool
	NumParams int
	Result    types.TypeID
	Locals    []Local
	Blocks    []Block
	Entry     BlockID
	Span      source.Span
}

// Block returns the block with id, or nil when out of range. Block ids
// index Blocks directly.
func (f *Func) Block(id BlockID) *Block {
	if !id.IsValid() || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// Local returns the slot for id, or nil when out of range.
func (f *Func) Local(id LocalID) *Local {
	if !id.IsValid() || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}
