package mir

// Block is a straight-line instruction sequence ending in exactly one
// terminator.
type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator
}

// Terminated reports whether the block already has its terminator.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
