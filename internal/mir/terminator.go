package mir

// TermKind enumerates terminator kinds.
type TermKind uint8

const (
	// TermNone marks an unterminated block. It must not survive
	// lowering; the validator flags it.
	TermNone TermKind = iota
	// TermGoto is an unconditional jump.
	TermGoto
	// TermIf branches on a bool operand.
	TermIf
	// TermReturn leaves the function.
	TermReturn
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Terminator is the single control transfer ending a basic block.
type Terminator struct {
	Kind TermKind

	Goto   GotoTerm
	If     IfTerm
	Return ReturnTerm
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// Targets returns the successor block ids of the terminator.
func (t *Terminator) Targets() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermIf:
		return []BlockID{t.If.Then, t.If.Else}
	default:
		return nil
	}
}
