package mir

import (
	"mica/internal/ast"
)

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrAssign stores an rvalue into a place.
	InstrAssign InstrKind = iota
	// InstrCall invokes a function or builtin by name.
	InstrCall
)

// Instr is one straight-line instruction.
type Instr struct {
	Kind InstrKind

	Assign AssignInstr
	Call   CallInstr
}

// AssignInstr stores Src into Dst.
type AssignInstr struct {
	Dst Place
	Src RValue
}

// CallInstr calls Callee. The callee resolves by name against the
// module function table; builtins resolve in the runtime.
type CallInstr struct {
	HasDst  bool
	Dst     Place
	Callee  string
	Builtin bool
	Args    []Operand
}

// RValueKind enumerates rvalue kinds.
type RValueKind uint8

const (
	// RValueUse forwards an operand unchanged.
	RValueUse RValueKind = iota
	// RValueUnary applies a unary operator.
	RValueUnary
	// RValueBinary applies a binary operator. Short-circuit operators
	// never reach MIR as rvalues; they lower to branches.
	RValueBinary
	// RValueAggregate constructs a whole struct or array as one opaque
	// value. The builder never emits it: aggregate literals decompose
	// into per-field assignments. It exists so the validator can detect
	// a builder that failed to decompose.
	RValueAggregate
)

// RValue is the right-hand side of an assignment.
type RValue struct {
	Kind RValueKind

	Use       Operand
	Unary     UnaryRValue
	Binary    BinaryRValue
	Aggregate AggregateRValue
}

// UnaryRValue applies Op to Operand.
type UnaryRValue struct {
	Op      ast.UnOp
	Operand Operand
}

// BinaryRValue applies Op to Left and Right.
type BinaryRValue struct {
	Op    ast.BinOp
	Left  Operand
	Right Operand
}

// AggregateRValue is the opaque aggregate construction. See
// RValueAggregate for why no builder path produces it.
type AggregateRValue struct {
	TypeName string
	Elems    []Operand
}
