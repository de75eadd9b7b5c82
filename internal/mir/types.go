// Package mir provides the Mid-level Intermediate Representation.
//
// MIR expresses every function as a control-flow graph of basic blocks.
// Structured control flow from HIR (if/while/for/match, short-circuit
// operators) is lowered to explicit terminators; aggregate literals are
// decomposed into per-field and per-element assignments. MIR is the
// hand-off point to backend code generators, which must treat it as
// read-only.
package mir

import (
	"mica/internal/source"
	"mica/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// IsValid reports whether the id refers to a real function.
func (id FuncID) IsValid() bool { return id >= 0 }

// IsValid reports whether the id refers to a real block.
func (id BlockID) IsValid() bool { return id >= 0 }

// IsValid reports whether the id refers to a real local slot.
func (id LocalID) IsValid() bool { return id >= 0 }

// Local is one slot in a function frame. HIR bindings map one-to-one
// onto the leading slots (parameters first); lowering temporaries follow.
type Local struct {
	Name    string
	Type    types.TypeID
	IsMut   bool
	IsParam bool
	IsTemp  bool
	Span    source.Span
}

// Global is a module-level binding with a constant initializer.
type Global struct {
	Name  string
	Type  types.TypeID
	IsMut bool
	Init  ConstValue
	Span  source.Span
}

// ConstKind distinguishes constant payloads.
type ConstKind uint8

const (
	ConstUnit ConstKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstString
)

// ConstValue is an immediate operand value.
type ConstValue struct {
	Kind   ConstKind
	Int    int64
	Float  float64
	Bool   bool
	String string
}

// PlaceKind distinguishes place roots.
type PlaceKind uint8

const (
	PlaceLocal PlaceKind = iota
	PlaceGlobal
)

// PlaceProjKind enumerates place projections.
type PlaceProjKind uint8

const (
	// PlaceProjField selects a struct field by declaration index.
	PlaceProjField PlaceProjKind = iota
	// PlaceProjIndex selects an array element; the index value is
	// materialized into a local before use so places stay non-recursive.
	PlaceProjIndex
)

// PlaceProj is one projection step.
type PlaceProj struct {
	Kind       PlaceProjKind
	FieldName  string
	FieldIdx   int
	IndexLocal LocalID
}

// Place is an assignable location: a local or global root plus a chain
// of projections.
type Place struct {
	Kind   PlaceKind
	Local  LocalID
	Global string
	Proj   []PlaceProj
}

// OperandKind distinguishes operand sources.
type OperandKind uint8

const (
	// OperandConst is an immediate value.
	OperandConst OperandKind = iota
	// OperandCopy reads a place.
	OperandCopy
)

// Operand is a value usable by instructions and terminators.
type Operand struct {
	Kind  OperandKind
	Const ConstValue
	Place Place
	Type  types.TypeID
}
