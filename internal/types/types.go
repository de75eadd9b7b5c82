// Package types provides the interned type model shared by HIR and MIR.
//
// Every type is identified by a TypeID handed out by an Interner. IDs are
// stable within one compilation and serialize by structural description,
// so two compilations of the same input produce identical IDs.
package types

// TypeID identifies an interned type. Zero is the invalid sentinel.
type TypeID uint32

// NoTypeID marks an absent or invalid type.
const NoTypeID TypeID = 0

// IsValid returns true for a real interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates type constructors.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindUnknown is the inference placeholder. It must never survive a
	// completed HIR module; the HIR validator flags any occurrence.
	KindUnknown
	KindUnit
	KindBool
	KindI32
	KindI64
	KindF64
	KindString
	KindStruct
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Type is the structural descriptor behind a TypeID.
type Type struct {
	Kind Kind
	Name string // struct name for KindStruct
	Elem TypeID // element type for KindArray
}

// Field is one struct field.
type Field struct {
	Name string
	Type TypeID
}

// TypeDef is a named struct layout. Created once during HIR struct
// processing, carried unchanged into MIR, immutable thereafter.
type TypeDef struct {
	Name   string
	Fields []Field
}

// FieldIndex returns the position of a field by name, or -1.
func (d *TypeDef) FieldIndex(name string) int {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether k supports arithmetic operators.
func (k Kind) IsNumeric() bool {
	return k == KindI32 || k == KindI64 || k == KindF64
}

// IsInteger reports whether k is a fixed-width integer.
func (k Kind) IsInteger() bool {
	return k == KindI32 || k == KindI64
}
