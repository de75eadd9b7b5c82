package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every module uses.
type Builtins struct {
	Invalid TypeID
	Unknown TypeID
	Unit    TypeID
	Bool    TypeID
	I32     TypeID
	I64     TypeID
	F64     TypeID
	String  TypeID
}

// Interner hands out stable TypeIDs by structural descriptor. It is
// scoped to one compilation; independent compilations each build their
// own, which keeps concurrent invocations isolated.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
}

type typeKey struct {
	Kind Kind
	Name string
	Elem TypeID
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 16),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unknown = in.Intern(Type{Kind: KindUnknown})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.I32 = in.Intern(Type{Kind: KindI32})
	in.builtins.I64 = in.Intern(Type{Kind: KindI64})
	in.builtins.F64 = in.Intern(Type{Kind: KindF64})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns the primitive TypeIDs.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey{Kind: t.Kind, Name: t.Name, Elem: t.Elem}
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey{Kind: t.Kind, Name: t.Name, Elem: t.Elem}] = id
	return id
}

// Struct interns the named struct type.
func (in *Interner) Struct(name string) TypeID {
	return in.Intern(Type{Kind: KindStruct, Name: name})
}

// Array interns the array-of-elem type.
func (in *Interner) Array(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem})
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// String renders a TypeID for diagnostics and dumps.
func (in *Interner) String(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindStruct:
		return t.Name
	case KindArray:
		return "[]" + in.String(t.Elem)
	default:
		return t.Kind.String()
	}
}

// Len returns the number of interned types.
func (in *Interner) Len() int {
	return len(in.types)
}

// Export returns the intern table in creation order. Re-interning the
// exported descriptors into a fresh interner in the same order yields
// identical TypeIDs, which is what the serializers rely on.
func (in *Interner) Export() []Type {
	out := make([]Type, len(in.types))
	copy(out, in.types)
	return out
}

// Import rebuilds an interner from an exported table. It fails when the
// table does not replay to identical ids, which indicates a corrupted or
// incompatible serialized module.
func Import(table []Type) (*Interner, error) {
	in := NewInterner()
	for i, t := range table {
		if t.Kind == KindInvalid {
			if i != 0 {
				return nil, fmt.Errorf("types: invalid descriptor at position %d", i)
			}
			continue
		}
		id := in.Intern(t)
		if int(id) != i {
			return nil, fmt.Errorf("types: table replay mismatch at position %d (got id %d)", i, id)
		}
	}
	return in, nil
}
