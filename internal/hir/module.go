package hir

import (
	"mica/internal/source"
	"mica/internal/types"
)

// Module is one lowered compilation unit.
type Module struct {
	Name    string
	Funcs   []*Func
	Structs []StructDecl
	Globals []GlobalDecl

	// Types is the interner used by every TypeID in this module.
	Types *types.Interner
}

// StructDecl is a struct declaration carried through to MIR unchanged.
type StructDecl struct {
	Name string
	Type types.TypeID
	Def  *types.TypeDef
	Span source.Span
}

// GlobalDecl is a top-level let binding. Its initializer is restricted
// to a literal so globals need no init function.
type GlobalDecl struct {
	Name  string
	Type  types.TypeID
	IsMut bool
	Value *Expr
	Span  source.Span
}

// Func returns the function named name, or nil. Cross-references between
// functions are by name against this lookup, never by embedded pointer.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Struct returns the struct declaration named name, or nil.
func (m *Module) Struct(name string) *StructDecl {
	for i := range m.Structs {
		if m.Structs[i].Name == name {
			return &m.Structs[i]
		}
	}
	return nil
}
