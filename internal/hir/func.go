package hir

import (
	"mica/internal/source"
	"mica/internal/types"
)

// Param is a function parameter. Local is its slot in Func.Locals.
type Param struct {
	Name  string
	Type  types.TypeID
	Local LocalID
	Span  source.Span
}

// LocalDecl is one binding slot: a parameter or a let-declared local.
type LocalDecl struct {
	Name    string
	Type    types.TypeID
	IsMut   bool
	IsParam bool
	Span    source.Span
}

// Func is an HIR function. Parameters occupy Locals[0:len(Params)];
// let bindings follow in declaration order.
type Func struct {
	Name   string
	Params []Param
	Result types.TypeID
	Locals []LocalDecl
	Body   []Stmt
	IsMain bool
	Span   source.Span
}

// Local returns the declaration for id, or nil when out of range.
func (f *Func) Local(id LocalID) *LocalDecl {
	if !id.IsValid() || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}
