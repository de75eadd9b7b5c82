package ast

import (
	"mica/internal/source"
)

// Program is one compilation unit: an ordered list of top-level items.
type Program struct {
	Unit  string // unit name, usually the source path
	Items []Item
}

// ItemKind enumerates top-level item kinds.
type ItemKind uint8

const (
	// ItemFunc is a function declaration.
	ItemFunc ItemKind = iota
	// ItemStruct is a struct type declaration.
	ItemStruct
	// ItemGlobal is a top-level let binding.
	ItemGlobal
)

func (k ItemKind) String() string {
	switch k {
	case ItemFunc:
		return "Func"
	case ItemStruct:
		return "Struct"
	case ItemGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}

// Item is a top-level declaration.
type Item struct {
	Kind ItemKind
	Span source.Span
	Data ItemData
}

// ItemData is the interface for item-specific payloads.
type ItemData interface {
	itemData()
}

// Param is one function parameter.
type Param struct {
	Name string
	Type *TypeExpr
	Span source.Span
}

// FuncData holds data for ItemFunc.
type FuncData struct {
	Name   string
	Params []Param
	Result *TypeExpr // nil means unit
	Body   []Stmt
}

func (FuncData) itemData() {}

// FieldDecl is one struct field declaration.
type FieldDecl struct {
	Name string
	Type *TypeExpr
	Span source.Span
}

// StructData holds data for ItemStruct.
type StructData struct {
	Name   string
	Fields []FieldDecl
}

func (StructData) itemData() {}

// GlobalData holds data for ItemGlobal.
type GlobalData struct {
	Name  string
	Type  *TypeExpr // nil means inferred
	Value *Expr
	IsMut bool
}

func (GlobalData) itemData() {}
