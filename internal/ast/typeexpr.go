package ast

import (
	"mica/internal/source"
)

// TypeExpr is a syntactic type annotation: a named type or an array of
// an element type.
type TypeExpr struct {
	Name    string    // "i32", "bool", "Point", ... (empty for arrays)
	IsArray bool
	Elem    *TypeExpr // set when IsArray
	Span    source.Span
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "<none>"
	}
	if t.IsArray {
		return "[]" + t.Elem.String()
	}
	return t.Name
}
