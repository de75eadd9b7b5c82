package hir

import (
	"mica/internal/ast"
	"mica/internal/source"
	"mica/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral is an int, float, bool or string literal.
	ExprLiteral ExprKind = iota
	// ExprVarRef is a resolved reference to a local slot.
	ExprVarRef
	// ExprUnary is a unary operator application.
	ExprUnary
	// ExprBinary is a binary operator application. Short-circuit forms
	// stay binary here; MIR lowers them to branches.
	ExprBinary
	// ExprCall is a call to a function or builtin, by name.
	ExprCall
	// ExprField is field access with a resolved field index.
	ExprField
	// ExprIndex is array indexing.
	ExprIndex
	// ExprStructLit is a struct literal with fields in declaration
	// order. MIR decomposes it to per-field assignments.
	ExprStructLit
	// ExprArrayLit is an array literal. MIR decomposes it to
	// per-element assignments.
	ExprArrayLit
	// ExprParen is reserved for the AST grouping wrapper. The builder
	// unwraps grouping during lowering and never emits this kind; the
	// validator flags any occurrence as a lowering leftover.
	ExprParen
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprField:
		return "Field"
	case ExprIndex:
		return "Index"
	case ExprStructLit:
		return "StructLit"
	case ExprArrayLit:
		return "ArrayLit"
	case ExprParen:
		return "Paren"
	default:
		return "Unknown"
	}
}

// Expr is an HIR expression. Type is concrete for every node of a
// completed module.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type types.TypeID
	Data ExprData
}

// ExprData is the interface for expression-specific payloads.
type ExprData interface {
	exprData()
}

// LitKind distinguishes literal payloads.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind   LitKind
	Int    int64
	Float  float64
	Bool   bool
	String string
}

func (LiteralData) exprData() {}

// VarRefData holds data for ExprVarRef. Exactly one of Local/Global
// identifies the declaration: Local for parameters and let bindings,
// Global for module-level bindings (resolved by name).
type VarRefData struct {
	Name   string
	Local  LocalID
	Global bool
}

func (VarRefData) exprData() {}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      ast.UnOp
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    ast.BinOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// CallData holds data for ExprCall. The callee is resolved by name
// against the module function table at use time.
type CallData struct {
	Callee  string
	Args    []*Expr
	Builtin bool
}

func (CallData) exprData() {}

// FieldData holds data for ExprField. Index is the field's position in
// the struct declaration.
type FieldData struct {
	Object *Expr
	Name   string
	Index  int
}

func (FieldData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// StructLitData holds data for ExprStructLit. Values are ordered by the
// struct's field declaration order.
type StructLitData struct {
	Name   string
	Values []*Expr
}

func (StructLitData) exprData() {}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elems []*Expr
}

func (ArrayLitData) exprData() {}

// ParenData is the reserved payload for ExprParen.
type ParenData struct {
	Inner *Expr
}

func (ParenData) exprData() {}
