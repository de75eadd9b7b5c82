package ast

import (
	"mica/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprIntLit is an integer literal.
	ExprIntLit ExprKind = iota
	// ExprFloatLit is a floating-point literal.
	ExprFloatLit
	// ExprBoolLit is true/false.
	ExprBoolLit
	// ExprStringLit is a string literal.
	ExprStringLit
	// ExprIdent is an identifier reference.
	ExprIdent
	// ExprUnary is a unary operator application.
	ExprUnary
	// ExprBinary is a binary operator application, including the
	// short-circuit forms && and ||.
	ExprBinary
	// ExprCall is a function call.
	ExprCall
	// ExprField is field access (expr.field).
	ExprField
	// ExprIndex is indexing (expr[index]).
	ExprIndex
	// ExprStructLit is a struct literal (Name { field: value, ... }).
	ExprStructLit
	// ExprArrayLit is an array literal ([a, b, c]).
	ExprArrayLit
	// ExprParen is a grouping wrapper kept by the parser for
	// precedence. It carries no semantics and must not survive HIR
	// lowering.
	ExprParen
)

func (k ExprKind) String() string {
	switch k {
	case ExprIntLit:
		return "IntLit"
	case ExprFloatLit:
		return "FloatLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprStringLit:
		return "StringLit"
	case ExprIdent:
		return "Ident"
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

// Expr is one expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the interface for expression-specific payloads.
type ExprData interface {
	exprData()
}

// IntLitData holds data for ExprIntLit.
type IntLitData struct {
	Value int64
	// Suffix is an optional width annotation ("i32", "i64").
	Suffix string
}

func (IntLitData) exprData() {}

// FloatLitData holds data for ExprFloatLit.
type FloatLitData struct {
	Value float64
}

func (FloatLitData) exprData() {}

// BoolLitData holds data for ExprBoolLit.
type BoolLitData struct {
	Value bool
}

func (BoolLitData) exprData() {}

// StringLitData holds data for ExprStringLit.
type StringLitData struct {
	Value string
}

func (StringLitData) exprData() {}

// IdentData holds data for ExprIdent.
type IdentData struct {
	Name string
}

func (IdentData) exprData() {}

// UnOp enumerates unary operators.
type UnOp uint8

const (
	// UnNeg is arithmetic negation.
	UnNeg UnOp = iota
	// UnNot is boolean negation.
	UnNot
)

func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	default:
		return "?"
	}
}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnOp
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	// BinAnd and BinOr short-circuit; the MIR builder lowers them to
	// conditional branches.
	BinAnd
	BinOr
)

func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	case BinAnd:
		return "&&"
	case BinOr:
		return "||"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator yields bool from two
// operands of one type.
func (op BinOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

// IsShortCircuit reports whether the operator has lazy evaluation.
func (op BinOp) IsShortCircuit() bool {
	return op == BinAnd || op == BinOr
}

// IsArithmetic reports whether the operator requires numeric operands.
func (op BinOp) IsArithmetic() bool {
	return op <= BinMod
}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// CallData holds data for ExprCall. Callee is a plain identifier; the
// language has no first-class functions.
type CallData struct {
	Callee string
	Args   []*Expr
}

func (CallData) exprData() {}

// FieldData holds data for ExprField.
type FieldData struct {
	Object *Expr
	Name   string
}

func (FieldData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// FieldInit is one field initializer in a struct literal.
type FieldInit struct {
	Name  string
	Value *Expr
	Span  source.Span
}

// StructLitData holds data for ExprStructLit.
type StructLitData struct {
	Name   string
	Fields []FieldInit
}

func (StructLitData) exprData() {}

// ArrayLitData holds data for ExprArrayLit.
type ArrayLitData struct {
	Elems []*Expr
}

func (ArrayLitData) exprData() {}

// ParenData holds data for ExprParen.
type ParenData struct {
	Inner *Expr
}

func (ParenData) exprData() {}
