package ast

import (
	"mica/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtLet is a variable declaration (let / let mut).
	StmtLet StmtKind = iota
	// StmtAssign is an assignment to an lvalue.
	StmtAssign
	// StmtExpr is an expression statement.
	StmtExpr
	// StmtReturn is a return statement.
	StmtReturn
	// StmtBreak is a break statement.
	StmtBreak
	// StmtContinue is a continue statement.
	StmtContinue
	// StmtIf is an if/else statement.
	StmtIf
	// StmtWhile is a while loop.
	StmtWhile
	// StmtFor is a counter loop over a half-open range lo..hi.
	StmtFor
	// StmtMatch is a match statement over literal patterns.
	StmtMatch
	// StmtBlock is a nested block.
	StmtBlock
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtExpr:
		return "Expr"
	case StmtReturn:
		return "Return"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtMatch:
		return "Match"
	case StmtBlock:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stmt is one statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the interface for statement-specific payloads.
type StmtData interface {
	stmtData()
}

// LetData holds data for StmtLet.
type LetData struct {
	Name  string
	Type  *TypeExpr // nil means inferred
	Value *Expr
	IsMut bool
}

func (LetData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target *Expr
	Value  *Expr
}

func (AssignData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value *Expr // nil for bare return
}

func (ReturnData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct{}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (ContinueData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond *Expr
	Then []Stmt
	Else []Stmt // nil when there is no else branch
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body []Stmt
}

func (WhileData) stmtData() {}

// ForData holds data for StmtFor: for Var in From..To { Body }.
type ForData struct {
	Var  string
	From *Expr
	To   *Expr
	Body []Stmt
}

func (ForData) stmtData() {}

// MatchArm is one arm of a match statement. A nil Pattern is the
// wildcard arm.
type MatchArm struct {
	Pattern *Expr // literal pattern, nil for `_`
	Body    []Stmt
	Span    source.Span
}

// MatchData holds data for StmtMatch.
type MatchData struct {
	Scrutinee *Expr
	Arms      []MatchArm
}

func (MatchData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Stmts []Stmt
}

func (BlockData) stmtData() {}
