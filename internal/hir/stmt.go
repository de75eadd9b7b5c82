package hir

import (
	"mica/internal/source"
)

// StmtKind enumerates HIR statement kinds.
type StmtKind uint8

const (
	// StmtLet binds an initializer to a local slot.
	StmtLet StmtKind = iota
	// StmtAssign stores into a place expression.
	StmtAssign
	// StmtExpr evaluates an expression for its effects.
	StmtExpr
	// StmtReturn exits the function.
	StmtReturn
	// StmtBreak exits the innermost loop.
	StmtBreak
	// StmtContinue restarts the innermost loop.
	StmtContinue
	// StmtIf is structured if/else; MIR lowers it to branches.
	StmtIf
	// StmtWhile is a structured while loop.
	StmtWhile
	// StmtFor is a counter loop over lo..hi. Preserved as-is;
	// desugaring to a while happens in MIR.
	StmtFor
	// StmtMatch is a structured match over literal patterns.
	StmtMatch
	// StmtBlock is a nested scope.
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

// Stmt is an HIR statement.
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
	Local LocalID
	Value *Expr
}

func (LetData) stmtData() {}

// AssignData holds data for StmtAssign. Target is a place expression:
// VarRef, Field or Index.
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
	Else []Stmt // nil when absent
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond *Expr
	Body []Stmt
}

func (WhileData) stmtData() {}

// ForData holds data for StmtFor. Local is the typed counter binding.
type ForData struct {
	Local LocalID
	From  *Expr
	To    *Expr
	Body  []Stmt
}

func (ForData) stmtData() {}

// MatchArm is one arm. Pattern is a typed literal; nil is the wildcard.
type MatchArm struct {
	Pattern *Expr
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
