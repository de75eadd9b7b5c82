package hir

import (
	"fmt"
	"strings"

	"mica/internal/diag"
	"mica/internal/source"
	"mica/internal/types"
)

// Violation is one structural invariant breach. It always indicates a
// defect in the builder that produced the module, never a user error.
type Violation struct {
	Code      diag.Code
	Invariant string
	Node      string
	Span      source.Span
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s [%s] %s at %s", v.Code.ID(), v.Invariant, v.Node, v.Span)
}

// ValidationError aggregates every violation found in one pass.
type ValidationError struct {
	Violations []*Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return "internal compiler error: " + strings.Join(msgs, "; ")
}

// Has reports whether any violation carries code.
func (e *ValidationError) Has(code diag.Code) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Validate checks the resolved-names and known-types invariants over a
// completed module. All violations are accumulated before returning.
func Validate(m *Module) error {
	v := &hirValidator{module: m}
	v.run(false)
	return v.result()
}

// ValidateInvariants is the stricter pass run before handing the module
// to the MIR builder: Validate plus the no-lowering-artifacts check.
func ValidateInvariants(m *Module) error {
	v := &hirValidator{module: m}
	v.run(true)
	return v.result()
}

type hirValidator struct {
	module     *Module
	fn         *Func
	violations []*Violation
}

func (v *hirValidator) add(code diag.Code, invariant, node string, sp source.Span) {
	v.violations = append(v.violations, &Violation{
		Code:      code,
		Invariant: invariant,
		Node:      node,
		Span:      sp,
	})
}

func (v *hirValidator) result() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

func (v *hirValidator) run(strict bool) {
	if v.module == nil {
		return
	}
	for i := range v.module.Globals {
		g := &v.module.Globals[i]
		v.checkType(g.Type, fmt.Sprintf("global %q", g.Name), g.Span)
		if g.Value != nil {
			v.walkExpr(g.Value, strict)
		}
	}
	for _, fn := range v.module.Funcs {
		v.fn = fn
		v.checkType(fn.Result, fmt.Sprintf("result of %q", fn.Name), fn.Span)
		for j := range fn.Locals {
			lc := &fn.Locals[j]
			v.checkType(lc.Type, fmt.Sprintf("local %q in %q", lc.Name, fn.Name), lc.Span)
		}
		v.walkStmts(fn.Body, strict)
		v.fn = nil
	}
}

func (v *hirValidator) checkType(id types.TypeID, node string, sp source.Span) {
	if !id.IsValid() {
		v.add(diag.IceHirUnknownType, "all-types-known", node+" has no type", sp)
		return
	}
	t, ok := v.module.Types.Lookup(id)
	if !ok || t.Kind == types.KindInvalid {
		v.add(diag.IceHirUnknownType, "all-types-known", node+" has an invalid type id", sp)
		return
	}
	if t.Kind == types.KindUnknown {
		v.add(diag.IceHirUnknownType, "all-types-known", node+" kept the placeholder type", sp)
	}
}

func (v *hirValidator) walkStmts(stmts []Stmt, strict bool) {
	for i := range stmts {
		v.walkStmt(&stmts[i], strict)
	}
}

func (v *hirValidator) walkStmt(s *Stmt, strict bool) {
	switch s.Kind {
	case StmtLet:
		data := s.Data.(LetData)
		if !data.Local.IsValid() || (v.fn != nil && v.fn.Local(data.Local) == nil) {
			v.add(diag.IceHirUnresolvedName, "all-names-resolved", "let binds no local slot", s.Span)
		}
		v.walkExpr(data.Value, strict)
	case StmtAssign:
		data := s.Data.(AssignData)
		v.walkExpr(data.Target, strict)
		v.walkExpr(data.Value, strict)
	case StmtExpr:
		v.walkExpr(s.Data.(ExprStmtData).Expr, strict)
	case StmtReturn:
		if value := s.Data.(ReturnData).Value; value != nil {
			v.walkExpr(value, strict)
		}
	case StmtIf:
		data := s.Data.(IfData)
		v.walkExpr(data.Cond, strict)
		v.walkStmts(data.Then, strict)
		v.walkStmts(data.Else, strict)
	case StmtWhile:
		data := s.Data.(WhileData)
		v.walkExpr(data.Cond, strict)
		v.walkStmts(data.Body, strict)
	case StmtFor:
		data := s.Data.(ForData)
		if !data.Local.IsValid() || (v.fn != nil && v.fn.Local(data.Local) == nil) {
			v.add(diag.IceHirUnresolvedName, "all-names-resolved", "for counter binds no local slot", s.Span)
		}
		v.walkExpr(data.From, strict)
		v.walkExpr(data.To, strict)
		v.walkStmts(data.Body, strict)
	case StmtMatch:
		data := s.Data.(MatchData)
		v.walkExpr(data.Scrutinee, strict)
		for i := range data.Arms {
			if data.Arms[i].Pattern != nil {
				v.walkExpr(data.Arms[i].Pattern, strict)
			}
			v.walkStmts(data.Arms[i].Body, strict)
		}
	case StmtBlock:
		v.walkStmts(s.Data.(BlockData).Stmts, strict)
	}
}

func (v *hirValidator) walkExpr(e *Expr, strict bool) {
	if e == nil {
		return
	}
	v.checkType(e.Type, e.Kind.String()+" expression", e.Span)

	switch e.Kind {
	case ExprVarRef:
		data := e.Data.(VarRefData)
		if data.Global {
			if _, ok := v.lookupGlobal(data.Name); !ok {
				v.add(diag.IceHirUnresolvedName, "all-names-resolved",
					fmt.Sprintf("reference %q resolves to no global", data.Name), e.Span)
			}
		} else if !data.Local.IsValid() || (v.fn != nil && v.fn.Local(data.Local) == nil) {
			v.add(diag.IceHirUnresolvedName, "all-names-resolved",
				fmt.Sprintf("reference %q resolves to no declaration", data.Name), e.Span)
		}
	case ExprUnary:
		v.walkExpr(e.Data.(UnaryData).Operand, strict)
	case ExprBinary:
		data := e.Data.(BinaryData)
		v.walkExpr(data.Left, strict)
		v.walkExpr(data.Right, strict)
	case ExprCall:
		data := e.Data.(CallData)
		for _, a := range data.Args {
			v.walkExpr(a, strict)
		}
	case ExprField:
		v.walkExpr(e.Data.(FieldData).Object, strict)
	case ExprIndex:
		data := e.Data.(IndexData)
		v.walkExpr(data.Object, strict)
		v.walkExpr(data.Index, strict)
	case ExprStructLit:
		for _, val := range e.Data.(StructLitData).Values {
			v.walkExpr(val, strict)
		}
	case ExprArrayLit:
		for _, el := range e.Data.(ArrayLitData).Elems {
			v.walkExpr(el, strict)
		}
	case ExprParen:
		if strict {
			v.add(diag.IceHirLoweringLeftover, "no-lowering-artifacts",
				"grouping parens survived lowering", e.Span)
		}
		if data, ok := e.Data.(ParenData); ok {
			v.walkExpr(data.Inner, strict)
		}
	}
}

func (v *hirValidator) lookupGlobal(name string) (*GlobalDecl, bool) {
	for i := range v.module.Globals {
		if v.module.Globals[i].Name == name {
			return &v.module.Globals[i], true
		}
	}
	return nil, false
}
