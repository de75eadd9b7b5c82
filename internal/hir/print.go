package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes a human-readable rendering of the module. The output is
// deterministic and used by tests to compare lowering runs.
func Dump(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	p := &printer{w: w, m: m}
	fmt.Fprintf(w, "module %s\n", m.Name)
	for i := range m.Structs {
		s := &m.Structs[i]
		fields := make([]string, 0, len(s.Def.Fields))
		for _, f := range s.Def.Fields {
			fields = append(fields, f.Name+": "+m.Types.String(f.Type))
		}
		fmt.Fprintf(w, "struct %s { %s }\n", s.Name, strings.Join(fields, ", "))
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		mut := ""
		if g.IsMut {
			mut = "mut "
		}
		fmt.Fprintf(w, "global %s%s: %s = %s\n", mut, g.Name, m.Types.String(g.Type), p.expr(g.Value))
	}
	for _, fn := range m.Funcs {
		p.fn = fn
		p.dumpFunc(fn)
		p.fn = nil
	}
	return p.err
}

type printer struct {
	w   io.Writer
	m   *Module
	fn  *Func
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) dumpFunc(fn *Func) {
	params := make([]string, 0, len(fn.Params))
	for _, pr := range fn.Params {
		params = append(params, fmt.Sprintf("%s: %s", pr.Name, p.m.Types.String(pr.Type)))
	}
	main := ""
	if fn.IsMain {
		main = " [main]"
	}
	p.printf("fn %s(%s) -> %s%s\n", fn.Name, strings.Join(params, ", "), p.m.Types.String(fn.Result), main)
	for i := range fn.Locals {
		lc := &fn.Locals[i]
		flags := ""
		if lc.IsMut {
			flags += " mut"
		}
		if lc.IsParam {
			flags += " param"
		}
		p.printf("  local %%%d %s: %s%s\n", i, lc.Name, p.m.Types.String(lc.Type), flags)
	}
	p.stmts(fn.Body, 1)
}

func (p *printer) stmts(stmts []Stmt, depth int) {
	for i := range stmts {
		p.stmt(&stmts[i], depth)
	}
}

func (p *printer) stmt(s *Stmt, depth int) {
	pad := strings.Repeat("  ", depth)
	switch s.Kind {
	case StmtLet:
		data := s.Data.(LetData)
		p.printf("%slet %%%d = %s\n", pad, data.Local, p.expr(data.Value))
	case StmtAssign:
		data := s.Data.(AssignData)
		p.printf("%s%s = %s\n", pad, p.expr(data.Target), p.expr(data.Value))
	case StmtExpr:
		p.printf("%s%s\n", pad, p.expr(s.Data.(ExprStmtData).Expr))
	case StmtReturn:
		data := s.Data.(ReturnData)
		if data.Value == nil {
			p.printf("%sreturn\n", pad)
		} else {
			p.printf("%sreturn %s\n", pad, p.expr(data.Value))
		}
	case StmtBreak:
		p.printf("%sbreak\n", pad)
	case StmtContinue:
		p.printf("%scontinue\n", pad)
	case StmtIf:
		data := s.Data.(IfData)
		p.printf("%sif %s\n", pad, p.expr(data.Cond))
		p.stmts(data.Then, depth+1)
		if data.Else != nil {
			p.printf("%selse\n", pad)
			p.stmts(data.Else, depth+1)
		}
	case StmtWhile:
		data := s.Data.(WhileData)
		p.printf("%swhile %s\n", pad, p.expr(data.Cond))
		p.stmts(data.Body, depth+1)
	case StmtFor:
		data := s.Data.(ForData)
		p.printf("%sfor %%%d in %s..%s\n", pad, data.Local, p.expr(data.From), p.expr(data.To))
		p.stmts(data.Body, depth+1)
	case StmtMatch:
		data := s.Data.(MatchData)
		p.printf("%smatch %s\n", pad, p.expr(data.Scrutinee))
		for i := range data.Arms {
			arm := &data.Arms[i]
			if arm.Pattern == nil {
				p.printf("%s  _ =>\n", pad)
			} else {
				p.printf("%s  %s =>\n", pad, p.expr(arm.Pattern))
			}
			p.stmts(arm.Body, depth+2)
		}
	case StmtBlock:
		p.printf("%sblock\n", pad)
		p.stmts(s.Data.(BlockData).Stmts, depth+1)
	}
}

func (p *printer) expr(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprLiteral:
		data := e.Data.(LiteralData)
		switch data.Kind {
		case LitInt:
			return fmt.Sprintf("%d:%s", data.Int, p.m.Types.String(e.Type))
		case LitFloat:
			return strconv.FormatFloat(data.Float, 'g', -1, 64)
		case LitBool:
			return strconv.FormatBool(data.Bool)
		case LitString:
			return strconv.Quote(data.String)
		}
		return "<lit>"
	case ExprVarRef:
		data := e.Data.(VarRefData)
		if data.Global {
			return "@" + data.Name
		}
		return fmt.Sprintf("%%%d", data.Local)
	case ExprUnary:
		data := e.Data.(UnaryData)
		return fmt.Sprintf("(%s %s)", data.Op, p.expr(data.Operand))
	case ExprBinary:
		data := e.Data.(BinaryData)
		return fmt.Sprintf("(%s %s %s)", p.expr(data.Left), data.Op, p.expr(data.Right))
	case ExprCall:
		data := e.Data.(CallData)
		args := make([]string, 0, len(data.Args))
		for _, a := range data.Args {
			args = append(args, p.expr(a))
		}
		return fmt.Sprintf("%s(%s)", data.Callee, strings.Join(args, ", "))
	case ExprField:
		data := e.Data.(FieldData)
		return fmt.Sprintf("%s.%s", p.expr(data.Object), data.Name)
	case ExprIndex:
		data := e.Data.(IndexData)
		return fmt.Sprintf("%s[%s]", p.expr(data.Object), p.expr(data.Index))
	case ExprStructLit:
		data := e.Data.(StructLitData)
		vals := make([]string, 0, len(data.Values))
		for _, v := range data.Values {
			vals = append(vals, p.expr(v))
		}
		return fmt.Sprintf("%s{%s}", data.Name, strings.Join(vals, ", "))
	case ExprArrayLit:
		data := e.Data.(ArrayLitData)
		vals := make([]string, 0, len(data.Elems))
		for _, v := range data.Elems {
			vals = append(vals, p.expr(v))
		}
		return fmt.Sprintf("[%s]", strings.Join(vals, ", "))
	case ExprParen:
		return "(paren)"
	}
	return "<expr>"
}
