package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpModule writes a human-readable rendering of the module. The
// output is deterministic and used by tests to compare lowering runs.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	p := &printer{w: w, m: m}
	for _, name := range m.SortedTypeNames() {
		def := m.Types[name]
		fields := make([]string, 0, len(def.Fields))
		for _, f := range def.Fields {
			fields = append(fields, f.Name+": "+m.TypeInterner.String(f.Type))
		}
		p.printf("struct %s { %s }\n", name, strings.Join(fields, ", "))
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		mut := ""
		if g.IsMut {
			mut = "mut "
		}
		p.printf("global %s%s: %s = %s\n", mut, g.Name, m.TypeInterner.String(g.Type), constString(g.Init))
	}
	for _, fn := range m.SortedFuncs() {
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
	main := ""
	if fn.IsMain {
		main = " [main]"
	}
	p.printf("fn %s(%d) -> %s%s\n", fn.Name, fn.NumParams, p.m.TypeInterner.String(fn.Result), main)
	for i := range fn.Locals {
		lc := &fn.Locals[i]
		flags := ""
		if lc.IsMut {
			flags += " mut"
		}
		if lc.IsParam {
			flags += " param"
		}
		if lc.IsTemp {
			flags += " temp"
		}
		p.printf("  local %%%d %s: %s%s\n", i, lc.Name, p.m.TypeInterner.String(lc.Type), flags)
	}
	for i := range fn.Blocks {
		b := &fn.Blocks[i]
		entry := ""
		if b.ID == fn.Entry {
			entry = " (entry)"
		}
		p.printf("bb%d:%s\n", b.ID, entry)
		for j := range b.Instrs {
			p.printf("  %s\n", p.instr(&b.Instrs[j]))
		}
		p.printf("  %s\n", p.term(&b.Term))
	}
}

func (p *printer) instr(instr *Instr) string {
	switch instr.Kind {
	case InstrAssign:
		return fmt.Sprintf("%s = %s", p.place(&instr.Assign.Dst), p.rvalue(&instr.Assign.Src))
	case InstrCall:
		args := make([]string, 0, len(instr.Call.Args))
		for i := range instr.Call.Args {
			args = append(args, p.operand(&instr.Call.Args[i]))
		}
		call := fmt.Sprintf("call %s(%s)", instr.Call.Callee, strings.Join(args, ", "))
		if instr.Call.HasDst {
			return fmt.Sprintf("%s = %s", p.place(&instr.Call.Dst), call)
		}
		return call
	}
	return "<instr>"
}

func (p *printer) rvalue(rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return p.operand(&rv.Use)
	case RValueUnary:
		return fmt.Sprintf("%s %s", rv.Unary.Op, p.operand(&rv.Unary.Operand))
	case RValueBinary:
		return fmt.Sprintf("%s %s %s", p.operand(&rv.Binary.Left), rv.Binary.Op, p.operand(&rv.Binary.Right))
	case RValueAggregate:
		elems := make([]string, 0, len(rv.Aggregate.Elems))
		for i := range rv.Aggregate.Elems {
			elems = append(elems, p.operand(&rv.Aggregate.Elems[i]))
		}
		return fmt.Sprintf("aggregate %s{%s}", rv.Aggregate.TypeName, strings.Join(elems, ", "))
	}
	return "<rvalue>"
}

func (p *printer) term(t *Terminator) string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s then bb%d else bb%d", p.operand(&t.If.Cond), t.If.Then, t.If.Else)
	case TermReturn:
		if t.Return.HasValue {
			return "return " + p.operand(&t.Return.Value)
		}
		return "return"
	}
	return "<term>"
}

func (p *printer) operand(op *Operand) string {
	switch op.Kind {
	case OperandConst:
		return constString(op.Const)
	case OperandCopy:
		return p.place(&op.Place)
	}
	return "<operand>"
}

func (p *printer) place(pl *Place) string {
	var sb strings.Builder
	switch pl.Kind {
	case PlaceLocal:
		fmt.Fprintf(&sb, "%%%d", pl.Local)
	case PlaceGlobal:
		sb.WriteString("@" + pl.Global)
	}
	for _, proj := range pl.Proj {
		switch proj.Kind {
		case PlaceProjField:
			sb.WriteString("." + proj.FieldName)
		case PlaceProjIndex:
			fmt.Fprintf(&sb, "[%%%d]", proj.IndexLocal)
		}
	}
	return sb.String()
}

func constString(c ConstValue) string {
	switch c.Kind {
	case ConstUnit:
		return "unit"
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstString:
		return strconv.Quote(c.String)
	}
	return "<const>"
}
