package mir

import (
	"fmt"
	"strings"
)

// Edge is one directed control transfer between blocks.
type Edge struct {
	From BlockID
	To   BlockID
	// Label distinguishes the branch: "goto" for unconditional jumps,
	// "then"/"else" for conditionals.
	Label string
}

// FuncCFG is the read-only control-flow summary of one function.
type FuncCFG struct {
	Func        *Func
	Edges       []Edge
	Reachable   []BlockID
	Unreachable []BlockID
	Returns     int
}

// CFGInfo is the module-wide control-flow summary, functions ordered by
// id so output stays deterministic.
type CFGInfo struct {
	Funcs []FuncCFG
}

// AnalyzeCFG computes edges and reachability for every function. The
// module is not modified; a validated module has no unreachable blocks,
// the field exists so the report can show a defective one.
func AnalyzeCFG(m *Module) *CFGInfo {
	info := &CFGInfo{}
	for _, fn := range m.SortedFuncs() {
		info.Funcs = append(info.Funcs, analyzeFunc(fn))
	}
	return info
}

func analyzeFunc(fn *Func) FuncCFG {
	fc := FuncCFG{Func: fn}
	for i := range fn.Blocks {
		b := &fn.Blocks[i]
		switch b.Term.Kind {
		case TermGoto:
			fc.Edges = append(fc.Edges, Edge{From: b.ID, To: b.Term.Goto.Target, Label: "goto"})
		case TermIf:
			fc.Edges = append(fc.Edges, Edge{From: b.ID, To: b.Term.If.Then, Label: "then"})
			fc.Edges = append(fc.Edges, Edge{From: b.ID, To: b.Term.If.Else, Label: "else"})
		case TermReturn:
			fc.Returns++
		}
	}

	seen := make([]bool, len(fn.Blocks))
	if fn.Block(fn.Entry) != nil {
		stack := []BlockID{fn.Entry}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[id] {
				continue
			}
			seen[id] = true
			for _, t := range fn.Blocks[id].Term.Targets() {
				if fn.Block(t) != nil && !seen[t] {
					stack = append(stack, t)
				}
			}
		}
	}
	for i := range fn.Blocks {
		if seen[i] {
			fc.Reachable = append(fc.Reachable, BlockID(i))
		} else {
			fc.Unreachable = append(fc.Unreachable, BlockID(i))
		}
	}
	return fc
}

// Report renders a plain-text control-flow summary of the module.
func Report(m *Module) string {
	var sb strings.Builder
	info := AnalyzeCFG(m)
	fmt.Fprintf(&sb, "module: %d function(s), %d global(s), %d struct type(s)\n",
		len(m.Funcs), len(m.Globals), len(m.Types))
	if m.Entry.IsValid() {
		fmt.Fprintf(&sb, "entry: %s\n", m.Funcs[m.Entry].Name)
	} else {
		sb.WriteString("entry: none\n")
	}
	for i := range info.Funcs {
		fc := &info.Funcs[i]
		fmt.Fprintf(&sb, "\nfn %s: %d block(s), %d edge(s), %d return(s)\n",
			fc.Func.Name, len(fc.Func.Blocks), len(fc.Edges), fc.Returns)
		for _, e := range fc.Edges {
			fmt.Fprintf(&sb, "  bb%d -> bb%d (%s)\n", e.From, e.To, e.Label)
		}
		if len(fc.Unreachable) > 0 {
			ids := make([]string, 0, len(fc.Unreachable))
			for _, id := range fc.Unreachable {
				ids = append(ids, fmt.Sprintf("bb%d", id))
			}
			fmt.Fprintf(&sb, "  unreachable: %s\n", strings.Join(ids, ", "))
		}
	}
	return sb.String()
}

// ToDot renders the module as a Graphviz digraph, one cluster per
// function, edges labeled by branch kind.
func ToDot(m *Module) string {
	var sb strings.Builder
	sb.WriteString("digraph mir {\n")
	sb.WriteString("  node [shape=box fontname=\"monospace\"];\n")
	for _, fn := range m.SortedFuncs() {
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", fn.ID)
		fmt.Fprintf(&sb, "    label=%q;\n", fn.Name)
		for i := range fn.Blocks {
			b := &fn.Blocks[i]
			label := fmt.Sprintf("bb%d", b.ID)
			if b.ID == fn.Entry {
				label += " (entry)"
			}
			if b.Term.Kind == TermReturn {
				label += "\\nreturn"
			}
			fmt.Fprintf(&sb, "    f%db%d [label=%q];\n", fn.ID, b.ID, label)
		}
		sb.WriteString("  }\n")
		for i := range fn.Blocks {
			b := &fn.Blocks[i]
			switch b.Term.Kind {
			case TermGoto:
				fmt.Fprintf(&sb, "  f%db%d -> f%db%d;\n", fn.ID, b.ID, fn.ID, b.Term.Goto.Target)
			case TermIf:
				fmt.Fprintf(&sb, "  f%db%d -> f%db%d [label=\"then\"];\n", fn.ID, b.ID, fn.ID, b.Term.If.Then)
				fmt.Fprintf(&sb, "  f%db%d -> f%db%d [label=\"else\"];\n", fn.ID, b.ID, fn.ID, b.Term.If.Else)
			}
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
