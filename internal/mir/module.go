package mir

import (
	"sort"

	"mica/internal/types"
)

// Module is one lowered program: every function from every linked unit,
// the struct layouts they reference, module globals and the optional
// entry point.
type Module struct {
	Funcs      map[FuncID]*Func
	FuncByName map[string]FuncID
	Types      map[string]*types.TypeDef
	Globals    []Global

	// Entry is the designated main function, NoFuncID for library-style
	// programs with no main.
	Entry FuncID

	// TypeInterner owns every TypeID in the module. It is rebuilt during
	// lowering so ids are unit-independent.
	TypeInterner *types.Interner
}

// Func resolves a function by name.
func (m *Module) Func(name string) *Func {
	id, ok := m.FuncByName[name]
	if !ok {
		return nil
	}
	return m.Funcs[id]
}

// SortedFuncs returns functions ordered by id for deterministic
// iteration; map order is never observable in output.
func (m *Module) SortedFuncs() []*Func {
	out := make([]*Func, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedTypeNames returns struct names in lexical order.
func (m *Module) SortedTypeNames() []string {
	out := make([]string, 0, len(m.Types))
	for name := range m.Types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
