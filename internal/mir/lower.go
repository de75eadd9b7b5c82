package mir

import (
	"fmt"

	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/types"
)

// LowerModules links one or more validated HIR units into a single MIR
// module. Units are processed in the given order; within a unit,
// declaration order is preserved, so the output is deterministic.
//
// User-level control-flow errors (break outside a loop, duplicate entry
// points) surface here; unreachable code is reported as a non-fatal
// warning through reporter.
func LowerModules(units []*hir.Module, reporter diag.Reporter) (*Module, error) {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	l := &moduleLowerer{
		out: &Module{
			Funcs:        make(map[FuncID]*Func),
			FuncByName:   make(map[string]FuncID),
			Types:        make(map[string]*types.TypeDef),
			Entry:        NoFuncID,
			TypeInterner: types.NewInterner(),
		},
		reporter: reporter,
		globals:  make(map[string]int),
	}

	for _, unit := range units {
		if unit == nil {
			continue
		}
		if err := l.mergeStructs(unit); err != nil {
			return nil, err
		}
		if err := l.mergeGlobals(unit); err != nil {
			return nil, err
		}
	}
	for _, unit := range units {
		if unit == nil {
			continue
		}
		if err := l.lowerUnit(unit); err != nil {
			return nil, err
		}
	}
	return l.out, nil
}

// LowerModule is the single-unit convenience form.
func LowerModule(unit *hir.Module, reporter diag.Reporter) (*Module, error) {
	return LowerModules([]*hir.Module{unit}, reporter)
}

type moduleLowerer struct {
	out      *Module
	reporter diag.Reporter
	globals  map[string]int // name -> index into out.Globals
	nextID   FuncID
}

// mapType re-interns a unit-local TypeID into the module interner.
// TypeIDs from different units are not comparable; remapping keeps the
// MIR module self-contained.
func (l *moduleLowerer) mapType(src *types.Interner, id types.TypeID) types.TypeID {
	t, ok := src.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	switch t.Kind {
	case types.KindArray:
		return l.out.TypeInterner.Array(l.mapType(src, t.Elem))
	case types.KindStruct:
		return l.out.TypeInterner.Struct(t.Name)
	default:
		return l.out.TypeInterner.Intern(types.Type{Kind: t.Kind})
	}
}

func (l *moduleLowerer) mergeStructs(unit *hir.Module) error {
	for i := range unit.Structs {
		s := &unit.Structs[i]
		if _, exists := l.out.Types[s.Name]; exists {
			return diag.ReportError(l.reporter, diag.NameDuplicate, s.Span,
				fmt.Sprintf("struct %q defined in more than one unit", s.Name))
		}
		def := &types.TypeDef{Name: s.Name}
		for _, f := range s.Def.Fields {
			def.Fields = append(def.Fields, types.Field{
				Name: f.Name,
				Type: l.mapType(unit.Types, f.Type),
			})
		}
		l.out.Types[s.Name] = def
	}
	return nil
}

func (l *moduleLowerer) mergeGlobals(unit *hir.Module) error {
	for i := range unit.Globals {
		g := &unit.Globals[i]
		if _, exists := l.globals[g.Name]; exists {
			return diag.ReportError(l.reporter, diag.NameDuplicate, g.Span,
				fmt.Sprintf("global %q defined in more than one unit", g.Name))
		}
		init, err := constFromLiteral(g.Value)
		if err != nil {
			return diag.ReportError(l.reporter, diag.GlobalNotConst, g.Span,
				fmt.Sprintf("global %q: %v", g.Name, err))
		}
		l.globals[g.Name] = len(l.out.Globals)
		l.out.Globals = append(l.out.Globals, Global{
			Name:  g.Name,
			Type:  l.mapType(unit.Types, g.Type),
			IsMut: g.IsMut,
			Init:  init,
			Span:  g.Span,
		})
	}
	return nil
}

// constFromLiteral converts an HIR literal initializer to a ConstValue.
func constFromLiteral(e *hir.Expr) (ConstValue, error) {
	if e == nil || e.Kind != hir.ExprLiteral {
		return ConstValue{}, fmt.Errorf("initializer is not a literal")
	}
	lit := e.Data.(hir.LiteralData)
	switch lit.Kind {
	case hir.LitInt:
		return ConstValue{Kind: ConstInt, Int: lit.Int}, nil
	case hir.LitFloat:
		return ConstValue{Kind: ConstFloat, Float: lit.Float}, nil
	case hir.LitBool:
		return ConstValue{Kind: ConstBool, Bool: lit.Bool}, nil
	case hir.LitString:
		return ConstValue{Kind: ConstString, String: lit.String}, nil
	default:
		return ConstValue{}, fmt.Errorf("unsupported literal kind")
	}
}

func (l *moduleLowerer) lowerUnit(unit *hir.Module) error {
	for _, hfn := range unit.Funcs {
		// Entry-point uniqueness is checked before general name
		// collision so two mains report the dedicated error.
		if hfn.IsMain && l.out.Entry.IsValid() {
			return diag.ReportError(l.reporter, diag.CtrlDuplicateEntryPoint, hfn.Span,
				"more than one zero-argument function named main")
		}
		if _, exists := l.out.FuncByName[hfn.Name]; exists {
			return diag.ReportError(l.reporter, diag.NameDuplicate, hfn.Span,
				fmt.Sprintf("function %q defined in more than one unit", hfn.Name))
		}
		id := l.nextID
		l.nextID++
		fn, err := l.lowerFunc(id, unit, hfn)
		if err != nil {
			return err
		}
		l.out.Funcs[id] = fn
		l.out.FuncByName[fn.Name] = id
		if fn.IsMain {
			l.out.Entry = id
		}
	}
	return nil
}

func (l *moduleLowerer) lowerFunc(id FuncID, unit *hir.Module, hfn *hir.Func) (*Func, error) {
	fn := &Func{
		ID:        id,
		Name:      hfn.Name,
		IsMain:    hfn.IsMain,
		NumParams: len(hfn.Params),
		Result:    l.mapType(unit.Types, hfn.Result),
		Entry:     NoBlockID,
		Span:      hfn.Span,
	}
	// One slot per HIR binding, parameters first; HIR LocalIDs map
	// one-to-one onto the leading MIR slots.
	for i := range hfn.Locals {
		src := &hfn.Locals[i]
		fn.Locals = append(fn.Locals, Local{
			Name:    src.Name,
			Type:    l.mapType(unit.Types, src.Type),
			IsMut:   src.IsMut,
			IsParam: src.IsParam,
			Span:    src.Span,
		})
	}

	fl := &funcLowerer{l: l, unit: unit, fn: fn, cur: NoBlockID}
	fn.Entry = fl.newBlock()
	fl.startBlock(fn.Entry)
	if err := fl.lowerStmts(hfn.Body); err != nil {
		return nil, err
	}
	if !fl.curBlock().Terminated() && fn.Result == l.out.TypeInterner.Builtins().Unit {
		fl.setTerm(Terminator{Kind: TermReturn})
	}
	fl.prune()
	return fn, nil
}
