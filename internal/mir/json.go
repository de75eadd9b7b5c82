package mir

import (
	"encoding/json"
	"fmt"

	"mica/internal/ast"
	"mica/internal/source"
	"mica/internal/types"
)

// The JSON interchange format mirrors the data model field for field.
// Functions serialize in id order and struct types in name order, so
// equal modules produce byte-equal output; round-trip equality
// (FromJSON(ToJSON(m)) == m) is part of the serializer contract.

type jsonSpan struct {
	File  uint32 `json:"file"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type jsonType struct {
	Kind uint8  `json:"kind"`
	Name string `json:"name,omitempty"`
	Elem uint32 `json:"elem,omitempty"`
}

type jsonField struct {
	Name string `json:"name"`
	Type uint32 `json:"type"`
}

type jsonStructDef struct {
	Name   string      `json:"name"`
	Fields []jsonField `json:"fields"`
}

type jsonConst struct {
	Kind   uint8   `json:"kind"`
	Int    int64   `json:"int,omitempty"`
	Float  float64 `json:"float,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	String string  `json:"string,omitempty"`
}

type jsonGlobal struct {
	Name  string    `json:"name"`
	Type  uint32    `json:"type"`
	IsMut bool      `json:"is_mut"`
	Init  jsonConst `json:"init"`
	Span  jsonSpan  `json:"span"`
}

type jsonLocal struct {
	Name    string   `json:"name"`
	Type    uint32   `json:"type"`
	IsMut   bool     `json:"is_mut"`
	IsParam bool     `json:"is_param"`
	IsTemp  bool     `json:"is_temp"`
	Span    jsonSpan `json:"span"`
}

type jsonProj struct {
	Kind       string `json:"kind"`
	FieldName  string `json:"field_name,omitempty"`
	FieldIdx   int    `json:"field_idx,omitempty"`
	IndexLocal int32  `json:"index_local,omitempty"`
}

type jsonPlace struct {
	Kind   string     `json:"kind"`
	Local  int32      `json:"local,omitempty"`
	Global string     `json:"global,omitempty"`
	Proj   []jsonProj `json:"proj,omitempty"`
}

type jsonOperand struct {
	Kind  string     `json:"kind"`
	Const *jsonConst `json:"const,omitempty"`
	Place *jsonPlace `json:"place,omitempty"`
	Type  uint32     `json:"type"`
}

type jsonRValue struct {
	Kind     string        `json:"kind"`
	Use      *jsonOperand  `json:"use,omitempty"`
	Op       *uint8        `json:"op,omitempty"`
	Operand  *jsonOperand  `json:"operand,omitempty"`
	Left     *jsonOperand  `json:"left,omitempty"`
	Right    *jsonOperand  `json:"right,omitempty"`
	TypeName string        `json:"type_name,omitempty"`
	Elems    []jsonOperand `json:"elems,omitempty"`
}

type jsonInstr struct {
	Kind    string        `json:"kind"`
	Dst     *jsonPlace    `json:"dst,omitempty"`
	Src     *jsonRValue   `json:"src,omitempty"`
	Callee  string        `json:"callee,omitempty"`
	Builtin bool          `json:"builtin,omitempty"`
	Args    []jsonOperand `json:"args,omitempty"`
}

type jsonTerm struct {
	Kind   string       `json:"kind"`
	Target *int32       `json:"target,omitempty"`
	Cond   *jsonOperand `json:"cond,omitempty"`
	Then   *int32       `json:"then,omitempty"`
	Else   *int32       `json:"else,omitempty"`
	Value  *jsonOperand `json:"value,omitempty"`
}

type jsonBlock struct {
	ID     int32       `json:"id"`
	Instrs []jsonInstr `json:"instrs"`
	Term   jsonTerm    `json:"term"`
}

type jsonFunc struct {
	ID        int32       `json:"id"`
	Name      string      `json:"name"`
	IsMain    bool        `json:"is_main"`
	NumParams int         `json:"num_params"`
	Result    uint32      `json:"result"`
	Locals    []jsonLocal `json:"locals"`
	Blocks    []jsonBlock `json:"blocks"`
	Entry     int32       `json:"entry"`
	Span      jsonSpan    `json:"span"`
}

type jsonModule struct {
	Types   []jsonType      `json:"types"`
	Structs []jsonStructDef `json:"structs"`
	Globals []jsonGlobal    `json:"globals"`
	Funcs   []jsonFunc      `json:"funcs"`
	Entry   int32           `json:"entry"`
}

// ToJSON serializes a validated module.
func ToJSON(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("mir: nil module")
	}
	enc := jsonModule{Entry: int32(m.Entry)}
	for _, t := range m.TypeInterner.Export() {
		enc.Types = append(enc.Types, jsonType{Kind: uint8(t.Kind), Name: t.Name, Elem: uint32(t.Elem)})
	}
	for _, name := range m.SortedTypeNames() {
		def := m.Types[name]
		js := jsonStructDef{Name: name}
		for _, f := range def.Fields {
			js.Fields = append(js.Fields, jsonField{Name: f.Name, Type: uint32(f.Type)})
		}
		enc.Structs = append(enc.Structs, js)
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		enc.Globals = append(enc.Globals, jsonGlobal{
			Name: g.Name, Type: uint32(g.Type), IsMut: g.IsMut,
			Init: encConst(g.Init), Span: encSpan(g.Span),
		})
	}
	for _, fn := range m.SortedFuncs() {
		enc.Funcs = append(enc.Funcs, encFunc(fn))
	}
	return json.MarshalIndent(enc, "", "  ")
}

// FromJSON reconstructs a module. The result is structurally equal to
// the module that produced the bytes.
func FromJSON(data []byte) (*Module, error) {
	var dec jsonModule
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, fmt.Errorf("mir: decoding module: %w", err)
	}
	table := make([]types.Type, 0, len(dec.Types))
	for _, t := range dec.Types {
		table = append(table, types.Type{Kind: types.Kind(t.Kind), Name: t.Name, Elem: types.TypeID(t.Elem)})
	}
	interner, err := types.Import(table)
	if err != nil {
		return nil, err
	}
	m := &Module{
		Funcs:        make(map[FuncID]*Func, len(dec.Funcs)),
		FuncByName:   make(map[string]FuncID, len(dec.Funcs)),
		Types:        make(map[string]*types.TypeDef, len(dec.Structs)),
		Entry:        FuncID(dec.Entry),
		TypeInterner: interner,
	}
	for _, s := range dec.Structs {
		def := &types.TypeDef{Name: s.Name}
		for _, f := range s.Fields {
			def.Fields = append(def.Fields, types.Field{Name: f.Name, Type: types.TypeID(f.Type)})
		}
		m.Types[s.Name] = def
	}
	for _, g := range dec.Globals {
		m.Globals = append(m.Globals, Global{
			Name: g.Name, Type: types.TypeID(g.Type), IsMut: g.IsMut,
			Init: decConst(g.Init), Span: decSpan(g.Span),
		})
	}
	for i := range dec.Funcs {
		fn, ferr := decFunc(&dec.Funcs[i])
		if ferr != nil {
			return nil, ferr
		}
		m.Funcs[fn.ID] = fn
		m.FuncByName[fn.Name] = fn.ID
	}
	return m, nil
}

func encSpan(sp source.Span) jsonSpan {
	return jsonSpan{File: uint32(sp.File), Start: sp.Start, End: sp.End}
}

func decSpan(sp jsonSpan) source.Span {
	return source.Span{File: source.FileID(sp.File), Start: sp.Start, End: sp.End}
}

func encConst(c ConstValue) jsonConst {
	return jsonConst{Kind: uint8(c.Kind), Int: c.Int, Float: c.Float, Bool: c.Bool, String: c.String}
}

func decConst(c jsonConst) ConstValue {
	return ConstValue{Kind: ConstKind(c.Kind), Int: c.Int, Float: c.Float, Bool: c.Bool, String: c.String}
}

func encFunc(fn *Func) jsonFunc {
	jf := jsonFunc{
		ID:        int32(fn.ID),
		Name:      fn.Name,
		IsMain:    fn.IsMain,
		NumParams: fn.NumParams,
		Result:    uint32(fn.Result),
		Entry:     int32(fn.Entry),
		Span:      encSpan(fn.Span),
	}
	for i := range fn.Locals {
		lc := &fn.Locals[i]
		jf.Locals = append(jf.Locals, jsonLocal{
			Name: lc.Name, Type: uint32(lc.Type), IsMut: lc.IsMut,
			IsParam: lc.IsParam, IsTemp: lc.IsTemp, Span: encSpan(lc.Span),
		})
	}
	for i := range fn.Blocks {
		b := &fn.Blocks[i]
		jb := jsonBlock{ID: int32(b.ID), Term: encTerm(&b.Term)}
		for j := range b.Instrs {
			jb.Instrs = append(jb.Instrs, encInstr(&b.Instrs[j]))
		}
		jf.Blocks = append(jf.Blocks, jb)
	}
	return jf
}

func decFunc(jf *jsonFunc) (*Func, error) {
	fn := &Func{
		ID:        FuncID(jf.ID),
		Name:      jf.Name,
		IsMain:    jf.IsMain,
		NumParams: jf.NumParams,
		Result:    types.TypeID(jf.Result),
		Entry:     BlockID(jf.Entry),
		Span:      decSpan(jf.Span),
	}
	for _, lc := range jf.Locals {
		fn.Locals = append(fn.Locals, Local{
			Name: lc.Name, Type: types.TypeID(lc.Type), IsMut: lc.IsMut,
			IsParam: lc.IsParam, IsTemp: lc.IsTemp, Span: decSpan(lc.Span),
		})
	}
	for i := range jf.Blocks {
		jb := &jf.Blocks[i]
		b := Block{ID: BlockID(jb.ID)}
		for j := range jb.Instrs {
			instr, err := decInstr(&jb.Instrs[j])
			if err != nil {
				return nil, err
			}
			b.Instrs = append(b.Instrs, instr)
		}
		term, err := decTerm(&jb.Term)
		if err != nil {
			return nil, err
		}
		b.Term = term
		fn.Blocks = append(fn.Blocks, b)
	}
	return fn, nil
}

func encInstr(instr *Instr) jsonInstr {
	switch instr.Kind {
	case InstrAssign:
		dst := encPlace(&instr.Assign.Dst)
		src := encRValue(&instr.Assign.Src)
		return jsonInstr{Kind: "Assign", Dst: &dst, Src: &src}
	case InstrCall:
		ji := jsonInstr{Kind: "Call", Callee: instr.Call.Callee, Builtin: instr.Call.Builtin}
		if instr.Call.HasDst {
			dst := encPlace(&instr.Call.Dst)
			ji.Dst = &dst
		}
		for i := range instr.Call.Args {
			ji.Args = append(ji.Args, encOperand(&instr.Call.Args[i]))
		}
		return ji
	}
	return jsonInstr{Kind: "Assign"}
}

func decInstr(ji *jsonInstr) (Instr, error) {
	switch ji.Kind {
	case "Assign":
		if ji.Dst == nil || ji.Src == nil {
			return Instr{}, fmt.Errorf("mir: assign instruction missing dst or src")
		}
		src, err := decRValue(ji.Src)
		if err != nil {
			return Instr{}, err
		}
		return Instr{Kind: InstrAssign, Assign: AssignInstr{Dst: decPlace(ji.Dst), Src: src}}, nil
	case "Call":
		ci := CallInstr{Callee: ji.Callee, Builtin: ji.Builtin}
		if ji.Dst != nil {
			ci.HasDst = true
			ci.Dst = decPlace(ji.Dst)
		}
		for i := range ji.Args {
			op, err := decOperand(&ji.Args[i])
			if err != nil {
				return Instr{}, err
			}
			ci.Args = append(ci.Args, op)
		}
		return Instr{Kind: InstrCall, Call: ci}, nil
	}
	return Instr{}, fmt.Errorf("mir: unknown instruction kind %q", ji.Kind)
}

func encRValue(rv *RValue) jsonRValue {
	switch rv.Kind {
	case RValueUse:
		use := encOperand(&rv.Use)
		return jsonRValue{Kind: "Use", Use: &use}
	case RValueUnary:
		op := uint8(rv.Unary.Op)
		operand := encOperand(&rv.Unary.Operand)
		return jsonRValue{Kind: "Unary", Op: &op, Operand: &operand}
	case RValueBinary:
		op := uint8(rv.Binary.Op)
		left := encOperand(&rv.Binary.Left)
		right := encOperand(&rv.Binary.Right)
		return jsonRValue{Kind: "Binary", Op: &op, Left: &left, Right: &right}
	case RValueAggregate:
		jr := jsonRValue{Kind: "Aggregate", TypeName: rv.Aggregate.TypeName}
		for i := range rv.Aggregate.Elems {
			jr.Elems = append(jr.Elems, encOperand(&rv.Aggregate.Elems[i]))
		}
		return jr
	}
	return jsonRValue{Kind: "Use"}
}

func decRValue(jr *jsonRValue) (RValue, error) {
	switch jr.Kind {
	case "Use":
		if jr.Use == nil {
			return RValue{}, fmt.Errorf("mir: use rvalue missing operand")
		}
		use, err := decOperand(jr.Use)
		if err != nil {
			return RValue{}, err
		}
		return RValue{Kind: RValueUse, Use: use}, nil
	case "Unary":
		if jr.Op == nil || jr.Operand == nil {
			return RValue{}, fmt.Errorf("mir: unary rvalue missing op or operand")
		}
		operand, err := decOperand(jr.Operand)
		if err != nil {
			return RValue{}, err
		}
		return RValue{Kind: RValueUnary, Unary: UnaryRValue{Op: ast.UnOp(*jr.Op), Operand: operand}}, nil
	case "Binary":
		if jr.Op == nil || jr.Left == nil || jr.Right == nil {
			return RValue{}, fmt.Errorf("mir: binary rvalue missing op or operands")
		}
		left, err := decOperand(jr.Left)
		if err != nil {
			return RValue{}, err
		}
		right, err := decOperand(jr.Right)
		if err != nil {
			return RValue{}, err
		}
		return RValue{Kind: RValueBinary, Binary: BinaryRValue{Op: ast.BinOp(*jr.Op), Left: left, Right: right}}, nil
	case "Aggregate":
		agg := AggregateRValue{TypeName: jr.TypeName}
		for i := range jr.Elems {
			op, err := decOperand(&jr.Elems[i])
			if err != nil {
				return RValue{}, err
			}
			agg.Elems = append(agg.Elems, op)
		}
		return RValue{Kind: RValueAggregate, Aggregate: agg}, nil
	}
	return RValue{}, fmt.Errorf("mir: unknown rvalue kind %q", jr.Kind)
}

func encTerm(t *Terminator) jsonTerm {
	switch t.Kind {
	case TermGoto:
		target := int32(t.Goto.Target)
		return jsonTerm{Kind: "Goto", Target: &target}
	case TermIf:
		cond := encOperand(&t.If.Cond)
		then := int32(t.If.Then)
		els := int32(t.If.Else)
		return jsonTerm{Kind: "If", Cond: &cond, Then: &then, Else: &els}
	case TermReturn:
		jt := jsonTerm{Kind: "Return"}
		if t.Return.HasValue {
			value := encOperand(&t.Return.Value)
			jt.Value = &value
		}
		return jt
	}
	return jsonTerm{Kind: "None"}
}

func decTerm(jt *jsonTerm) (Terminator, error) {
	switch jt.Kind {
	case "None":
		return Terminator{Kind: TermNone}, nil
	case "Goto":
		if jt.Target == nil {
			return Terminator{}, fmt.Errorf("mir: goto terminator missing target")
		}
		return Terminator{Kind: TermGoto, Goto: GotoTerm{Target: BlockID(*jt.Target)}}, nil
	case "If":
		if jt.Cond == nil || jt.Then == nil || jt.Else == nil {
			return Terminator{}, fmt.Errorf("mir: if terminator missing cond or targets")
		}
		cond, err := decOperand(jt.Cond)
		if err != nil {
			return Terminator{}, err
		}
		return Terminator{Kind: TermIf, If: IfTerm{
			Cond: cond, Then: BlockID(*jt.Then), Else: BlockID(*jt.Else),
		}}, nil
	case "Return":
		term := Terminator{Kind: TermReturn}
		if jt.Value != nil {
			value, err := decOperand(jt.Value)
			if err != nil {
				return Terminator{}, err
			}
			term.Return = ReturnTerm{HasValue: true, Value: value}
		}
		return term, nil
	}
	return Terminator{}, fmt.Errorf("mir: unknown terminator kind %q", jt.Kind)
}

func encOperand(op *Operand) jsonOperand {
	switch op.Kind {
	case OperandConst:
		c := encConst(op.Const)
		return jsonOperand{Kind: "Const", Const: &c, Type: uint32(op.Type)}
	case OperandCopy:
		p := encPlace(&op.Place)
		return jsonOperand{Kind: "Copy", Place: &p, Type: uint32(op.Type)}
	}
	return jsonOperand{Kind: "Const", Type: uint32(op.Type)}
}

func decOperand(jo *jsonOperand) (Operand, error) {
	switch jo.Kind {
	case "Const":
		op := Operand{Kind: OperandConst, Type: types.TypeID(jo.Type)}
		if jo.Const != nil {
			op.Const = decConst(*jo.Const)
		}
		return op, nil
	case "Copy":
		if jo.Place == nil {
			return Operand{}, fmt.Errorf("mir: copy operand missing place")
		}
		return Operand{Kind: OperandCopy, Place: decPlace(jo.Place), Type: types.TypeID(jo.Type)}, nil
	}
	return Operand{}, fmt.Errorf("mir: unknown operand kind %q", jo.Kind)
}

func encPlace(p *Place) jsonPlace {
	jp := jsonPlace{}
	switch p.Kind {
	case PlaceLocal:
		jp.Kind = "Local"
		jp.Local = int32(p.Local)
	case PlaceGlobal:
		jp.Kind = "Global"
		jp.Global = p.Global
	}
	for _, proj := range p.Proj {
		switch proj.Kind {
		case PlaceProjField:
			jp.Proj = append(jp.Proj, jsonProj{Kind: "Field", FieldName: proj.FieldName, FieldIdx: proj.FieldIdx})
		case PlaceProjIndex:
			jp.Proj = append(jp.Proj, jsonProj{Kind: "Index", IndexLocal: int32(proj.IndexLocal)})
		}
	}
	return jp
}

func decPlace(jp *jsonPlace) Place {
	p := Place{}
	switch jp.Kind {
	case "Global":
		p.Kind = PlaceGlobal
		p.Global = jp.Global
	default:
		p.Kind = PlaceLocal
		p.Local = LocalID(jp.Local)
	}
	for _, proj := range jp.Proj {
		if proj.Kind == "Index" {
			p.Proj = append(p.Proj, PlaceProj{Kind: PlaceProjIndex, IndexLocal: LocalID(proj.IndexLocal)})
		} else {
			p.Proj = append(p.Proj, PlaceProj{Kind: PlaceProjField, FieldName: proj.FieldName, FieldIdx: proj.FieldIdx})
		}
	}
	return p
}
