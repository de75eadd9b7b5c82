package hir

import (
	"encoding/json"
	"fmt"

	"mica/internal/ast"
	"mica/internal/source"
	"mica/internal/types"
)

// The JSON interchange format mirrors the data model field for field.
// Field names are stable within one compiler version; round-trip
// equality (FromJSON(ToJSON(m)) == m) is part of the serializer
// contract and exercised by the test suite.

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

type jsonStruct struct {
	Name   string      `json:"name"`
	Type   uint32      `json:"type"`
	Fields []jsonField `json:"fields"`
	Span   jsonSpan    `json:"span"`
}

type jsonGlobal struct {
	Name  string    `json:"name"`
	Type  uint32    `json:"type"`
	IsMut bool      `json:"is_mut"`
	Value *jsonExpr `json:"value"`
	Span  jsonSpan  `json:"span"`
}

type jsonParam struct {
	Name  string   `json:"name"`
	Type  uint32   `json:"type"`
	Local int32    `json:"local"`
	Span  jsonSpan `json:"span"`
}

type jsonLocal struct {
	Name    string   `json:"name"`
	Type    uint32   `json:"type"`
	IsMut   bool     `json:"is_mut"`
	IsParam bool     `json:"is_param"`
	Span    jsonSpan `json:"span"`
}

type jsonFunc struct {
	Name   string      `json:"name"`
	Params []jsonParam `json:"params"`
	Result uint32      `json:"result"`
	Locals []jsonLocal `json:"locals"`
	Body   []jsonStmt  `json:"body"`
	IsMain bool        `json:"is_main"`
	Span   jsonSpan    `json:"span"`
}

type jsonMatchArm struct {
	Pattern *jsonExpr  `json:"pattern,omitempty"`
	Body    []jsonStmt `json:"body"`
	Span    jsonSpan   `json:"span"`
}

type jsonStmt struct {
	Kind string   `json:"kind"`
	Span jsonSpan `json:"span"`

	Local     *int32         `json:"local,omitempty"`
	Value     *jsonExpr      `json:"value,omitempty"`
	Target    *jsonExpr      `json:"target,omitempty"`
	Expr      *jsonExpr      `json:"expr,omitempty"`
	Cond      *jsonExpr      `json:"cond,omitempty"`
	Then      []jsonStmt     `json:"then,omitempty"`
	Else      []jsonStmt     `json:"else,omitempty"`
	Body      []jsonStmt     `json:"body,omitempty"`
	From      *jsonExpr      `json:"from,omitempty"`
	To        *jsonExpr      `json:"to,omitempty"`
	Scrutinee *jsonExpr      `json:"scrutinee,omitempty"`
	Arms      []jsonMatchArm `json:"arms,omitempty"`
	Stmts     []jsonStmt     `json:"stmts,omitempty"`
}

type jsonExpr struct {
	Kind string   `json:"kind"`
	Type uint32   `json:"type"`
	Span jsonSpan `json:"span"`

	LitKind  *uint8      `json:"lit_kind,omitempty"`
	Int      int64       `json:"int,omitempty"`
	Float    float64     `json:"float,omitempty"`
	Bool     bool        `json:"bool,omitempty"`
	String   string      `json:"string,omitempty"`
	Name     string      `json:"name,omitempty"`
	Local    *int32      `json:"local,omitempty"`
	Global   bool        `json:"global,omitempty"`
	Op       *uint8      `json:"op,omitempty"`
	Operand  *jsonExpr   `json:"operand,omitempty"`
	Left     *jsonExpr   `json:"left,omitempty"`
	Right    *jsonExpr   `json:"right,omitempty"`
	Callee   string      `json:"callee,omitempty"`
	Builtin  bool        `json:"builtin,omitempty"`
	Args     []*jsonExpr `json:"args,omitempty"`
	Object   *jsonExpr   `json:"object,omitempty"`
	Index    *jsonExpr   `json:"index,omitempty"`
	FieldIdx *int        `json:"field_idx,omitempty"`
	Values   []*jsonExpr `json:"values,omitempty"`
	Elems    []*jsonExpr `json:"elems,omitempty"`
	Inner    *jsonExpr   `json:"inner,omitempty"`
}

type jsonModule struct {
	Name    string       `json:"name"`
	Types   []jsonType   `json:"types"`
	Structs []jsonStruct `json:"structs"`
	Globals []jsonGlobal `json:"globals"`
	Funcs   []jsonFunc   `json:"funcs"`
}

// ToJSON serializes a validated module. Output is deterministic: slices
// keep declaration order and the type table keeps intern order.
func ToJSON(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("hir: nil module")
	}
	enc := jsonModule{Name: m.Name}
	for _, t := range m.Types.Export() {
		enc.Types = append(enc.Types, jsonType{Kind: uint8(t.Kind), Name: t.Name, Elem: uint32(t.Elem)})
	}
	for i := range m.Structs {
		s := &m.Structs[i]
		js := jsonStruct{Name: s.Name, Type: uint32(s.Type), Span: encSpan(s.Span)}
		for _, f := range s.Def.Fields {
			js.Fields = append(js.Fields, jsonField{Name: f.Name, Type: uint32(f.Type)})
		}
		enc.Structs = append(enc.Structs, js)
	}
	for i := range m.Globals {
		g := &m.Globals[i]
		enc.Globals = append(enc.Globals, jsonGlobal{
			Name: g.Name, Type: uint32(g.Type), IsMut: g.IsMut,
			Value: encExpr(g.Value), Span: encSpan(g.Span),
		})
	}
	for _, fn := range m.Funcs {
		enc.Funcs = append(enc.Funcs, encFunc(fn))
	}
	return json.MarshalIndent(enc, "", "  ")
}

// FromJSON reconstructs a module. The result is structurally equal to
// the module that produced the bytes.
func FromJSON(data []byte) (*Module, error) {
	var dec jsonModule
	if err := json.Unmarshal(data, &dec); err != nil {
		return nil, fmt.Errorf("hir: decoding module: %w", err)
	}
	table := make([]types.Type, 0, len(dec.Types))
	for _, t := range dec.Types {
		table = append(table, types.Type{Kind: types.Kind(t.Kind), Name: t.Name, Elem: types.TypeID(t.Elem)})
	}
	interner, err := types.Import(table)
	if err != nil {
		return nil, err
	}
	m := &Module{Name: dec.Name, Types: interner}
	for _, s := range dec.Structs {
		def := &types.TypeDef{Name: s.Name}
		for _, f := range s.Fields {
			def.Fields = append(def.Fields, types.Field{Name: f.Name, Type: types.TypeID(f.Type)})
		}
		m.Structs = append(m.Structs, StructDecl{
			Name: s.Name, Type: types.TypeID(s.Type), Def: def, Span: decSpan(s.Span),
		})
	}
	for _, g := range dec.Globals {
		value, err := decExpr(g.Value)
		if err != nil {
			return nil, err
		}
		m.Globals = append(m.Globals, GlobalDecl{
			Name: g.Name, Type: types.TypeID(g.Type), IsMut: g.IsMut,
			Value: value, Span: decSpan(g.Span),
		})
	}
	for i := range dec.Funcs {
		fn, err := decFunc(&dec.Funcs[i])
		if err != nil {
			return nil, err
		}
		m.Funcs = append(m.Funcs, fn)
	}
	return m, nil
}

func encSpan(sp source.Span) jsonSpan {
	return jsonSpan{File: uint32(sp.File), Start: sp.Start, End: sp.End}
}

func decSpan(sp jsonSpan) source.Span {
	return source.Span{File: source.FileID(sp.File), Start: sp.Start, End: sp.End}
}

func encFunc(fn *Func) jsonFunc {
	jf := jsonFunc{
		Name:   fn.Name,
		Result: uint32(fn.Result),
		IsMain: fn.IsMain,
		Span:   encSpan(fn.Span),
	}
	for _, p := range fn.Params {
		jf.Params = append(jf.Params, jsonParam{
			Name: p.Name, Type: uint32(p.Type), Local: int32(p.Local), Span: encSpan(p.Span),
		})
	}
	for i := range fn.Locals {
		lc := &fn.Locals[i]
		jf.Locals = append(jf.Locals, jsonLocal{
			Name: lc.Name, Type: uint32(lc.Type), IsMut: lc.IsMut, IsParam: lc.IsParam, Span: encSpan(lc.Span),
		})
	}
	jf.Body = encStmts(fn.Body)
	return jf
}

func decFunc(jf *jsonFunc) (*Func, error) {
	fn := &Func{
		Name:   jf.Name,
		Result: types.TypeID(jf.Result),
		IsMain: jf.IsMain,
		Span:   decSpan(jf.Span),
	}
	for _, p := range jf.Params {
		fn.Params = append(fn.Params, Param{
			Name: p.Name, Type: types.TypeID(p.Type), Local: LocalID(p.Local), Span: decSpan(p.Span),
		})
	}
	for _, lc := range jf.Locals {
		fn.Locals = append(fn.Locals, LocalDecl{
			Name: lc.Name, Type: types.TypeID(lc.Type), IsMut: lc.IsMut, IsParam: lc.IsParam, Span: decSpan(lc.Span),
		})
	}
	body, err := decStmts(jf.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func encStmts(stmts []Stmt) []jsonStmt {
	if stmts == nil {
		return nil
	}
	out := make([]jsonStmt, 0, len(stmts))
	for i := range stmts {
		out = append(out, encStmt(&stmts[i]))
	}
	return out
}

func encStmt(s *Stmt) jsonStmt {
	js := jsonStmt{Kind: s.Kind.String(), Span: encSpan(s.Span)}
	switch s.Kind {
	case StmtLet:
		data := s.Data.(LetData)
		local := int32(data.Local)
		js.Local = &local
		js.Value = encExpr(data.Value)
	case StmtAssign:
		data := s.Data.(AssignData)
		js.Target = encExpr(data.Target)
		js.Value = encExpr(data.Value)
	case StmtExpr:
		js.Expr = encExpr(s.Data.(ExprStmtData).Expr)
	case StmtReturn:
		js.Value = encExpr(s.Data.(ReturnData).Value)
	case StmtIf:
		data := s.Data.(IfData)
		js.Cond = encExpr(data.Cond)
		js.Then = encStmts(data.Then)
		js.Else = encStmts(data.Else)
	case StmtWhile:
		data := s.Data.(WhileData)
		js.Cond = encExpr(data.Cond)
		js.Body = encStmts(data.Body)
	case StmtFor:
		data := s.Data.(ForData)
		local := int32(data.Local)
		js.Local = &local
		js.From = encExpr(data.From)
		js.To = encExpr(data.To)
		js.Body = encStmts(data.Body)
	case StmtMatch:
		data := s.Data.(MatchData)
		js.Scrutinee = encExpr(data.Scrutinee)
		for i := range data.Arms {
			arm := &data.Arms[i]
			js.Arms = append(js.Arms, jsonMatchArm{
				Pattern: encExpr(arm.Pattern),
				Body:    encStmts(arm.Body),
				Span:    encSpan(arm.Span),
			})
		}
	case StmtBlock:
		js.Stmts = encStmts(s.Data.(BlockData).Stmts)
	}
	return js
}

var stmtKindByName = map[string]StmtKind{
	"Let": StmtLet, "Assign": StmtAssign, "Expr": StmtExpr, "Return": StmtReturn,
	"Break": StmtBreak, "Continue": StmtContinue, "If": StmtIf, "While": StmtWhile,
	"For": StmtFor, "Match": StmtMatch, "Block": StmtBlock,
}

func decStmts(stmts []jsonStmt) ([]Stmt, error) {
	if stmts == nil {
		return nil, nil
	}
	out := make([]Stmt, 0, len(stmts))
	for i := range stmts {
		s, err := decStmt(&stmts[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func decStmt(js *jsonStmt) (*Stmt, error) {
	kind, ok := stmtKindByName[js.Kind]
	if !ok {
		return nil, fmt.Errorf("hir: unknown statement kind %q", js.Kind)
	}
	s := &Stmt{Kind: kind, Span: decSpan(js.Span)}
	var err error
	switch kind {
	case StmtLet:
		data := LetData{Local: NoLocalID}
		if js.Local != nil {
			data.Local = LocalID(*js.Local)
		}
		if data.Value, err = decExpr(js.Value); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtAssign:
		data := AssignData{}
		if data.Target, err = decExpr(js.Target); err != nil {
			return nil, err
		}
		if data.Value, err = decExpr(js.Value); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtExpr:
		data := ExprStmtData{}
		if data.Expr, err = decExpr(js.Expr); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtReturn:
		data := ReturnData{}
		if data.Value, err = decExpr(js.Value); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtBreak:
		s.Data = BreakData{}
	case StmtContinue:
		s.Data = ContinueData{}
	case StmtIf:
		data := IfData{}
		if data.Cond, err = decExpr(js.Cond); err != nil {
			return nil, err
		}
		if data.Then, err = decStmts(js.Then); err != nil {
			return nil, err
		}
		if data.Else, err = decStmts(js.Else); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtWhile:
		data := WhileData{}
		if data.Cond, err = decExpr(js.Cond); err != nil {
			return nil, err
		}
		if data.Body, err = decStmts(js.Body); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtFor:
		data := ForData{Local: NoLocalID}
		if js.Local != nil {
			data.Local = LocalID(*js.Local)
		}
		if data.From, err = decExpr(js.From); err != nil {
			return nil, err
		}
		if data.To, err = decExpr(js.To); err != nil {
			return nil, err
		}
		if data.Body, err = decStmts(js.Body); err != nil {
			return nil, err
		}
		s.Data = data
	case StmtMatch:
		data := MatchData{}
		if data.Scrutinee, err = decExpr(js.Scrutinee); err != nil {
			return nil, err
		}
		for i := range js.Arms {
			ja := &js.Arms[i]
			pattern, perr := decExpr(ja.Pattern)
			if perr != nil {
				return nil, perr
			}
			body, berr := decStmts(ja.Body)
			if berr != nil {
				return nil, berr
			}
			data.Arms = append(data.Arms, MatchArm{Pattern: pattern, Body: body, Span: decSpan(ja.Span)})
		}
		s.Data = data
	case StmtBlock:
		data := BlockData{}
		if data.Stmts, err = decStmts(js.Stmts); err != nil {
			return nil, err
		}
		s.Data = data
	}
	return s, nil
}

func encExpr(e *Expr) *jsonExpr {
	if e == nil {
		return nil
	}
	je := &jsonExpr{Kind: e.Kind.String(), Type: uint32(e.Type), Span: encSpan(e.Span)}
	switch e.Kind {
	case ExprLiteral:
		data := e.Data.(LiteralData)
		lk := uint8(data.Kind)
		je.LitKind = &lk
		je.Int = data.Int
		je.Float = data.Float
		je.Bool = data.Bool
		je.String = data.String
	case ExprVarRef:
		data := e.Data.(VarRefData)
		je.Name = data.Name
		local := int32(data.Local)
		je.Local = &local
		je.Global = data.Global
	case ExprUnary:
		data := e.Data.(UnaryData)
		op := uint8(data.Op)
		je.Op = &op
		je.Operand = encExpr(data.Operand)
	case ExprBinary:
		data := e.Data.(BinaryData)
		op := uint8(data.Op)
		je.Op = &op
		je.Left = encExpr(data.Left)
		je.Right = encExpr(data.Right)
	case ExprCall:
		data := e.Data.(CallData)
		je.Callee = data.Callee
		je.Builtin = data.Builtin
		for _, a := range data.Args {
			je.Args = append(je.Args, encExpr(a))
		}
	case ExprField:
		data := e.Data.(FieldData)
		je.Object = encExpr(data.Object)
		je.Name = data.Name
		idx := data.Index
		je.FieldIdx = &idx
	case ExprIndex:
		data := e.Data.(IndexData)
		je.Object = encExpr(data.Object)
		je.Index = encExpr(data.Index)
	case ExprStructLit:
		data := e.Data.(StructLitData)
		je.Name = data.Name
		for _, v := range data.Values {
			je.Values = append(je.Values, encExpr(v))
		}
	case ExprArrayLit:
		data := e.Data.(ArrayLitData)
		for _, v := range data.Elems {
			je.Elems = append(je.Elems, encExpr(v))
		}
	case ExprParen:
		if data, ok := e.Data.(ParenData); ok {
			je.Inner = encExpr(data.Inner)
		}
	}
	return je
}

var exprKindByName = map[string]ExprKind{
	"Literal": ExprLiteral, "VarRef": ExprVarRef, "Unary": ExprUnary, "Binary": ExprBinary,
	"Call": ExprCall, "Field": ExprField, "Index": ExprIndex, "StructLit": ExprStructLit,
	"ArrayLit": ExprArrayLit, "Paren": ExprParen,
}

func decExpr(je *jsonExpr) (*Expr, error) {
	if je == nil {
		return nil, nil
	}
	kind, ok := exprKindByName[je.Kind]
	if !ok {
		return nil, fmt.Errorf("hir: unknown expression kind %q", je.Kind)
	}
	e := &Expr{Kind: kind, Type: types.TypeID(je.Type), Span: decSpan(je.Span)}
	var err error
	switch kind {
	case ExprLiteral:
		data := LiteralData{Int: je.Int, Float: je.Float, Bool: je.Bool, String: je.String}
		if je.LitKind != nil {
			data.Kind = LitKind(*je.LitKind)
		}
		e.Data = data
	case ExprVarRef:
		data := VarRefData{Name: je.Name, Local: NoLocalID, Global: je.Global}
		if je.Local != nil {
			data.Local = LocalID(*je.Local)
		}
		e.Data = data
	case ExprUnary:
		data := UnaryData{}
		if je.Op != nil {
			data.Op = ast.UnOp(*je.Op)
		}
		if data.Operand, err = decExpr(je.Operand); err != nil {
			return nil, err
		}
		e.Data = data
	case ExprBinary:
		data := BinaryData{}
		if je.Op != nil {
			data.Op = ast.BinOp(*je.Op)
		}
		if data.Left, err = decExpr(je.Left); err != nil {
			return nil, err
		}
		if data.Right, err = decExpr(je.Right); err != nil {
			return nil, err
		}
		e.Data = data
	case ExprCall:
		data := CallData{Callee: je.Callee, Builtin: je.Builtin}
		for _, a := range je.Args {
			arg, aerr := decExpr(a)
			if aerr != nil {
				return nil, aerr
			}
			data.Args = append(data.Args, arg)
		}
		e.Data = data
	case ExprField:
		data := FieldData{Name: je.Name}
		if je.FieldIdx != nil {
			data.Index = *je.FieldIdx
		}
		if data.Object, err = decExpr(je.Object); err != nil {
			return nil, err
		}
		e.Data = data
	case ExprIndex:
		data := IndexData{}
		if data.Object, err = decExpr(je.Object); err != nil {
			return nil, err
		}
		if data.Index, err = decExpr(je.Index); err != nil {
			return nil, err
		}
		e.Data = data
	case ExprStructLit:
		data := StructLitData{Name: je.Name}
		for _, v := range je.Values {
			val, verr := decExpr(v)
			if verr != nil {
				return nil, verr
			}
			data.Values = append(data.Values, val)
		}
		e.Data = data
	case ExprArrayLit:
		data := ArrayLitData{}
		for _, v := range je.Elems {
			val, verr := decExpr(v)
			if verr != nil {
				return nil, verr
			}
			data.Elems = append(data.Elems, val)
		}
		e.Data = data
	case ExprParen:
		data := ParenData{}
		if data.Inner, err = decExpr(je.Inner); err != nil {
			return nil, err
		}
		e.Data = data
	}
	return e, nil
}
