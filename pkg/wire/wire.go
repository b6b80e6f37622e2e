// Package wire serializes compiled units (and the opcodes inside them)
// to and from CBOR, the way a vm/dist-style package serializes
// its Chunk type: canonical encoding mode, one Marshal/Unmarshal pair
// per wire-level shape.
package wire

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// ---------------------------------------------------------------------
// Values
//
// value.Value is an interface, so a struct field of that type can't be
// round-tripped by a generic CBOR Marshal/Unmarshal pair the way a
// concrete struct can: the decoder has nowhere to learn which concrete
// Go type a bare map belongs to. WireValue is the same tagged-union
// trick as WireInsn, scoped to the literal kinds a compiler actually
// embeds as static operands (putobject, duparray, duphash, and
// opt_case_dispatch's jump table). Runtime-only kinds (ClassRef,
// Method, Block, Host) never appear as literal-pool entries, so
// DecodeValue rejects them rather than pretending to round-trip them.
// ---------------------------------------------------------------------

type WireValue struct {
	Tag  string `cbor:"tag"`
	Data []byte `cbor:"data"`
}

func EncodeValue(v value.Value) (WireValue, error) {
	switch vv := v.(type) {
	case value.Bool:
		return marshalTagged("bool", bool(vv))
	case value.Integer:
		return marshalTagged("int", int64(vv))
	case value.Float:
		return marshalTagged("float", float64(vv))
	case value.Str:
		return marshalTagged("str", string(vv))
	case value.Symbol:
		return marshalTagged("symbol", string(vv))
	case *value.Regexp:
		return marshalTagged("regexp", wireRegexp{Source: vv.Source, Opts: vv.Opts})
	case *value.Array:
		elems, err := encodeValues(vv.Elems)
		if err != nil {
			return WireValue{}, err
		}
		return marshalTagged("array", elems)
	case *value.Range:
		low, err := EncodeValue(vv.Low)
		if err != nil {
			return WireValue{}, err
		}
		high, err := EncodeValue(vv.High)
		if err != nil {
			return WireValue{}, err
		}
		return marshalTagged("range", wireRange{Low: low, High: high, Exclusive: vv.Exclusive})
	default:
		if v == value.Nil {
			return marshalTagged("nil", struct{}{})
		}
		return WireValue{}, fmt.Errorf("wire: %s is not a valid literal-pool operand", v.Kind())
	}
}

func DecodeValue(w WireValue) (value.Value, error) {
	switch w.Tag {
	case "nil":
		return value.Nil, nil
	case "bool":
		var b bool
		if err := decMode.Unmarshal(w.Data, &b); err != nil {
			return nil, err
		}
		return value.NewBool(b), nil
	case "int":
		var i int64
		if err := decMode.Unmarshal(w.Data, &i); err != nil {
			return nil, err
		}
		return value.NewInteger(i), nil
	case "float":
		var f float64
		if err := decMode.Unmarshal(w.Data, &f); err != nil {
			return nil, err
		}
		return value.NewFloat(f), nil
	case "str":
		var s string
		if err := decMode.Unmarshal(w.Data, &s); err != nil {
			return nil, err
		}
		return value.NewStr(s), nil
	case "symbol":
		var s string
		if err := decMode.Unmarshal(w.Data, &s); err != nil {
			return nil, err
		}
		return value.NewSymbol(s), nil
	case "regexp":
		var r wireRegexp
		if err := decMode.Unmarshal(w.Data, &r); err != nil {
			return nil, err
		}
		return value.NewRegexp(r.Source, r.Opts), nil
	case "array":
		var elems []WireValue
		if err := decMode.Unmarshal(w.Data, &elems); err != nil {
			return nil, err
		}
		vs, err := decodeValues(elems)
		if err != nil {
			return nil, err
		}
		return value.NewArray(vs...), nil
	case "range":
		var r wireRange
		if err := decMode.Unmarshal(w.Data, &r); err != nil {
			return nil, err
		}
		low, err := DecodeValue(r.Low)
		if err != nil {
			return nil, err
		}
		high, err := DecodeValue(r.High)
		if err != nil {
			return nil, err
		}
		return value.NewRange(low, high, r.Exclusive), nil
	}
	return nil, fmt.Errorf("wire: unknown value tag %q", w.Tag)
}

type wireRegexp struct {
	Source string `cbor:"source"`
	Opts   int    `cbor:"opts"`
}

type wireRange struct {
	Low       WireValue `cbor:"low"`
	High      WireValue `cbor:"high"`
	Exclusive bool      `cbor:"exclusive"`
}

func marshalTagged(tag string, v any) (WireValue, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return WireValue{}, fmt.Errorf("wire: encode %s: %w", tag, err)
	}
	return WireValue{Tag: tag, Data: data}, nil
}

func encodeValues(vs []value.Value) ([]WireValue, error) {
	out := make([]WireValue, len(vs))
	for i, v := range vs {
		wv, err := EncodeValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = wv
	}
	return out, nil
}

func decodeValues(ws []WireValue) ([]value.Value, error) {
	out := make([]value.Value, len(ws))
	for i, w := range ws {
		v, err := DecodeValue(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------

// insnSamples enumerates one zero value per opcode variant. DecodeInsn
// uses it to recover the concrete Go type behind a mnemonic tag, since
// CBOR alone can't reconstruct an interface value's dynamic type.
var insnSamples = []bytecode.Insn{
	bytecode.Pop{}, bytecode.Dup{}, bytecode.Dupn{}, bytecode.Swap{}, bytecode.Topn{}, bytecode.Setn{}, bytecode.Adjuststack{},
	bytecode.Putnil{}, bytecode.Putself{}, bytecode.Putobject{}, bytecode.PutobjectInt2Fix0{}, bytecode.PutobjectInt2Fix1{},
	bytecode.Putstring{}, bytecode.Duparray{}, bytecode.Duphash{}, bytecode.Putspecialobject{},
	bytecode.OptSpecialized{}, bytecode.OptNeq{}, bytecode.OptNewarrayMax{}, bytecode.OptNewarrayMin{},
	bytecode.OptArefWith{}, bytecode.OptAsetWith{}, bytecode.OptStrFreeze{}, bytecode.OptStrUminus{},
	bytecode.Concatstrings{}, bytecode.Anytostring{}, bytecode.Objtostring{}, bytecode.Intern{}, bytecode.Toregexp{}, bytecode.Newrange{},
	bytecode.Newarray{}, bytecode.Newarraykwsplat{}, bytecode.Newhash{}, bytecode.Concatarray{}, bytecode.Splatarray{}, bytecode.Expandarray{},
	bytecode.Getlocal{}, bytecode.Setlocal{}, bytecode.GetlocalWC0{}, bytecode.GetlocalWC1{}, bytecode.SetlocalWC0{}, bytecode.SetlocalWC1{},
	bytecode.Getblockparam{}, bytecode.Getblockparamproxy{}, bytecode.Setblockparam{},
	bytecode.Getinstancevariable{}, bytecode.Setinstancevariable{},
	bytecode.Getclassvariable{}, bytecode.Setclassvariable{}, bytecode.GetclassvariableLegacy{}, bytecode.SetclassvariableLegacy{},
	bytecode.Getglobal{}, bytecode.Setglobal{}, bytecode.Getconstant{}, bytecode.Setconstant{}, bytecode.OptGetconstantPath{},
	bytecode.Getspecial{}, bytecode.Setspecial{},
	bytecode.Jump{}, bytecode.Branchif{}, bytecode.Branchunless{}, bytecode.Branchnil{}, bytecode.OptCaseDispatch{},
	bytecode.Leave{}, bytecode.Nop{}, bytecode.Throw{},
	bytecode.Checkmatch{}, bytecode.Checktype{}, bytecode.Checkkeyword{}, bytecode.Defined{},
	bytecode.Send{}, bytecode.OptSendWithoutBlock{}, bytecode.Invokeblock{}, bytecode.Invokesuper{},
	bytecode.Defineclass{}, bytecode.Definemethod{}, bytecode.Definesmethod{}, bytecode.Once{},
}

var insnTypeByTag = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type, len(insnSamples))
	for _, s := range insnSamples {
		m[s.Mnemonic()] = reflect.TypeOf(s)
	}
	// OptSpecialized's zero value names only opt_plus; every Kind's tag
	// decodes to the same type.
	for k := bytecode.OptPlus; k <= bytecode.OptAset; k++ {
		m[k.String()] = reflect.TypeOf(bytecode.OptSpecialized{})
	}
	return m
}()

// WireInsn is one opcode on the wire: its mnemonic tag plus the CBOR
// encoding of its own wire-shaped payload.
type WireInsn struct {
	Tag  string `cbor:"tag"`
	Data []byte `cbor:"data"`
}

// EncodeInsn captures insn's mnemonic tag and its wire-shaped payload.
// Most variants are plain structs of scalars and CBOR-marshal directly;
// the handful that embed a value.Value, an *iseq.Label, a child ISeq,
// or an OnceCache go through a dedicated wire shape first, since those
// field types can't be reconstructed by a generic interface-unaware
// decoder.
func EncodeInsn(insn bytecode.Insn) (WireInsn, error) {
	payload, err := encodableInsnPayload(insn)
	if err != nil {
		return WireInsn{}, err
	}
	data, err := encMode.Marshal(payload)
	if err != nil {
		return WireInsn{}, fmt.Errorf("wire: encode %s: %w", insn.Mnemonic(), err)
	}
	return WireInsn{Tag: insn.Mnemonic(), Data: data}, nil
}

// DecodeInsn reconstructs the concrete opcode type behind w.Tag.
func DecodeInsn(w WireInsn) (bytecode.Insn, error) {
	if insn, handled, err := decodeSpecialInsn(w); handled {
		return insn, err
	}
	rt, ok := insnTypeByTag[w.Tag]
	if !ok {
		return nil, fmt.Errorf("wire: unknown opcode tag %q", w.Tag)
	}
	ptr := reflect.New(rt)
	if err := decMode.Unmarshal(w.Data, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("wire: decode %s: %w", w.Tag, err)
	}
	insn, ok := ptr.Elem().Interface().(bytecode.Insn)
	if !ok {
		return nil, fmt.Errorf("wire: %s did not decode to an Insn", w.Tag)
	}
	return insn, nil
}

type wireJumpLike struct {
	TargetPC int `cbor:"target_pc"`
}

type wireCaseEntry struct {
	Key WireValue `cbor:"key"`
	PC  int       `cbor:"pc"`
}

type wireOptCaseDispatch struct {
	Table  []wireCaseEntry `cbor:"table"`
	ElsePC int             `cbor:"else_pc"`
}

type wirePutobject struct {
	Val WireValue `cbor:"val"`
}

type wireDuparray struct {
	Elems []WireValue `cbor:"elems"`
}

type wireDuphash struct {
	Pairs []WireValue `cbor:"pairs"`
}

type wireCallWithBlock struct {
	Method    string    `cbor:"method"`
	Argc      uint16    `cbor:"argc"`
	Flags     uint16    `cbor:"flags"`
	KwArg     []string  `cbor:"kw_arg"`
	BlockIseq *WireUnit `cbor:"block_iseq,omitempty"`
}

type wireDefineclass struct {
	Name      string    `cbor:"name"`
	ClassIseq *WireUnit `cbor:"class_iseq,omitempty"`
	Flags     int       `cbor:"flags"`
}

type wireDefineBody struct {
	Name string    `cbor:"name"`
	Body *WireUnit `cbor:"body,omitempty"`
}

type wireOnce struct {
	Body    *WireUnit `cbor:"body,omitempty"`
	CacheID string    `cbor:"cache_id"`
}

// encodableInsnPayload returns the value EncodeInsn should marshal for
// insn: either insn itself (the common case) or a dedicated wire shape
// for the variants listed above encodableInsnPayload's switch.
func encodableInsnPayload(insn bytecode.Insn) (any, error) {
	switch i := insn.(type) {
	case bytecode.Putobject:
		wv, err := EncodeValue(i.Val)
		if err != nil {
			return nil, err
		}
		return wirePutobject{Val: wv}, nil
	case bytecode.Duparray:
		elems, err := encodeValues(i.Elems)
		if err != nil {
			return nil, err
		}
		return wireDuparray{Elems: elems}, nil
	case bytecode.Duphash:
		pairs, err := encodeValues(i.Pairs)
		if err != nil {
			return nil, err
		}
		return wireDuphash{Pairs: pairs}, nil
	case bytecode.Jump:
		return wireJumpLike{TargetPC: labelPC(i.Target)}, nil
	case bytecode.Branchif:
		return wireJumpLike{TargetPC: labelPC(i.Target)}, nil
	case bytecode.Branchunless:
		return wireJumpLike{TargetPC: labelPC(i.Target)}, nil
	case bytecode.Branchnil:
		return wireJumpLike{TargetPC: labelPC(i.Target)}, nil
	case bytecode.OptCaseDispatch:
		return encodeOptCaseDispatch(i)
	case bytecode.Send:
		ciw, err := encodeOptionalUnit(i.BlockIseq)
		if err != nil {
			return nil, err
		}
		return wireCallWithBlock{Method: i.CD.Method, Argc: i.CD.Argc, Flags: i.CD.Flags, KwArg: i.CD.KwArg, BlockIseq: ciw}, nil
	case bytecode.Invokesuper:
		ciw, err := encodeOptionalUnit(i.BlockIseq)
		if err != nil {
			return nil, err
		}
		return wireCallWithBlock{Method: i.CD.Method, Argc: i.CD.Argc, Flags: i.CD.Flags, KwArg: i.CD.KwArg, BlockIseq: ciw}, nil
	case bytecode.Defineclass:
		ciw, err := encodeOptionalUnit(i.ClassIseq)
		if err != nil {
			return nil, err
		}
		return wireDefineclass{Name: i.Name, ClassIseq: ciw, Flags: i.Flags}, nil
	case bytecode.Definemethod:
		bw, err := encodeOptionalUnit(i.Body)
		if err != nil {
			return nil, err
		}
		return wireDefineBody{Name: i.Name, Body: bw}, nil
	case bytecode.Definesmethod:
		bw, err := encodeOptionalUnit(i.Body)
		if err != nil {
			return nil, err
		}
		return wireDefineBody{Name: i.Name, Body: bw}, nil
	case bytecode.Once:
		bw, err := encodeOptionalUnit(i.Body)
		if err != nil {
			return nil, err
		}
		return wireOnce{Body: bw, CacheID: i.Cache.ID()}, nil
	}
	return insn, nil
}

// decodeSpecialInsn handles the tags encodableInsnPayload gave a
// dedicated wire shape. handled is false for every ordinary tag, in
// which case DecodeInsn falls through to the generic reflection path.
func decodeSpecialInsn(w WireInsn) (bytecode.Insn, bool, error) {
	switch w.Tag {
	case (bytecode.Putobject{}).Mnemonic():
		var p wirePutobject
		if err := decMode.Unmarshal(w.Data, &p); err != nil {
			return nil, true, err
		}
		v, err := DecodeValue(p.Val)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Putobject{Val: v}, true, nil
	case (bytecode.Duparray{}).Mnemonic():
		var d wireDuparray
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		vs, err := decodeValues(d.Elems)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Duparray{Elems: vs}, true, nil
	case (bytecode.Duphash{}).Mnemonic():
		var d wireDuphash
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		vs, err := decodeValues(d.Pairs)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Duphash{Pairs: vs}, true, nil
	case (bytecode.Jump{}).Mnemonic():
		var j wireJumpLike
		if err := decMode.Unmarshal(w.Data, &j); err != nil {
			return nil, true, err
		}
		return bytecode.Jump{Target: decodeLabelPC(j.TargetPC)}, true, nil
	case (bytecode.Branchif{}).Mnemonic():
		var j wireJumpLike
		if err := decMode.Unmarshal(w.Data, &j); err != nil {
			return nil, true, err
		}
		return bytecode.Branchif{Target: decodeLabelPC(j.TargetPC)}, true, nil
	case (bytecode.Branchunless{}).Mnemonic():
		var j wireJumpLike
		if err := decMode.Unmarshal(w.Data, &j); err != nil {
			return nil, true, err
		}
		return bytecode.Branchunless{Target: decodeLabelPC(j.TargetPC)}, true, nil
	case (bytecode.Branchnil{}).Mnemonic():
		var j wireJumpLike
		if err := decMode.Unmarshal(w.Data, &j); err != nil {
			return nil, true, err
		}
		return bytecode.Branchnil{Target: decodeLabelPC(j.TargetPC)}, true, nil
	case (bytecode.OptCaseDispatch{}).Mnemonic():
		var d wireOptCaseDispatch
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		insn, err := decodeOptCaseDispatch(d)
		return insn, true, err
	case (bytecode.Send{}).Mnemonic():
		var c wireCallWithBlock
		if err := decMode.Unmarshal(w.Data, &c); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(c.BlockIseq)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Send{CD: callDataFrom(c), BlockIseq: unitAsISeq(body)}, true, nil
	case (bytecode.Invokesuper{}).Mnemonic():
		var c wireCallWithBlock
		if err := decMode.Unmarshal(w.Data, &c); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(c.BlockIseq)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Invokesuper{CD: callDataFrom(c), BlockIseq: unitAsISeq(body)}, true, nil
	case (bytecode.Defineclass{}).Mnemonic():
		var d wireDefineclass
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(d.ClassIseq)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Defineclass{Name: d.Name, ClassIseq: unitAsISeq(body), Flags: d.Flags}, true, nil
	case (bytecode.Definemethod{}).Mnemonic():
		var d wireDefineBody
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(d.Body)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Definemethod{Name: d.Name, Body: unitAsISeq(body)}, true, nil
	case (bytecode.Definesmethod{}).Mnemonic():
		var d wireDefineBody
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(d.Body)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Definesmethod{Name: d.Name, Body: unitAsISeq(body)}, true, nil
	case (bytecode.Once{}).Mnemonic():
		var d wireOnce
		if err := decMode.Unmarshal(w.Data, &d); err != nil {
			return nil, true, err
		}
		body, err := decodeOptionalUnit(d.Body)
		if err != nil {
			return nil, true, err
		}
		return bytecode.Once{Body: unitAsISeq(body), Cache: bytecode.NewOnceCache(d.CacheID)}, true, nil
	}
	return nil, false, nil
}

func callDataFrom(c wireCallWithBlock) calldata.CallData {
	return calldata.CallData{Method: c.Method, Argc: c.Argc, Flags: c.Flags, KwArg: c.KwArg}
}

func labelPC(l *iseq.Label) int {
	if l == nil {
		return -1
	}
	return l.PC()
}

func decodeLabelPC(pc int) *iseq.Label {
	if pc < 0 {
		return nil
	}
	l := iseq.NewLabel(fmt.Sprintf("L%d", pc))
	l.Bind(pc)
	return l
}

func encodeOptCaseDispatch(i bytecode.OptCaseDispatch) (wireOptCaseDispatch, error) {
	keys := make([]value.Value, 0, len(i.Table))
	for k := range i.Table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].Inspect() < keys[b].Inspect() })

	out := wireOptCaseDispatch{ElsePC: labelPC(i.Else)}
	for _, k := range keys {
		wv, err := EncodeValue(k)
		if err != nil {
			return wireOptCaseDispatch{}, err
		}
		out.Table = append(out.Table, wireCaseEntry{Key: wv, PC: labelPC(i.Table[k])})
	}
	return out, nil
}

func decodeOptCaseDispatch(d wireOptCaseDispatch) (bytecode.Insn, error) {
	table := make(map[value.Value]*iseq.Label, len(d.Table))
	for _, entry := range d.Table {
		k, err := DecodeValue(entry.Key)
		if err != nil {
			return nil, err
		}
		table[k] = decodeLabelPC(entry.PC)
	}
	return bytecode.OptCaseDispatch{Table: table, Else: decodeLabelPC(d.ElsePC)}, nil
}

func encodeOptionalUnit(child iseq.ISeq) (*WireUnit, error) {
	if child == nil {
		return nil, nil
	}
	return EncodeUnit(child)
}

func decodeOptionalUnit(w *WireUnit) (*iseq.Unit, error) {
	if w == nil {
		return nil, nil
	}
	return DecodeUnit(w)
}

func unitAsISeq(u *iseq.Unit) iseq.ISeq {
	if u == nil {
		return nil
	}
	return u
}

// ---------------------------------------------------------------------
// Units
// ---------------------------------------------------------------------

// WireCatch is a catch-table entry with Target/ChildIseq flattened to
// wire-friendly shapes (a *Label reference becomes its bound PC; a
// child ISeq becomes its own recursively-encoded WireUnit).
type WireCatch struct {
	Tag       uint8     `cbor:"tag"`
	PCFrom    int       `cbor:"pc_from"`
	PCTo      int       `cbor:"pc_to"`
	TargetPC  int       `cbor:"target_pc"`
	ChildIseq *WireUnit `cbor:"child_iseq,omitempty"`
}

// WireUnit is the on-the-wire shape of a compiled unit.
type WireUnit struct {
	Name    string      `cbor:"name"`
	Type    uint8       `cbor:"type"`
	Locals  []string    `cbor:"locals"`
	Code    []WireInsn  `cbor:"code"`
	Catches []WireCatch `cbor:"catches"`
}

// EncodeUnit flattens unit (and, recursively, any catch-table child
// units) into its wire shape. The unit's own ID is not carried on the
// wire: pkg/cache content-addresses a unit from its encoded bytes, so a
// freshly decoded unit simply mints a new identity the same way a
// freshly compiled one does.
func EncodeUnit(unit iseq.ISeq) (*WireUnit, error) {
	w := &WireUnit{
		Name:   unit.Name(),
		Type:   uint8(unit.Type()),
		Locals: append([]string(nil), unit.Locals().Names...),
	}
	for _, raw := range unit.Insns() {
		insn, ok := raw.(bytecode.Insn)
		if !ok {
			return nil, fmt.Errorf("wire: non-Insn element in %s", unit.Name())
		}
		wi, err := EncodeInsn(insn)
		if err != nil {
			return nil, err
		}
		w.Code = append(w.Code, wi)
	}
	for _, c := range unit.CatchTable() {
		wc := WireCatch{Tag: uint8(c.Tag), PCFrom: c.PCFrom, PCTo: c.PCTo, TargetPC: labelPC(c.Target)}
		if c.ChildIseq != nil {
			child, err := EncodeUnit(c.ChildIseq)
			if err != nil {
				return nil, err
			}
			wc.ChildIseq = child
		}
		w.Catches = append(w.Catches, wc)
	}
	return w, nil
}

// Marshal encodes unit to CBOR bytes.
func Marshal(unit iseq.ISeq) ([]byte, error) {
	w, err := EncodeUnit(unit)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(w)
}

// DecodeUnit rebuilds a *iseq.Unit from its wire shape. Jump/branch
// targets and catch-table targets round-trip through their bound PC,
// not through label identity — fine for execution (the VM only ever
// reads Label.PC()), but two opcodes that shared one *iseq.Label before
// encoding will decode as two distinct labels bound to the same PC.
func DecodeUnit(w *WireUnit) (*iseq.Unit, error) {
	unit := iseq.NewUnit(w.Name, iseq.Type(w.Type), nil)
	for _, name := range w.Locals {
		unit.AddLocal(name)
	}
	for _, wi := range w.Code {
		insn, err := DecodeInsn(wi)
		if err != nil {
			return nil, err
		}
		unit.Emit(insn)
	}
	for _, wc := range w.Catches {
		entry := iseq.CatchEntry{
			Tag:    iseq.CatchTag(wc.Tag),
			PCFrom: wc.PCFrom,
			PCTo:   wc.PCTo,
			Target: decodeLabelPC(wc.TargetPC),
		}
		if wc.ChildIseq != nil {
			child, err := DecodeUnit(wc.ChildIseq)
			if err != nil {
				return nil, err
			}
			entry.ChildIseq = child
		}
		unit.AddCatch(entry)
	}
	return unit, nil
}

// Unmarshal decodes CBOR bytes produced by Marshal back into a unit.
func Unmarshal(data []byte) (*iseq.Unit, error) {
	var w WireUnit
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("wire: unmarshal unit: %w", err)
	}
	return DecodeUnit(&w)
}
