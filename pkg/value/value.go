// Package value defines the run-time object universe manipulated by
// opcodes: integers, floats, strings, symbols, booleans, nil, arrays,
// hashes, ranges, regular expressions, classes/modules, bound methods,
// blocks, and an opaque "any host object" escape hatch.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the concrete representation behind a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindStr
	KindSymbol
	KindArray
	KindHash
	KindRange
	KindRegexp
	KindClassRef
	KindMethod
	KindBlock
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindStr:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindRange:
		return "range"
	case KindRegexp:
		return "regexp"
	case KindClassRef:
		return "class"
	case KindMethod:
		return "method"
	case KindBlock:
		return "block"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

// Value is the closed run-time object universe. Every opcode that
// touches the stack or frame state traffics exclusively in Values.
type Value interface {
	Kind() Kind
	// Truthy reports whether the value counts as true in a branch test.
	// Only Nil and the boolean false value are falsy.
	Truthy() bool
	// Inspect renders a debug/disasm-friendly representation.
	Inspect() string
	// Equal reports object-level equality (not user-overridable ==).
	Equal(other Value) bool
}

// ---------------------------------------------------------------------
// Nil
// ---------------------------------------------------------------------

type nilValue struct{}

// Nil is the singleton nil value.
var Nil Value = nilValue{}

func (nilValue) Kind() Kind         { return KindNil }
func (nilValue) Truthy() bool       { return false }
func (nilValue) Inspect() string    { return "nil" }
func (nilValue) Equal(o Value) bool { return o.Kind() == KindNil }

// ---------------------------------------------------------------------
// Bool
// ---------------------------------------------------------------------

type Bool bool

// True and False are the two boolean singletons.
var (
	True  Value = Bool(true)
	False Value = Bool(false)
)

// NewBool returns True or False for the given bool.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func (b Bool) Kind() Kind      { return KindBool }
func (b Bool) Truthy() bool    { return bool(b) }
func (b Bool) Inspect() string { return strconv.FormatBool(bool(b)) }
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && ob == b
}

// ---------------------------------------------------------------------
// Integer
// ---------------------------------------------------------------------

type Integer int64

func NewInteger(i int64) Value { return Integer(i) }

func (i Integer) Kind() Kind      { return KindInteger }
func (i Integer) Truthy() bool    { return true }
func (i Integer) Inspect() string { return strconv.FormatInt(int64(i), 10) }
func (i Integer) Equal(o Value) bool {
	switch ov := o.(type) {
	case Integer:
		return ov == i
	case Float:
		return float64(ov) == float64(i)
	}
	return false
}

// ---------------------------------------------------------------------
// Float
// ---------------------------------------------------------------------

type Float float64

func NewFloat(f float64) Value { return Float(f) }

func (f Float) Kind() Kind      { return KindFloat }
func (f Float) Truthy() bool    { return true }
func (f Float) Inspect() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f Float) Equal(o Value) bool {
	switch ov := o.(type) {
	case Float:
		return ov == f
	case Integer:
		return float64(ov) == float64(f)
	}
	return false
}

// ---------------------------------------------------------------------
// Str
// ---------------------------------------------------------------------

type Str string

func NewStr(s string) Value { return Str(s) }

func (s Str) Kind() Kind      { return KindStr }
func (s Str) Truthy() bool    { return true }
func (s Str) Inspect() string { return strconv.Quote(string(s)) }
func (s Str) Equal(o Value) bool {
	os, ok := o.(Str)
	return ok && os == s
}

// ---------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------

type Symbol string

func NewSymbol(s string) Value { return Symbol(s) }

func (s Symbol) Kind() Kind      { return KindSymbol }
func (s Symbol) Truthy() bool    { return true }
func (s Symbol) Inspect() string { return ":" + string(s) }
func (s Symbol) Equal(o Value) bool {
	os, ok := o.(Symbol)
	return ok && os == s
}

// ---------------------------------------------------------------------
// Array
// ---------------------------------------------------------------------

// Array is a mutable, ordered sequence of Values.
type Array struct {
	Elems []Value
}

func NewArray(elems ...Value) *Array {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return &Array{Elems: cp}
}

func (a *Array) Kind() Kind   { return KindArray }
func (a *Array) Truthy() bool { return true }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *Array) Equal(o Value) bool {
	oa, ok := o.(*Array)
	if !ok || len(oa.Elems) != len(a.Elems) {
		return false
	}
	for i := range a.Elems {
		if !a.Elems[i].Equal(oa.Elems[i]) {
			return false
		}
	}
	return true
}

// Copy returns a shallow copy of the array (same element references).
func (a *Array) Copy() *Array {
	return NewArray(a.Elems...)
}

// ---------------------------------------------------------------------
// Hash
// ---------------------------------------------------------------------

// hashKey is a comparable proxy for a Value used as a map key.
type hashKey string

func keyFor(v Value) hashKey {
	return hashKey(v.Kind().String() + ":" + v.Inspect())
}

// Hash is an insertion-ordered mapping from Value to Value.
type Hash struct {
	keys   []Value
	values map[hashKey]Value
	order  map[hashKey]int
}

func NewHash() *Hash {
	return &Hash{values: map[hashKey]Value{}, order: map[hashKey]int{}}
}

func (h *Hash) Kind() Kind   { return KindHash }
func (h *Hash) Truthy() bool { return true }

func (h *Hash) Set(k, v Value) {
	kk := keyFor(k)
	if _, exists := h.values[kk]; !exists {
		h.order[kk] = len(h.keys)
		h.keys = append(h.keys, k)
	}
	h.values[kk] = v
}

func (h *Hash) Get(k Value) (Value, bool) {
	v, ok := h.values[keyFor(k)]
	return v, ok
}

func (h *Hash) Delete(k Value) {
	kk := keyFor(k)
	if idx, ok := h.order[kk]; ok {
		h.keys = append(h.keys[:idx], h.keys[idx+1:]...)
		delete(h.order, kk)
		delete(h.values, kk)
		for kk2, idx2 := range h.order {
			if idx2 > idx {
				h.order[kk2] = idx2 - 1
			}
		}
	}
}

func (h *Hash) Len() int { return len(h.keys) }

func (h *Hash) Keys() []Value {
	out := make([]Value, len(h.keys))
	copy(out, h.keys)
	return out
}

func (h *Hash) Values() []Value {
	out := make([]Value, len(h.keys))
	for i, k := range h.keys {
		out[i] = h.values[keyFor(k)]
	}
	return out
}

func (h *Hash) Copy() *Hash {
	cp := NewHash()
	for _, k := range h.keys {
		v, _ := h.Get(k)
		cp.Set(k, v)
	}
	return cp
}

func (h *Hash) Inspect() string {
	parts := make([]string, len(h.keys))
	for i, k := range h.keys {
		v, _ := h.Get(k)
		parts[i] = fmt.Sprintf("%s => %s", k.Inspect(), v.Inspect())
	}
	sort.Strings(parts) // stable rendering for tests; order preserved in Keys()
	return "{" + strings.Join(parts, ", ") + "}"
}

func (h *Hash) Equal(o Value) bool {
	oh, ok := o.(*Hash)
	if !ok || oh.Len() != h.Len() {
		return false
	}
	for _, k := range h.keys {
		v, _ := h.Get(k)
		ov, found := oh.Get(k)
		if !found || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Range
// ---------------------------------------------------------------------

type Range struct {
	Low, High Value
	Exclusive bool
}

func NewRange(low, high Value, exclusive bool) *Range {
	return &Range{Low: low, High: high, Exclusive: exclusive}
}

func (r *Range) Kind() Kind   { return KindRange }
func (r *Range) Truthy() bool { return true }
func (r *Range) Inspect() string {
	op := ".."
	if r.Exclusive {
		op = "..."
	}
	return r.Low.Inspect() + op + r.High.Inspect()
}
func (r *Range) Equal(o Value) bool {
	or, ok := o.(*Range)
	return ok && or.Exclusive == r.Exclusive && or.Low.Equal(r.Low) && or.High.Equal(r.High)
}

// ---------------------------------------------------------------------
// Regexp
// ---------------------------------------------------------------------

type Regexp struct {
	Source string
	Opts   int
}

func NewRegexp(source string, opts int) *Regexp {
	return &Regexp{Source: source, Opts: opts}
}

func (r *Regexp) Kind() Kind      { return KindRegexp }
func (r *Regexp) Truthy() bool    { return true }
func (r *Regexp) Inspect() string { return "/" + r.Source + "/" }
func (r *Regexp) Equal(o Value) bool {
	or, ok := o.(*Regexp)
	return ok && or.Source == r.Source && or.Opts == r.Opts
}

// ---------------------------------------------------------------------
// ClassRef
// ---------------------------------------------------------------------

// ClassRef names a class or module. The opcode layer treats classes as
// opaque named entities; method tables and instance layout belong to
// the host collaborator that implements message dispatch.
type ClassRef struct {
	Name      string
	IsModule  bool
	Singleton bool
}

func NewClassRef(name string) *ClassRef { return &ClassRef{Name: name} }

func (c *ClassRef) Kind() Kind      { return KindClassRef }
func (c *ClassRef) Truthy() bool    { return true }
func (c *ClassRef) Inspect() string { return c.Name }
func (c *ClassRef) Equal(o Value) bool {
	oc, ok := o.(*ClassRef)
	return ok && oc.Name == c.Name
}

// ---------------------------------------------------------------------
// Method and BlockValue — closures over an iseq.
//
// IseqRef is a narrow interface (rather than importing pkg/iseq
// directly) so that pkg/value has no dependency on the iseq package;
// pkg/iseq's *Unit satisfies it trivially.
// ---------------------------------------------------------------------

// IseqRef is the minimal surface a compiled unit must expose so a
// Method/BlockValue can carry it without an import cycle.
type IseqRef interface {
	Name() string
}

// Method is a bound user method: the compiled body plus the captured
// self and lexical nesting it closes over: deliberately not a host-level
// closure, so a user method body stays a plain serializable iseq.
type Method struct {
	Iseq    IseqRef
	Self    Value
	Nesting []*ClassRef
}

func NewMethod(iseq IseqRef, self Value, nesting []*ClassRef) *Method {
	return &Method{Iseq: iseq, Self: self, Nesting: nesting}
}

func (m *Method) Kind() Kind      { return KindMethod }
func (m *Method) Truthy() bool    { return true }
func (m *Method) Inspect() string { return "#<Method:" + m.Iseq.Name() + ">" }
func (m *Method) Equal(o Value) bool {
	om, ok := o.(*Method)
	return ok && om == m
}

// BlockValue is a block closure: its iseq plus an opaque Capture set by
// whoever builds it (pkg/bytecode's send and invokesuper pass the iseq
// that was running). pkg/vm records the frame a block closes over in
// its own table, not here.
type BlockValue struct {
	Iseq    IseqRef
	Capture any // creator-supplied, left untyped to avoid an import cycle
}

func NewBlockValue(iseq IseqRef, capture any) *BlockValue {
	return &BlockValue{Iseq: iseq, Capture: capture}
}

func (b *BlockValue) Kind() Kind      { return KindBlock }
func (b *BlockValue) Truthy() bool    { return true }
func (b *BlockValue) Inspect() string { return "#<Block:" + b.Iseq.Name() + ">" }
func (b *BlockValue) Equal(o Value) bool {
	ob, ok := o.(*BlockValue)
	return ok && ob == b
}

// ---------------------------------------------------------------------
// HostObject — escape hatch for opaque host-provided objects.
// ---------------------------------------------------------------------

type HostObject struct {
	Tag  string
	Data any
}

func NewHostObject(tag string, data any) *HostObject {
	return &HostObject{Tag: tag, Data: data}
}

func (h *HostObject) Kind() Kind      { return KindHost }
func (h *HostObject) Truthy() bool    { return true }
func (h *HostObject) Inspect() string { return fmt.Sprintf("#<Host:%s>", h.Tag) }
func (h *HostObject) Equal(o Value) bool {
	oh, ok := o.(*HostObject)
	return ok && oh == h
}
