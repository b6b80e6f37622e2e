package bytecode

import (
	"strings"

	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Concatstrings pops n fragments and pushes their concatenation (no
// coercion — every fragment must already be a Str).
type Concatstrings struct{ N int }

func (Concatstrings) Mnemonic() string { return "concatstrings" }
func (Concatstrings) Length() int      { return 2 }
func (i Concatstrings) Pops() int      { return i.N }
func (Concatstrings) Pushes() int      { return 1 }
func (i Concatstrings) Canonical() Insn { return i }
func (i Concatstrings) Disasm(f Formatter) string {
	return "concatstrings " + f.Object(value.NewInteger(int64(i.N)))
}
func (i Concatstrings) ToA(u iseq.ISeq) []any { return []any{"concatstrings", i.N} }
func (i Concatstrings) Call(vm VM) error {
	parts := vm.PopN(i.N)
	var sb strings.Builder
	for _, p := range parts {
		s, ok := p.(value.Str)
		if !ok {
			return newHostError("concatstrings: fragment is not a string, got %s", p.Kind())
		}
		sb.WriteString(string(s))
	}
	vm.Push(value.NewStr(sb.String()))
	return nil
}

// Anytostring pops (original, coerced); if coerced is a string, pushes
// it, else pushes a fallback string representation of original.
type Anytostring struct{}

func (Anytostring) Mnemonic() string { return "anytostring" }
func (Anytostring) Length() int      { return 1 }
func (Anytostring) Pops() int        { return 2 }
func (Anytostring) Pushes() int      { return 1 }
func (i Anytostring) Canonical() Insn { return i }
func (i Anytostring) Disasm(f Formatter) string { return "anytostring" }
func (i Anytostring) ToA(u iseq.ISeq) []any      { return []any{"anytostring"} }
func (i Anytostring) Call(vm VM) error {
	coerced := vm.Pop()
	original := vm.Pop()
	if s, ok := coerced.(value.Str); ok {
		vm.Push(s)
		return nil
	}
	vm.Push(value.NewStr(original.Inspect()))
	return nil
}

// Objtostring pops TOS, pushes its string conversion. Canonicalizes to
// a send of to_s.
type Objtostring struct{ CD calldata.CallData }

func (Objtostring) Mnemonic() string { return "objtostring" }
func (Objtostring) Length() int      { return 2 }
func (Objtostring) Pops() int        { return 1 }
func (Objtostring) Pushes() int      { return 1 }
func (i Objtostring) Canonical() Insn { return Send{CD: i.CD} }
func (i Objtostring) Disasm(f Formatter) string {
	return "objtostring " + f.CallData(i.CD)
}
func (i Objtostring) ToA(u iseq.ISeq) []any { return []any{"objtostring", i.CD} }
func (i Objtostring) Call(vm VM) error {
	recv := vm.Pop()
	result, err := vm.Send(recv, i.CD, nil, nil, nil)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// Intern pops TOS, pushes its symbol interning.
type Intern struct{}

func (Intern) Mnemonic() string { return "intern" }
func (Intern) Length() int      { return 1 }
func (Intern) Pops() int        { return 1 }
func (Intern) Pushes() int      { return 1 }
func (i Intern) Canonical() Insn { return i }
func (i Intern) Disasm(f Formatter) string { return "intern" }
func (i Intern) ToA(u iseq.ISeq) []any      { return []any{"intern"} }
func (i Intern) Call(vm VM) error {
	v := vm.Pop()
	s, ok := v.(value.Str)
	if !ok {
		return newHostError("intern: operand is not a string, got %s", v.Kind())
	}
	vm.Push(value.NewSymbol(string(s)))
	return nil
}

// Toregexp pops n string fragments, joins, constructs a regexp with
// opts, and pushes it.
type Toregexp struct {
	Opts int
	N    int
}

func (Toregexp) Mnemonic() string { return "toregexp" }
func (Toregexp) Length() int      { return 3 }
func (i Toregexp) Pops() int      { return i.N }
func (Toregexp) Pushes() int      { return 1 }
func (i Toregexp) Canonical() Insn { return i }
func (i Toregexp) Disasm(f Formatter) string { return "toregexp" }
func (i Toregexp) ToA(u iseq.ISeq) []any      { return []any{"toregexp", i.Opts, i.N} }
func (i Toregexp) Call(vm VM) error {
	parts := vm.PopN(i.N)
	var sb strings.Builder
	for _, p := range parts {
		s, ok := p.(value.Str)
		if !ok {
			return newHostError("toregexp: fragment is not a string, got %s", p.Kind())
		}
		sb.WriteString(string(s))
	}
	vm.Push(value.NewRegexp(sb.String(), i.Opts))
	return nil
}

// Newrange pops (lo, hi) and pushes a range; Excl selects exclusivity.
type Newrange struct{ Excl int }

func (Newrange) Mnemonic() string { return "newrange" }
func (Newrange) Length() int      { return 2 }
func (Newrange) Pops() int        { return 2 }
func (Newrange) Pushes() int      { return 1 }
func (i Newrange) Canonical() Insn { return i }
func (i Newrange) Disasm(f Formatter) string {
	if i.Excl != 0 {
		return "newrange excl"
	}
	return "newrange incl"
}
func (i Newrange) ToA(u iseq.ISeq) []any { return []any{"newrange", i.Excl} }
func (i Newrange) Call(vm VM) error {
	hi := vm.Pop()
	lo := vm.Pop()
	vm.Push(value.NewRange(lo, hi, i.Excl != 0))
	return nil
}
