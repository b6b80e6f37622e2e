package bytecode

import (
	"fmt"

	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Pop discards the top of stack.
type Pop struct{}

func (Pop) Mnemonic() string        { return "pop" }
func (Pop) Length() int             { return 1 }
func (Pop) Pops() int               { return 1 }
func (Pop) Pushes() int             { return 0 }
func (i Pop) Canonical() Insn       { return i }
func (i Pop) Disasm(f Formatter) string { return "pop" }
func (i Pop) ToA(u iseq.ISeq) []any  { return []any{"pop"} }
func (i Pop) Call(vm VM) error {
	vm.Pop()
	return nil
}

// Dup duplicates the top of stack (shallow).
type Dup struct{}

func (Dup) Mnemonic() string        { return "dup" }
func (Dup) Length() int             { return 1 }
func (Dup) Pops() int               { return 1 }
func (Dup) Pushes() int             { return 2 }
func (i Dup) Canonical() Insn       { return i }
func (i Dup) Disasm(f Formatter) string { return "dup" }
func (i Dup) ToA(u iseq.ISeq) []any  { return []any{"dup"} }
func (i Dup) Call(vm VM) error {
	v := vm.Pop()
	vm.Push(v)
	vm.Push(v)
	return nil
}

// Dupn duplicates the top N elements as a block, preserving order.
type Dupn struct{ N int }

func (Dupn) Mnemonic() string          { return "dupn" }
func (Dupn) Length() int               { return 2 }
func (i Dupn) Pops() int               { return i.N }
func (i Dupn) Pushes() int             { return 2 * i.N }
func (i Dupn) Canonical() Insn         { return i }
func (i Dupn) Disasm(f Formatter) string { return fmt.Sprintf("dupn %d", i.N) }
func (i Dupn) ToA(u iseq.ISeq) []any    { return []any{"dupn", i.N} }
func (i Dupn) Call(vm VM) error {
	n := i.N
	top := make([]value.Value, n)
	for k := 0; k < n; k++ {
		top[k] = vm.StackAt(n - 1 - k)
	}
	for k := 0; k < n; k++ {
		vm.Push(top[k])
	}
	return nil
}

// Swap exchanges the top two stack elements.
type Swap struct{}

func (Swap) Mnemonic() string        { return "swap" }
func (Swap) Length() int             { return 1 }
func (Swap) Pops() int               { return 2 }
func (Swap) Pushes() int             { return 2 }
func (i Swap) Canonical() Insn       { return i }
func (i Swap) Disasm(f Formatter) string { return "swap" }
func (i Swap) ToA(u iseq.ISeq) []any  { return []any{"swap"} }
func (i Swap) Call(vm VM) error {
	a := vm.Pop()
	b := vm.Pop()
	vm.Push(a)
	vm.Push(b)
	return nil
}

// Topn pushes a copy of the element N slots below TOS (TOS is index 0).
type Topn struct{ N int }

func (Topn) Mnemonic() string          { return "topn" }
func (Topn) Length() int               { return 2 }
func (Topn) Pops() int                 { return 0 }
func (Topn) Pushes() int               { return 1 }
func (i Topn) Canonical() Insn         { return i }
func (i Topn) Disasm(f Formatter) string { return fmt.Sprintf("topn %d", i.N) }
func (i Topn) ToA(u iseq.ISeq) []any    { return []any{"topn", i.N} }
func (i Topn) Call(vm VM) error {
	vm.Push(vm.StackAt(i.N))
	return nil
}

// Setn overwrites the element N slots below TOS with a copy of TOS.
// TOS itself is not popped.
type Setn struct{ N int }

func (Setn) Mnemonic() string          { return "setn" }
func (Setn) Length() int               { return 2 }
func (Setn) Pops() int                 { return 0 }
func (Setn) Pushes() int               { return 0 }
func (i Setn) Canonical() Insn         { return i }
func (i Setn) Disasm(f Formatter) string { return fmt.Sprintf("setn %d", i.N) }
func (i Setn) ToA(u iseq.ISeq) []any    { return []any{"setn", i.N} }
func (i Setn) Call(vm VM) error {
	vm.SetStackAt(i.N, vm.StackAt(0))
	return nil
}

// Adjuststack drops N elements from TOS.
type Adjuststack struct{ N int }

func (Adjuststack) Mnemonic() string          { return "adjuststack" }
func (Adjuststack) Length() int               { return 2 }
func (i Adjuststack) Pops() int               { return i.N }
func (Adjuststack) Pushes() int               { return 0 }
func (i Adjuststack) Canonical() Insn         { return i }
func (i Adjuststack) Disasm(f Formatter) string { return fmt.Sprintf("adjuststack %d", i.N) }
func (i Adjuststack) ToA(u iseq.ISeq) []any    { return []any{"adjuststack", i.N} }
func (i Adjuststack) Call(vm VM) error {
	vm.PopN(i.N)
	return nil
}
