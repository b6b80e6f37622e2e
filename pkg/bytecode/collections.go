package bytecode

import (
	"fmt"

	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Newarray builds an array from the top n stack slots.
type Newarray struct{ N int }

func (Newarray) Mnemonic() string { return "newarray" }
func (Newarray) Length() int      { return 2 }
func (i Newarray) Pops() int      { return i.N }
func (Newarray) Pushes() int      { return 1 }
func (i Newarray) Canonical() Insn { return i }
func (i Newarray) Disasm(f Formatter) string { return fmt.Sprintf("newarray %d", i.N) }
func (i Newarray) ToA(u iseq.ISeq) []any      { return []any{"newarray", i.N} }
func (i Newarray) Call(vm VM) error {
	vm.Push(value.NewArray(vm.PopN(i.N)...))
	return nil
}

// Newarraykwsplat builds an array from n slots where the tail element
// carries keyword-splat semantics for the array's consumer.
type Newarraykwsplat struct{ N int }

func (Newarraykwsplat) Mnemonic() string { return "newarraykwsplat" }
func (Newarraykwsplat) Length() int      { return 2 }
func (i Newarraykwsplat) Pops() int      { return i.N }
func (Newarraykwsplat) Pushes() int      { return 1 }
func (i Newarraykwsplat) Canonical() Insn { return i }
func (i Newarraykwsplat) Disasm(f Formatter) string {
	return fmt.Sprintf("newarraykwsplat %d", i.N)
}
func (i Newarraykwsplat) ToA(u iseq.ISeq) []any { return []any{"newarraykwsplat", i.N} }
func (i Newarraykwsplat) Call(vm VM) error {
	vm.Push(value.NewArray(vm.PopN(i.N)...))
	return nil
}

// Newhash builds a hash from n stack slots (n must be even; consecutive
// pairs are key, value).
type Newhash struct{ N int }

func (Newhash) Mnemonic() string { return "newhash" }
func (Newhash) Length() int      { return 2 }
func (i Newhash) Pops() int      { return i.N }
func (Newhash) Pushes() int      { return 1 }
func (i Newhash) Canonical() Insn { return i }
func (i Newhash) Disasm(f Formatter) string { return fmt.Sprintf("newhash %d", i.N) }
func (i Newhash) ToA(u iseq.ISeq) []any      { return []any{"newhash", i.N} }
func (i Newhash) Call(vm VM) error {
	if i.N%2 != 0 {
		return newHostError("newhash: odd operand count %d", i.N)
	}
	pairs := vm.PopN(i.N)
	h := value.NewHash()
	for k := 0; k+1 < len(pairs); k += 2 {
		h.Set(pairs[k], pairs[k+1])
	}
	vm.Push(h)
	return nil
}

// Concatarray pops (left, right) and pushes their splat-concatenation.
// Both operands are treated as already-array via their own splat
// semantics — this is deliberately NOT a to_a coercion of arbitrary
// objects; a non-array operand contributes itself as a single element,
// matching the reference engine's concatarray rather than a generic
// "anything iterable" join.
type Concatarray struct{}

func (Concatarray) Mnemonic() string { return "concatarray" }
func (Concatarray) Length() int      { return 1 }
func (Concatarray) Pops() int        { return 2 }
func (Concatarray) Pushes() int      { return 1 }
func (i Concatarray) Canonical() Insn { return i }
func (i Concatarray) Disasm(f Formatter) string { return "concatarray" }
func (i Concatarray) ToA(u iseq.ISeq) []any      { return []any{"concatarray"} }
func (i Concatarray) Call(vm VM) error {
	right := vm.Pop()
	left := vm.Pop()
	out := splatInto(nil, left)
	out = splatInto(out, right)
	vm.Push(value.NewArray(out...))
	return nil
}

func splatInto(acc []value.Value, v value.Value) []value.Value {
	if arr, ok := v.(*value.Array); ok {
		return append(acc, arr.Elems...)
	}
	return append(acc, v)
}

// Splatarray pops TOS and coerces it to an array; Flag selects whether
// the pushed array is a defensive copy (true) or the original array
// reference (false, for tail-call efficient splat contexts).
type Splatarray struct{ Flag int }

func (Splatarray) Mnemonic() string { return "splatarray" }
func (Splatarray) Length() int      { return 2 }
func (Splatarray) Pops() int        { return 1 }
func (Splatarray) Pushes() int      { return 1 }
func (i Splatarray) Canonical() Insn { return i }
func (i Splatarray) Disasm(f Formatter) string {
	return fmt.Sprintf("splatarray %d", i.Flag)
}
func (i Splatarray) ToA(u iseq.ISeq) []any { return []any{"splatarray", i.Flag} }
func (i Splatarray) Call(vm VM) error {
	v := vm.Pop()
	arr, ok := v.(*value.Array)
	if !ok {
		arr = value.NewArray(v)
	}
	if i.Flag != 0 {
		vm.Push(arr.Copy())
		return nil
	}
	vm.Push(arr)
	return nil
}

// Expandarray pops an array and pushes n of its elements, padding with
// nil if the array is shorter. Flags & 1 requests a remainder array at
// a fixed position; flags & 2 requests post-splat ordering (the
// fixed-position elements follow, rather than precede, the splat
// remainder).
type Expandarray struct {
	N     int
	Flags int
}

func (Expandarray) Mnemonic() string { return "expandarray" }
func (Expandarray) Length() int      { return 3 }
func (Expandarray) Pops() int        { return 1 }
func (i Expandarray) Pushes() int {
	if i.Flags&1 != 0 {
		return i.N + 1
	}
	return i.N
}
func (i Expandarray) Canonical() Insn { return i }
func (i Expandarray) Disasm(f Formatter) string {
	return fmt.Sprintf("expandarray %d %d", i.N, i.Flags)
}
func (i Expandarray) ToA(u iseq.ISeq) []any { return []any{"expandarray", i.N, i.Flags} }
func (i Expandarray) Call(vm VM) error {
	v := vm.Pop()
	arr, ok := v.(*value.Array)
	if !ok {
		arr = value.NewArray(v)
	}
	elems := arr.Elems
	splat := i.Flags&1 != 0
	postSplat := i.Flags&2 != 0

	fixed := make([]value.Value, i.N)
	var rest []value.Value

	if !splat {
		for k := 0; k < i.N; k++ {
			if k < len(elems) {
				fixed[k] = elems[k]
			} else {
				fixed[k] = value.Nil
			}
		}
	} else if !postSplat {
		// elements after the first i.N are the remainder tail, in
		// front-to-back consumption order.
		for k := 0; k < i.N; k++ {
			if k < len(elems) {
				fixed[k] = elems[k]
			} else {
				fixed[k] = value.Nil
			}
		}
		if len(elems) > i.N {
			rest = append(rest, elems[i.N:]...)
		}
	} else {
		// remainder is the head, fixed elements are the tail.
		if len(elems) > i.N {
			rest = append(rest, elems[:len(elems)-i.N]...)
			for k := 0; k < i.N; k++ {
				fixed[k] = elems[len(elems)-i.N+k]
			}
		} else {
			for k := 0; k < i.N; k++ {
				if k < len(elems) {
					fixed[k] = elems[k]
				} else {
					fixed[k] = value.Nil
				}
			}
		}
	}

	// Push order is reversed relative to consumption: the interpreter
	// expects the first logical element nearest TOS after a run of
	// setlocal pops, mirroring the reference engine's push order.
	for k := len(fixed) - 1; k >= 0; k-- {
		vm.Push(fixed[k])
	}
	if splat {
		vm.Push(value.NewArray(rest...))
	}
	return nil
}
