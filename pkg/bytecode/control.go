package bytecode

import (
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Jump transfers control unconditionally.
type Jump struct{ Target *iseq.Label }

func (Jump) Mnemonic() string { return "jump" }
func (Jump) Length() int      { return 2 }
func (Jump) Pops() int        { return 0 }
func (Jump) Pushes() int      { return 0 }
func (i Jump) Canonical() Insn { return i }
func (i Jump) Disasm(f Formatter) string { return "jump " + f.Label(i.Target) }
func (i Jump) ToA(u iseq.ISeq) []any      { return []any{"jump", i.Target.Name()} }
func (i Jump) Call(vm VM) error {
	vm.Jump(i.Target)
	return nil
}

// Branchif pops TOS and transfers if truthy.
type Branchif struct{ Target *iseq.Label }

func (Branchif) Mnemonic() string { return "branchif" }
func (Branchif) Length() int      { return 2 }
func (Branchif) Pops() int        { return 1 }
func (Branchif) Pushes() int      { return 0 }
func (i Branchif) Canonical() Insn { return i }
func (i Branchif) Disasm(f Formatter) string { return "branchif " + f.Label(i.Target) }
func (i Branchif) ToA(u iseq.ISeq) []any      { return []any{"branchif", i.Target.Name()} }
func (i Branchif) Call(vm VM) error {
	if vm.Pop().Truthy() {
		vm.Jump(i.Target)
	}
	return nil
}

// Branchunless pops TOS and transfers if falsy.
type Branchunless struct{ Target *iseq.Label }

func (Branchunless) Mnemonic() string { return "branchunless" }
func (Branchunless) Length() int      { return 2 }
func (Branchunless) Pops() int        { return 1 }
func (Branchunless) Pushes() int      { return 0 }
func (i Branchunless) Canonical() Insn { return i }
func (i Branchunless) Disasm(f Formatter) string { return "branchunless " + f.Label(i.Target) }
func (i Branchunless) ToA(u iseq.ISeq) []any      { return []any{"branchunless", i.Target.Name()} }
func (i Branchunless) Call(vm VM) error {
	if !vm.Pop().Truthy() {
		vm.Jump(i.Target)
	}
	return nil
}

// Branchnil pops TOS and transfers if nil.
type Branchnil struct{ Target *iseq.Label }

func (Branchnil) Mnemonic() string { return "branchnil" }
func (Branchnil) Length() int      { return 2 }
func (Branchnil) Pops() int        { return 1 }
func (Branchnil) Pushes() int      { return 0 }
func (i Branchnil) Canonical() Insn { return i }
func (i Branchnil) Disasm(f Formatter) string { return "branchnil " + f.Label(i.Target) }
func (i Branchnil) ToA(u iseq.ISeq) []any      { return []any{"branchnil", i.Target.Name()} }
func (i Branchnil) Call(vm VM) error {
	if vm.Pop().Kind() == value.KindNil {
		vm.Jump(i.Target)
	}
	return nil
}

// OptCaseDispatch pops TOS, looks it up in a compile-time dispatch
// table of literal constants, and transfers to the matching label or
// Else if no key matches.
type OptCaseDispatch struct {
	Table map[value.Value]*iseq.Label
	Else  *iseq.Label
}

func (OptCaseDispatch) Mnemonic() string { return "opt_case_dispatch" }
func (OptCaseDispatch) Length() int      { return 3 }
func (OptCaseDispatch) Pops() int        { return 1 }
func (OptCaseDispatch) Pushes() int      { return 0 }
func (i OptCaseDispatch) Canonical() Insn { return i }
func (i OptCaseDispatch) Disasm(f Formatter) string {
	return "opt_case_dispatch " + f.Label(i.Else)
}
func (i OptCaseDispatch) ToA(u iseq.ISeq) []any {
	return []any{"opt_case_dispatch", i.Else.Name()}
}
func (i OptCaseDispatch) Call(vm VM) error {
	v := vm.Pop()
	for k, target := range i.Table {
		if k.Equal(v) {
			vm.Jump(target)
			return nil
		}
	}
	vm.Jump(i.Else)
	return nil
}

// Leave pops TOS as the return value and unwinds the current frame.
// Pushes() reports 0 though the effective net stack effect is -1: the
// popped value is transferred to the caller's frame, not discarded, so
// it never occupies a slot the callee's own stack accounting owns.
type Leave struct{}

func (Leave) Mnemonic() string { return "leave" }
func (Leave) Length() int      { return 1 }
func (Leave) Pops() int        { return 1 }
func (Leave) Pushes() int      { return 0 }
func (i Leave) Canonical() Insn { return i }
func (i Leave) Disasm(f Formatter) string { return "leave" }
func (i Leave) ToA(u iseq.ISeq) []any      { return []any{"leave"} }
func (i Leave) Call(vm VM) error {
	return vm.Leave(vm.Pop())
}

// Nop has no effect; serves as a branch target placeholder.
type Nop struct{}

func (Nop) Mnemonic() string { return "nop" }
func (Nop) Length() int      { return 1 }
func (Nop) Pops() int        { return 0 }
func (Nop) Pushes() int      { return 0 }
func (i Nop) Canonical() Insn { return i }
func (i Nop) Disasm(f Formatter) string { return "nop" }
func (i Nop) ToA(u iseq.ISeq) []any      { return []any{"nop"} }
func (i Nop) Call(vm VM) error           { return nil }

// Throw pops TOS and initiates a non-local control transfer of the
// given tag, resolved against the catch table of the current or an
// ancestor iseq.
type Throw struct{ Tag ThrowTag }

func (Throw) Mnemonic() string { return "throw" }
func (Throw) Length() int      { return 2 }
func (Throw) Pops() int        { return 1 }
func (Throw) Pushes() int      { return 0 }
func (i Throw) Canonical() Insn { return i }
func (i Throw) Disasm(f Formatter) string { return "throw " + i.Tag.String() }
func (i Throw) ToA(u iseq.ISeq) []any      { return []any{"throw", i.Tag.String()} }
func (i Throw) Call(vm VM) error {
	return vm.Throw(i.Tag, vm.Pop())
}
