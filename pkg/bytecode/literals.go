package bytecode

import (
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Putnil pushes nil. Canonicalizes to Putobject{value.Nil}.
type Putnil struct{}

func (Putnil) Mnemonic() string          { return "putnil" }
func (Putnil) Length() int               { return 1 }
func (Putnil) Pops() int                 { return 0 }
func (Putnil) Pushes() int               { return 1 }
func (i Putnil) Canonical() Insn         { return Putobject{Val: value.Nil} }
func (i Putnil) Disasm(f Formatter) string { return "putnil" }
func (i Putnil) ToA(u iseq.ISeq) []any    { return []any{"putnil"} }
func (i Putnil) Call(vm VM) error          { return i.Canonical().Call(vm) }

// Putself pushes the current self.
type Putself struct{}

func (Putself) Mnemonic() string          { return "putself" }
func (Putself) Length() int               { return 1 }
func (Putself) Pops() int                 { return 0 }
func (Putself) Pushes() int               { return 1 }
func (i Putself) Canonical() Insn         { return i }
func (i Putself) Disasm(f Formatter) string { return "putself" }
func (i Putself) ToA(u iseq.ISeq) []any    { return []any{"putself"} }
func (i Putself) Call(vm VM) error {
	vm.Push(vm.Self())
	return nil
}

// Putobject pushes a literal value embedded in the instruction.
type Putobject struct{ Val value.Value }

func (Putobject) Mnemonic() string { return "putobject" }
func (Putobject) Length() int      { return 2 }
func (Putobject) Pops() int        { return 0 }
func (Putobject) Pushes() int      { return 1 }
func (i Putobject) Canonical() Insn { return i }
func (i Putobject) Disasm(f Formatter) string {
	return "putobject " + f.Object(i.Val)
}
func (i Putobject) ToA(u iseq.ISeq) []any { return []any{"putobject", i.Val} }
func (i Putobject) Call(vm VM) error {
	vm.Push(i.Val)
	return nil
}

// PutobjectInt2Fix0 is the legacy literal-0 fast path.
type PutobjectInt2Fix0 struct{}

func (PutobjectInt2Fix0) Mnemonic() string { return "putobject_INT2FIX_0_" }
func (PutobjectInt2Fix0) Length() int      { return 1 }
func (PutobjectInt2Fix0) Pops() int        { return 0 }
func (PutobjectInt2Fix0) Pushes() int      { return 1 }
func (i PutobjectInt2Fix0) Canonical() Insn {
	return Putobject{Val: value.NewInteger(0)}
}
func (i PutobjectInt2Fix0) Disasm(f Formatter) string { return "putobject_INT2FIX_0_" }
func (i PutobjectInt2Fix0) ToA(u iseq.ISeq) []any      { return []any{"putobject_INT2FIX_0_"} }
func (i PutobjectInt2Fix0) Call(vm VM) error           { return i.Canonical().Call(vm) }

// PutobjectInt2Fix1 is the legacy literal-1 fast path.
type PutobjectInt2Fix1 struct{}

func (PutobjectInt2Fix1) Mnemonic() string { return "putobject_INT2FIX_1_" }
func (PutobjectInt2Fix1) Length() int      { return 1 }
func (PutobjectInt2Fix1) Pops() int        { return 0 }
func (PutobjectInt2Fix1) Pushes() int      { return 1 }
func (i PutobjectInt2Fix1) Canonical() Insn {
	return Putobject{Val: value.NewInteger(1)}
}
func (i PutobjectInt2Fix1) Disasm(f Formatter) string { return "putobject_INT2FIX_1_" }
func (i PutobjectInt2Fix1) ToA(u iseq.ISeq) []any      { return []any{"putobject_INT2FIX_1_"} }
func (i PutobjectInt2Fix1) Call(vm VM) error           { return i.Canonical().Call(vm) }

// Putstring pushes a literal string.
type Putstring struct{ S string }

func (Putstring) Mnemonic() string { return "putstring" }
func (Putstring) Length() int      { return 2 }
func (Putstring) Pops() int        { return 0 }
func (Putstring) Pushes() int      { return 1 }
func (i Putstring) Canonical() Insn { return i }
func (i Putstring) Disasm(f Formatter) string {
	return "putstring " + f.Object(value.NewStr(i.S))
}
func (i Putstring) ToA(u iseq.ISeq) []any { return []any{"putstring", i.S} }
func (i Putstring) Call(vm VM) error {
	vm.Push(value.NewStr(i.S))
	return nil
}

// Duparray pushes a shallow copy of a literal array.
type Duparray struct{ Elems []value.Value }

func (Duparray) Mnemonic() string { return "duparray" }
func (Duparray) Length() int      { return 2 }
func (Duparray) Pops() int        { return 0 }
func (Duparray) Pushes() int      { return 1 }
func (i Duparray) Canonical() Insn { return i }
func (i Duparray) Disasm(f Formatter) string {
	return "duparray " + f.Object(value.NewArray(i.Elems...))
}
func (i Duparray) ToA(u iseq.ISeq) []any { return []any{"duparray", i.Elems} }
func (i Duparray) Call(vm VM) error {
	vm.Push(value.NewArray(i.Elems...).Copy())
	return nil
}

// Duphash pushes a shallow copy of a literal hash. Pairs is a flat
// (key, value, key, value, ...) slice.
type Duphash struct{ Pairs []value.Value }

func (Duphash) Mnemonic() string { return "duphash" }
func (Duphash) Length() int      { return 2 }
func (Duphash) Pops() int        { return 0 }
func (Duphash) Pushes() int      { return 1 }
func (i Duphash) Canonical() Insn { return i }
func (i Duphash) Disasm(f Formatter) string { return "duphash" }
func (i Duphash) ToA(u iseq.ISeq) []any      { return []any{"duphash", i.Pairs} }
func (i Duphash) Call(vm VM) error {
	h := value.NewHash()
	for k := 0; k+1 < len(i.Pairs); k += 2 {
		h.Set(i.Pairs[k], i.Pairs[k+1])
	}
	vm.Push(h)
	return nil
}

// Putspecialobject pushes one of the three ambient references used by
// alias/undef/const lowerings.
type Putspecialobject struct{ Kind SpecialObjectKind }

func (Putspecialobject) Mnemonic() string { return "putspecialobject" }
func (Putspecialobject) Length() int      { return 2 }
func (Putspecialobject) Pops() int        { return 0 }
func (Putspecialobject) Pushes() int      { return 1 }
func (i Putspecialobject) Canonical() Insn { return i }
func (i Putspecialobject) Disasm(f Formatter) string {
	names := map[SpecialObjectKind]string{SpecialVMCore: "VMCORE", SpecialCBase: "CBASE", SpecialConstBase: "CONST_BASE"}
	return "putspecialobject " + names[i.Kind]
}
func (i Putspecialobject) ToA(u iseq.ISeq) []any { return []any{"putspecialobject", int(i.Kind)} }
func (i Putspecialobject) Call(vm VM) error {
	switch i.Kind {
	case SpecialVMCore:
		vm.Push(vm.FrozenCore())
	case SpecialCBase, SpecialConstBase:
		vm.Push(vm.ConstBase())
	}
	return nil
}
