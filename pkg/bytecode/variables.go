package bytecode

import (
	"fmt"

	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Getlocal reads a local slot Lvl frame levels up, at compiler Index.
type Getlocal struct{ Index, Lvl int }

func (Getlocal) Mnemonic() string { return "getlocal" }
func (Getlocal) Length() int      { return 3 }
func (Getlocal) Pops() int        { return 0 }
func (Getlocal) Pushes() int      { return 1 }
func (i Getlocal) Canonical() Insn { return i }
func (i Getlocal) Disasm(f Formatter) string {
	return fmt.Sprintf("getlocal %d %d", i.Index, i.Lvl)
}
func (i Getlocal) ToA(u iseq.ISeq) []any {
	return []any{"getlocal", u.Locals().Offset(i.Index), i.Lvl}
}
func (i Getlocal) Call(vm VM) error {
	vm.Push(vm.LocalGet(i.Index, i.Lvl))
	return nil
}

// Setlocal writes TOS into a local slot Lvl frame levels up.
type Setlocal struct{ Index, Lvl int }

func (Setlocal) Mnemonic() string { return "setlocal" }
func (Setlocal) Length() int      { return 3 }
func (Setlocal) Pops() int        { return 1 }
func (Setlocal) Pushes() int      { return 0 }
func (i Setlocal) Canonical() Insn { return i }
func (i Setlocal) Disasm(f Formatter) string {
	return fmt.Sprintf("setlocal %d %d", i.Index, i.Lvl)
}
func (i Setlocal) ToA(u iseq.ISeq) []any {
	return []any{"setlocal", u.Locals().Offset(i.Index), i.Lvl}
}
func (i Setlocal) Call(vm VM) error {
	vm.LocalSet(i.Index, i.Lvl, vm.Pop())
	return nil
}

// GetlocalWC0 is the legacy "current frame" fast path for getlocal.
type GetlocalWC0 struct{ Index int }

func (GetlocalWC0) Mnemonic() string { return "getlocal_WC_0" }
func (GetlocalWC0) Length() int      { return 2 }
func (GetlocalWC0) Pops() int        { return 0 }
func (GetlocalWC0) Pushes() int      { return 1 }
func (i GetlocalWC0) Canonical() Insn { return Getlocal{Index: i.Index, Lvl: 0} }
func (i GetlocalWC0) Disasm(f Formatter) string {
	return fmt.Sprintf("getlocal_WC_0 %d", i.Index)
}
func (i GetlocalWC0) ToA(u iseq.ISeq) []any {
	return []any{"getlocal_WC_0", u.Locals().Offset(i.Index)}
}
func (i GetlocalWC0) Call(vm VM) error { return i.Canonical().Call(vm) }

// GetlocalWC1 is the legacy "one frame up" fast path for getlocal.
type GetlocalWC1 struct{ Index int }

func (GetlocalWC1) Mnemonic() string { return "getlocal_WC_1" }
func (GetlocalWC1) Length() int      { return 2 }
func (GetlocalWC1) Pops() int        { return 0 }
func (GetlocalWC1) Pushes() int      { return 1 }
func (i GetlocalWC1) Canonical() Insn { return Getlocal{Index: i.Index, Lvl: 1} }
func (i GetlocalWC1) Disasm(f Formatter) string {
	return fmt.Sprintf("getlocal_WC_1 %d", i.Index)
}
func (i GetlocalWC1) ToA(u iseq.ISeq) []any {
	return []any{"getlocal_WC_1", u.Locals().Offset(i.Index)}
}
func (i GetlocalWC1) Call(vm VM) error { return i.Canonical().Call(vm) }

// SetlocalWC0 is the legacy "current frame" fast path for setlocal.
type SetlocalWC0 struct{ Index int }

func (SetlocalWC0) Mnemonic() string { return "setlocal_WC_0" }
func (SetlocalWC0) Length() int      { return 2 }
func (SetlocalWC0) Pops() int        { return 1 }
func (SetlocalWC0) Pushes() int      { return 0 }
func (i SetlocalWC0) Canonical() Insn { return Setlocal{Index: i.Index, Lvl: 0} }
func (i SetlocalWC0) Disasm(f Formatter) string {
	return fmt.Sprintf("setlocal_WC_0 %d", i.Index)
}
func (i SetlocalWC0) ToA(u iseq.ISeq) []any {
	return []any{"setlocal_WC_0", u.Locals().Offset(i.Index)}
}
func (i SetlocalWC0) Call(vm VM) error { return i.Canonical().Call(vm) }

// SetlocalWC1 is the legacy "one frame up" fast path for setlocal.
type SetlocalWC1 struct{ Index int }

func (SetlocalWC1) Mnemonic() string { return "setlocal_WC_1" }
func (SetlocalWC1) Length() int      { return 2 }
func (SetlocalWC1) Pops() int        { return 1 }
func (SetlocalWC1) Pushes() int      { return 0 }
func (i SetlocalWC1) Canonical() Insn { return Setlocal{Index: i.Index, Lvl: 1} }
func (i SetlocalWC1) Disasm(f Formatter) string {
	return fmt.Sprintf("setlocal_WC_1 %d", i.Index)
}
func (i SetlocalWC1) ToA(u iseq.ISeq) []any {
	return []any{"setlocal_WC_1", u.Locals().Offset(i.Index)}
}
func (i SetlocalWC1) Call(vm VM) error { return i.Canonical().Call(vm) }

// Getblockparam reads the enclosing method's block parameter as a
// materialized block value.
type Getblockparam struct{ Index, Lvl int }

func (Getblockparam) Mnemonic() string { return "getblockparam" }
func (Getblockparam) Length() int      { return 3 }
func (Getblockparam) Pops() int        { return 0 }
func (Getblockparam) Pushes() int      { return 1 }
func (i Getblockparam) Canonical() Insn { return i }
func (i Getblockparam) Disasm(f Formatter) string {
	return fmt.Sprintf("getblockparam %d %d", i.Index, i.Lvl)
}
func (i Getblockparam) ToA(u iseq.ISeq) []any {
	return []any{"getblockparam", u.Locals().Offset(i.Index), i.Lvl}
}
func (i Getblockparam) Call(vm VM) error {
	b := vm.BlockParam()
	if b == nil {
		vm.Push(value.Nil)
		return nil
	}
	vm.Push(b)
	return nil
}

// Getblockparamproxy reads the block parameter as a thin proxy that
// forwards to the live block without forcing materialization.
type Getblockparamproxy struct{ Index, Lvl int }

func (Getblockparamproxy) Mnemonic() string { return "getblockparamproxy" }
func (Getblockparamproxy) Length() int      { return 3 }
func (Getblockparamproxy) Pops() int        { return 0 }
func (Getblockparamproxy) Pushes() int      { return 1 }
func (i Getblockparamproxy) Canonical() Insn { return i }
func (i Getblockparamproxy) Disasm(f Formatter) string {
	return fmt.Sprintf("getblockparamproxy %d %d", i.Index, i.Lvl)
}
func (i Getblockparamproxy) ToA(u iseq.ISeq) []any {
	return []any{"getblockparamproxy", u.Locals().Offset(i.Index), i.Lvl}
}
func (i Getblockparamproxy) Call(vm VM) error {
	b := vm.BlockParam()
	if b == nil {
		vm.Push(value.Nil)
		return nil
	}
	vm.Push(b)
	return nil
}

// Setblockparam overwrites the enclosing method's block parameter.
type Setblockparam struct{ Index, Lvl int }

func (Setblockparam) Mnemonic() string { return "setblockparam" }
func (Setblockparam) Length() int      { return 3 }
func (Setblockparam) Pops() int        { return 1 }
func (Setblockparam) Pushes() int      { return 0 }
func (i Setblockparam) Canonical() Insn { return i }
func (i Setblockparam) Disasm(f Formatter) string {
	return fmt.Sprintf("setblockparam %d %d", i.Index, i.Lvl)
}
func (i Setblockparam) ToA(u iseq.ISeq) []any {
	return []any{"setblockparam", u.Locals().Offset(i.Index), i.Lvl}
}
func (i Setblockparam) Call(vm VM) error {
	v := vm.Pop()
	b, ok := v.(*value.BlockValue)
	if !ok && v != value.Nil {
		return newHostError("setblockparam: operand is not a block, got %s", v.Kind())
	}
	if ok {
		vm.SetBlockParam(b)
	} else {
		vm.SetBlockParam(nil)
	}
	return nil
}

// Getinstancevariable reads an ivar of the current self. Cache is an
// opaque inline-cache handle owned by the VM.
type Getinstancevariable struct {
	Name  string
	Cache any
}

func (Getinstancevariable) Mnemonic() string { return "getinstancevariable" }
func (Getinstancevariable) Length() int      { return 3 }
func (Getinstancevariable) Pops() int        { return 0 }
func (Getinstancevariable) Pushes() int      { return 1 }
func (i Getinstancevariable) Canonical() Insn { return i }
func (i Getinstancevariable) Disasm(f Formatter) string {
	return "getinstancevariable " + i.Name + " " + f.Cache(i.Cache)
}
func (i Getinstancevariable) ToA(u iseq.ISeq) []any {
	return []any{"getinstancevariable", i.Name}
}
func (i Getinstancevariable) Call(vm VM) error {
	vm.Push(vm.GetIVar(i.Name))
	return nil
}

// Setinstancevariable writes TOS into an ivar of the current self.
type Setinstancevariable struct {
	Name  string
	Cache any
}

func (Setinstancevariable) Mnemonic() string { return "setinstancevariable" }
func (Setinstancevariable) Length() int      { return 3 }
func (Setinstancevariable) Pops() int        { return 1 }
func (Setinstancevariable) Pushes() int      { return 0 }
func (i Setinstancevariable) Canonical() Insn { return i }
func (i Setinstancevariable) Disasm(f Formatter) string {
	return "setinstancevariable " + i.Name + " " + f.Cache(i.Cache)
}
func (i Setinstancevariable) ToA(u iseq.ISeq) []any {
	return []any{"setinstancevariable", i.Name}
}
func (i Setinstancevariable) Call(vm VM) error {
	vm.SetIVar(i.Name, vm.Pop())
	return nil
}

// Getclassvariable walks from current self's class to read a cvar.
type Getclassvariable struct {
	Name  string
	Cache any
}

func (Getclassvariable) Mnemonic() string { return "getclassvariable" }
func (Getclassvariable) Length() int      { return 3 }
func (Getclassvariable) Pops() int        { return 0 }
func (Getclassvariable) Pushes() int      { return 1 }
func (i Getclassvariable) Canonical() Insn { return i }
func (i Getclassvariable) Disasm(f Formatter) string {
	return "getclassvariable " + i.Name + " " + f.Cache(i.Cache)
}
func (i Getclassvariable) ToA(u iseq.ISeq) []any { return []any{"getclassvariable", i.Name} }
func (i Getclassvariable) Call(vm VM) error {
	v, err := vm.GetCVar(i.Name)
	if err != nil {
		return err
	}
	vm.Push(v)
	return nil
}

// Setclassvariable writes TOS into a cvar of current self's class.
type Setclassvariable struct {
	Name  string
	Cache any
}

func (Setclassvariable) Mnemonic() string { return "setclassvariable" }
func (Setclassvariable) Length() int      { return 3 }
func (Setclassvariable) Pops() int        { return 1 }
func (Setclassvariable) Pushes() int      { return 0 }
func (i Setclassvariable) Canonical() Insn { return i }
func (i Setclassvariable) Disasm(f Formatter) string {
	return "setclassvariable " + i.Name + " " + f.Cache(i.Cache)
}
func (i Setclassvariable) ToA(u iseq.ISeq) []any { return []any{"setclassvariable", i.Name} }
func (i Setclassvariable) Call(vm VM) error {
	vm.SetCVar(i.Name, vm.Pop())
	return nil
}

// GetclassvariableLegacy is the cache-free form from older bytecode
// streams; canonicalizes to the cached form with a nil cache handle.
type GetclassvariableLegacy struct{ Name string }

func (GetclassvariableLegacy) Mnemonic() string { return "getclassvariable_legacy" }
func (GetclassvariableLegacy) Length() int      { return 2 }
func (GetclassvariableLegacy) Pops() int        { return 0 }
func (GetclassvariableLegacy) Pushes() int      { return 1 }
func (i GetclassvariableLegacy) Canonical() Insn {
	return Getclassvariable{Name: i.Name, Cache: nil}
}
func (i GetclassvariableLegacy) Disasm(f Formatter) string {
	return "getclassvariable_legacy " + i.Name
}
func (i GetclassvariableLegacy) ToA(u iseq.ISeq) []any {
	return []any{"getclassvariable_legacy", i.Name}
}
func (i GetclassvariableLegacy) Call(vm VM) error { return i.Canonical().Call(vm) }

// SetclassvariableLegacy is the cache-free form from older bytecode
// streams; canonicalizes to the cached form with a nil cache handle.
type SetclassvariableLegacy struct{ Name string }

func (SetclassvariableLegacy) Mnemonic() string { return "setclassvariable_legacy" }
func (SetclassvariableLegacy) Length() int      { return 2 }
func (SetclassvariableLegacy) Pops() int        { return 1 }
func (SetclassvariableLegacy) Pushes() int      { return 0 }
func (i SetclassvariableLegacy) Canonical() Insn {
	return Setclassvariable{Name: i.Name, Cache: nil}
}
func (i SetclassvariableLegacy) Disasm(f Formatter) string {
	return "setclassvariable_legacy " + i.Name
}
func (i SetclassvariableLegacy) ToA(u iseq.ISeq) []any {
	return []any{"setclassvariable_legacy", i.Name}
}
func (i SetclassvariableLegacy) Call(vm VM) error { return i.Canonical().Call(vm) }

// Getglobal reads a global variable.
type Getglobal struct{ Name string }

func (Getglobal) Mnemonic() string { return "getglobal" }
func (Getglobal) Length() int      { return 2 }
func (Getglobal) Pops() int        { return 0 }
func (Getglobal) Pushes() int      { return 1 }
func (i Getglobal) Canonical() Insn { return i }
func (i Getglobal) Disasm(f Formatter) string { return "getglobal " + i.Name }
func (i Getglobal) ToA(u iseq.ISeq) []any      { return []any{"getglobal", i.Name} }
func (i Getglobal) Call(vm VM) error {
	vm.Push(vm.GetGlobal(i.Name))
	return nil
}

// Setglobal writes TOS into a global variable.
type Setglobal struct{ Name string }

func (Setglobal) Mnemonic() string { return "setglobal" }
func (Setglobal) Length() int      { return 2 }
func (Setglobal) Pops() int        { return 1 }
func (Setglobal) Pushes() int      { return 0 }
func (i Setglobal) Canonical() Insn { return i }
func (i Setglobal) Disasm(f Formatter) string { return "setglobal " + i.Name }
func (i Setglobal) ToA(u iseq.ISeq) []any      { return []any{"setglobal", i.Name} }
func (i Setglobal) Call(vm VM) error {
	vm.SetGlobal(i.Name, vm.Pop())
	return nil
}

// Getconstant pops (const_base, allow_missing) and resolves name from
// the lexical nesting innermost-outward.
type Getconstant struct{ Name string }

func (Getconstant) Mnemonic() string { return "getconstant" }
func (Getconstant) Length() int      { return 2 }
func (Getconstant) Pops() int        { return 2 }
func (Getconstant) Pushes() int      { return 1 }
func (i Getconstant) Canonical() Insn { return i }
func (i Getconstant) Disasm(f Formatter) string { return "getconstant " + i.Name }
func (i Getconstant) ToA(u iseq.ISeq) []any      { return []any{"getconstant", i.Name} }
func (i Getconstant) Call(vm VM) error {
	allowMissing := vm.Pop()
	vm.Pop() // const_base; resolution walks the VM's own lexical nesting
	v, ok := vm.ResolveConst(i.Name, allowMissing.Truthy())
	if !ok {
		return newHostError("uninitialized constant %s", i.Name)
	}
	vm.Push(v)
	return nil
}

// Setconstant pops (value, parent) and assigns.
type Setconstant struct{ Name string }

func (Setconstant) Mnemonic() string { return "setconstant" }
func (Setconstant) Length() int      { return 2 }
func (Setconstant) Pops() int        { return 2 }
func (Setconstant) Pushes() int      { return 0 }
func (i Setconstant) Canonical() Insn { return i }
func (i Setconstant) Disasm(f Formatter) string { return "setconstant " + i.Name }
func (i Setconstant) ToA(u iseq.ISeq) []any      { return []any{"setconstant", i.Name} }
func (i Setconstant) Call(vm VM) error {
	v := vm.Pop()
	parent := vm.Pop()
	vm.SetConst(parent, i.Name, v)
	return nil
}

// OptGetconstantPath resolves a dotted constant path from the root in
// one shot; Names[0]=="" denotes a leading "::".
type OptGetconstantPath struct{ Names []string }

func (OptGetconstantPath) Mnemonic() string { return "opt_getconstant_path" }
func (i OptGetconstantPath) Length() int    { return 2 }
func (OptGetconstantPath) Pops() int        { return 0 }
func (OptGetconstantPath) Pushes() int      { return 1 }
func (i OptGetconstantPath) Canonical() Insn { return i }
func (i OptGetconstantPath) Disasm(f Formatter) string {
	return "opt_getconstant_path " + fmt.Sprint(i.Names)
}
func (i OptGetconstantPath) ToA(u iseq.ISeq) []any {
	return []any{"opt_getconstant_path", i.Names}
}
func (i OptGetconstantPath) Call(vm VM) error {
	var cur value.Value
	for _, name := range i.Names {
		if name == "" {
			continue // leading "::" — resolution starts at the root either way
		}
		v, ok := vm.ResolveConst(name, false)
		if !ok {
			return newHostError("uninitialized constant %s", name)
		}
		cur = v
	}
	if cur == nil {
		return newHostError("opt_getconstant_path: empty path")
	}
	vm.Push(cur)
	return nil
}

// Getspecial reads a flip-flop/backref slot. Key 0 is $_ (the last
// line read), key 1 is $~ (the last match), keys 2+ are flip-flop
// state cells.
type Getspecial struct {
	Key  int
	Type int
}

func (Getspecial) Mnemonic() string { return "getspecial" }
func (Getspecial) Length() int      { return 3 }
func (Getspecial) Pops() int        { return 0 }
func (Getspecial) Pushes() int      { return 1 }
func (i Getspecial) Canonical() Insn { return i }
func (i Getspecial) Disasm(f Formatter) string {
	return fmt.Sprintf("getspecial %d %d", i.Key, i.Type)
}
func (i Getspecial) ToA(u iseq.ISeq) []any { return []any{"getspecial", i.Key, i.Type} }
func (i Getspecial) Call(vm VM) error {
	vm.Push(vm.SVarGet(i.Key))
	return nil
}

// Setspecial writes TOS into a flip-flop/backref slot.
type Setspecial struct{ Key int }

func (Setspecial) Mnemonic() string { return "setspecial" }
func (Setspecial) Length() int      { return 2 }
func (Setspecial) Pops() int        { return 1 }
func (Setspecial) Pushes() int      { return 0 }
func (i Setspecial) Canonical() Insn { return i }
func (i Setspecial) Disasm(f Formatter) string { return fmt.Sprintf("setspecial %d", i.Key) }
func (i Setspecial) ToA(u iseq.ISeq) []any      { return []any{"setspecial", i.Key} }
func (i Setspecial) Call(vm VM) error {
	vm.SVarSet(i.Key, vm.Pop())
	return nil
}
