package bytecode

import (
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Send is the general call: receiver, positional args, then (if
// CD.KwArg is set) as many values as kw_arg names, all on the stack in
// that order from bottom to top; BlockIseq, if non-nil, is compiled
// into a block value passed alongside.
type Send struct {
	CD        calldata.CallData
	BlockIseq iseq.ISeq
}

func (Send) Mnemonic() string { return "send" }
func (Send) Length() int      { return 3 }
func (i Send) Pops() int      { return 1 + int(i.CD.Argc) + len(i.CD.KwArg) }
func (Send) Pushes() int      { return 1 }
func (i Send) Canonical() Insn { return i }
func (i Send) Disasm(f Formatter) string {
	s := "send " + f.CallData(i.CD)
	if i.BlockIseq != nil {
		f.Enqueue(i.BlockIseq)
		s += " " + i.BlockIseq.Name()
	}
	return s
}
func (i Send) ToA(u iseq.ISeq) []any {
	if i.BlockIseq != nil {
		return []any{"send", i.CD, i.BlockIseq}
	}
	return []any{"send", i.CD, nil}
}
func (i Send) Call(vm VM) error {
	kwargs := popKwargs(vm, i.CD)
	args := vm.PopN(int(i.CD.Argc))
	recv := vm.Pop()
	var block *value.BlockValue
	if i.BlockIseq != nil {
		block = value.NewBlockValue(i.BlockIseq, vm.CurrentIseq())
	}
	result, err := vm.Send(recv, i.CD, args, kwargs, block)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

func popKwargs(vm VM, cd calldata.CallData) map[string]value.Value {
	if !cd.HasFlag(calldata.FlagKwarg) || len(cd.KwArg) == 0 {
		return nil
	}
	vals := vm.PopN(len(cd.KwArg))
	kwargs := make(map[string]value.Value, len(cd.KwArg))
	for k, name := range cd.KwArg {
		kwargs[name] = vals[k]
	}
	return kwargs
}

// OptSendWithoutBlock is send with no block operand. Canonicalizes to
// send(cd, nil).
type OptSendWithoutBlock struct{ CD calldata.CallData }

func (OptSendWithoutBlock) Mnemonic() string { return "opt_send_without_block" }
func (OptSendWithoutBlock) Length() int      { return 2 }
func (i OptSendWithoutBlock) Pops() int      { return 1 + int(i.CD.Argc) + len(i.CD.KwArg) }
func (OptSendWithoutBlock) Pushes() int      { return 1 }
func (i OptSendWithoutBlock) Canonical() Insn { return Send{CD: i.CD} }
func (i OptSendWithoutBlock) Disasm(f Formatter) string {
	return "opt_send_without_block " + f.CallData(i.CD)
}
func (i OptSendWithoutBlock) ToA(u iseq.ISeq) []any {
	return []any{"opt_send_without_block", i.CD}
}
func (i OptSendWithoutBlock) Call(vm VM) error { return i.Canonical().Call(vm) }

// Invokeblock pops CD.Argc args and calls the currently active block.
type Invokeblock struct{ CD calldata.CallData }

func (Invokeblock) Mnemonic() string { return "invokeblock" }
func (Invokeblock) Length() int      { return 2 }
func (i Invokeblock) Pops() int      { return int(i.CD.Argc) }
func (Invokeblock) Pushes() int      { return 1 }
func (i Invokeblock) Canonical() Insn { return i }
func (i Invokeblock) Disasm(f Formatter) string { return "invokeblock " + f.CallData(i.CD) }
func (i Invokeblock) ToA(u iseq.ISeq) []any      { return []any{"invokeblock", i.CD} }
func (i Invokeblock) Call(vm VM) error {
	args := vm.PopN(int(i.CD.Argc))
	result, err := vm.InvokeBlock(i.CD, args)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// Invokesuper is like send but resolves against the super-method of
// the enclosing method frame.
type Invokesuper struct {
	CD        calldata.CallData
	BlockIseq iseq.ISeq
}

func (Invokesuper) Mnemonic() string { return "invokesuper" }
func (Invokesuper) Length() int      { return 3 }
func (i Invokesuper) Pops() int      { return 1 + int(i.CD.Argc) + len(i.CD.KwArg) }
func (Invokesuper) Pushes() int      { return 1 }
func (i Invokesuper) Canonical() Insn { return i }
func (i Invokesuper) Disasm(f Formatter) string {
	s := "invokesuper " + f.CallData(i.CD)
	if i.BlockIseq != nil {
		f.Enqueue(i.BlockIseq)
	}
	return s
}
func (i Invokesuper) ToA(u iseq.ISeq) []any {
	if i.BlockIseq != nil {
		return []any{"invokesuper", i.CD, i.BlockIseq}
	}
	return []any{"invokesuper", i.CD, nil}
}
func (i Invokesuper) Call(vm VM) error {
	kwargs := popKwargs(vm, i.CD)
	args := vm.PopN(int(i.CD.Argc))
	vm.Pop() // receiver: invokesuper always resolves against the current self
	var block *value.BlockValue
	if i.BlockIseq != nil {
		block = value.NewBlockValue(i.BlockIseq, vm.CurrentIseq())
	}
	result, err := vm.InvokeSuper(i.CD, args, kwargs, block)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// Defineclass flag bits.
const (
	DefineClassTypeMask      = 0x3
	DefineClassTypeClass     = 0
	DefineClassTypeSingleton = 1
	DefineClassTypeModule    = 2
	DefineClassFlagScoped        = 8
	DefineClassFlagHasSuperclass = 16
)

// Defineclass pops (cbase, superclass), creates or reopens the
// constant Name on cbase, runs ClassIseq as a class-body frame, and
// pushes the body's value.
type Defineclass struct {
	Name      string
	ClassIseq iseq.ISeq
	Flags     int
}

func (Defineclass) Mnemonic() string { return "defineclass" }
func (Defineclass) Length() int      { return 4 }
func (Defineclass) Pops() int        { return 2 }
func (Defineclass) Pushes() int      { return 1 }
func (i Defineclass) Canonical() Insn { return i }
func (i Defineclass) Disasm(f Formatter) string {
	f.Enqueue(i.ClassIseq)
	return "defineclass " + i.Name
}
func (i Defineclass) ToA(u iseq.ISeq) []any {
	return []any{"defineclass", i.Name, i.ClassIseq, i.Flags}
}
func (i Defineclass) Call(vm VM) error {
	super := vm.Pop()
	vm.Pop() // cbase; class registration is resolved against current lexical scope
	result, err := vm.DefineClass(i.Name, super, i.ClassIseq, i.Flags)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// Definemethod binds Name to Body on current self's class.
type Definemethod struct {
	Name string
	Body iseq.ISeq
}

func (Definemethod) Mnemonic() string { return "definemethod" }
func (Definemethod) Length() int      { return 3 }
func (Definemethod) Pops() int        { return 0 }
func (Definemethod) Pushes() int      { return 0 }
func (i Definemethod) Canonical() Insn { return i }
func (i Definemethod) Disasm(f Formatter) string {
	f.Enqueue(i.Body)
	return "definemethod " + i.Name
}
func (i Definemethod) ToA(u iseq.ISeq) []any { return []any{"definemethod", i.Name, i.Body} }
func (i Definemethod) Call(vm VM) error {
	vm.DefineMethod(i.Name, i.Body)
	return nil
}

// Definesmethod pops an object and binds Name to Body on its
// singleton class.
type Definesmethod struct {
	Name string
	Body iseq.ISeq
}

func (Definesmethod) Mnemonic() string { return "definesmethod" }
func (Definesmethod) Length() int      { return 3 }
func (Definesmethod) Pops() int        { return 1 }
func (Definesmethod) Pushes() int      { return 0 }
func (i Definesmethod) Canonical() Insn { return i }
func (i Definesmethod) Disasm(f Formatter) string {
	f.Enqueue(i.Body)
	return "definesmethod " + i.Name
}
func (i Definesmethod) ToA(u iseq.ISeq) []any { return []any{"definesmethod", i.Name, i.Body} }
func (i Definesmethod) Call(vm VM) error {
	recv := vm.Pop()
	vm.DefineSMethod(recv, i.Name, i.Body)
	return nil
}

// OnceCache is the per-call-site latch a once opcode reads and writes.
// Its zero value is a fresh, never-run cache.
type OnceCache struct {
	// id disambiguates otherwise-identical zero-value caches once
	// wired to a concrete iseq by the compiler; pkg/vm keys its latch
	// table on the pointer identity of the *OnceCache itself.
	id string
}

// NewOnceCache allocates a fresh, unlatched cache identified by id.
func NewOnceCache(id string) *OnceCache { return &OnceCache{id: id} }

func (c *OnceCache) ID() string { return c.id }

// Once runs Body at most once per process; Cache stores the memoized
// result and is consulted on every subsequent execution.
type Once struct {
	Body  iseq.ISeq
	Cache *OnceCache
}

func (Once) Mnemonic() string { return "once" }
func (Once) Length() int      { return 3 }
func (Once) Pops() int        { return 0 }
func (Once) Pushes() int      { return 1 }
func (i Once) Canonical() Insn { return i }
func (i Once) Disasm(f Formatter) string {
	f.Enqueue(i.Body)
	return "once " + f.Cache(i.Cache)
}
func (i Once) ToA(u iseq.ISeq) []any { return []any{"once", i.Body, i.Cache.ID()} }
func (i Once) Call(vm VM) error {
	if v, ok := vm.OnceCacheGet(i.Cache); ok {
		vm.Push(v)
		return nil
	}
	v, err := vm.RunOnceIseq(i.Body)
	if err != nil {
		return err
	}
	vm.OnceCacheSet(i.Cache, v)
	vm.Push(v)
	return nil
}
