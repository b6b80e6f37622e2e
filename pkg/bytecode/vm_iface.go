package bytecode

import (
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// VM is the runtime contract every opcode's Call hook is written
// against. pkg/vm provides the
// concrete implementation; pkg/bytecode never imports it, so opcode
// types stay usable by any conforming host.
type VM interface {
	// Stack
	Push(v value.Value)
	Pop() value.Value
	PopN(n int) []value.Value
	StackAt(fromTop int) value.Value
	SetStackAt(fromTop int, v value.Value)
	StackLen() int

	// Locals, across lexical levels (0 = current frame)
	LocalGet(index, level int) value.Value
	LocalSet(index, level int, v value.Value)

	// Frame / self / nesting
	Self() value.Value
	CurrentIseq() iseq.ISeq
	ConstBase() *value.ClassRef
	FrozenCore() value.Value
	BlockParam() *value.BlockValue
	SetBlockParam(b *value.BlockValue)

	// Special variable slots (backref, flip-flop state, $~ etc.)
	SVarGet(key int) value.Value
	SVarSet(key int, v value.Value)

	// Control transfer
	Jump(l *iseq.Label)
	Leave(v value.Value) error
	Throw(tag ThrowTag, v value.Value) error

	// Calls
	Send(recv value.Value, cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error)
	InvokeBlock(cd calldata.CallData, args []value.Value) (value.Value, error)
	InvokeSuper(cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error)

	// Variable storage
	GetIVar(name string) value.Value
	SetIVar(name string, v value.Value)
	GetCVar(name string) (value.Value, error)
	SetCVar(name string, v value.Value)
	GetGlobal(name string) value.Value
	SetGlobal(name string, v value.Value)

	// Constants
	ResolveConst(name string, allowMissing bool) (value.Value, bool)
	SetConst(parent value.Value, name string, v value.Value)

	// Definitions
	DefineClass(name string, super value.Value, classIseq iseq.ISeq, flags int) (value.Value, error)
	DefineMethod(name string, body iseq.ISeq)
	DefineSMethod(recv value.Value, name string, body iseq.ISeq)

	// defined? classification support
	IsLocalDefined(index, level int) bool
	IsIVarDefined(name string) bool
	IsGVarDefined(name string) bool
	IsCVarDefined(name string) bool
	IsConstDefined(name string) bool
	IsMethodDefined(recv value.Value, name string) bool

	// once cache
	OnceCacheGet(c *OnceCache) (value.Value, bool)
	OnceCacheSet(c *OnceCache, v value.Value)
	RunOnceIseq(body iseq.ISeq) (value.Value, error)
}

// ThrowTag enumerates the non-local control-transfer kinds a throw
// opcode may initiate.
type ThrowTag uint8

const (
	ThrowReturn ThrowTag = iota
	ThrowBreak
	ThrowNext
	ThrowRetry
	ThrowRedo
	ThrowRaise
	ThrowThrow
	ThrowFatal
)

func (t ThrowTag) String() string {
	names := [...]string{"return", "break", "next", "retry", "redo", "raise", "throw", "fatal"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}
