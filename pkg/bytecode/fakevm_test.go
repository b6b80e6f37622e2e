package bytecode

import (
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// fakeVM is a minimal VM implementation for exercising opcode Call
// methods in isolation, without a full interpreter.
type fakeVM struct {
	stack   []value.Value
	locals  map[[2]int]value.Value
	self    value.Value
	globals map[string]value.Value
	ivars   map[string]value.Value
	leaveV  value.Value
	left    bool
	jumped  *iseq.Label
	sendFn  func(recv value.Value, cd calldata.CallData, args []value.Value) (value.Value, error)
}

func newFakeVM() *fakeVM {
	return &fakeVM{
		locals:  map[[2]int]value.Value{},
		globals: map[string]value.Value{},
		ivars:   map[string]value.Value{},
		self:    value.Nil,
	}
}

func (f *fakeVM) Push(v value.Value) { f.stack = append(f.stack, v) }
func (f *fakeVM) Pop() value.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}
func (f *fakeVM) PopN(n int) []value.Value {
	out := make([]value.Value, n)
	for k := n - 1; k >= 0; k-- {
		out[k] = f.Pop()
	}
	return out
}
func (f *fakeVM) StackAt(fromTop int) value.Value { return f.stack[len(f.stack)-1-fromTop] }
func (f *fakeVM) SetStackAt(fromTop int, v value.Value) {
	f.stack[len(f.stack)-1-fromTop] = v
}
func (f *fakeVM) StackLen() int { return len(f.stack) }

func (f *fakeVM) LocalGet(index, level int) value.Value { return f.locals[[2]int{index, level}] }
func (f *fakeVM) LocalSet(index, level int, v value.Value) {
	f.locals[[2]int{index, level}] = v
}

func (f *fakeVM) Self() value.Value             { return f.self }
func (f *fakeVM) CurrentIseq() iseq.ISeq        { return nil }
func (f *fakeVM) ConstBase() *value.ClassRef    { return value.NewClassRef("Object") }
func (f *fakeVM) FrozenCore() value.Value       { return value.NewHostObject("VMCore", nil) }
func (f *fakeVM) BlockParam() *value.BlockValue { return nil }
func (f *fakeVM) SetBlockParam(b *value.BlockValue) {}

func (f *fakeVM) SVarGet(key int) value.Value { return value.Nil }
func (f *fakeVM) SVarSet(key int, v value.Value) {}

func (f *fakeVM) Jump(l *iseq.Label) { f.jumped = l }
func (f *fakeVM) Leave(v value.Value) error {
	f.leaveV = v
	f.left = true
	return nil
}
func (f *fakeVM) Throw(tag ThrowTag, v value.Value) error { return nil }

func (f *fakeVM) Send(recv value.Value, cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error) {
	if f.sendFn != nil {
		return f.sendFn(recv, cd, args)
	}
	return value.Nil, nil
}
func (f *fakeVM) InvokeBlock(cd calldata.CallData, args []value.Value) (value.Value, error) {
	return value.Nil, nil
}
func (f *fakeVM) InvokeSuper(cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error) {
	return value.Nil, nil
}

func (f *fakeVM) GetIVar(name string) value.Value { return f.ivars[name] }
func (f *fakeVM) SetIVar(name string, v value.Value) { f.ivars[name] = v }
func (f *fakeVM) GetCVar(name string) (value.Value, error) { return value.Nil, nil }
func (f *fakeVM) SetCVar(name string, v value.Value) {}
func (f *fakeVM) GetGlobal(name string) value.Value { return f.globals[name] }
func (f *fakeVM) SetGlobal(name string, v value.Value) { f.globals[name] = v }

func (f *fakeVM) ResolveConst(name string, allowMissing bool) (value.Value, bool) {
	return value.NewClassRef(name), true
}
func (f *fakeVM) SetConst(parent value.Value, name string, v value.Value) {}

func (f *fakeVM) DefineClass(name string, super value.Value, classIseq iseq.ISeq, flags int) (value.Value, error) {
	return value.NewClassRef(name), nil
}
func (f *fakeVM) DefineMethod(name string, body iseq.ISeq)             {}
func (f *fakeVM) DefineSMethod(recv value.Value, name string, body iseq.ISeq) {}

func (f *fakeVM) IsLocalDefined(index, level int) bool         { return true }
func (f *fakeVM) IsIVarDefined(name string) bool                { _, ok := f.ivars[name]; return ok }
func (f *fakeVM) IsGVarDefined(name string) bool                { _, ok := f.globals[name]; return ok }
func (f *fakeVM) IsCVarDefined(name string) bool                { return false }
func (f *fakeVM) IsConstDefined(name string) bool               { return true }
func (f *fakeVM) IsMethodDefined(recv value.Value, name string) bool { return true }

func (f *fakeVM) OnceCacheGet(c *OnceCache) (value.Value, bool) { return value.Nil, false }
func (f *fakeVM) OnceCacheSet(c *OnceCache, v value.Value)      {}
func (f *fakeVM) RunOnceIseq(body iseq.ISeq) (value.Value, error) { return value.Nil, nil }

var _ VM = (*fakeVM)(nil)
