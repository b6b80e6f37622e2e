// Package vm implements the runtime contract pkg/bytecode's opcodes
// execute against: the operand stack, frame stack, variable storage,
// class registry, and method dispatch. It is the concrete host a
// serialized iseq needs in order to actually run.
package vm

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/chazu/yarvm/internal/config"
	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

type onceEntry struct {
	done  atomic.Bool
	value value.Value
}

// VM is the concrete runtime. Zero value is not usable; construct with
// New.
type VM struct {
	cfg    config.Config
	logger *zap.SugaredLogger

	stack  []value.Value
	frames []*Frame

	globals map[string]value.Value
	consts  map[string]value.Value
	classes map[string]*ClassDef

	blockCaptures map[*value.BlockValue]*Frame

	onceMu    sync.Mutex
	onceCache map[*bytecode.OnceCache]*onceEntry

	objectClass *ClassDef
}

// New builds a VM with a bootstrapped Object root class.
func New(cfg config.Config, logger *zap.SugaredLogger) *VM {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	v := &VM{
		cfg:           cfg,
		logger:        logger,
		globals:       map[string]value.Value{},
		consts:        map[string]value.Value{},
		classes:       map[string]*ClassDef{},
		blockCaptures: map[*value.BlockValue]*Frame{},
		onceCache:     map[*bytecode.OnceCache]*onceEntry{},
	}
	v.objectClass = newClassDef("Object", false, nil)
	v.classes["Object"] = v.objectClass
	return v
}

var _ bytecode.VM = (*VM)(nil)

// Run executes unit as a top-level program, with self bound to a fresh
// anonymous Object of the root class, and returns the value the final
// leave produced.
func (v *VM) Run(unit iseq.ISeq) (value.Value, error) {
	self := NewObject(v.objectClass)
	frame := newFrame(unit, self, nil, nil, nil)
	return v.runFrame(frame)
}

func (v *VM) currentFrame() *Frame {
	if len(v.frames) == 0 {
		return nil
	}
	return v.frames[len(v.frames)-1]
}

func (v *VM) runFrame(f *Frame) (val value.Value, err error) {
	if len(v.frames) >= v.cfg.MaxFrameDepth {
		return nil, errors.Wrapf(ErrFrameDepthExceeded, "depth %d", len(v.frames))
	}
	v.frames = append(v.frames, f)
	defer func() { v.frames = v.frames[:len(v.frames)-1] }()

	defer func() {
		if r := recover(); r != nil {
			if sop, ok := r.(stackOverflowPanic); ok {
				val, err = nil, sop.err
				return
			}
			panic(r)
		}
	}()

	insns := f.Iseq.Insns()
	for f.PC < len(insns) {
		raw := insns[f.PC]
		f.PC++
		insn, ok := raw.(bytecode.Insn)
		if !ok {
			return nil, errors.Errorf("vm: non-Insn element in iseq %s at pc %d", f.Iseq.Name(), f.PC-1)
		}
		if callErr := insn.Call(v); callErr != nil {
			return nil, errors.Wrapf(callErr, "in %s at pc %d (%s)", f.Iseq.Name(), f.PC-1, insn.Mnemonic())
		}
		if f.left {
			return f.returned, nil
		}
	}
	return value.Nil, nil
}

// ---------------------------------------------------------------------
// Stack
// ---------------------------------------------------------------------

// stackOverflowPanic unwinds runFrame's Go call stack back to the frame
// boundary, where it is recovered and turned into an ordinary error
// return so an operand stack that hits its configured limit becomes a
// host error a caller can handle, not a process crash.
type stackOverflowPanic struct{ err error }

func (v *VM) Push(val value.Value) {
	if len(v.stack) >= v.cfg.MaxStackDepth {
		panic(stackOverflowPanic{errors.Wrapf(ErrStackOverflow, "depth %d", len(v.stack))})
	}
	v.stack = append(v.stack, val)
}

func (v *VM) Pop() value.Value {
	n := len(v.stack)
	val := v.stack[n-1]
	v.stack = v.stack[:n-1]
	return val
}

func (v *VM) PopN(n int) []value.Value {
	out := make([]value.Value, n)
	for k := n - 1; k >= 0; k-- {
		out[k] = v.Pop()
	}
	return out
}

func (v *VM) StackAt(fromTop int) value.Value { return v.stack[len(v.stack)-1-fromTop] }
func (v *VM) SetStackAt(fromTop int, val value.Value) {
	v.stack[len(v.stack)-1-fromTop] = val
}
func (v *VM) StackLen() int { return len(v.stack) }

// ---------------------------------------------------------------------
// Locals
// ---------------------------------------------------------------------

func (v *VM) LocalGet(index, level int) value.Value {
	f := v.currentFrame()
	if f == nil {
		return value.Nil
	}
	return f.get(index, level)
}

func (v *VM) LocalSet(index, level int, val value.Value) {
	f := v.currentFrame()
	if f == nil {
		return
	}
	f.set(index, level, val)
}

// ---------------------------------------------------------------------
// Frame / self / nesting
// ---------------------------------------------------------------------

func (v *VM) Self() value.Value {
	if f := v.currentFrame(); f != nil {
		return f.Self
	}
	return value.Nil
}

func (v *VM) CurrentIseq() iseq.ISeq {
	if f := v.currentFrame(); f != nil {
		return f.Iseq
	}
	return nil
}

func (v *VM) ConstBase() *value.ClassRef {
	if f := v.currentFrame(); f != nil && len(f.Nesting) > 0 {
		return f.Nesting[len(f.Nesting)-1]
	}
	return v.objectClass.Ref
}

func (v *VM) FrozenCore() value.Value { return value.NewHostObject("VMCore", v) }

func (v *VM) BlockParam() *value.BlockValue {
	if f := v.currentFrame(); f != nil {
		return f.Block
	}
	return nil
}

func (v *VM) SetBlockParam(b *value.BlockValue) {
	if f := v.currentFrame(); f != nil {
		f.Block = b
	}
}

// ---------------------------------------------------------------------
// Special variable slots
// ---------------------------------------------------------------------

func (v *VM) SVarGet(key int) value.Value {
	f := v.currentFrame()
	if f == nil || f.svars == nil {
		return value.Nil
	}
	val, ok := f.svars[key]
	if !ok {
		return value.Nil
	}
	return val
}

func (v *VM) SVarSet(key int, val value.Value) {
	f := v.currentFrame()
	if f == nil {
		return
	}
	if f.svars == nil {
		f.svars = map[int]value.Value{}
	}
	f.svars[key] = val
}

// ---------------------------------------------------------------------
// Control transfer
// ---------------------------------------------------------------------

func (v *VM) Jump(l *iseq.Label) {
	if f := v.currentFrame(); f != nil {
		f.PC = l.PC()
	}
}

func (v *VM) Leave(val value.Value) error {
	f := v.currentFrame()
	if f == nil {
		return errors.New("vm: leave with no active frame")
	}
	f.left = true
	f.returned = val
	return nil
}

func (v *VM) Throw(tag bytecode.ThrowTag, val value.Value) error {
	for i := len(v.frames) - 1; i >= 0; i-- {
		f := v.frames[i]
		for _, entry := range f.Iseq.CatchTable() {
			if catchTagFor(tag) == entry.Tag && f.PC-1 >= entry.PCFrom && f.PC-1 < entry.PCTo {
				f.PC = entry.Target.PC()
				v.Push(val)
				return nil
			}
		}
	}
	return errors.Wrapf(ErrNameNotFound, "unhandled throw(%s): %s", tag, val.Inspect())
}

func catchTagFor(t bytecode.ThrowTag) iseq.CatchTag {
	switch t {
	case bytecode.ThrowReturn:
		return iseq.CatchReturn
	case bytecode.ThrowBreak:
		return iseq.CatchBreak
	case bytecode.ThrowNext:
		return iseq.CatchNext
	case bytecode.ThrowRetry:
		return iseq.CatchRetry
	case bytecode.ThrowRedo:
		return iseq.CatchRedo
	case bytecode.ThrowRaise:
		return iseq.CatchRaise
	default:
		return iseq.CatchRescue
	}
}

// ---------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------

func (v *VM) ResolveConst(name string, allowMissing bool) (value.Value, bool) {
	if f := v.currentFrame(); f != nil {
		for i := len(f.Nesting) - 1; i >= 0; i-- {
			qualified := f.Nesting[i].Name + "::" + name
			if val, ok := v.consts[qualified]; ok {
				return val, true
			}
		}
	}
	if val, ok := v.consts[name]; ok {
		return val, true
	}
	if cd, ok := v.classes[name]; ok {
		return cd.Ref, true
	}
	if allowMissing {
		return value.Nil, true
	}
	return nil, false
}

func (v *VM) SetConst(parent value.Value, name string, val value.Value) {
	key := name
	if cr, ok := parent.(*value.ClassRef); ok && cr.Name != "" {
		key = cr.Name + "::" + name
	}
	v.consts[key] = val
}

// ---------------------------------------------------------------------
// Variable storage
// ---------------------------------------------------------------------

func (v *VM) GetIVar(name string) value.Value {
	if obj, ok := v.Self().(*Object); ok {
		return obj.IVars[name]
	}
	return value.Nil
}

func (v *VM) SetIVar(name string, val value.Value) {
	if obj, ok := v.Self().(*Object); ok {
		obj.IVars[name] = val
	}
}

func (v *VM) classOfSelf() *ClassDef {
	switch s := v.Self().(type) {
	case *Object:
		return s.Class
	case *value.ClassRef:
		if cd, ok := v.classes[s.Name]; ok {
			return cd
		}
	}
	return v.objectClass
}

func (v *VM) GetCVar(name string) (value.Value, error) {
	if val, ok := v.classOfSelf().lookupCVar(name); ok {
		return val, nil
	}
	return value.Nil, errors.Wrapf(ErrNameNotFound, "class variable %s", name)
}

func (v *VM) SetCVar(name string, val value.Value) {
	v.classOfSelf().CVars[name] = val
}

func (v *VM) GetGlobal(name string) value.Value { return v.globals[name] }
func (v *VM) SetGlobal(name string, val value.Value) {
	v.globals[name] = val
}

// ---------------------------------------------------------------------
// defined? support
// ---------------------------------------------------------------------

func (v *VM) IsLocalDefined(index, level int) bool { return true }

func (v *VM) IsIVarDefined(name string) bool {
	obj, ok := v.Self().(*Object)
	if !ok {
		return false
	}
	_, present := obj.IVars[name]
	return present
}

func (v *VM) IsGVarDefined(name string) bool {
	_, ok := v.globals[name]
	return ok
}

func (v *VM) IsCVarDefined(name string) bool {
	_, ok := v.classOfSelf().lookupCVar(name)
	return ok
}

func (v *VM) IsConstDefined(name string) bool {
	_, ok := v.ResolveConst(name, false)
	return ok
}

func (v *VM) IsMethodDefined(recv value.Value, name string) bool {
	_, _, err := v.resolveMethod(recv, name)
	return err == nil
}

// ---------------------------------------------------------------------
// once cache
// ---------------------------------------------------------------------

func (v *VM) entryFor(c *bytecode.OnceCache) *onceEntry {
	v.onceMu.Lock()
	defer v.onceMu.Unlock()
	e, ok := v.onceCache[c]
	if !ok {
		e = &onceEntry{}
		v.onceCache[c] = e
	}
	return e
}

func (v *VM) OnceCacheGet(c *bytecode.OnceCache) (value.Value, bool) {
	e := v.entryFor(c)
	if e.done.Load() {
		return e.value, true
	}
	return nil, false
}

func (v *VM) OnceCacheSet(c *bytecode.OnceCache, val value.Value) {
	e := v.entryFor(c)
	e.value = val
	e.done.Store(true)
}

func (v *VM) RunOnceIseq(body iseq.ISeq) (value.Value, error) {
	self := value.Value(NewObject(v.objectClass))
	if f := v.currentFrame(); f != nil {
		self = f.Self
	}
	frame := newFrame(body, self, nil, nil, nil)
	return v.runFrame(frame)
}
