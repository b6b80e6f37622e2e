package vm

import (
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Frame is one activation record: a method, block, class-body, or
// top-level execution of a single iseq. Locals is sized to the iseq's
// local table; Parent is the lexical enclosing frame a block closes
// over (nil for method/class/top frames).
type Frame struct {
	Iseq    iseq.ISeq
	Self    value.Value
	Locals  []value.Value
	Parent  *Frame
	Block   *value.BlockValue
	Nesting []*value.ClassRef
	PC      int

	// DefiningClass and MethodName identify the method this frame is
	// running, so invokesuper can resume lookup one link further up
	// DefiningClass's superclass chain.
	DefiningClass *ClassDef
	MethodName    string

	left     bool
	returned value.Value
	svars    map[int]value.Value
}

func newFrame(unit iseq.ISeq, self value.Value, parent *Frame, block *value.BlockValue, nesting []*value.ClassRef) *Frame {
	return &Frame{
		Iseq:    unit,
		Self:    self,
		Locals:  make([]value.Value, unit.Locals().Size()),
		Parent:  parent,
		Block:   block,
		Nesting: nesting,
	}
}

func (f *Frame) local(index, level int) *Frame {
	fr := f
	for k := 0; k < level && fr.Parent != nil; k++ {
		fr = fr.Parent
	}
	return fr
}

func (f *Frame) get(index, level int) value.Value {
	fr := f.local(index, level)
	if index < 0 || index >= len(fr.Locals) {
		return value.Nil
	}
	v := fr.Locals[index]
	if v == nil {
		return value.Nil
	}
	return v
}

func (f *Frame) set(index, level int, v value.Value) {
	fr := f.local(index, level)
	if index < 0 || index >= len(fr.Locals) {
		return
	}
	fr.Locals[index] = v
}
