package vm

import (
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// ClassDef is the VM's own bookkeeping for a class or module: its
// method tables, class variables, and superclass link. value.ClassRef
// is the lightweight Value handle opcodes push around; ClassDef is
// where the VM actually keeps state for that handle.
type ClassDef struct {
	Ref      *value.ClassRef
	Super    *ClassDef
	Methods  map[string]iseq.ISeq
	SMethods map[string]iseq.ISeq
	CVars    map[string]value.Value
}

func newClassDef(name string, isModule bool, super *ClassDef) *ClassDef {
	return &ClassDef{
		Ref:      &value.ClassRef{Name: name, IsModule: isModule},
		Super:    super,
		Methods:  map[string]iseq.ISeq{},
		SMethods: map[string]iseq.ISeq{},
		CVars:    map[string]value.Value{},
	}
}

// lookupMethod walks the superclass chain, returning the iseq and the
// ClassDef that defines it (needed by invokesuper to resume one link
// further up).
func (c *ClassDef) lookupMethod(name string) (iseq.ISeq, *ClassDef, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if body, ok := cur.Methods[name]; ok {
			return body, cur, true
		}
	}
	return nil, nil, false
}

func (c *ClassDef) lookupCVar(name string) (value.Value, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if v, ok := cur.CVars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Object is a user-defined instance: a class plus its own ivar table.
// It implements value.Value with KindHost, since the opcode-facing
// Value domain treats user objects as opaque host state.
type Object struct {
	Class *ClassDef
	IVars map[string]value.Value
}

func NewObject(class *ClassDef) *Object {
	return &Object{Class: class, IVars: map[string]value.Value{}}
}

func (o *Object) Kind() value.Kind { return value.KindHost }
func (o *Object) Truthy() bool     { return true }
func (o *Object) Inspect() string  { return "#<" + o.Class.Ref.Name + ">" }
func (o *Object) Equal(other value.Value) bool {
	oo, ok := other.(*Object)
	return ok && oo == o
}
