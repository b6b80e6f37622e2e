package vm

import (
	"github.com/pkg/errors"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// resolveMethod finds the iseq body and defining class for a message
// send on recv, or an error if nothing answers it (host builtins are
// consulted by Send itself, not here — this is strictly user-defined
// lookup, which is what IsMethodDefined needs to test).
func (v *VM) resolveMethod(recv value.Value, name string) (iseq.ISeq, *ClassDef, error) {
	switch r := recv.(type) {
	case *Object:
		if body, def, ok := r.Class.lookupMethod(name); ok {
			return body, def, nil
		}
	case *value.ClassRef:
		if cd, ok := v.classes[r.Name]; ok {
			if body, ok := cd.SMethods[name]; ok {
				return body, cd, nil
			}
		}
	}
	return nil, nil, errors.Wrapf(ErrNotImplemented, "%s", name)
}

func (v *VM) invokeMethod(body iseq.ISeq, def *ClassDef, methodName string, self value.Value, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue, nesting []*value.ClassRef) (value.Value, error) {
	f := newFrame(body, self, nil, block, nesting)
	f.DefiningClass = def
	f.MethodName = methodName
	bindParams(f, body, args, kwargs)
	return v.runFrame(f)
}

// bindParams assigns positional args to the leading local slots, and
// keyword args to slots whose name matches (a pragmatic stand-in for
// the reference compiler's dedicated parameter-binding preamble,
// which lives outside this catalog's scope).
func bindParams(f *Frame, body iseq.ISeq, args []value.Value, kwargs map[string]value.Value) {
	lt := body.Locals()
	for idx := 0; idx < lt.Size() && idx < len(args); idx++ {
		f.Locals[idx] = args[idx]
	}
	if len(kwargs) == 0 {
		return
	}
	for idx := 0; idx < lt.Size(); idx++ {
		if val, ok := kwargs[lt.NameOf(idx)]; ok {
			f.Locals[idx] = val
		}
	}
}

// Send dispatches a message: user-defined methods first (walking
// recv's class chain), then the builtin table for recv's primitive
// kind.
func (v *VM) Send(recv value.Value, cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error) {
	if block != nil {
		v.blockCaptures[block] = v.currentFrame()
	}
	switch r := recv.(type) {
	case *Object:
		if body, def, ok := r.Class.lookupMethod(cd.Method); ok {
			return v.invokeMethod(body, def, cd.Method, recv, args, kwargs, block, classNesting(def))
		}
	case *value.ClassRef:
		if cd2, ok := v.classes[r.Name]; ok {
			if cd.Method == "new" {
				return v.instantiate(cd2, args, kwargs, block)
			}
			if body, ok := cd2.SMethods[cd.Method]; ok {
				return v.invokeMethod(body, cd2, cd.Method, recv, args, kwargs, block, classNesting(cd2))
			}
		}
	}
	result, err := callBuiltin(recv, cd.Method, args)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func classNesting(def *ClassDef) []*value.ClassRef {
	var chain []*value.ClassRef
	for cur := def; cur != nil; cur = cur.Super {
		chain = append([]*value.ClassRef{cur.Ref}, chain...)
	}
	return chain
}

func (v *VM) instantiate(cd *ClassDef, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error) {
	obj := NewObject(cd)
	if body, def, ok := cd.lookupMethod("initialize"); ok {
		if _, err := v.invokeMethod(body, def, "initialize", obj, args, kwargs, block, classNesting(cd)); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// InvokeBlock calls the block captured for the currently active frame.
func (v *VM) InvokeBlock(cd calldata.CallData, args []value.Value) (value.Value, error) {
	f := v.currentFrame()
	if f == nil || f.Block == nil {
		return nil, errors.New("vm: invokeblock with no block given")
	}
	unit, ok := f.Block.Iseq.(iseq.ISeq)
	if !ok {
		return nil, errors.New("vm: block iseq reference does not satisfy iseq.ISeq")
	}
	capture := v.blockCaptures[f.Block]
	var parentSelf value.Value = f.Self
	var nesting []*value.ClassRef
	if capture != nil {
		parentSelf = capture.Self
		nesting = capture.Nesting
	}
	blockFrame := newFrame(unit, parentSelf, capture, nil, nesting)
	bindParams(blockFrame, unit, args, nil)
	return v.runFrame(blockFrame)
}

// InvokeSuper resolves the super-method of the frame's own defining
// class and calls it with self unchanged.
func (v *VM) InvokeSuper(cd calldata.CallData, args []value.Value, kwargs map[string]value.Value, block *value.BlockValue) (value.Value, error) {
	f := v.currentFrame()
	if f == nil || f.DefiningClass == nil || f.DefiningClass.Super == nil {
		return nil, errors.Wrapf(ErrNameNotFound, "super: no superclass method %s", cd.Method)
	}
	body, def, ok := f.DefiningClass.Super.lookupMethod(f.MethodName)
	if !ok {
		return nil, errors.Wrapf(ErrNameNotFound, "super: %s", f.MethodName)
	}
	if block != nil {
		v.blockCaptures[block] = f
	} else {
		block = f.Block
	}
	return v.invokeMethod(body, def, f.MethodName, f.Self, args, kwargs, block, classNesting(def))
}

// DefineClass creates or reopens the named class/module, runs its
// body iseq as a class-body frame, and returns the body's value.
func (v *VM) DefineClass(name string, super value.Value, classIseq iseq.ISeq, flags int) (value.Value, error) {
	var superDef *ClassDef
	if sr, ok := super.(*value.ClassRef); ok {
		superDef = v.classes[sr.Name]
	} else if v.objectClass != nil {
		superDef = v.objectClass
	}
	isModule := flags&bytecode.DefineClassTypeMask == bytecode.DefineClassTypeModule

	cd, exists := v.classes[name]
	if !exists {
		cd = newClassDef(name, isModule, superDef)
		v.classes[name] = cd
	}

	if classIseq == nil {
		return cd.Ref, nil
	}
	nesting := append(classNesting(cd), cd.Ref)
	bodyFrame := newFrame(classIseq, cd.Ref, nil, nil, nesting)
	return v.runFrame(bodyFrame)
}

// DefineMethod binds name to body on current self's class.
func (v *VM) DefineMethod(name string, body iseq.ISeq) {
	v.classOfSelf().Methods[name] = body
}

// DefineSMethod binds name to body on recv's singleton class. Only
// *value.ClassRef receivers get a real singleton table (class methods,
// the common case); per-instance singleton methods are out of scope
// for this catalog.
func (v *VM) DefineSMethod(recv value.Value, name string, body iseq.ISeq) {
	if cr, ok := recv.(*value.ClassRef); ok {
		if cd, ok := v.classes[cr.Name]; ok {
			cd.SMethods[name] = body
		}
	}
}
