package bytecode

import (
	"fmt"

	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// Checkmatch pops (target, pattern) and pushes a boolean whose meaning
// depends on Type: when-clause case-equality (a === send), case-mode
// plain equality (pattern.Equal(target); no deconstruction is done),
// or rescue exception-type test.
type Checkmatch struct{ Type CheckMatchType }

func (Checkmatch) Mnemonic() string { return "checkmatch" }
func (Checkmatch) Length() int      { return 2 }
func (Checkmatch) Pops() int        { return 2 }
func (Checkmatch) Pushes() int      { return 1 }
func (i Checkmatch) Canonical() Insn { return i }
func (i Checkmatch) Disasm(f Formatter) string {
	names := [...]string{"when", "case", "rescue"}
	return "checkmatch " + names[i.Type]
}
func (i Checkmatch) ToA(u iseq.ISeq) []any { return []any{"checkmatch", int(i.Type)} }
func (i Checkmatch) Call(vm VM) error {
	pattern := vm.Pop()
	target := vm.Pop()
	switch i.Type {
	case MatchWhen:
		// case-equality: pattern === target, dispatched as a send so
		// user-defined === overrides apply.
		result, err := vm.Send(pattern, calldata.New("===", 1, calldata.FlagArgsSimple), []value.Value{target}, nil, nil)
		if err != nil {
			return err
		}
		vm.Push(value.NewBool(result.Truthy()))
	case MatchCase:
		vm.Push(value.NewBool(pattern.Equal(target)))
	case MatchRescue:
		cls, ok := pattern.(*value.ClassRef)
		if !ok {
			vm.Push(value.False)
			return nil
		}
		ho, ok := target.(*value.HostObject)
		vm.Push(value.NewBool(ok && ho.Tag == cls.Name))
	default:
		vm.Push(value.False)
	}
	return nil
}

// Checktype pops an object and pushes whether it belongs to primitive
// type T. Pushes() reports 2 though Call only ever pushes 1 value; the
// second slot is reserved by the reference engine's instruction
// encoding for a superclass check that this catalog does not perform.
type Checktype struct{ T CheckType }

func (Checktype) Mnemonic() string { return "checktype" }
func (Checktype) Length() int      { return 2 }
func (Checktype) Pops() int        { return 1 }
func (Checktype) Pushes() int      { return 2 }
func (i Checktype) Canonical() Insn { return i }
func (i Checktype) Disasm(f Formatter) string { return fmt.Sprintf("checktype %d", i.T) }
func (i Checktype) ToA(u iseq.ISeq) []any      { return []any{"checktype", int(i.T)} }
func (i Checktype) Call(vm VM) error {
	v := vm.Pop()
	vm.Push(value.NewBool(checktypeMatches(v, i.T)))
	return nil
}

func checktypeMatches(v value.Value, t CheckType) bool {
	switch t {
	case TypeClass:
		cr, ok := v.(*value.ClassRef)
		return ok && !cr.IsModule
	case TypeModule:
		cr, ok := v.(*value.ClassRef)
		return ok && cr.IsModule
	case TypeFloat:
		return v.Kind() == value.KindFloat
	case TypeStringT:
		return v.Kind() == value.KindStr
	case TypeRegexpT:
		return v.Kind() == value.KindRegexp
	case TypeArrayT:
		return v.Kind() == value.KindArray
	case TypeHashT:
		return v.Kind() == value.KindHash
	case TypeNilT:
		return v.Kind() == value.KindNil
	case TypeTrueT:
		b, ok := v.(value.Bool)
		return ok && bool(b)
	case TypeFalseT:
		b, ok := v.(value.Bool)
		return ok && !bool(b)
	case TypeSymbolT:
		return v.Kind() == value.KindSymbol
	case TypeFixnum:
		return v.Kind() == value.KindInteger
	case TypeStruct, TypeFile, TypeComplex, TypeRational:
		ho, ok := v.(*value.HostObject)
		return ok && ho.Tag == checkTypeTagNames[t]
	default:
		// reserved tags: no primitive representation matches them.
		return false
	}
}

var checkTypeTagNames = map[CheckType]string{
	TypeStruct:   "struct",
	TypeFile:     "file",
	TypeComplex:  "complex",
	TypeRational: "rational",
}

// Checkkeyword inspects the keyword-presence bitmap held in local
// BitsIdx and pushes whether the keyword at position KwIdx was
// supplied by the caller.
type Checkkeyword struct {
	BitsIdx int
	KwIdx   int
}

func (Checkkeyword) Mnemonic() string { return "checkkeyword" }
func (Checkkeyword) Length() int      { return 3 }
func (Checkkeyword) Pops() int        { return 0 }
func (Checkkeyword) Pushes() int      { return 1 }
func (i Checkkeyword) Canonical() Insn { return i }
func (i Checkkeyword) Disasm(f Formatter) string {
	return fmt.Sprintf("checkkeyword %d %d", i.BitsIdx, i.KwIdx)
}
func (i Checkkeyword) ToA(u iseq.ISeq) []any {
	return []any{"checkkeyword", u.Locals().Offset(i.BitsIdx), i.KwIdx}
}
func (i Checkkeyword) Call(vm VM) error {
	bits := vm.LocalGet(i.BitsIdx, 0)
	n, ok := bits.(value.Integer)
	if !ok {
		vm.Push(value.False)
		return nil
	}
	vm.Push(value.NewBool(int64(n)&(1<<uint(i.KwIdx)) != 0))
	return nil
}

// Defined pops TOS (meaning depends on Type) and pushes Message on
// success or nil on failure.
type Defined struct {
	Type    DefinedType
	Name    string
	Message string
}

func (Defined) Mnemonic() string { return "defined" }
func (Defined) Length() int      { return 4 }
func (Defined) Pops() int        { return 1 }
func (Defined) Pushes() int      { return 1 }
func (i Defined) Canonical() Insn { return i }
func (i Defined) Disasm(f Formatter) string {
	return fmt.Sprintf("defined %d %s %q", i.Type, i.Name, i.Message)
}
func (i Defined) ToA(u iseq.ISeq) []any {
	return []any{"defined", int(i.Type), i.Name, i.Message}
}
func (i Defined) Call(vm VM) error {
	tos := vm.Pop()
	ok := false
	switch i.Type {
	case DefinedNil:
		ok = false
	case DefinedIVar:
		ok = vm.IsIVarDefined(i.Name)
	case DefinedLVar:
		ok = true // presence of the opcode implies the compiler already resolved the slot
	case DefinedGVar:
		ok = vm.IsGVarDefined(i.Name)
	case DefinedCVar:
		ok = vm.IsCVarDefined(i.Name)
	case DefinedConst, DefinedConstFrom:
		ok = vm.IsConstDefined(i.Name)
	case DefinedMethod:
		ok = vm.IsMethodDefined(tos, i.Name)
	case DefinedYield:
		ok = vm.BlockParam() != nil
	case DefinedZSuper:
		ok = true
	case DefinedSelf:
		ok = true
	case DefinedTrue:
		b, isBool := tos.(value.Bool)
		ok = isBool && bool(b)
	case DefinedFalse:
		b, isBool := tos.(value.Bool)
		ok = isBool && !bool(b)
	case DefinedAsgn, DefinedExpr, DefinedRef, DefinedFunc:
		ok = tos.Kind() != value.KindNil
	default:
		ok = false
	}
	if ok {
		vm.Push(value.NewStr(i.Message))
	} else {
		vm.Push(value.Nil)
	}
	return nil
}
