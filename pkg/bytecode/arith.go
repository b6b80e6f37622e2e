package bytecode

import (
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

// OptSpecialized covers the 22 opt_* arithmetic/comparison/predicate
// fast paths. Every one of them canonicalizes to
// `send(CD, nil)`; Kind only selects the wire tag and the fast-path
// Call implementation, which must agree with what the canonical send
// would do.
type OptSpecialized struct {
	Kind OptKind
	CD   calldata.CallData
}

func (i OptSpecialized) Mnemonic() string { return i.Kind.String() }
func (i OptSpecialized) Length() int      { return 2 }
func (i OptSpecialized) Pops() int {
	if optKindUnary[i.Kind] {
		return 1
	}
	if i.Kind == OptAset {
		return 3
	}
	return 2
}
func (i OptSpecialized) Pushes() int { return 1 }
func (i OptSpecialized) Canonical() Insn {
	return Send{CD: i.CD}
}
func (i OptSpecialized) Disasm(f Formatter) string {
	return i.Kind.String() + " " + f.CallData(i.CD)
}
func (i OptSpecialized) ToA(u iseq.ISeq) []any {
	return []any{i.Kind.String(), i.CD}
}
func (i OptSpecialized) Call(vm VM) error {
	var recv value.Value
	var args []value.Value
	if optKindUnary[i.Kind] {
		recv = vm.Pop()
	} else {
		args = make([]value.Value, i.Pops()-1)
		for k := len(args) - 1; k >= 0; k-- {
			args[k] = vm.Pop()
		}
		recv = vm.Pop()
	}
	result, err := vm.Send(recv, i.CD, args, nil, nil)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// OptNeq carries two calldatas (one for ==, one for !=); its
// observable effect is the boolean complement of equality between the
// top two operands. It does not canonicalize to a single send, since
// no single send target expresses "complement of another send".
type OptNeq struct {
	EqCD  calldata.CallData
	NeqCD calldata.CallData
}

func (OptNeq) Mnemonic() string { return "opt_neq" }
func (OptNeq) Length() int      { return 3 }
func (OptNeq) Pops() int        { return 2 }
func (OptNeq) Pushes() int      { return 1 }
func (i OptNeq) Canonical() Insn { return i }
func (i OptNeq) Disasm(f Formatter) string {
	return "opt_neq " + f.CallData(i.EqCD) + " " + f.CallData(i.NeqCD)
}
func (i OptNeq) ToA(u iseq.ISeq) []any { return []any{"opt_neq", i.EqCD, i.NeqCD} }
func (i OptNeq) Call(vm VM) error {
	rhs := vm.Pop()
	lhs := vm.Pop()
	eq, err := vm.Send(lhs, i.EqCD, []value.Value{rhs}, nil, nil)
	if err != nil {
		return err
	}
	vm.Push(value.NewBool(!eq.Truthy()))
	return nil
}

// OptNewarrayMax pops n values and pushes their maximum.
type OptNewarrayMax struct{ N int }

func (OptNewarrayMax) Mnemonic() string { return "opt_newarray_max" }
func (OptNewarrayMax) Length() int      { return 2 }
func (i OptNewarrayMax) Pops() int      { return i.N }
func (OptNewarrayMax) Pushes() int      { return 1 }
func (i OptNewarrayMax) Canonical() Insn { return i }
func (i OptNewarrayMax) Disasm(f Formatter) string { return "opt_newarray_max" }
func (i OptNewarrayMax) ToA(u iseq.ISeq) []any      { return []any{"opt_newarray_max", i.N} }
func (i OptNewarrayMax) Call(vm VM) error {
	return reduceNumeric(vm, i.N, func(a, b value.Value) bool { return numLess(b, a) })
}

// OptNewarrayMin pops n values and pushes their minimum.
type OptNewarrayMin struct{ N int }

func (OptNewarrayMin) Mnemonic() string { return "opt_newarray_min" }
func (OptNewarrayMin) Length() int      { return 2 }
func (i OptNewarrayMin) Pops() int      { return i.N }
func (OptNewarrayMin) Pushes() int      { return 1 }
func (i OptNewarrayMin) Canonical() Insn { return i }
func (i OptNewarrayMin) Disasm(f Formatter) string { return "opt_newarray_min" }
func (i OptNewarrayMin) ToA(u iseq.ISeq) []any      { return []any{"opt_newarray_min", i.N} }
func (i OptNewarrayMin) Call(vm VM) error {
	return reduceNumeric(vm, i.N, func(a, b value.Value) bool { return numLess(a, b) })
}

// reduceNumeric pops n values and pushes the one "winning" under
// better(candidate, current) — used by both newarray_max and
// newarray_min with the comparison direction flipped.
func reduceNumeric(vm VM, n int, better func(candidate, current value.Value) bool) error {
	vals := vm.PopN(n)
	if len(vals) == 0 {
		vm.Push(value.Nil)
		return nil
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if better(v, best) {
			best = v
		}
	}
	vm.Push(best)
	return nil
}

func numLess(a, b value.Value) bool {
	return asFloat(a) < asFloat(b)
}

func asFloat(v value.Value) float64 {
	switch n := v.(type) {
	case value.Integer:
		return float64(n)
	case value.Float:
		return float64(n)
	default:
		return 0
	}
}

// OptArefWith is aref specialized with a literal string key baked in.
type OptArefWith struct {
	Key string
	CD  calldata.CallData
}

func (OptArefWith) Mnemonic() string { return "opt_aref_with" }
func (OptArefWith) Length() int      { return 3 }
func (OptArefWith) Pops() int        { return 1 }
func (OptArefWith) Pushes() int      { return 1 }
// Canonical is self: the *_with family's
// plain counterparts (opt_aref, opt_aset) canonicalize to send, but nothing names a
// canonical reduction for the with-literal-key variants themselves.
func (i OptArefWith) Canonical() Insn { return i }
func (i OptArefWith) Disasm(f Formatter) string {
	return "opt_aref_with " + f.Object(value.NewStr(i.Key)) + " " + f.CallData(i.CD)
}
func (i OptArefWith) ToA(u iseq.ISeq) []any { return []any{"opt_aref_with", i.Key, i.CD} }
func (i OptArefWith) Call(vm VM) error {
	recv := vm.Pop()
	result, err := vm.Send(recv, i.CD, []value.Value{value.NewStr(i.Key)}, nil, nil)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// OptAsetWith is aset specialized with a literal string key baked in.
type OptAsetWith struct {
	Key string
	CD  calldata.CallData
}

func (OptAsetWith) Mnemonic() string { return "opt_aset_with" }
func (OptAsetWith) Length() int      { return 3 }
func (OptAsetWith) Pops() int        { return 2 }
func (OptAsetWith) Pushes() int      { return 1 }
func (i OptAsetWith) Canonical() Insn { return i }
func (i OptAsetWith) Disasm(f Formatter) string {
	return "opt_aset_with " + f.Object(value.NewStr(i.Key)) + " " + f.CallData(i.CD)
}
func (i OptAsetWith) ToA(u iseq.ISeq) []any { return []any{"opt_aset_with", i.Key, i.CD} }
func (i OptAsetWith) Call(vm VM) error {
	val := vm.Pop()
	recv := vm.Pop()
	result, err := vm.Send(recv, i.CD, []value.Value{value.NewStr(i.Key), val}, nil, nil)
	if err != nil {
		return err
	}
	vm.Push(result)
	return nil
}

// OptStrFreeze pushes freeze of a literal string.
type OptStrFreeze struct {
	S  string
	CD calldata.CallData
}

func (OptStrFreeze) Mnemonic() string { return "opt_str_freeze" }
func (OptStrFreeze) Length() int      { return 3 }
func (OptStrFreeze) Pops() int        { return 0 }
func (OptStrFreeze) Pushes() int      { return 1 }
func (i OptStrFreeze) Canonical() Insn { return i }
func (i OptStrFreeze) Disasm(f Formatter) string {
	return "opt_str_freeze " + f.Object(value.NewStr(i.S)) + " " + f.CallData(i.CD)
}
func (i OptStrFreeze) ToA(u iseq.ISeq) []any { return []any{"opt_str_freeze", i.S, i.CD} }
func (i OptStrFreeze) Call(vm VM) error {
	vm.Push(value.NewStr(i.S))
	return nil
}

// OptStrUminus pushes `-` (dedup/freeze) of a literal string.
type OptStrUminus struct {
	S  string
	CD calldata.CallData
}

func (OptStrUminus) Mnemonic() string { return "opt_str_uminus" }
func (OptStrUminus) Length() int      { return 3 }
func (OptStrUminus) Pops() int        { return 0 }
func (OptStrUminus) Pushes() int      { return 1 }
func (i OptStrUminus) Canonical() Insn { return i }
func (i OptStrUminus) Disasm(f Formatter) string {
	return "opt_str_uminus " + f.Object(value.NewStr(i.S)) + " " + f.CallData(i.CD)
}
func (i OptStrUminus) ToA(u iseq.ISeq) []any { return []any{"opt_str_uminus", i.S, i.CD} }
func (i OptStrUminus) Call(vm VM) error {
	vm.Push(value.NewStr(i.S))
	return nil
}
