// Package bytecode is the opcode catalog: roughly one hundred
// instruction variants, each a value object exposing a uniform
// contract (operand accessors, Disasm, ToA,
// Length, Pops, Pushes, Canonical, Call) plus the canonicalization
// relation that maps specialized/legacy variants onto primitive ones.
package bytecode

import (
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
)

// Insn is the uniform contract every opcode variant implements. The
// five shape-describing methods (Length, Pops, Pushes, Canonical,
// Disasm/ToA) are usable by static analysis without executing Call.
type Insn interface {
	// Mnemonic is the lowercase wire tag used as the first element of
	// ToA and as the disassembly mnemonic.
	Mnemonic() string

	// Length is the instruction width in the encoded stream: the
	// opcode itself plus one slot per operand.
	Length() int

	// Pops is the number of stack slots Call consumes. A pure function
	// of the instruction's own operands (and, for call-like opcodes,
	// its embedded CallData) — never of VM state.
	Pops() int

	// Pushes is the number of stack slots Call produces. Two variants
	// (Checktype, Leave) deliberately report values that don't match
	// their real net stack effect.
	Pushes() int

	// Canonical returns the primitive opcode this variant is
	// equivalent to, or itself if it already is primitive. Idempotent:
	// Canonical().Canonical() == Canonical().
	Canonical() Insn

	// Disasm renders one human-readable line via the formatter.
	Disasm(f Formatter) string

	// ToA produces the tuple serialization rooted at Mnemonic(), in
	// a fixed operand order assigned per variant. unit
	// is the owning iseq, needed to resolve local-table offsets.
	ToA(unit iseq.ISeq) []any

	// Call executes the instruction against vm.
	Call(vm VM) error
}

// Formatter is the minimal surface Disasm needs to render operands; a
// concrete implementation lives in pkg/disasm, which also owns the
// line-layout policy: a formatter that also provides
// label, calldata, object, and inline-storage pretty-printing.
type Formatter interface {
	Label(l *iseq.Label) string
	CallData(cd calldata.CallData) string
	Object(v any) string
	Cache(c any) string
	// Enqueue registers a child iseq (class/method/block/once body) to
	// be emitted by the driver after the current one.
	Enqueue(child iseq.ISeq)
}

// SpecialObjectKind enumerates putspecialobject's three ambient
// references.
type SpecialObjectKind uint8

const (
	SpecialVMCore SpecialObjectKind = 1 + iota
	SpecialCBase
	SpecialConstBase
)

// OptKind enumerates the 22 opt_* arithmetic/comparison
// specializations that all canonicalize to a plain send.
// One Go type (OptSpecialized) carries every Kind so that the
// twenty-two near-identical variants don't need twenty-two near-identical
// struct definitions — see DESIGN.md.
type OptKind uint8

const (
	OptPlus OptKind = iota
	OptMinus
	OptMult
	OptDiv
	OptMod
	OptAnd
	OptOr
	OptLtlt
	OptLt
	OptLe
	OptGt
	OptGe
	OptEq
	OptSucc
	OptNot
	OptLength
	OptSize
	OptEmptyP
	OptNilP
	OptRegexpmatch2
	OptAref
	OptAset
)

var optKindNames = [...]string{
	"opt_plus", "opt_minus", "opt_mult", "opt_div", "opt_mod",
	"opt_and", "opt_or", "opt_ltlt", "opt_lt", "opt_le", "opt_gt",
	"opt_ge", "opt_eq", "opt_succ", "opt_not", "opt_length", "opt_size",
	"opt_empty_p", "opt_nil_p", "opt_regexpmatch2", "opt_aref", "opt_aset",
}

// optKindUnary reports whether this specialization pops one operand
// (opt_aset pops three: receiver, index and value; the others pop two:
// receiver and one argument).
var optKindUnary = map[OptKind]bool{
	OptSucc: true, OptNot: true, OptLength: true, OptSize: true,
	OptEmptyP: true, OptNilP: true,
}

func (k OptKind) String() string {
	if int(k) < len(optKindNames) {
		return optKindNames[k]
	}
	return "opt_unknown"
}

// CheckMatchType enumerates checkmatch's context.
type CheckMatchType uint8

const (
	MatchWhen CheckMatchType = iota
	MatchCase
	MatchRescue
)

// CheckType enumerates checktype's primitive type tags.
type CheckType uint8

const (
	TypeClass CheckType = iota
	TypeModule
	TypeFloat
	TypeStringT
	TypeRegexpT
	TypeArrayT
	TypeHashT
	TypeStruct
	TypeFile
	TypeComplex
	TypeRational
	TypeNilT
	TypeTrueT
	TypeFalseT
	TypeSymbolT
	TypeFixnum
	// reserved tags retained for wire compatibility; unused by Call.
	TypeReserved1
	TypeReserved2
	TypeReserved3
	TypeReserved4
	TypeReserved5
)

// DefinedType enumerates defined?'s role classification.
type DefinedType uint8

const (
	DefinedNil DefinedType = iota
	DefinedIVar
	DefinedLVar
	DefinedGVar
	DefinedCVar
	DefinedConst
	DefinedMethod
	DefinedYield
	DefinedZSuper
	DefinedSelf
	DefinedTrue
	DefinedFalse
	DefinedAsgn
	DefinedExpr
	DefinedRef
	DefinedFunc
	DefinedConstFrom
)
