// Package iseq defines the instruction sequence (ISeq) interface
// opcodes require of the compiled unit they live in, and the concrete
// *Unit implementation that an external compiler populates.
package iseq

import "github.com/google/uuid"

// Type tags the role a compiled unit plays.
type Type uint8

const (
	TypeTop Type = iota
	TypeMethod
	TypeBlock
	TypeClass
	TypeRescue
	TypeEnsure
	TypeEval
	TypeMain
)

func (t Type) String() string {
	switch t {
	case TypeTop:
		return "top"
	case TypeMethod:
		return "method"
	case TypeBlock:
		return "block"
	case TypeClass:
		return "class"
	case TypeRescue:
		return "rescue"
	case TypeEnsure:
		return "ensure"
	case TypeEval:
		return "eval"
	case TypeMain:
		return "main"
	default:
		return "unknown"
	}
}

// Label is an opaque jump target used by control-flow opcodes. It is
// created by the compiler, bound to a PC with Unit.BindLabel, and
// resolved by the VM at jump time by reading its PC().
type Label struct {
	name  string
	index int // -1 until bound to a PC by Unit.BindLabel
}

// NewLabel creates an unbound label with a printable name.
func NewLabel(name string) *Label {
	return &Label{name: name, index: -1}
}

func (l *Label) Name() string { return l.name }

// PC returns the bound program counter, or -1 if the label has not yet
// been bound within its iseq.
func (l *Label) PC() int { return l.index }

// Bind fixes the label's program counter. Idempotent rebinding to the
// same value is allowed; rebinding to a different value panics, since
// that would indicate a compiler bug rather than a runtime condition.
func (l *Label) Bind(pc int) {
	if l.index != -1 && l.index != pc {
		panic("iseq: label rebound to a different PC")
	}
	l.index = pc
}

// LocalTable maps a local variable's declaration-order index to its
// storage offset, and back. YARV-style iseqs store locals from the
// bottom of the table outward for serialization purposes:
// "local_table.offset(index) ... positive integers index from the
// bottom of the table").
type LocalTable struct {
	Names []string
}

// Offset returns the serialized offset for the compiler-assigned local
// index, i.e. the distance from the bottom of the table.
func (lt *LocalTable) Offset(index int) int {
	return len(lt.Names) - index
}

// IndexForOffset is the inverse of Offset, used by deserializers.
func (lt *LocalTable) IndexForOffset(offset int) int {
	return len(lt.Names) - offset
}

func (lt *LocalTable) Size() int { return len(lt.Names) }

func (lt *LocalTable) NameOf(index int) string {
	if index < 0 || index >= len(lt.Names) {
		return ""
	}
	return lt.Names[index]
}

// CatchTag identifies the kind of non-local transfer a catch entry
// handles.
type CatchTag uint8

const (
	CatchReturn CatchTag = iota
	CatchBreak
	CatchNext
	CatchRetry
	CatchRedo
	CatchRescue
	CatchEnsure
	CatchRaise
)

// CatchEntry maps a (tag, pc-range) to a handler label within this
// iseq.
type CatchEntry struct {
	Tag       CatchTag
	PCFrom    int
	PCTo      int
	Target    *Label
	ChildIseq ISeq // non-nil for rescue/ensure handlers compiled as their own iseq
}

// ISeq is what opcodes require of the compiled unit they live in.
type ISeq interface {
	Name() string
	Type() Type
	Locals() *LocalTable
	Parent() ISeq
	// Insns returns the flat instruction stream. The element type is
	// `any` here (rather than bytecode.Insn) to avoid an import cycle;
	// consumers (pkg/vm, pkg/wire, pkg/disasm) assert each element
	// back to bytecode.Insn.
	Insns() []any
	CatchTable() []CatchEntry
	ID() string
}

// Unit is the concrete ISeq implementation a compiler populates.
type Unit struct {
	UnitName   string
	UnitType   Type
	UnitLocals LocalTable
	UnitParent ISeq
	Code       []any
	Catches    []CatchEntry
	id         string
}

// NewUnit creates an empty compiled unit. ID is a fresh UUID naming
// this unit object; it is not part of the wire encoding, and pkg/cache
// content-addresses units by a hash of that encoding instead.
func NewUnit(name string, typ Type, parent ISeq) *Unit {
	return &Unit{
		UnitName:   name,
		UnitType:   typ,
		UnitParent: parent,
		id:         uuid.NewString(),
	}
}

func (u *Unit) Name() string            { return u.UnitName }
func (u *Unit) Type() Type              { return u.UnitType }
func (u *Unit) Locals() *LocalTable      { return &u.UnitLocals }
func (u *Unit) Parent() ISeq            { return u.UnitParent }
func (u *Unit) Insns() []any            { return u.Code }
func (u *Unit) CatchTable() []CatchEntry { return u.Catches }
func (u *Unit) ID() string              { return u.id }

// Emit appends an instruction and returns its program counter.
func (u *Unit) Emit(insn any) int {
	pc := len(u.Code)
	u.Code = append(u.Code, insn)
	return pc
}

// AddLocal declares a new local slot and returns its compiler-facing
// index (not its serialized offset — see LocalTable.Offset).
func (u *Unit) AddLocal(name string) int {
	u.UnitLocals.Names = append(u.UnitLocals.Names, name)
	return len(u.UnitLocals.Names) - 1
}

// AddCatch registers a catch-table entry covering [pcFrom, pcTo).
func (u *Unit) AddCatch(entry CatchEntry) {
	u.Catches = append(u.Catches, entry)
}

// BindLabel fixes a label to the unit's current instruction count,
// i.e. the PC the next Emit call will use.
func (u *Unit) BindLabel(l *Label) {
	l.Bind(len(u.Code))
}
