package vm

import (
	"testing"

	"github.com/chazu/yarvm/internal/config"
	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

func newTestVM() *VM {
	return New(config.Default(), nil)
}

func TestRunLiteralZero(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(0)})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(0); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestRunOnePlusTwoViaOptPlus(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(2)})
	unit.Emit(bytecode.OptSpecialized{Kind: bytecode.OptPlus, CD: calldata.New("+", 1, calldata.FlagArgsSimple)})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(3); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestRunOneNotEqualTwoViaOptNeq(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(2)})
	unit.Emit(bytecode.OptNeq{
		EqCD:  calldata.New("==", 1, calldata.FlagArgsSimple),
		NeqCD: calldata.New("!=", 1, calldata.FlagArgsSimple),
	})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Truthy() {
		t.Errorf("1 != 2 should be true, got %v", got.Inspect())
	}
}

func TestRunAssignLocalThenReadIt(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	idx := unit.AddLocal("a")
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.SetlocalWC0{Index: idx})
	unit.Emit(bytecode.GetlocalWC0{Index: idx})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(1); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestRunStringInterpolation(t *testing.T) {
	// Builds the bytecode a compiler would emit for `"#{1}!"`: push the
	// embedded expression, coerce via objtostring/anytostring, then
	// concatstrings with the surrounding literal fragments.
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.Dup{})
	unit.Emit(bytecode.Objtostring{CD: calldata.New("to_s", 0, calldata.FlagArgsSimple)})
	unit.Emit(bytecode.Anytostring{})
	unit.Emit(bytecode.Putstring{S: "!"})
	unit.Emit(bytecode.Concatstrings{N: 2})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewStr("1!"); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestRunArrayMaxViaOptNewarrayMax(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(3)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(7)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(5)})
	unit.Emit(bytecode.OptNewarrayMax{N: 3})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(7); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestRunArrayMinViaOptNewarrayMin(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(3)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(7)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(5)})
	unit.Emit(bytecode.OptNewarrayMin{N: 3})
	unit.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(unit)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(3); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestArrayBuiltinMaxAndMin(t *testing.T) {
	arr := &value.Array{Elems: []value.Value{value.NewInteger(3), value.NewInteger(7), value.NewInteger(5)}}

	max, err := arrayBuiltin(arr, "max", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(7); !max.Equal(want) {
		t.Errorf("max: got %v, want %v", max.Inspect(), want.Inspect())
	}

	min, err := arrayBuiltin(arr, "min", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(3); !min.Equal(want) {
		t.Errorf("min: got %v, want %v", min.Inspect(), want.Inspect())
	}
}

func TestIntegerFloorDivisionAndModulo(t *testing.T) {
	got, err := intArith("/", -7, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(-4); !got.Equal(want) {
		t.Errorf("-7 / 2: got %v, want %v", got.Inspect(), want.Inspect())
	}

	got, err = intArith("%", -7, 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInteger(1); !got.Equal(want) {
		t.Errorf("-7 %% 2: got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func TestPushPastMaxStackDepthReturnsErrorNotPanic(t *testing.T) {
	cfg := config.Default()
	cfg.MaxStackDepth = 2
	v := New(cfg, nil)

	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(2)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(3)})
	unit.Emit(bytecode.Leave{})

	_, err := v.Run(unit)
	if err == nil {
		t.Fatal("expected a stack overflow error, got nil")
	}
}

func TestDefineClassAndCallMethod(t *testing.T) {
	method := iseq.NewUnit("greet", iseq.TypeMethod, nil)
	method.Emit(bytecode.Putstring{S: "hi"})
	method.Emit(bytecode.Leave{})

	classBody := iseq.NewUnit("Greeter", iseq.TypeClass, nil)
	classBody.Emit(bytecode.Definemethod{Name: "greet", Body: method})
	classBody.Emit(bytecode.Putnil{})
	classBody.Emit(bytecode.Leave{})

	main2 := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	main2.Emit(bytecode.Putnil{})
	main2.Emit(bytecode.Putnil{})
	main2.Emit(bytecode.Defineclass{Name: "Greeter", ClassIseq: classBody, Flags: bytecode.DefineClassTypeClass})
	main2.Emit(bytecode.Pop{})
	main2.Emit(bytecode.Putnil{})           // const_base
	main2.Emit(bytecode.Putobject{Val: value.False}) // allow_missing
	main2.Emit(bytecode.Getconstant{Name: "Greeter"})
	main2.Emit(bytecode.OptSendWithoutBlock{CD: calldata.New("new", 0, calldata.FlagArgsSimple)})
	main2.Emit(bytecode.OptSendWithoutBlock{CD: calldata.New("greet", 0, calldata.FlagArgsSimple)})
	main2.Emit(bytecode.Leave{})

	got, err := newTestVM().Run(main2)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewStr("hi"); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}
