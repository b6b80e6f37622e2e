package bytecode

import (
	"testing"

	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/value"
)

func TestStackEffectMatchesDeclared(t *testing.T) {
	anomalies := map[string]bool{"checktype": true, "leave": true}
	cd := calldata.New("+", 1, calldata.FlagArgsSimple)
	cases := []struct {
		insn Insn
		args []value.Value
	}{
		{Pop{}, []value.Value{value.NewInteger(1)}},
		{Dup{}, []value.Value{value.NewInteger(1)}},
		{Swap{}, []value.Value{value.NewInteger(1), value.NewInteger(2)}},
		{Adjuststack{N: 2}, []value.Value{value.NewInteger(1), value.NewInteger(2)}},
		{OptSpecialized{Kind: OptPlus, CD: cd}, []value.Value{value.NewInteger(1), value.NewInteger(2)}},
		{Concatstrings{N: 2}, []value.Value{value.NewStr("a"), value.NewStr("b")}},
		{Newarray{N: 2}, []value.Value{value.NewInteger(1), value.NewInteger(2)}},
		{Concatarray{}, []value.Value{value.NewArray(value.NewInteger(1)), value.NewArray(value.NewInteger(2))}},
	}
	for _, c := range cases {
		vm := newFakeVM()
		vm.sendFn = func(recv value.Value, cd calldata.CallData, args []value.Value) (value.Value, error) {
			return value.NewInteger(3), nil
		}
		for _, a := range c.args {
			vm.Push(a)
		}
		before := vm.StackLen()
		if err := c.insn.Call(vm); err != nil {
			t.Fatalf("%s: %v", c.insn.Mnemonic(), err)
		}
		after := vm.StackLen()
		net := after - before
		wantNet := c.insn.Pushes() - c.insn.Pops()
		if !anomalies[c.insn.Mnemonic()] && net != wantNet {
			t.Errorf("%s: net stack effect %d, want %d", c.insn.Mnemonic(), net, wantNet)
		}
	}
}

func TestOptSpecializedUnaryPopsOne(t *testing.T) {
	vm := newFakeVM()
	vm.sendFn = func(recv value.Value, cd calldata.CallData, args []value.Value) (value.Value, error) {
		return value.NewBool(true), nil
	}
	vm.Push(value.NewArray())
	insn := OptSpecialized{Kind: OptEmptyP, CD: calldata.New("empty?", 0, calldata.FlagArgsSimple)}
	if err := insn.Call(vm); err != nil {
		t.Fatal(err)
	}
	if vm.StackLen() != 1 {
		t.Fatalf("expected 1 value left on stack, got %d", vm.StackLen())
	}
}

func TestOptNeqComplementsEquality(t *testing.T) {
	vm := newFakeVM()
	vm.sendFn = func(recv value.Value, cd calldata.CallData, args []value.Value) (value.Value, error) {
		return value.NewBool(recv.Equal(args[0])), nil
	}
	vm.Push(value.NewInteger(1))
	vm.Push(value.NewInteger(2))
	insn := OptNeq{EqCD: calldata.New("==", 1, calldata.FlagArgsSimple), NeqCD: calldata.New("!=", 1, calldata.FlagArgsSimple)}
	if err := insn.Call(vm); err != nil {
		t.Fatal(err)
	}
	if got := vm.Pop(); !got.Truthy() {
		t.Errorf("1 != 2 should be true, got %v", got.Inspect())
	}
}

func TestGetlocalSetlocalRoundtrip(t *testing.T) {
	vm := newFakeVM()
	if err := (Setlocal{Index: 0, Lvl: 0}).Call(pushed(vm, value.NewInteger(42))); err != nil {
		t.Fatal(err)
	}
	if err := (Getlocal{Index: 0, Lvl: 0}).Call(vm); err != nil {
		t.Fatal(err)
	}
	got := vm.Pop()
	if want := value.NewInteger(42); !got.Equal(want) {
		t.Errorf("got %v, want %v", got.Inspect(), want.Inspect())
	}
}

func pushed(vm *fakeVM, v value.Value) *fakeVM {
	vm.Push(v)
	return vm
}

func TestExpandarrayPadsWithNil(t *testing.T) {
	vm := newFakeVM()
	vm.Push(value.NewArray(value.NewInteger(1)))
	insn := Expandarray{N: 3, Flags: 0}
	if err := insn.Call(vm); err != nil {
		t.Fatal(err)
	}
	if vm.StackLen() != 3 {
		t.Fatalf("expected 3 values, got %d", vm.StackLen())
	}
	top := vm.Pop()
	if !top.Equal(value.NewInteger(1)) {
		t.Errorf("expected element 0 on top, got %v", top.Inspect())
	}
	if next := vm.Pop(); next.Kind() != value.KindNil {
		t.Errorf("expected nil padding below element 0, got %v", next.Inspect())
	}
}

func TestLeaveTransfersValueWithoutNetPush(t *testing.T) {
	vm := newFakeVM()
	vm.Push(value.NewInteger(7))
	if err := (Leave{}).Call(vm); err != nil {
		t.Fatal(err)
	}
	if !vm.left || !vm.leaveV.Equal(value.NewInteger(7)) {
		t.Errorf("leave did not transfer the popped value")
	}
	if vm.StackLen() != 0 {
		t.Errorf("leave should have emptied the stack, got %d", vm.StackLen())
	}
}

func TestCheckmatchWhenUsesCaseEquality(t *testing.T) {
	vm := newFakeVM()
	vm.sendFn = func(recv value.Value, cd calldata.CallData, args []value.Value) (value.Value, error) {
		return value.NewBool(recv.Equal(args[0])), nil
	}
	vm.Push(value.NewInteger(5)) // target
	vm.Push(value.NewInteger(5)) // pattern
	if err := (Checkmatch{Type: MatchWhen}).Call(vm); err != nil {
		t.Fatal(err)
	}
	if !vm.Pop().Truthy() {
		t.Errorf("expected match")
	}
}
