package wire

import (
	"testing"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

func buildSampleUnit() *iseq.Unit {
	method := iseq.NewUnit("greet", iseq.TypeMethod, nil)
	method.Emit(bytecode.Putstring{S: "hi"})
	method.Emit(bytecode.Leave{})

	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	idx := unit.AddLocal("a")
	top := iseq.NewLabel("top")
	unit.BindLabel(top)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.SetlocalWC0{Index: idx})
	unit.Emit(bytecode.GetlocalWC0{Index: idx})
	unit.Emit(bytecode.Branchif{Target: top})
	unit.Emit(bytecode.Putobject{Val: value.NewArray(value.NewInteger(1), value.NewStr("x"))})
	unit.Emit(bytecode.Definemethod{Name: "greet", Body: method})
	unit.Emit(bytecode.Send{CD: calldata.New("puts", 1, calldata.FlagArgsSimple)})
	unit.Emit(bytecode.Leave{})
	return unit
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	unit := buildSampleUnit()
	data, err := Marshal(unit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Name() != unit.Name() {
		t.Errorf("name: got %q, want %q", got.Name(), unit.Name())
	}
	if len(got.Insns()) != len(unit.Insns()) {
		t.Fatalf("insn count: got %d, want %d", len(got.Insns()), len(unit.Insns()))
	}
	for i, raw := range got.Insns() {
		want := unit.Insns()[i].(bytecode.Insn)
		insn := raw.(bytecode.Insn)
		if insn.Mnemonic() != want.Mnemonic() {
			t.Errorf("insn %d: got %s, want %s", i, insn.Mnemonic(), want.Mnemonic())
		}
	}
}

func TestRoundTripPreservesLiteralOperand(t *testing.T) {
	arr := value.NewArray(value.NewInteger(3), value.NewStr("z"), value.NewBool(true))
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: arr})
	unit.Emit(bytecode.Leave{})

	data, err := Marshal(unit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	insn := got.Insns()[0].(bytecode.Putobject)
	if !insn.Val.Equal(arr) {
		t.Errorf("got %s, want %s", insn.Val.Inspect(), arr.Inspect())
	}
}

func TestRoundTripPreservesBranchTargetPC(t *testing.T) {
	target := iseq.NewLabel("L")
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putnil{})
	unit.BindLabel(target)
	unit.Emit(bytecode.Putself{})
	unit.Emit(bytecode.Branchunless{Target: target})
	unit.Emit(bytecode.Leave{})

	data, err := Marshal(unit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	insn := got.Insns()[2].(bytecode.Branchunless)
	if insn.Target.PC() != target.PC() {
		t.Errorf("got target pc %d, want %d", insn.Target.PC(), target.PC())
	}
}

func TestRoundTripPreservesNestedMethodBody(t *testing.T) {
	unit := buildSampleUnit()
	data, err := Marshal(unit)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var def bytecode.Definemethod
	found := false
	for _, raw := range got.Insns() {
		if d, ok := raw.(bytecode.Definemethod); ok {
			def, found = d, true
		}
	}
	if !found {
		t.Fatal("definemethod not found after round trip")
	}
	if def.Body == nil || def.Body.Name() != "greet" {
		t.Errorf("body name: got %v, want greet", def.Body)
	}
	if len(def.Body.Insns()) != 2 {
		t.Errorf("body insn count: got %d, want 2", len(def.Body.Insns()))
	}
}

func TestEncodeValueRejectsRuntimeOnlyKinds(t *testing.T) {
	if _, err := EncodeValue(value.NewClassRef("Foo")); err == nil {
		t.Error("expected an error encoding a ClassRef as a literal-pool operand")
	}
}

func TestDecodeInsnUnknownTag(t *testing.T) {
	_, err := DecodeInsn(WireInsn{Tag: "not_a_real_opcode"})
	if err == nil {
		t.Error("expected an error decoding an unknown mnemonic tag")
	}
}
