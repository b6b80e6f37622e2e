package bytecode

import (
	"testing"

	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/value"
)

func allInsns() []Insn {
	cd := calldata.New("foo", 1, calldata.FlagArgsSimple)
	notCD := calldata.New("!", 0, calldata.FlagArgsSimple)
	toSCD := calldata.New("to_s", 0, calldata.FlagArgsSimple)
	return []Insn{
		Pop{}, Dup{}, Dupn{N: 2}, Swap{}, Topn{N: 1}, Setn{N: 1}, Adjuststack{N: 2},
		Putnil{}, Putself{}, Putobject{Val: value.NewInteger(3)},
		PutobjectInt2Fix0{}, PutobjectInt2Fix1{}, Putstring{S: "x"},
		Duparray{Elems: []value.Value{value.NewInteger(1)}},
		Duphash{Pairs: []value.Value{value.NewSymbol("a"), value.NewInteger(1)}},
		Putspecialobject{Kind: SpecialVMCore},
		OptSpecialized{Kind: OptPlus, CD: cd},
		OptSpecialized{Kind: OptNot, CD: notCD},
		OptNeq{EqCD: cd, NeqCD: cd},
		OptNewarrayMax{N: 2}, OptNewarrayMin{N: 2},
		OptArefWith{Key: "k", CD: cd}, OptAsetWith{Key: "k", CD: cd},
		OptStrFreeze{S: "s", CD: cd}, OptStrUminus{S: "s", CD: cd},
		Concatstrings{N: 2}, Anytostring{}, Objtostring{CD: toSCD}, Intern{},
		Toregexp{Opts: 0, N: 1}, Newrange{Excl: 0},
		Newarray{N: 2}, Newarraykwsplat{N: 2}, Newhash{N: 2},
		Concatarray{}, Splatarray{Flag: 0}, Expandarray{N: 2, Flags: 0},
		Getlocal{Index: 0, Lvl: 0}, Setlocal{Index: 0, Lvl: 0},
		GetlocalWC0{Index: 0}, GetlocalWC1{Index: 0},
		SetlocalWC0{Index: 0}, SetlocalWC1{Index: 0},
		Getblockparam{Index: 0, Lvl: 0}, Getblockparamproxy{Index: 0, Lvl: 0}, Setblockparam{Index: 0, Lvl: 0},
		Getinstancevariable{Name: "@a"}, Setinstancevariable{Name: "@a"},
		Getclassvariable{Name: "@@a"}, Setclassvariable{Name: "@@a"},
		GetclassvariableLegacy{Name: "@@a"}, SetclassvariableLegacy{Name: "@@a"},
		Getglobal{Name: "$g"}, Setglobal{Name: "$g"},
		Getconstant{Name: "C"}, Setconstant{Name: "C"},
		OptGetconstantPath{Names: []string{"A", "B"}},
		Getspecial{Key: 0, Type: 0}, Setspecial{Key: 0},
		Nop{}, Leave{},
		Checkmatch{Type: MatchCase}, Checktype{T: TypeFixnum}, Checkkeyword{BitsIdx: 0, KwIdx: 0},
		Defined{Type: DefinedLVar, Name: "x", Message: "local-variable"},
		OptSendWithoutBlock{CD: cd}, Invokeblock{CD: cd},
		Definemethod{Name: "m"}, Definesmethod{Name: "m"},
		Throw{Tag: ThrowReturn},
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	for _, insn := range allInsns() {
		once := insn.Canonical()
		twice := once.Canonical()
		if once.Mnemonic() != twice.Mnemonic() {
			t.Errorf("%s: canonicalization not idempotent: %s -> %s", insn.Mnemonic(), once.Mnemonic(), twice.Mnemonic())
		}
	}
}

func TestCanonicalPreservesStackEffect(t *testing.T) {
	anomalies := map[string]bool{"checktype": true, "leave": true}
	for _, insn := range allInsns() {
		c := insn.Canonical()
		if anomalies[insn.Mnemonic()] {
			continue
		}
		if insn.Pops() != c.Pops() {
			t.Errorf("%s: pops %d != canonical pops %d", insn.Mnemonic(), insn.Pops(), c.Pops())
		}
		if insn.Pushes() != c.Pushes() {
			t.Errorf("%s: pushes %d != canonical pushes %d", insn.Mnemonic(), insn.Pushes(), c.Pushes())
		}
	}
}
