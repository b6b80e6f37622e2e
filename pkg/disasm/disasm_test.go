package disasm

import (
	"strings"
	"testing"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/calldata"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

func TestDisassembleSimple(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(1)})
	unit.Emit(bytecode.Putobject{Val: value.NewInteger(2)})
	unit.Emit(bytecode.Leave{})

	out := New(unit).String()

	if !strings.Contains(out, "=== <main> (main) ===") {
		t.Error("missing unit header")
	}
	if !strings.Contains(out, "putobject 1") {
		t.Error("missing first putobject")
	}
	if !strings.Contains(out, "leave") {
		t.Error("missing leave")
	}
	if !strings.Contains(out, "instructions total") {
		t.Error("missing summary line")
	}
}

func TestDisassembleShowsLocalsAndBranchTarget(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	idx := unit.AddLocal("x")
	top := iseq.NewLabel("top")
	unit.BindLabel(top)
	unit.Emit(bytecode.GetlocalWC0{Index: idx})
	unit.Emit(bytecode.Branchif{Target: top})
	unit.Emit(bytecode.Leave{})

	out := New(unit).String()

	if !strings.Contains(out, "locals: x") {
		t.Error("missing locals line")
	}
	if !strings.Contains(out, "branchif 0000") {
		t.Errorf("missing resolved branch target, got:\n%s", out)
	}
}

func TestDisassembleEnqueuesChildBodies(t *testing.T) {
	method := iseq.NewUnit("greet", iseq.TypeMethod, nil)
	method.Emit(bytecode.Putstring{S: "hi"})
	method.Emit(bytecode.Leave{})

	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Definemethod{Name: "greet", Body: method})
	unit.Emit(bytecode.Leave{})

	out := New(unit).String()

	if !strings.Contains(out, "=== greet (method) ===") {
		t.Errorf("expected child body section, got:\n%s", out)
	}
	if !strings.Contains(out, "putstring \"hi\"") {
		t.Error("missing child body instruction")
	}
}

func TestDisassembleCallDataAndCache(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Send{CD: calldata.New("puts", 1, calldata.FlagArgsSimple|calldata.FlagFCall)})
	cache := bytecode.NewOnceCache("cache-1")
	unit.Emit(bytecode.Once{Body: iseq.NewUnit("once_body", iseq.TypeBlock, nil), Cache: cache})
	unit.Emit(bytecode.Leave{})

	out := New(unit).String()

	if !strings.Contains(out, "mid:puts") || !strings.Contains(out, "ARGS_SIMPLE") || !strings.Contains(out, "FCALL") {
		t.Errorf("missing calldata rendering, got:\n%s", out)
	}
	if !strings.Contains(out, "<ic:once:cache-1>") {
		t.Errorf("missing cache rendering, got:\n%s", out)
	}
}

func TestLinesMatchesString(t *testing.T) {
	unit := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	unit.Emit(bytecode.Leave{})

	lines := New(unit).Lines()
	if len(lines) == 0 {
		t.Fatal("expected at least one line")
	}
	joined := strings.Join(lines, "\n")
	if !strings.HasPrefix(New(unit).String(), lines[0]+"\n") {
		t.Errorf("Lines() first line %q does not match String() start", lines[0])
	}
	_ = joined
}
