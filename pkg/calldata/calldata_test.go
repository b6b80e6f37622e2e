package calldata

import "testing"

func TestHasFlag(t *testing.T) {
	cd := New("+", 1, FlagArgsSimple|FlagFCall)
	if !cd.HasFlag(FlagArgsSimple) {
		t.Error("expected FlagArgsSimple set")
	}
	if cd.HasFlag(FlagBlockarg) {
		t.Error("did not expect FlagBlockarg set")
	}
}

func TestBuilderKwargsSetsFlag(t *testing.T) {
	cd := NewBuilder("configure").Argc(0).Kwargs([]string{"a", "b"}).Build()
	if !cd.HasFlag(FlagKwarg) {
		t.Error("Kwargs() must set FlagKwarg")
	}
	if len(cd.KwArg) != 2 {
		t.Errorf("KwArg = %v, want 2 names", cd.KwArg)
	}
}

func TestEqual(t *testing.T) {
	a := NewWithKwargs("m", 2, FlagFCall, []string{"x"})
	b := NewWithKwargs("m", 2, FlagFCall, []string{"x"})
	c := NewWithKwargs("m", 2, FlagFCall, []string{"y"})

	if !a.Equal(b) {
		t.Error("identical calldata should be Equal")
	}
	if a.Equal(c) {
		t.Error("calldata differing in KwArg should not be Equal")
	}
}
