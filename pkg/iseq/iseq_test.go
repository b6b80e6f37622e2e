package iseq

import "testing"

func TestLocalTableOffset(t *testing.T) {
	lt := &LocalTable{Names: []string{"a", "b", "c"}}

	// index 0 ("a") is declared first but serializes as the bottom-most
	// offset.
	if off := lt.Offset(0); off != 3 {
		t.Errorf("Offset(0) = %d, want 3", off)
	}
	if off := lt.Offset(2); off != 1 {
		t.Errorf("Offset(2) = %d, want 1", off)
	}
	if idx := lt.IndexForOffset(3); idx != 0 {
		t.Errorf("IndexForOffset(3) = %d, want 0", idx)
	}
}

func TestLabelBindIdempotent(t *testing.T) {
	l := NewLabel("L0")
	if l.PC() != -1 {
		t.Fatal("fresh label must be unbound")
	}
	l.Bind(5)
	l.Bind(5) // rebinding to the same PC is fine
	if l.PC() != 5 {
		t.Errorf("PC() = %d, want 5", l.PC())
	}
}

func TestLabelRebindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on rebind to a different PC")
		}
	}()
	l := NewLabel("L0")
	l.Bind(5)
	l.Bind(6)
}

func TestUnitEmitAndBindLabel(t *testing.T) {
	u := NewUnit("block in foo", TypeBlock, nil)
	u.Emit("nop")
	l := NewLabel("L0")
	u.BindLabel(l)
	u.Emit("leave")

	if l.PC() != 1 {
		t.Errorf("BindLabel PC = %d, want 1", l.PC())
	}
	if len(u.Insns()) != 2 {
		t.Errorf("Insns() len = %d, want 2", len(u.Insns()))
	}
	if u.ID() == "" {
		t.Error("Unit.ID() must be non-empty")
	}
}
