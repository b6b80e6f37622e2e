package cache

import (
	"path/filepath"
	"testing"

	"github.com/chazu/yarvm/pkg/bytecode"
	"github.com/chazu/yarvm/pkg/iseq"
	"github.com/chazu/yarvm/pkg/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yarvm_cache_test.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleUnit() *iseq.Unit {
	u := iseq.NewUnit("<main>", iseq.TypeMain, nil)
	u.Emit(bytecode.Putobject{Val: value.NewInteger(42)})
	u.Emit(bytecode.Leave{})
	return u
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	unit := sampleUnit()

	h, err := s.Put(unit)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != unit.Name() {
		t.Errorf("name: got %q, want %q", got.Name(), unit.Name())
	}
	if len(got.Insns()) != len(unit.Insns()) {
		t.Errorf("insn count: got %d, want %d", len(got.Insns()), len(unit.Insns()))
	}
}

func TestPutIsIdempotentByContent(t *testing.T) {
	s := openTestStore(t)
	h1, err := s.Put(sampleUnit())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	h2, err := s.Put(sampleUnit())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if h1 != h2 {
		t.Errorf("two structurally identical units hashed differently: %s vs %s", h1, h2)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(Hash{})
	if err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestHasReflectsPut(t *testing.T) {
	s := openTestStore(t)
	unit := sampleUnit()
	h, _, _ := HashOf(unit)

	ok, err := s.Has(h)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if ok {
		t.Fatal("Has reported true before Put")
	}

	if _, err := s.Put(unit); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err = s.Has(h)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !ok {
		t.Fatal("Has reported false after Put")
	}
}

func TestOnceLatchRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.PutOnceResult("cache-1", []byte("frozen-result")); err != nil {
		t.Fatalf("PutOnceResult: %v", err)
	}
	got, err := s.GetOnceResult("cache-1")
	if err != nil {
		t.Fatalf("GetOnceResult: %v", err)
	}
	if string(got) != "frozen-result" {
		t.Errorf("got %q, want %q", got, "frozen-result")
	}
}

func TestOnceLatchMissingReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetOnceResult("never-fired")
	if err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
