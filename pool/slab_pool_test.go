package pool_test

import (
	"testing"

	"github.com/momentics/hioload-net/pool"
)

func TestSlabPoolReuse(t *testing.T) {
	sp := pool.NewSlabPool(128, 4)
	b1 := sp.Get()
	if len(b1) != 128 {
		t.Fatalf("len = %d", len(b1))
	}
	b1[0] = 7
	sp.Put(b1)
	b2 := sp.Get()
	// b2 should reuse underlying storage
	if &b2[0] != &b1[0] {
		t.Error("slab not reused")
	}
	st := sp.Stats()
	if st["allocated"] != 1 || st["gets"] != 2 || st["outstanding"] != 1 {
		t.Errorf("stats = %v", st)
	}
}

func TestSlabPoolBounds(t *testing.T) {
	sp := pool.NewSlabPool(16, 1)
	a, b := sp.Get(), sp.Get()
	sp.Put(a)
	sp.Put(b) // free list full
	sp.Put(make([]byte, 8))
	st := sp.Stats()
	if st["free"] != 1 || st["dropped"] != 2 {
		t.Errorf("stats = %v", st)
	}
}

func TestSlabPoolRestoresLength(t *testing.T) {
	sp := pool.NewSlabPool(32, 2)
	b := sp.Get()
	sp.Put(b[:5])
	if got := sp.Get(); len(got) != 32 {
		t.Errorf("reused slab len = %d, want 32", len(got))
	}
}

func TestNewSlabPoolRejectsZeroSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	pool.NewSlabPool(0, 1)
}
