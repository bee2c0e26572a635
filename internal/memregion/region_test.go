package memregion

import "testing"

func TestContainsEmptyRegion(t *testing.T) {
	r := New("empty", 0x1000, nil)
	if r.Contains(0x1000) {
		t.Error("empty region should not contain its own base")
	}
	if r.ContainsRange(0x1000, 0) {
		t.Error("empty region should not contain a zero-length range at its base")
	}
}

func TestContainsRangeExact(t *testing.T) {
	r := New("text", 0x1000, make([]byte, 0x100))

	if !r.ContainsRange(0x1000, 0x100) {
		t.Error("expected exact range to be contained")
	}
	if r.ContainsRange(0x1000, 0x101) {
		t.Error("expected range exceeding region length to be rejected")
	}
	if r.ContainsRange(0x0FFF, 2) {
		t.Error("expected range starting before the region to be rejected")
	}
}

func TestContainsRangeOverflow(t *testing.T) {
	r := New("near-max", ^uint64(0)-4, make([]byte, 4))
	if r.ContainsRange(^uint64(0)-1, ^uint64(0)) {
		t.Error("expected overflowing a+n to be rejected, not wrapped")
	}
}

func TestContainsImpliesContainsRangeOne(t *testing.T) {
	r := New("r", 0x2000, make([]byte, 0x10))
	for a := r.Base; a < r.End(); a++ {
		if r.Contains(a) && !r.ContainsRange(a, 1) {
			t.Errorf("Contains(%#x) true but ContainsRange(%#x, 1) false", a, a)
		}
	}
}

func TestRebase(t *testing.T) {
	r := New("r", 0x100, []byte{1, 2, 3})
	shifted := r.Rebase(0x1000)
	if shifted.Base != 0x1100 {
		t.Fatalf("expected rebased base 0x1100, got %#x", shifted.Base)
	}
	if r.Base != 0x100 {
		t.Error("Rebase must not mutate the receiver")
	}
}
