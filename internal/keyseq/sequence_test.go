package keyseq

import (
	"testing"
	"unsafe"
)

func TestSequenceFootprint(t *testing.T) {
	if got := unsafe.Sizeof(Sequence{}); got > 32 {
		t.Errorf("Sequence footprint = %d bytes, want <= 32", got)
	}
}

func seqOf(n int) Sequence {
	kcs := make([]Keycode, n)
	for i := range kcs {
		kcs[i] = Keycode(i + 1)
	}
	return New(kcs)
}

func TestSequenceValidLengthsAdmitted(t *testing.T) {
	for _, n := range []int{2, 4, 6, 8, 9, 10, 11, 12, 13, 14, 15, 16} {
		if !seqOf(n).Valid() {
			t.Errorf("length %d should be admitted", n)
		}
	}
}

func TestSequenceOddLengthsBelowNineRejected(t *testing.T) {
	for _, n := range []int{1, 3, 5, 7} {
		if seqOf(n).Valid() {
			t.Errorf("length %d should be rejected", n)
		}
		// 1 is below MinLen, so it is out of range rather than a parity
		// rejection; 3, 5 and 7 are parity rejections.
		if want := n >= MinLen; RejectedForParity(n) != want {
			t.Errorf("RejectedForParity(%d) should be %v", n, want)
		}
	}
}

func TestSequenceOutOfRangeLengthsRejected(t *testing.T) {
	for _, n := range []int{0, 17, 32} {
		if seqOf(n).Valid() {
			t.Errorf("length %d should be rejected", n)
		}
		if RejectedForParity(n) {
			t.Errorf("RejectedForParity(%d) should be false (out of range entirely)", n)
		}
	}
}

func TestSequenceEqual(t *testing.T) {
	a := New([]Keycode{1, 2, 3, 4})
	b := New([]Keycode{1, 2, 3, 4})
	c := New([]Keycode{1, 2, 3, 5})
	if !a.Equal(b) {
		t.Error("identical sequences should compare equal")
	}
	if a.Equal(c) {
		t.Error("differing sequences should not compare equal")
	}
	// Sequence is a plain value type: two sequences built from the same
	// keycodes must also compare == directly, not just via Equal.
	if a != b {
		t.Error("Sequence with identical inline data should be == comparable")
	}
}

func TestSequenceEachKeycodeEven(t *testing.T) {
	balanced := New([]Keycode{5, 6, 5, 6})
	if !balanced.EachKeycodeEven() {
		t.Error("balanced press/release sequence should report even")
	}
	unbalanced := New([]Keycode{5, 6, 5})
	if unbalanced.EachKeycodeEven() {
		t.Error("unbalanced sequence should report uneven")
	}
}

func TestSequenceAsMapKey(t *testing.T) {
	m := map[Sequence]string{
		New([]Keycode{1, 2}): "a",
		New([]Keycode{3, 4}): "b",
	}
	if got := m[New([]Keycode{1, 2})]; got != "a" {
		t.Errorf("map lookup by equal Sequence value = %q, want %q", got, "a")
	}
}
