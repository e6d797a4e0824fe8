package keyseq

import "bytes"

// maxInlineLen is the largest sequence length that fits inline,
// matching spec.md §8's "SmoVec" contract: four fixed inline variants
// sized 2/4/6/8 plus a heap variant for 9..16. kseqi collapses the
// four fixed variants into one inline byte array bounded at 16 bytes
// (the same footprint bound spec.md §8 requires) rather than a tagged
// union of four array sizes — Go gives value-type arrays and slice
// aliasing for free, so the enum-of-arrays trick the original source
// needed to avoid one oversized common case is not needed here.
const maxInlineLen = 16

// MinLen and MaxLen bound a legal sequence: 2 to 16 keycodes.
const (
	MinLen = 2
	MaxLen = 16
)

// Sequence is an ordered list of keycodes, 2 to 16 long, every one
// appearing an even number of times across presses and releases. A
// canonical Sequence (the form stored in a Binding map and compared
// for equality) holds only the keycodes, in press order, with the
// press/release flag already stripped out.
//
// Sequence is a plain value type: comparable with ==, hashable by a
// map key of the same underlying array, equal exactly when the
// underlying bytes are equal to a plain byte slice of the same
// length — the contract spec.md §9 asks the container to uphold.
type Sequence struct {
	len  uint8
	data [maxInlineLen]byte
}

// New builds a Sequence from a slice of keycodes. It does not
// validate length; use Valid to check before storing in a Binding.
// A slice longer than 16 keycodes yields the empty Sequence, which
// Valid rejects.
func New(keycodes []Keycode) Sequence {
	var s Sequence
	n := len(keycodes)
	if n > maxInlineLen {
		return s
	}
	for i := 0; i < n; i++ {
		s.data[i] = byte(keycodes[i])
	}
	s.len = uint8(n)
	return s
}

// Len returns the number of keycodes in the sequence.
func (s Sequence) Len() int { return int(s.len) }

// At returns the keycode at index i.
func (s Sequence) At(i int) Keycode { return Keycode(s.data[i]) }

// Keycodes returns the sequence's keycodes as a fresh slice.
func (s Sequence) Keycodes() []Keycode {
	out := make([]Keycode, s.len)
	for i := range out {
		out[i] = Keycode(s.data[i])
	}
	return out
}

// Bytes returns the raw keycode bytes, sized to Len(). The returned
// slice aliases the Sequence's internal array; callers must not
// retain it across a mutation (Sequence has none exported, so in
// practice this is always safe to hold as long as the Sequence is
// alive).
func (s *Sequence) Bytes() []byte { return s.data[:s.len] }

// Equal reports whether two sequences hold the same keycodes in the
// same order — equivalent to comparing their underlying byte slices.
func (s Sequence) Equal(other Sequence) bool {
	if s.len != other.len {
		return false
	}
	return bytes.Equal(s.data[:s.len], other.data[:other.len])
}

// validLength reports whether n is one of the allowed sequence
// lengths per spec.md §8/§9: {2,4,6,8} ∪ {9..16}. Odd lengths 1,3,5,7
// are rejected — a side effect of the original inline-variant sizes
// that spec.md §9 asks implementations to preserve.
func validLength(n int) bool {
	if n < MinLen || n > MaxLen {
		return false
	}
	switch n {
	case 1, 3, 5, 7:
		return false
	}
	return true
}

// Valid reports whether the sequence has a legal length for storage
// in a Binding map.
func (s Sequence) Valid() bool {
	return validLength(int(s.len))
}

// RejectedForParity reports whether n would be rejected purely due to
// the odd-length-below-9 rule, as opposed to being out of [MinLen,
// MaxLen] entirely. Used by the matcher's termination procedure to
// decide whether to log the parity-specific warning spec.md §9 calls
// for.
func RejectedForParity(n int) bool {
	if n < MinLen || n > MaxLen {
		return false
	}
	return !validLength(n)
}

// EachKeycodeEven reports whether every keycode in the sequence
// appears an even number of times — the press/release balance
// invariant from spec.md §3. It is used in tests and diagnostics, not
// on the matcher's hot path (the matcher guarantees this by
// construction: it only canonicalizes a sequence once `down` has
// returned to empty).
func (s Sequence) EachKeycodeEven() bool {
	counts := make(map[Keycode]int, s.len)
	for i := 0; i < int(s.len); i++ {
		counts[Keycode(s.data[i])]++
	}
	for _, c := range counts {
		if c%2 != 0 {
			return false
		}
	}
	return true
}
