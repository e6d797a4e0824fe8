package keyseq

// Keysym is an opaque identifier for an abstract key meaning, e.g. the
// lowercase letter "a" or the Return key. Zero means "no symbol".
type Keysym uint32

// NoSymbol is the zero keysym: no mapping at this keycode/level.
const NoSymbol Keysym = 0

// Keycode is an 8-bit identifier for a physical key position. Its
// meaning depends entirely on the server's current keyboard mapping.
type Keycode uint8

// NoKeycode is the zero keycode: not a valid physical key position.
const NoKeycode Keycode = 0

// Unicode-range keysyms follow the pattern 0x01000000 + codepoint,
// per the X11 Unicode keysym convention the allocator relies on.
const unicodeKeysymBase = 0x01000000

// UnicodeKeysym returns the direct-Unicode-encoded keysym for a rune,
// ignoring any legacy assignment that might exist for it. Callers that
// care about legacy ranges should consult LegacyRanges first.
func UnicodeKeysym(r rune) Keysym {
	return Keysym(unicodeKeysymBase + uint32(r))
}

// IsUnicodeKeysym reports whether s was produced by UnicodeKeysym
// (i.e. falls in the reserved Unicode keysym block).
func IsUnicodeKeysym(s Keysym) bool {
	return s >= unicodeKeysymBase && s < 0x10000000+unicodeKeysymBase
}

// KeysymForRune converts a Unicode code point to the keysym the X11
// server expects for it, per spec.md §4.4:
//
//   - code points <= 0x7F or in 0xA0..0xFF map directly to themselves;
//   - code points with a legacy (pre-Unicode) keysym assignment below
//     0x10000 still resolve to the Unicode-form keysym, but the legacy
//     assignment is reported so callers can log it;
//   - everything else uses the Unicode-form keysym.
func KeysymForRune(r rune) (sym Keysym, legacy bool) {
	if r <= 0x7F || (r >= 0xA0 && r <= 0xFF) {
		return Keysym(r), false
	}
	if r >= 0 && r <= 0xFFFF && LegacyRanges.Contains(uint16(r)) {
		return UnicodeKeysym(r), true
	}
	return UnicodeKeysym(r), false
}
