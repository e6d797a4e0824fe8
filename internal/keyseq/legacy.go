package keyseq

import "sort"

// legacyRange is an inclusive range of 16-bit Unicode code points that
// had a pre-Unicode X11 keysym assignment (e.g. Latin-9 "currency"
// symbols, the Greek and Cyrillic blocks, Katakana, Hangul compat
// jamo). Ranges are kept strictly ordered and non-overlapping.
type legacyRange struct {
	start, end uint16
}

// legacyRangeTable implements a closed, immutable set of legacy-keysym
// code point ranges with predecessor-search containment.
type legacyRangeTable struct {
	ranges []legacyRange
}

// LegacyRanges is the set of code points with pre-Unicode keysym
// assignments, per spec.md §4.4. The table below lists whole Unicode
// blocks, one inclusive range per block, so it also contains the code
// points in those blocks that have no legacy keysym.
var LegacyRanges = buildLegacyRanges()

func buildLegacyRanges() *legacyRangeTable {
	// Ranges are listed in ascending, non-overlapping order, one per
	// legacy X11 keysym block (Latin-extended, Greek, Cyrillic,
	// Hebrew, Arabic, Thai, Hangul jamo, technical/currency symbols,
	// box drawing, Katakana, Hangul compatibility).
	ranges := []legacyRange{
		{0x0100, 0x017F}, // Latin Extended-A (legacy Latin-2/3/4 keysyms)
		{0x0180, 0x024F}, // Latin Extended-B
		{0x0370, 0x03FF}, // Greek and Coptic
		{0x0400, 0x04FF}, // Cyrillic
		{0x0590, 0x05FF}, // Hebrew
		{0x0600, 0x06FF}, // Arabic
		{0x0E00, 0x0E7F}, // Thai
		{0x1100, 0x11FF}, // Hangul Jamo
		{0x2010, 0x2027}, // General Punctuation (legacy typographic keysyms)
		{0x2070, 0x209F}, // Superscripts and Subscripts
		{0x20A0, 0x20CF}, // Currency Symbols
		{0x2100, 0x214F}, // Letterlike Symbols
		{0x2200, 0x22FF}, // Mathematical Operators
		{0x2300, 0x23FF}, // Miscellaneous Technical
		{0x2500, 0x257F}, // Box Drawing
		{0x2580, 0x259F}, // Block Elements
		{0x25A0, 0x25FF}, // Geometric Shapes
		{0x30A0, 0x30FF}, // Katakana
		{0x3130, 0x318F}, // Hangul Compatibility Jamo
	}
	return &legacyRangeTable{ranges: ranges}
}

// Contains reports whether codepoint falls within a legacy keysym
// range. It finds the greatest range whose start is <= codepoint via
// binary search, then checks codepoint against that range's end — the
// predecessor-search containment test spec.md §4.4 specifies.
func (t *legacyRangeTable) Contains(codepoint uint16) bool {
	i := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].start > codepoint
	})
	// i is the first range whose start exceeds codepoint; the
	// predecessor range, if any, is i-1.
	if i == 0 {
		return false
	}
	r := t.ranges[i-1]
	return codepoint >= r.start && codepoint <= r.end
}

// Width returns the total number of code points covered across all
// ranges. Because the ranges are whole blocks, this is larger than
// the number of code points that have a legacy keysym.
func (t *legacyRangeTable) Width() int {
	total := 0
	for _, r := range t.ranges {
		total += int(r.end-r.start) + 1
	}
	return total
}

// RangeCount returns the number of distinct ranges in the table.
func (t *legacyRangeTable) RangeCount() int {
	return len(t.ranges)
}
