package rope

import "unicode/utf8"

// TextSummary holds aggregated metrics for a text span.
// This is the "summary" type of the tree, combined with Add.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int

	// Runes is the code point count. All rope offsets are expressed in runes.
	Runes int

	// UTF16Units is the UTF-16 code unit count.
	UTF16Units int

	// Astral is the number of code points above U+FFFF, each of which
	// occupies a surrogate pair under UTF-16.
	Astral int

	// Flags indicate text properties for fast paths.
	Flags TextFlags
}

// TextFlags indicate text properties for optimization fast paths.
type TextFlags uint8

const (
	// FlagASCII indicates all characters are ASCII (< 128).
	// When set, byte offsets and rune offsets coincide.
	FlagASCII TextFlags = 1 << iota
)

// Add combines two summaries (monoid operation).
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}
	return TextSummary{
		Bytes:      s.Bytes + other.Bytes,
		Runes:      s.Runes + other.Runes,
		UTF16Units: s.UTF16Units + other.UTF16Units,
		Astral:     s.Astral + other.Astral,
		Flags:      s.Flags & other.Flags, // all must have property
	}
}

// Zero returns the identity element for the summary monoid.
func (TextSummary) Zero() TextSummary {
	return TextSummary{Flags: FlagASCII}
}

// IsZero returns true if this is the zero/identity summary.
func (s TextSummary) IsZero() bool {
	return s.Bytes == 0
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	sum := TextSummary{Flags: FlagASCII}
	if len(s) == 0 {
		return sum
	}
	sum.Bytes = len(s)

	for _, r := range s {
		sum.Runes++
		switch {
		case r < utf8.RuneSelf:
			sum.UTF16Units++
		case r <= 0xFFFF:
			sum.UTF16Units++
			sum.Flags &^= FlagASCII
		default:
			sum.UTF16Units += 2 // surrogate pair
			sum.Astral++
			sum.Flags &^= FlagASCII
		}
	}
	return sum
}

// byteIndex returns the byte offset of the code point at runeOffset in s.
// Offsets past the end resolve to len(s).
func byteIndex(s string, runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeOffset {
			return i
		}
		n++
	}
	return len(s)
}
