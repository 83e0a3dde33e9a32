package validate

import "github.com/dshills/editrace/internal/engine/rope"

// Compare checks doc against the expected content code point by code point.
// It returns nil when they are equal, otherwise a mismatch carrying excerpts
// of up to window code points on either side of the first difference.
// The scan is a single pass over both texts.
func Compare(doc rope.Rope, expected string, window int) *ContentMismatchError {
	if window < 0 {
		window = 0
	}
	want := []rune(expected)

	it := doc.Iter()
	pos := 0
	for ; pos < len(want); pos++ {
		if !it.Next() || it.Rune() != want[pos] {
			break
		}
	}
	if pos == len(want) && doc.Len() == len(want) {
		return nil
	}

	lo := max(pos-window, 0)
	return &ContentMismatchError{
		Pos:          pos,
		ExpectedLen:  len(want),
		ActualLen:    doc.Len(),
		ExcerptStart: lo,
		Expected:     string(want[lo:min(pos+window, len(want))]),
		Actual:       doc.Slice(lo, pos+window),
	}
}
