package rope

import "strings"

// Rope is a persistent B-tree of text chunks. Edits return a new Rope that
// shares unchanged subtrees with the old one, so a held Rope is a free
// snapshot and may be read from any goroutine.
//
// All offsets are code point offsets.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeafNode()}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return Rope{root: buildRoot(groupChunks(splitIntoChunks(s)))}
}

// Len returns the total code point length.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// ByteLen returns the UTF-8 byte length.
func (r Rope) ByteLen() int {
	return r.Summary().Bytes
}

// UTF16Len returns the length in UTF-16 code units, counting each code point
// above U+FFFF twice.
func (r Rope) UTF16Len() int {
	return r.Summary().UTF16Units
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{Flags: FlagASCII}
	}
	return r.root.summary
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.ByteLen())
	r.root.appendTo(&sb)
	return sb.String()
}

// Runes returns the full text as a code point slice.
func (r Rope) Runes() []rune {
	out := make([]rune, 0, r.Len())
	it := r.Chunks()
	for it.Next() {
		for _, c := range it.Chunk().String() {
			out = append(out, c)
		}
	}
	return out
}

// Slice returns the text in the code point range [start, end).
// The range is clamped to the rope.
func (r Rope) Slice(start, end int) string {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// Insert inserts text at the given code point offset.
// Offsets past the end append. Returns a new rope; original is unchanged.
func (r Rope) Insert(offset int, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil {
		return FromString(text)
	}
	offset = min(max(offset, 0), r.Len())
	return Rope{root: buildRoot(r.root.insert(offset, text))}
}

// Delete removes text in the code point range [start, end).
// The range is clamped to the rope. Returns a new rope; original is unchanged.
func (r Rope) Delete(start, end int) Rope {
	start = max(start, 0)
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return r
	}

	root := r.root.delete(start, end)
	if root == nil {
		return New()
	}
	for !root.IsLeaf() && len(root.children) == 1 {
		root = root.children[0]
	}
	return Rope{root: root}
}

// Replace replaces text in the code point range [start, end) with new text.
// Returns a new rope; original is unchanged.
func (r Rope) Replace(start, end int, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// height returns the number of levels in the tree.
func (r Rope) height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}
