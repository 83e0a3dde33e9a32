package rope

import "unicode/utf8"

// Chunk size constants control the granularity of text storage.
const (
	// MinChunkSize is the byte size below which adjacent chunks are merged.
	MinChunkSize = 128

	// MaxChunkSize is the maximum bytes per chunk before splitting.
	MaxChunkSize = 256

	// TargetChunkSize is the preferred chunk size when building.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk is a leaf's unit of text with its metrics computed up front.
type Chunk struct {
	data    string
	summary TextSummary
}

// NewChunk wraps s.
func NewChunk(s string) Chunk {
	return Chunk{
		data:    s,
		summary: ComputeSummary(s),
	}
}

// String returns the chunk's text.
func (c Chunk) String() string {
	return c.data
}

// Summary returns the chunk's precomputed metrics.
func (c Chunk) Summary() TextSummary {
	return c.summary
}

// Len returns the byte length of the chunk.
func (c Chunk) Len() int {
	return len(c.data)
}

// Runes returns the code point count of the chunk.
func (c Chunk) Runes() int {
	return c.summary.Runes
}

// IsEmpty returns true if the chunk contains no text.
func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

// byteOffset converts a code point offset within the chunk to a byte offset.
func (c Chunk) byteOffset(runeOffset int) int {
	if runeOffset >= c.summary.Runes {
		return len(c.data)
	}
	if c.summary.Flags&FlagASCII != 0 {
		return runeOffset
	}
	return byteIndex(c.data, runeOffset)
}

// Slice returns the text between code point offsets [start, end).
func (c Chunk) Slice(start, end int) string {
	if start >= end {
		return ""
	}
	return c.data[c.byteOffset(start):c.byteOffset(end)]
}

// Splice removes the code points in [start, end) and inserts text in their
// place, returning the resulting chunks (nil if the result is empty).
func (c Chunk) Splice(start, end int, text string) []Chunk {
	bs, be := c.byteOffset(start), c.byteOffset(end)
	return splitIntoChunks(c.data[:bs] + text + c.data[be:])
}

// splitIntoChunks cuts s into chunks of about TargetChunkSize bytes, never
// inside a code point.
func splitIntoChunks(s string) []Chunk {
	var chunks []Chunk
	for len(s) > MaxChunkSize {
		cut := runeBoundary(s, TargetChunkSize)
		chunks = append(chunks, NewChunk(s[:cut]))
		s = s[cut:]
	}
	if s != "" {
		chunks = append(chunks, NewChunk(s))
	}
	return chunks
}

// coalesce merges adjacent small chunks so leaves stay compact after deletes.
func coalesce(chunks []Chunk) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	out := chunks[:1]
	for _, c := range chunks[1:] {
		last := out[len(out)-1]
		if last.Len()+c.Len() <= MaxChunkSize && (last.Len() < MinChunkSize || c.Len() < MinChunkSize) {
			out[len(out)-1] = NewChunk(last.data + c.data)
			continue
		}
		out = append(out, c)
	}
	return out
}

// runeBoundary returns the last code point boundary at or before target,
// or the first one after it when target falls inside the leading rune.
func runeBoundary(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}
	for i := target; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	for i := target + 1; i < len(s); i++ {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return len(s)
}
