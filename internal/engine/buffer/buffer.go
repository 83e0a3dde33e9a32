package buffer

import (
	"errors"
	"fmt"

	"github.com/dshills/editrace/internal/engine/rope"
)

// Errors returned by buffer operations.
var (
	ErrOutOfBounds = errors.New("edit out of bounds")
)

// RangeError describes a rejected splice.
type RangeError struct {
	Pos int // Requested position
	Del int // Requested delete count
	Len int // Document length at the time of the request
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: position %d delete %d in document of length %d", ErrOutOfBounds, e.Pos, e.Del, e.Len)
}

// Unwrap returns ErrOutOfBounds.
func (e *RangeError) Unwrap() error {
	return ErrOutOfBounds
}

// Buffer is a mutable document addressed by code point offsets.
type Buffer struct {
	rope rope.Rope
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{rope: rope.New()}
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	return &Buffer{rope: rope.FromString(s)}
}

// Len returns the number of code points held.
func (b *Buffer) Len() int {
	return b.rope.Len()
}

// IsEmpty returns true if the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	return b.rope.IsEmpty()
}

// UTF16Len returns the document length in UTF-16 code units. It differs
// from Len by the number of characters that need a surrogate pair.
func (b *Buffer) UTF16Len() int {
	return b.rope.UTF16Len()
}

// AstralCount returns the number of code points above U+FFFF.
func (b *Buffer) AstralCount() int {
	return b.rope.Summary().Astral
}

// Splice removes del code points starting at pos, then inserts ins at pos.
// It fails with a *RangeError wrapping ErrOutOfBounds, leaving the buffer
// unchanged, when pos or pos+del lies outside the document.
func (b *Buffer) Splice(pos, del int, ins string) error {
	n := b.rope.Len()
	if pos < 0 || del < 0 || pos > n || del > n-pos {
		return &RangeError{Pos: pos, Del: del, Len: n}
	}
	if del == 0 && ins == "" {
		return nil
	}
	b.rope = b.rope.Replace(pos, pos+del, ins)
	return nil
}

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	return b.rope.String()
}

// Runes returns the full buffer content as a code point sequence.
func (b *Buffer) Runes() []rune {
	return b.rope.Runes()
}

// Slice returns the text in the code point range [start, end), clamped to
// the document.
func (b *Buffer) Slice(start, end int) string {
	return b.rope.Slice(start, end)
}

// Snapshot returns an immutable view of the current content.
func (b *Buffer) Snapshot() rope.Rope {
	return b.rope
}
