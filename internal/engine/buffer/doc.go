// Package buffer provides the document buffer used during trace replay.
//
// A Buffer holds the current document in a rope and exposes it exclusively
// through code point offsets. Storage offsets (UTF-8 bytes, UTF-16 units)
// never cross the package boundary, so a document containing characters
// outside the Basic Multilingual Plane is edited exactly like ASCII text.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("😀ab")
//	err := buf.Splice(1, 1, "X") // "😀Xb"
//	n := buf.Len()               // 3
//
// Splice never clamps: a position or deletion reaching past the end of the
// document fails with ErrOutOfBounds.
//
// A Buffer is owned by a single replay and is not safe for concurrent
// mutation. Snapshot returns an immutable view that may be shared.
package buffer
