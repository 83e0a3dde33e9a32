// Package rope provides an immutable rope indexed by Unicode code points.
//
// A rope is a B+ tree where leaf nodes contain UTF-8 text chunks and internal
// nodes store aggregated metrics (bytes, code points, UTF-16 units). Every
// public offset is a code point offset: callers never see byte or UTF-16
// offsets, so text containing characters outside the Basic Multilingual Plane
// is addressed the same way as ASCII.
//
// Key features:
//   - O(log n) insertion, deletion and slicing by code point offset
//   - Immutable operations return new ropes; originals are never modified
//   - All leaves sit at the same depth; edits copy only the touched path
//   - Thread-safe for concurrent read access
//
// Basic usage:
//
//	r := rope.FromString("hi 😀 there")
//	r = r.Insert(5, "!")    // "hi 😀 !there"
//	r = r.Delete(0, 3)      // "😀 !there"
//	n := r.Len()            // 9 code points
package rope
