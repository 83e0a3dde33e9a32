package rope

import "unicode/utf8"

// chunkIterFrame represents a position in the tree traversal for chunk iteration.
type chunkIterFrame struct {
	node     *Node
	childIdx int // Next child index to visit (for internal nodes)
	chunkIdx int // Next chunk index to visit (for leaf nodes)
}

// ChunkIterator iterates over chunks in a rope, in order.
type ChunkIterator struct {
	rope       Rope
	stack      []chunkIterFrame
	started    bool
	chunk      Chunk
	chunkStart int
	nextStart  int
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{
		rope:  r,
		stack: make([]chunkIterFrame, 0, 16),
	}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		if it.rope.root == nil {
			return false
		}
		it.stack = append(it.stack, chunkIterFrame{node: it.rope.root})
	}

	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		node := frame.node

		if node.IsLeaf() {
			if frame.chunkIdx < len(node.chunks) {
				it.chunk = node.chunks[frame.chunkIdx]
				frame.chunkIdx++
				it.chunkStart = it.nextStart
				it.nextStart += it.chunk.Runes()
				return true
			}
		} else if frame.childIdx < len(node.children) {
			child := node.children[frame.childIdx]
			frame.childIdx++
			it.stack = append(it.stack, chunkIterFrame{node: child})
			continue
		}

		// Done with this node, pop
		it.stack = it.stack[:len(it.stack)-1]
	}

	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the code point offset of the start of the current chunk.
func (it *ChunkIterator) Offset() int {
	return it.chunkStart
}

// RuneIterator iterates over the code points of a rope.
type RuneIterator struct {
	chunks *ChunkIterator
	text   string
	pos    int
	cur    rune
	index  int
}

// Iter returns an iterator over the code points of the rope.
func (r Rope) Iter() *RuneIterator {
	return &RuneIterator{chunks: r.Chunks(), index: -1}
}

// Next advances to the next code point.
func (it *RuneIterator) Next() bool {
	for it.pos >= len(it.text) {
		if !it.chunks.Next() {
			return false
		}
		it.text = it.chunks.Chunk().String()
		it.pos = 0
	}
	c, size := utf8.DecodeRuneInString(it.text[it.pos:])
	it.cur = c
	it.pos += size
	it.index++
	return true
}

// Rune returns the current code point.
func (it *RuneIterator) Rune() rune {
	return it.cur
}

// Index returns the code point offset of the current rune.
func (it *RuneIterator) Index() int {
	return it.index
}
