package rope

import "strings"

// Tree structure constants
const (
	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// Node represents a node in the rope B+ tree.
// Leaf nodes (height == 0) contain text chunks.
// Internal nodes (height > 0) contain child node references.
// All leaves of a tree are at the same depth.
type Node struct {
	height  uint8       // 0 for leaves, >0 for internal
	summary TextSummary // Aggregated metrics for entire subtree

	// Internal node fields (height > 0)
	children []*Node

	// Leaf node fields (height == 0)
	chunks []Chunk
}

// newLeafNode creates an empty leaf node.
func newLeafNode() *Node {
	return &Node{summary: TextSummary{Flags: FlagASCII}}
}

// newLeafNodeWithChunks creates a leaf node with the given chunks.
func newLeafNodeWithChunks(chunks []Chunk) *Node {
	n := &Node{chunks: chunks}
	n.recomputeSummary()
	return n
}

// newInternalNode creates an internal node with the given children.
func newInternalNode(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}
	n := &Node{
		height:   children[0].height + 1,
		children: children,
	}
	n.recomputeSummary()
	return n
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the code point length of text in this subtree.
func (n *Node) Len() int {
	return n.summary.Runes
}

// recomputeSummary recalculates the summary from children or chunks.
func (n *Node) recomputeSummary() {
	n.summary = TextSummary{Flags: FlagASCII}
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			n.summary = n.summary.Add(chunk.Summary())
		}
		return
	}
	for _, child := range n.children {
		n.summary = n.summary.Add(child.summary)
	}
}

// appendTo appends all text in this subtree to the builder.
func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			sb.WriteString(chunk.String())
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends text in the code point range [start, end) to the builder.
func (n *Node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}

	if n.IsLeaf() {
		offset := 0
		for _, chunk := range n.chunks {
			chunkEnd := offset + chunk.Runes()
			if chunkEnd <= start {
				offset = chunkEnd
				continue
			}
			if offset >= end {
				break
			}
			sb.WriteString(chunk.Slice(max(start-offset, 0), min(end, chunkEnd)-offset))
			offset = chunkEnd
		}
		return
	}

	offset := 0
	for _, child := range n.children {
		childEnd := offset + child.Len()
		if childEnd <= start {
			offset = childEnd
			continue
		}
		if offset >= end {
			break
		}
		child.appendRange(sb, max(start-offset, 0), min(end, childEnd)-offset)
		offset = childEnd
	}
}

// insert inserts text at code point offset pos and returns the replacement
// for n: one or more nodes of the same height as n.
func (n *Node) insert(pos int, text string) []*Node {
	if n.IsLeaf() {
		return n.insertLeaf(pos, text)
	}

	// An offset on a child boundary goes to the end of the left child.
	idx, offset := len(n.children)-1, 0
	for i, child := range n.children {
		if pos <= offset+child.Len() {
			idx = i
			break
		}
		offset += child.Len()
	}
	if idx == len(n.children)-1 {
		offset = n.Len() - n.children[idx].Len()
	}

	replaced := n.children[idx].insert(pos-offset, text)
	children := make([]*Node, 0, len(n.children)+len(replaced)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, replaced...)
	children = append(children, n.children[idx+1:]...)
	return groupChildren(children)
}

// insertLeaf splices text into the chunk containing pos.
func (n *Node) insertLeaf(pos int, text string) []*Node {
	if len(n.chunks) == 0 {
		return groupChunks(splitIntoChunks(text))
	}

	idx, offset := len(n.chunks)-1, 0
	for i, chunk := range n.chunks {
		if pos <= offset+chunk.Runes() {
			idx = i
			break
		}
		offset += chunk.Runes()
	}
	if idx == len(n.chunks)-1 {
		offset = n.Len() - n.chunks[idx].Runes()
	}

	local := pos - offset
	replaced := n.chunks[idx].Splice(local, local, text)
	chunks := make([]Chunk, 0, len(n.chunks)+len(replaced)-1)
	chunks = append(chunks, n.chunks[:idx]...)
	chunks = append(chunks, replaced...)
	chunks = append(chunks, n.chunks[idx+1:]...)
	return groupChunks(chunks)
}

// delete removes the code points in [start, end) and returns the resulting
// node, or nil if nothing is left. The result keeps the height of n.
func (n *Node) delete(start, end int) *Node {
	if start <= 0 && end >= n.Len() {
		return nil
	}

	if n.IsLeaf() {
		chunks := make([]Chunk, 0, len(n.chunks))
		offset := 0
		for _, chunk := range n.chunks {
			chunkEnd := offset + chunk.Runes()
			if chunkEnd <= start || offset >= end {
				chunks = append(chunks, chunk)
			} else {
				chunks = append(chunks, chunk.Splice(max(start-offset, 0), min(end, chunkEnd)-offset, "")...)
			}
			offset = chunkEnd
		}
		chunks = coalesce(chunks)
		if len(chunks) == 0 {
			return nil
		}
		return newLeafNodeWithChunks(chunks)
	}

	children := make([]*Node, 0, len(n.children))
	offset := 0
	for _, child := range n.children {
		childEnd := offset + child.Len()
		if childEnd <= start || offset >= end {
			children = append(children, child)
		} else if kept := child.delete(start-offset, end-offset); kept != nil {
			children = append(children, kept)
		}
		offset = childEnd
	}
	if len(children) == 0 {
		return nil
	}
	return &Node{height: n.height, children: children, summary: sumOf(children)}
}

func sumOf(children []*Node) TextSummary {
	sum := TextSummary{Flags: FlagASCII}
	for _, c := range children {
		sum = sum.Add(c.summary)
	}
	return sum
}

// groupChunks packs chunks into as few leaves as MaxChunksPerLeaf allows,
// spreading them evenly.
func groupChunks(chunks []Chunk) []*Node {
	if len(chunks) <= MaxChunksPerLeaf {
		return []*Node{newLeafNodeWithChunks(chunks)}
	}
	groups := (len(chunks) + MaxChunksPerLeaf - 1) / MaxChunksPerLeaf
	leaves := make([]*Node, 0, groups)
	for g := 0; g < groups; g++ {
		lo, hi := g*len(chunks)/groups, (g+1)*len(chunks)/groups
		part := make([]Chunk, hi-lo)
		copy(part, chunks[lo:hi])
		leaves = append(leaves, newLeafNodeWithChunks(part))
	}
	return leaves
}

// groupChildren packs same-height nodes into parents of at most MaxChildren.
func groupChildren(children []*Node) []*Node {
	if len(children) <= MaxChildren {
		return []*Node{newInternalNode(children)}
	}
	groups := (len(children) + MaxChildren - 1) / MaxChildren
	parents := make([]*Node, 0, groups)
	for g := 0; g < groups; g++ {
		lo, hi := g*len(children)/groups, (g+1)*len(children)/groups
		part := make([]*Node, hi-lo)
		copy(part, children[lo:hi])
		parents = append(parents, newInternalNode(part))
	}
	return parents
}

// buildRoot stacks same-height nodes into a single root.
func buildRoot(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return newLeafNode()
	}
	for len(nodes) > 1 {
		nodes = groupChildren(nodes)
	}
	return nodes[0]
}
