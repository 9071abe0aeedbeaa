package kdtree

import (
	"cmp"
	"slices"
	"unsafe"

	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/model"
)

// Compile-time check to ensure Tree satisfies the Searcher interface.
var _ index.Searcher = (*Tree)(nil)

// Node is a single tree node. It exclusively owns its children.
type Node struct {
	Point model.Point
	Left  *Node
	Right *Node
	Depth int
}

// Axis returns the split axis of the node.
func (n *Node) Axis() model.Axis {
	return model.AxisForDepth(n.Depth)
}

// NodeBytes is the in-memory size of one Node.
const NodeBytes = int64(unsafe.Sizeof(Node{}))

// EstimateMemory returns the node memory of a tree over n points.
func EstimateMemory(n int) int64 {
	if n <= 0 {
		return 0
	}
	return int64(n) * NodeBytes
}

// Tree is a KD-tree built once over a slice of points.
type Tree struct {
	root *Node
	size int
}

// Build builds a tree over points starting at depth 0.
// The slice is reordered in place.
func Build(points []model.Point) *Tree {
	return BuildAt(points, 0)
}

// BuildCopy builds a tree over a copy of points, leaving the input untouched.
func BuildCopy(points []model.Point) *Tree {
	return Build(model.Clone(points))
}

// BuildAt builds a tree whose root sits at the given depth.
// The slice is reordered in place.
func BuildAt(points []model.Point, depth int) *Tree {
	return &Tree{
		root: build(points, depth),
		size: len(points),
	}
}

// build recurses with a count-median split, so the height stays within
// floor(log2 n)+1 no matter how skewed or duplicated the coordinates are.
func build(points []model.Point, depth int) *Node {
	if len(points) == 0 {
		return nil
	}

	axis := model.AxisForDepth(depth)
	slices.SortFunc(points, func(a, b model.Point) int {
		return cmp.Compare(a.Coord(axis), b.Coord(axis))
	})

	mid := len(points) / 2

	return &Node{
		Point: points[mid],
		Depth: depth,
		Left:  build(points[:mid], depth+1),
		Right: build(points[mid+1:], depth+1),
	}
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Len returns the number of points in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Height returns the number of levels in the tree.
func (t *Tree) Height() int {
	if t == nil {
		return 0
	}
	return height(t.root)
}

func height(n *Node) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.Left), height(n.Right))
}

// Walk visits every node in pre-order until fn returns false.
func (t *Tree) Walk(fn func(n *Node) bool) {
	if t == nil {
		return
	}
	walk(t.root, fn)
}

func walk(n *Node, fn func(n *Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	return walk(n.Left, fn) && walk(n.Right, fn)
}

// Release detaches every node so the whole tree becomes garbage.
// The tree is empty afterwards.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	release(t.root)
	t.root = nil
	t.size = 0
}

func release(n *Node) {
	if n == nil {
		return
	}
	release(n.Left)
	release(n.Right)
	n.Left, n.Right = nil, nil
}
