// Package quadtree implements the axis-aligned spatial index the ocean
// simulator rebuilds once per tick. It plays the same role the original
// spatial_grid.go hash grid played for its snake game, but is structured as
// a true quadtree so capacity-triggered subdivision and circle-range
// queries match the contract exactly.
package quadtree

import "github.com/tathan08/fishy-business/internal/geom"

// Capacity is the number of entries a node holds before it subdivides.
const Capacity = 4

// Entry is anything the quadtree can index: a position, a radius (used for
// the "radius + entity.radius" query contract), and an opaque payload the
// caller gets back from a query.
type Entry struct {
	Pos    geom.Vec2
	Radius float64
	Data   interface{}
}

// Node is one quadrant of the tree.
type Node struct {
	bounds   geom.Rect
	entries  []Entry
	divided  bool
	children [4]*Node // NW, NE, SW, SE
}

// QuadTree is the root of the index, rebuilt from scratch each tick.
type QuadTree struct {
	root *Node
}

// New creates an empty quadtree covering bounds.
func New(bounds geom.Rect) *QuadTree {
	return &QuadTree{root: newNode(bounds)}
}

func newNode(bounds geom.Rect) *Node {
	return &Node{bounds: bounds}
}

// Insert adds one entry to the tree.
func (q *QuadTree) Insert(e Entry) {
	q.root.insert(e)
}

// InsertAll bulk-inserts entries; used to rebuild the tree each tick from the
// world's current alive-player, food, and powerup maps.
func (q *QuadTree) InsertAll(entries []Entry) {
	for _, e := range entries {
		q.root.insert(e)
	}
}

func (n *Node) insert(e Entry) bool {
	if !n.bounds.Contains(e.Pos) {
		return false
	}
	if !n.divided && len(n.entries) < Capacity {
		n.entries = append(n.entries, e)
		return true
	}
	if !n.divided {
		n.subdivide()
	}
	for _, c := range n.children {
		if c.insert(e) {
			return true
		}
	}
	// Falls on a boundary shared by no child (shouldn't normally happen given
	// Contains is inclusive on all edges) — keep it in this node rather than
	// drop it.
	n.entries = append(n.entries, e)
	return true
}

func (n *Node) subdivide() {
	hw := n.bounds.W / 2
	hh := n.bounds.H / 2
	x, y := n.bounds.X, n.bounds.Y
	n.children[0] = newNode(geom.Rect{X: x, Y: y, W: hw, H: hh})          // NW
	n.children[1] = newNode(geom.Rect{X: x + hw, Y: y, W: hw, H: hh})     // NE
	n.children[2] = newNode(geom.Rect{X: x, Y: y + hh, W: hw, H: hh})     // SW
	n.children[3] = newNode(geom.Rect{X: x + hw, Y: y + hh, W: hw, H: hh}) // SE
	n.divided = true

	existing := n.entries
	n.entries = nil
	for _, e := range existing {
		placed := false
		for _, c := range n.children {
			if c.insert(e) {
				placed = true
				break
			}
		}
		if !placed {
			n.entries = append(n.entries, e)
		}
	}
}

// QueryCircle returns every entry whose stored position is within
// radius+entry.Radius of center.
func (q *QuadTree) QueryCircle(center geom.Vec2, radius float64) []Entry {
	var out []Entry
	q.root.queryCircle(center, radius, &out)
	return out
}

func (n *Node) queryCircle(center geom.Vec2, radius float64, out *[]Entry) {
	if !n.bounds.IntersectsCircle(center, radius+maxEntryRadius(n)) {
		return
	}
	for _, e := range n.entries {
		d := geom.Distance(center, e.Pos)
		if d <= radius+e.Radius {
			*out = append(*out, e)
		}
	}
	if n.divided {
		for _, c := range n.children {
			c.queryCircle(center, radius, out)
		}
	}
}

// maxEntryRadius is the largest Radius of any entry in n's subtree. It widens
// the node-bounds intersection test so a node is never pruned while one of
// its descendants' entries can still reach the query circle; queryCircle
// re-checks each candidate exactly.
func maxEntryRadius(n *Node) float64 {
	max := 0.0
	for _, e := range n.entries {
		if e.Radius > max {
			max = e.Radius
		}
	}
	if n.divided {
		for _, c := range n.children {
			if m := maxEntryRadius(c); m > max {
				max = m
			}
		}
	}
	return max
}
