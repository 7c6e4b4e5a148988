package svo

import "fmt"

// node is one level of the tree. At depth 0 its eight slots hold values
// directly; above that each slot may own a child one level lower.
// A clear bit in occupied means the slot, and everything under it, is empty.
type node[E any] struct {
	depth    uint8
	occupied uint8
	children *[8]*node[E] // only above depth 0
	values   *[8]E        // only at depth 0
}

func newNode[E any](depth uint8) *node[E] {
	n := &node[E]{depth: depth}
	if depth == 0 {
		n.values = new([8]E)
	} else {
		n.children = new([8]*node[E])
	}
	return n
}

// checkDepth asserts that p is as wide as this level consumes.
func (n *node[E]) checkDepth(p Point) {
	if p.Bits() != uint(n.depth)+1 {
		panic(fmt.Sprintf("svo: %v: %d-bit point at node depth %d", ErrDepthMismatch, p.Bits(), n.depth))
	}
}

func (n *node[E]) get(p Point) (v E, ok bool) {
	for {
		n.checkDepth(p)
		i := p.Octant()
		if n.occupied&(1<<i) == 0 {
			return v, false
		}
		if n.depth == 0 {
			return n.values[i], true
		}
		n, p = n.children[i], p.Descend()
	}
}

// set stores v at p, allocating missing nodes along the path only.
// It returns how many nodes were allocated and whether the slot was empty.
func (n *node[E]) set(p Point, v E) (allocated int, added bool) {
	for {
		n.checkDepth(p)
		i := p.Octant()
		if n.depth == 0 {
			added = n.occupied&(1<<i) == 0
			n.values[i] = v
			n.occupied |= 1 << i
			return allocated, added
		}
		if n.occupied&(1<<i) == 0 {
			n.children[i] = newNode[E](n.depth - 1)
			n.occupied |= 1 << i
			allocated++
		}
		n, p = n.children[i], p.Descend()
	}
}

// remove clears the slot at p, releasing children that end up empty on the
// way back up. It returns whether a value was removed and how many nodes
// were released.
func (n *node[E]) remove(p Point) (removed bool, released int) {
	n.checkDepth(p)
	i := p.Octant()
	if n.occupied&(1<<i) == 0 {
		return false, 0
	}
	if n.depth == 0 {
		var zero E
		n.values[i] = zero
		n.occupied &^= 1 << i
		return true, 0
	}
	child := n.children[i]
	removed, released = child.remove(p.Descend())
	if removed && child.occupied == 0 {
		n.children[i] = nil
		n.occupied &^= 1 << i
		released++
	}
	return removed, released
}

// walk visits occupied leaves in octant order. x, y and z carry the bits
// consumed above this node. It returns false once yield asks to stop.
func (n *node[E]) walk(x, y, z uint32, yield func(x, y, z uint32, v E) bool) bool {
	for i := uint32(0); i < 8; i++ {
		if n.occupied&(1<<i) == 0 {
			continue
		}
		cx := x<<1 | i>>2&1
		cy := y<<1 | i>>1&1
		cz := z<<1 | i&1
		if n.depth == 0 {
			if !yield(cx, cy, cz, n.values[i]) {
				return false
			}
			continue
		}
		if !n.children[i].walk(cx, cy, cz, yield) {
			return false
		}
	}
	return true
}
