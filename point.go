package svo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Point is a position inside the current subregion of the tree.
// All three axes share one bit width.
type Point struct {
	X, Y, Z Coord
}

// NewPoint builds a point whose axes are bits wide.
func NewPoint(x, y, z uint32, bits uint) (Point, error) {
	cx, err := NewCoord(x, bits)
	if err != nil {
		return Point{}, errors.Wrap(err, "x")
	}
	cy, err := NewCoord(y, bits)
	if err != nil {
		return Point{}, errors.Wrap(err, "y")
	}
	cz, err := NewCoord(z, bits)
	if err != nil {
		return Point{}, errors.Wrap(err, "z")
	}
	return Point{X: cx, Y: cy, Z: cz}, nil
}

// NewPointFromCoords combines three coordinates, rejecting mixed widths.
func NewPointFromCoords(x, y, z Coord) (Point, error) {
	if x.bits != y.bits || x.bits != z.bits {
		return Point{}, errors.Wrapf(ErrDepthMismatch, "axis widths %d, %d, %d", x.bits, y.bits, z.bits)
	}
	return Point{X: x, Y: y, Z: z}, nil
}

// Bits returns the shared width of the axes.
func (p Point) Bits() uint {
	return p.X.Bits()
}

// Octant returns the 3-bit child index (bit2=x, bit1=y, bit0=z) addressed
// by the top bit of each axis.
func (p Point) Octant() uint8 {
	return uint8(p.X.TopBit()<<2 | p.Y.TopBit()<<1 | p.Z.TopBit())
}

// Descend strips the top bit of every axis, giving the point's position
// inside the selected octant.
func (p Point) Descend() Point {
	return Point{X: p.X.StripTopBit(), Y: p.Y.StripTopBit(), Z: p.Z.StripTopBit()}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d, %d)/%db", p.X.value, p.Y.value, p.Z.value, p.X.bits)
}
