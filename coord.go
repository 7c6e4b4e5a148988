package svo

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxBits is the widest Coord. It holds the sign bit plus the magnitude of a
// full int32 axis.
const MaxBits = 32

// Coord is an unsigned integer that is always strictly less than 2^Bits().
// The zero value is a zero-width coordinate holding 0.
type Coord struct {
	value uint32
	bits  uint8
}

// NewCoord returns value as a coordinate of the given bit width.
// It fails with ErrOutOfRange if value does not fit.
func NewCoord(value uint32, bits uint) (Coord, error) {
	if bits > MaxBits {
		return Coord{}, errors.Wrapf(ErrInvalidDepth, "coordinate width %d exceeds %d bits", bits, MaxBits)
	}
	if uint64(value) >= uint64(1)<<bits {
		return Coord{}, errors.Wrapf(ErrOutOfRange, "value %d does not fit in %d bits", value, bits)
	}
	return Coord{value: value, bits: uint8(bits)}, nil
}

// Value returns the raw coordinate.
func (c Coord) Value() uint32 {
	return c.value
}

// Bits returns the width of the coordinate.
func (c Coord) Bits() uint {
	return uint(c.bits)
}

// TopBit returns bit Bits()-1, which selects the octant at this level.
func (c Coord) TopBit() uint32 {
	c.mustFit()
	if c.bits == 0 {
		panic("svo: TopBit of zero-width coordinate")
	}
	return c.value >> (c.bits - 1) & 1
}

// StripTopBit clears the top bit and returns a coordinate one bit narrower.
func (c Coord) StripTopBit() Coord {
	c.mustFit()
	if c.bits == 0 {
		panic("svo: StripTopBit of zero-width coordinate")
	}
	nb := c.bits - 1
	return Coord{value: c.value &^ (1 << nb), bits: nb}
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%db", c.value, c.bits)
}

// mustFit panics if the value escaped its width. NewCoord makes this
// unreachable, so a failure here is a programming error.
func (c Coord) mustFit() {
	if uint64(c.value) >= uint64(1)<<c.bits {
		panic(fmt.Sprintf("svo: coordinate %d escaped its %d-bit width", c.value, c.bits))
	}
}
