package svo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Voxel is a signed integer position, centered on the origin.
type Voxel struct {
	X, Y, Z int32
}

// VoxelFromVector rounds each axis of p to the nearest integer. Values that
// do not fit an int32 are rejected.
func VoxelFromVector(p r3.Vector) (Voxel, error) {
	var out [3]int32
	for i, f := range [3]float64{p.X, p.Y, p.Z} {
		r := math.Round(f)
		if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
			return Voxel{}, errors.Wrapf(ErrOutOfRange, "vector %v is not representable as a voxel", p)
		}
		out[i] = int32(r)
	}
	return Voxel{X: out[0], Y: out[1], Z: out[2]}, nil
}

// Vector returns v as a float point.
func (v Voxel) Vector() r3.Vector {
	return r3.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func (v Voxel) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}
