package svo

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned when a coordinate does not fit inside the octree.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrDepthMismatch is returned when coordinates or nodes of different widths are combined.
	ErrDepthMismatch = errors.New("depth mismatch")

	// ErrInvalidDepth is returned for an octree depth outside [0, MaxDepth].
	ErrInvalidDepth = errors.New("invalid octree depth")
)
