// Package svo is a sparse voxel octree: an index of values keyed by integer
// 3D coordinates inside a cube centered on the origin. Only occupied regions
// are allocated, and every lookup walks at most depth+1 nodes.
package svo

import (
	"iter"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MaxDepth is the deepest supported octree. At this depth every int32 voxel fits.
const MaxDepth = MaxBits - 1

// Octree is a sparse voxel octree of depth D. Each axis spans [-2^D, 2^D-1].
// An Octree is not safe for concurrent use; hold a lock around each call
// if it is shared.
type Octree[E any] struct {
	root   *node[E]
	depth  uint
	size   int
	nodes  int
	logger *zap.Logger
}

// Option configures an Octree.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an empty octree of the given depth.
func New[E any](depth int, opts ...Option) (*Octree[E], error) {
	if depth < 0 || depth > MaxDepth {
		return nil, errors.Wrapf(ErrInvalidDepth, "depth %d not in [0, %d]", depth, MaxDepth)
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &Octree[E]{
		root:   newNode[E](uint8(depth)),
		depth:  uint(depth),
		nodes:  1,
		logger: o.logger,
	}, nil
}

// Depth returns the depth the octree was created with.
func (t *Octree[E]) Depth() int {
	return int(t.depth)
}

// SideLength is the number of voxels along each axis, 2^(D+1).
func (t *Octree[E]) SideLength() int64 {
	return int64(1) << (t.depth + 1)
}

// Bounds returns the smallest and largest voxel the octree can hold.
func (t *Octree[E]) Bounds() (lo, hi Voxel) {
	half := int64(1) << t.depth
	l, h := int32(-half), int32(half-1)
	return Voxel{l, l, l}, Voxel{h, h, h}
}

// Len returns the number of occupied voxels.
func (t *Octree[E]) Len() int {
	return t.size
}

// NodeCount returns the number of allocated nodes, including the root.
func (t *Octree[E]) NodeCount() int {
	return t.nodes
}

// IsInBounds reports whether v lies inside the octree.
func (t *Octree[E]) IsInBounds(v Voxel) bool {
	return inBounds(v.X, v.Y, v.Z, t.depth)
}

// point converts a voxel into a root-level point, one bit wider than the depth
// to make room for the sign.
func (t *Octree[E]) point(v Voxel) (Point, error) {
	if !t.IsInBounds(v) {
		lo, hi := t.Bounds()
		return Point{}, errors.Wrapf(ErrOutOfRange, "voxel %v outside [%d, %d]", v, lo.X, hi.X)
	}
	return NewPoint(
		normalizeAxis(v.X, t.depth),
		normalizeAxis(v.Y, t.depth),
		normalizeAxis(v.Z, t.depth),
		t.depth+1,
	)
}

// Get returns the value stored at v. A voxel outside the octree is never present.
func (t *Octree[E]) Get(v Voxel) (E, bool) {
	p, err := t.point(v)
	if err != nil {
		var zero E
		return zero, false
	}
	return t.root.get(p)
}

// Contains reports whether v holds a value.
func (t *Octree[E]) Contains(v Voxel) bool {
	_, ok := t.Get(v)
	return ok
}

// Insert stores d at v, overwriting any previous value.
func (t *Octree[E]) Insert(v Voxel, d E) error {
	p, err := t.point(v)
	if err != nil {
		t.logger.Debug("rejected insert", zap.Stringer("voxel", v), zap.Int("depth", int(t.depth)))
		return err
	}
	allocated, added := t.root.set(p, d)
	t.nodes += allocated
	if added {
		t.size++
	}
	return nil
}

// InsertVector rounds p to the nearest voxel and stores d there.
func (t *Octree[E]) InsertVector(p r3.Vector, d E) error {
	v, err := VoxelFromVector(p)
	if err != nil {
		return err
	}
	return t.Insert(v, d)
}

// InsertAll stores d at every voxel. Voxels that do not fit are skipped and
// their errors combined in the result.
func (t *Octree[E]) InsertAll(voxels []Voxel, d E) error {
	var errs error
	for _, v := range voxels {
		errs = multierr.Append(errs, t.Insert(v, d))
	}
	return errs
}

// Remove clears v, releasing any nodes left empty. It reports whether v held a value.
func (t *Octree[E]) Remove(v Voxel) bool {
	p, err := t.point(v)
	if err != nil {
		return false
	}
	removed, released := t.root.remove(p)
	if !removed {
		return false
	}
	t.size--
	t.nodes -= released
	if released > 0 {
		t.logger.Debug("pruned empty subtrees", zap.Stringer("voxel", v), zap.Int("nodes", released))
	}
	return true
}

// All returns every occupied voxel and its value in octant order.
// Each call starts a fresh traversal; the octree must not be modified while
// iterating.
func (t *Octree[E]) All() iter.Seq2[Voxel, E] {
	return func(yield func(Voxel, E) bool) {
		t.root.walk(0, 0, 0, func(x, y, z uint32, d E) bool {
			v := Voxel{
				X: denormalizeAxis(x, t.depth),
				Y: denormalizeAxis(y, t.depth),
				Z: denormalizeAxis(z, t.depth),
			}
			return yield(v, d)
		})
	}
}
