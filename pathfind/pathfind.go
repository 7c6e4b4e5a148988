// Package pathfind finds cheapest 4-connected routes across a height map and
// turns them into voxels for an octree.
package pathfind

import (
	"container/heap"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrEmptyHeightMap is returned for a height map with no cells.
	ErrEmptyHeightMap = errors.New("empty height map")

	// ErrRagged is returned when the rows of a height map differ in length.
	ErrRagged = errors.New("height map rows differ in length")

	// ErrCellOutOfBounds is returned for a start or end cell outside the map.
	ErrCellOutOfBounds = errors.New("cell outside height map")
)

// HeightMap holds a terrain height per cell, indexed [x][y].
type HeightMap [][]int32

// Dims returns the map size, validating that it is a non-empty rectangle.
func (hm HeightMap) Dims() (nx, ny int, err error) {
	if len(hm) == 0 || len(hm[0]) == 0 {
		return 0, 0, ErrEmptyHeightMap
	}
	ny = len(hm[0])
	for x, col := range hm {
		if len(col) != ny {
			return 0, 0, errors.Wrapf(ErrRagged, "row %d has %d cells, want %d", x, len(col), ny)
		}
	}
	return len(hm), ny, nil
}

// At returns the height of c.
func (hm HeightMap) At(c Cell) int32 {
	return hm[c.X][c.Y]
}

// Cell is a position on a height map.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

var neighbors = [4]Cell{{-1, 0}, {1, 0}, {0, 1}, {0, -1}}

// Finder runs shortest path searches.
type Finder struct {
	logger *zap.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFinder creates a Finder.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ShortestPath returns the cheapest route from start to end inclusive.
// Moving to a neighbour costs 1 plus the absolute height difference.
func (f *Finder) ShortestPath(hm HeightMap, start, end Cell) ([]Cell, error) {
	nx, ny, err := hm.Dims()
	if err != nil {
		return nil, err
	}
	inside := func(c Cell) bool {
		return c.X >= 0 && c.Y >= 0 && c.X < nx && c.Y < ny
	}
	if !inside(start) {
		return nil, errors.Wrapf(ErrCellOutOfBounds, "start %v in %dx%d map", start, nx, ny)
	}
	if !inside(end) {
		return nil, errors.Wrapf(ErrCellOutOfBounds, "end %v in %dx%d map", end, nx, ny)
	}

	index := func(c Cell) int { return c.X*ny + c.Y }
	cellAt := func(i int) Cell { return Cell{i / ny, i % ny} }

	// cameFrom[i] is the predecessor of cell i, or -1 if unreached
	cameFrom := make([]int, nx*ny)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	open := make([]*item, nx*ny)
	done := make([]bool, nx*ny)

	h := &frontier{}
	first := &item{cell: index(start)}
	open[first.cell] = first
	cameFrom[first.cell] = first.cell
	heap.Push(h, first)

	settled := 0
	target := index(end)
	for h.Len() != 0 {
		cur := heap.Pop(h).(*item)
		done[cur.cell] = true
		settled++
		if cur.cell == target {
			break
		}
		c := cellAt(cur.cell)
		for _, d := range neighbors {
			n := Cell{c.X + d.X, c.Y + d.Y}
			if !inside(n) {
				continue
			}
			ni := index(n)
			if done[ni] {
				continue
			}
			cost := cur.cost + 1 + absDiff(hm.At(n), hm.At(c))
			if it := open[ni]; it != nil {
				if cost < it.cost {
					it.cost = cost
					cameFrom[ni] = cur.cell
					heap.Fix(h, it.index)
				}
				continue
			}
			it := &item{cell: ni, cost: cost}
			open[ni] = it
			cameFrom[ni] = cur.cell
			heap.Push(h, it)
		}
	}

	path := []Cell{}
	for i := target; ; i = cameFrom[i] {
		path = append(path, cellAt(i))
		if i == first.cell {
			break
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	f.logger.Debug("shortest path",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("cost", open[target].cost),
		zap.Int("length", len(path)),
		zap.Int("settled", settled),
	)
	return path, nil
}

func absDiff(a, b int32) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
