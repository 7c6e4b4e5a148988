package pathfind

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bmharper/svo"
)

// PathVoxels lifts a path one voxel above the terrain, (x, y, h+1).
func PathVoxels(hm HeightMap, path []Cell) []svo.Voxel {
	out := make([]svo.Voxel, 0, len(path))
	for _, c := range path {
		out = append(out, svo.Voxel{X: int32(c.X), Y: int32(c.Y), Z: hm.At(c) + 1})
	}
	return out
}

// SurfaceVoxels returns the terrain itself, one voxel (x, y, h) per cell.
func SurfaceVoxels(hm HeightMap) []svo.Voxel {
	out := []svo.Voxel{}
	for x, col := range hm {
		for y, h := range col {
			out = append(out, svo.Voxel{X: int32(x), Y: int32(y), Z: h})
		}
	}
	return out
}

// InsertLayers stores each voxel group in o with the material of its layer,
// so that paths drawn together stay distinguishable. Voxels outside the
// octree are skipped and reported in the combined error.
func InsertLayers(o *svo.Octree[svo.Material], layers ...[]svo.Voxel) error {
	var errs error
	for i, voxels := range layers {
		m, err := svo.LayerMaterial(i)
		if err != nil {
			return err
		}
		errs = multierr.Append(errs, o.InsertAll(voxels, m))
	}
	return errs
}

// ValidateManhattanPath checks that path runs from start to end through
// distinct, 4-connected cells.
func ValidateManhattanPath(start, end Cell, path []Cell) error {
	if len(path) == 0 {
		return errors.New("path is empty")
	}
	if path[0] != start {
		return errors.Errorf("path starts at %v, want %v", path[0], start)
	}
	if last := path[len(path)-1]; last != end {
		return errors.Errorf("path ends at %v, want %v", last, end)
	}
	visited := map[Cell]bool{start: true}
	prev := start
	for _, c := range path[1:] {
		if visited[c] {
			return errors.Errorf("path visits %v twice", c)
		}
		visited[c] = true
		if absInt(c.X-prev.X)+absInt(c.Y-prev.Y) != 1 {
			return errors.Errorf("path is not 4-connected between %v and %v", prev, c)
		}
		prev = c
	}
	return nil
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
