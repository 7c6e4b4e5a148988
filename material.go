package svo

import "github.com/pkg/errors"

// Material is a one byte palette index. 0 is reserved for empty space by
// voxel model formats and is never handed out by LayerMaterial.
type Material uint8

// layerStride spaces layer materials far enough apart to tell them apart visually.
const layerStride = 50

// LayerMaterial returns the material for a path drawn on the given layer:
// (layer+1)*50. Only layers 0 through 4 fit in a byte.
func LayerMaterial(layer int) (Material, error) {
	if layer < 0 || layer >= 255/layerStride {
		return 0, errors.Wrapf(ErrOutOfRange, "layer %d has no material", layer)
	}
	return Material((layer + 1) * layerStride), nil
}
