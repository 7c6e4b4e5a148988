// Package vox reads and writes MagicaVoxel .vox models.
//
// https://github.com/ephtracy/voxel-model/blob/master/MagicaVoxel-file-format-vox.txt
package vox

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bmharper/svo"
)

const (
	magic = "VOX "

	// DefaultVersion is the file version written by a zero Encoder.
	DefaultVersion = 150

	// MaxSize is the largest model extent along any axis.
	MaxSize = 256
)

var (
	// ErrInvalidModel is returned when a model cannot be represented in a .vox file.
	ErrInvalidModel = errors.New("invalid vox model")

	// ErrFormat is returned when decoding data that is not a .vox file.
	ErrFormat = errors.New("invalid vox data")
)

var byteOrder = binary.LittleEndian

// Voxel is one filled cell of a model. ColorIndex 0 means empty and is not
// allowed in a model.
type Voxel struct {
	X, Y, Z    uint8
	ColorIndex uint8
}

// Model is a single voxel model.
type Model struct {
	SizeX, SizeY, SizeZ uint32
	Voxels              []Voxel
}

// Validate checks that m fits the format.
func (m *Model) Validate() error {
	for _, s := range [3]uint32{m.SizeX, m.SizeY, m.SizeZ} {
		if s == 0 || s > MaxSize {
			return errors.Wrapf(ErrInvalidModel, "size %dx%dx%d", m.SizeX, m.SizeY, m.SizeZ)
		}
	}
	for i, v := range m.Voxels {
		if uint32(v.X) >= m.SizeX || uint32(v.Y) >= m.SizeY || uint32(v.Z) >= m.SizeZ {
			return errors.Wrapf(ErrInvalidModel, "voxel %d at (%d, %d, %d) outside %dx%dx%d", i, v.X, v.Y, v.Z, m.SizeX, m.SizeY, m.SizeZ)
		}
		if v.ColorIndex == 0 {
			return errors.Wrapf(ErrInvalidModel, "voxel %d at (%d, %d, %d) has empty color index", i, v.X, v.Y, v.Z)
		}
	}
	return nil
}

// FromOctree builds a model from every voxel in o, shifted so that the
// octree's lowest corner lands on (0, 0, 0). The octree must be at most
// MaxSize voxels wide and hold no zero materials.
func FromOctree(o *svo.Octree[svo.Material]) (*Model, error) {
	side := o.SideLength()
	if side > MaxSize {
		return nil, errors.Wrapf(ErrInvalidModel, "octree of depth %d is %d voxels wide", o.Depth(), side)
	}
	lo, _ := o.Bounds()
	m := &Model{
		SizeX:  uint32(side),
		SizeY:  uint32(side),
		SizeZ:  uint32(side),
		Voxels: make([]Voxel, 0, o.Len()),
	}
	for v, mat := range o.All() {
		if mat == 0 {
			return nil, errors.Wrapf(ErrInvalidModel, "voxel %v has material 0", v)
		}
		m.Voxels = append(m.Voxels, Voxel{
			X:          uint8(v.X - lo.X),
			Y:          uint8(v.Y - lo.Y),
			Z:          uint8(v.Z - lo.Z),
			ColorIndex: uint8(mat),
		})
	}
	return m, nil
}

// Encoder writes models.
type Encoder struct {
	Version int32 // Default 150
}

// writeChunk appends one chunk: id, content size, children size, content, children.
func writeChunk(buf *bytes.Buffer, id string, content, children []byte) {
	buf.WriteString(id)
	binary.Write(buf, byteOrder, uint32(len(content)))
	binary.Write(buf, byteOrder, uint32(len(children)))
	buf.Write(content)
	buf.Write(children)
}

// Encode writes m to w as a complete .vox file.
func (e *Encoder) Encode(w io.Writer, m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	version := e.Version
	if version == 0 {
		version = DefaultVersion
	}

	size := &bytes.Buffer{}
	binary.Write(size, byteOrder, [3]uint32{m.SizeX, m.SizeY, m.SizeZ})

	xyzi := bytes.NewBuffer(make([]byte, 0, 4+4*len(m.Voxels)))
	binary.Write(xyzi, byteOrder, uint32(len(m.Voxels)))
	for _, v := range m.Voxels {
		xyzi.Write([]byte{v.X, v.Y, v.Z, v.ColorIndex})
	}

	children := &bytes.Buffer{}
	writeChunk(children, "SIZE", size.Bytes(), nil)
	writeChunk(children, "XYZI", xyzi.Bytes(), nil)

	out := &bytes.Buffer{}
	out.WriteString(magic)
	binary.Write(out, byteOrder, version)
	writeChunk(out, "MAIN", nil, children.Bytes())

	_, err := w.Write(out.Bytes())
	return errors.Wrap(err, "writing vox")
}

// Encode writes m with the default encoder.
func Encode(w io.Writer, m *Model) error {
	return (&Encoder{}).Encode(w, m)
}

// WriteFile writes m to a new file at path.
func WriteFile(path string, m *Model) (err error) {
	if err := m.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating vox file")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return Encode(f, m)
}

type chunkHeader struct {
	ID           [4]byte
	ContentSize  uint32
	ChildrenSize uint32
}

// Decode reads the first model of a .vox file. Chunks other than SIZE and
// XYZI are skipped.
func Decode(r io.Reader) (*Model, error) {
	var header struct {
		Magic   [4]byte
		Version int32
	}
	if err := binary.Read(r, byteOrder, &header); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	if string(header.Magic[:]) != magic {
		return nil, errors.Wrapf(ErrFormat, "magic %q", header.Magic[:])
	}
	var mainChunk chunkHeader
	if err := binary.Read(r, byteOrder, &mainChunk); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	if string(mainChunk.ID[:]) != "MAIN" {
		return nil, errors.Wrapf(ErrFormat, "first chunk is %q, want MAIN", mainChunk.ID[:])
	}
	if _, err := io.CopyN(io.Discard, r, int64(mainChunk.ContentSize)); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}

	// sizes come from the input, so chunks are read as they arrive rather
	// than allocated up front
	children := &io.LimitedReader{R: r, N: int64(mainChunk.ChildrenSize)}

	var m *Model
	for children.N > 0 {
		var ch chunkHeader
		if err := binary.Read(children, byteOrder, &ch); err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
		if int64(ch.ContentSize)+int64(ch.ChildrenSize) > children.N {
			return nil, errors.Wrapf(ErrFormat, "chunk %q overruns MAIN", ch.ID[:])
		}
		content, err := io.ReadAll(io.LimitReader(children, int64(ch.ContentSize)))
		if err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}
		if len(content) != int(ch.ContentSize) {
			return nil, errors.Wrapf(ErrFormat, "chunk %q truncated", ch.ID[:])
		}
		if _, err := io.CopyN(io.Discard, children, int64(ch.ChildrenSize)); err != nil {
			return nil, errors.Wrap(ErrFormat, err.Error())
		}

		switch string(ch.ID[:]) {
		case "SIZE":
			if m != nil {
				// only the first model is read
				return m, nil
			}
			if len(content) < 12 {
				return nil, errors.Wrap(ErrFormat, "short SIZE chunk")
			}
			m = &Model{
				SizeX: byteOrder.Uint32(content[0:]),
				SizeY: byteOrder.Uint32(content[4:]),
				SizeZ: byteOrder.Uint32(content[8:]),
			}
		case "XYZI":
			if m == nil {
				return nil, errors.Wrap(ErrFormat, "XYZI before SIZE")
			}
			if len(content) < 4 {
				return nil, errors.Wrap(ErrFormat, "short XYZI chunk")
			}
			n := byteOrder.Uint32(content)
			if uint64(len(content)) < 4+4*uint64(n) {
				return nil, errors.Wrapf(ErrFormat, "XYZI chunk too short for %d voxels", n)
			}
			m.Voxels = make([]Voxel, n)
			for i := range m.Voxels {
				b := content[4+4*i:]
				m.Voxels[i] = Voxel{X: b[0], Y: b[1], Z: b[2], ColorIndex: b[3]}
			}
		}
	}
	if m == nil {
		return nil, errors.Wrap(ErrFormat, "no SIZE chunk")
	}
	return m, nil
}
