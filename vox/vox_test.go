package vox

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bmharper/svo"
)

func TestEncodeLayout(t *testing.T) {
	m := &Model{SizeX: 4, SizeY: 5, SizeZ: 6, Voxels: []Voxel{{1, 2, 3, 50}, {0, 0, 0, 100}}}
	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, m))
	b := buf.Bytes()

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }
	require.Equal(t, "VOX ", string(b[0:4]))
	require.Equal(t, uint32(150), u32(4))
	require.Equal(t, "MAIN", string(b[8:12]))
	require.Equal(t, uint32(0), u32(12))
	// SIZE is 12+12 bytes, XYZI is 12+4+2*4 bytes
	require.Equal(t, uint32(24+24), u32(16))
	require.Equal(t, "SIZE", string(b[20:24]))
	require.Equal(t, uint32(12), u32(24))
	require.Equal(t, uint32(0), u32(28))
	require.Equal(t, []uint32{4, 5, 6}, []uint32{u32(32), u32(36), u32(40)})
	require.Equal(t, "XYZI", string(b[44:48]))
	require.Equal(t, uint32(12), u32(48))
	require.Equal(t, uint32(0), u32(52))
	require.Equal(t, uint32(2), u32(56))
	require.Equal(t, []byte{1, 2, 3, 50, 0, 0, 0, 100}, b[60:])

	buf.Reset()
	require.NoError(t, (&Encoder{Version: 200}).Encode(buf, m))
	require.Equal(t, uint32(200), binary.LittleEndian.Uint32(buf.Bytes()[4:]))
}

func TestDecode(t *testing.T) {
	m := &Model{SizeX: 256, SizeY: 1, SizeZ: 3, Voxels: []Voxel{{255, 0, 2, 1}, {7, 0, 0, 255}}}
	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, m))
	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)

	empty := &Model{SizeX: 1, SizeY: 1, SizeZ: 1, Voxels: []Voxel{}}
	buf.Reset()
	require.NoError(t, Encode(buf, empty))
	got, err = Decode(buf)
	require.NoError(t, err)
	require.Equal(t, empty, got)
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	size := &bytes.Buffer{}
	binary.Write(size, byteOrder, [3]uint32{2, 2, 2})
	xyzi := []byte{1, 0, 0, 0, 1, 1, 1, 9}

	children := &bytes.Buffer{}
	writeChunk(children, "PACK", []byte{1, 0, 0, 0}, nil)
	writeChunk(children, "SIZE", size.Bytes(), nil)
	writeChunk(children, "XYZI", xyzi, nil)
	writeChunk(children, "RGBA", make([]byte, 1024), nil)
	// a second model is ignored
	writeChunk(children, "SIZE", size.Bytes(), nil)
	writeChunk(children, "XYZI", []byte{0, 0, 0, 0}, nil)

	out := &bytes.Buffer{}
	out.WriteString("VOX ")
	binary.Write(out, byteOrder, int32(150))
	writeChunk(out, "MAIN", nil, children.Bytes())

	m, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, &Model{SizeX: 2, SizeY: 2, SizeZ: 2, Voxels: []Voxel{{1, 1, 1, 9}}}, m)
}

func TestDecodeErrors(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("VOX"),
		[]byte("PLY \x96\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00SIZE\x00\x00\x00\x00\x00\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x00\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x10\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x0c\x00\x00\x00SIZE\x04\x00\x00\x00\x00\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x00\x00\x00\x40"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x00\x00\x00\x40SIZE\x00\x00\xff\x3f\x00\x00\x00\x00"),
		[]byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\x00\x00\x00\x40SIZE\x0c\x00\x00\x00\x00\x00\xff\x3f\x01\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00"),
	} {
		_, err := Decode(bytes.NewReader(data))
		require.True(t, errors.Is(err, ErrFormat), "%q: %v", data, err)
	}
}

// Sizes declared in the header must not be trusted for allocation.
func TestDecodeHugeSizes(t *testing.T) {
	data := []byte("VOX \x96\x00\x00\x00MAIN\x00\x00\x00\x00\xff\xff\xff\xffXYZI\x00\x00\x00\xf0\x00\x00\x00\x00")
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(bytes.NewReader(data))
	runtime.ReadMemStats(&after)
	require.True(t, errors.Is(err, ErrFormat))
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}

func TestValidate(t *testing.T) {
	require.NoError(t, (&Model{SizeX: 1, SizeY: 1, SizeZ: 1}).Validate())
	for _, m := range []*Model{
		{SizeX: 0, SizeY: 1, SizeZ: 1},
		{SizeX: 1, SizeY: 257, SizeZ: 1},
		{SizeX: 2, SizeY: 2, SizeZ: 2, Voxels: []Voxel{{0, 2, 0, 1}}},
		{SizeX: 2, SizeY: 2, SizeZ: 2, Voxels: []Voxel{{0, 1, 0, 0}}},
	} {
		require.True(t, errors.Is(m.Validate(), ErrInvalidModel))
		require.True(t, errors.Is(Encode(&bytes.Buffer{}, m), ErrInvalidModel))
	}
}

func TestFromOctree(t *testing.T) {
	o, err := svo.New[svo.Material](1)
	require.NoError(t, err)
	require.NoError(t, o.Insert(svo.Voxel{X: -2, Y: -2, Z: -2}, 7))
	require.NoError(t, o.Insert(svo.Voxel{X: 1, Y: 1, Z: 1}, 3))
	require.NoError(t, o.Insert(svo.Voxel{X: 0, Y: 0, Z: 0}, 1))

	m, err := FromOctree(o)
	require.NoError(t, err)
	require.Equal(t, &Model{
		SizeX: 4, SizeY: 4, SizeZ: 4,
		Voxels: []Voxel{{2, 2, 2, 1}, {3, 3, 3, 3}, {0, 0, 0, 7}},
	}, m)

	require.NoError(t, o.Insert(svo.Voxel{X: -1, Y: 0, Z: 0}, 0))
	_, err = FromOctree(o)
	require.True(t, errors.Is(err, ErrInvalidModel))

	big, err := svo.New[svo.Material](8)
	require.NoError(t, err)
	_, err = FromOctree(big)
	require.True(t, errors.Is(err, ErrInvalidModel))

	full, err := svo.New[svo.Material](7)
	require.NoError(t, err)
	require.NoError(t, full.Insert(svo.Voxel{X: -128, Y: 127, Z: 0}, 250))
	m, err = FromOctree(full)
	require.NoError(t, err)
	require.Equal(t, uint32(256), m.SizeX)
	require.Equal(t, []Voxel{{0, 255, 128, 250}}, m.Voxels)
}

func TestWriteFile(t *testing.T) {
	o, err := svo.New[svo.Material](3)
	require.NoError(t, err)
	layer, err := svo.LayerMaterial(2)
	require.NoError(t, err)
	for i := int32(-8); i < 8; i++ {
		require.NoError(t, o.Insert(svo.Voxel{X: i, Y: -i - 1, Z: 0}, layer))
	}
	m, err := FromOctree(o)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.vox")
	require.NoError(t, WriteFile(path, m))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := Decode(f)
	require.NoError(t, err)
	require.Equal(t, m, got)
	require.Len(t, got.Voxels, 16)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "out.vox"), m)
	require.Error(t, err)
	require.True(t, errors.Is(WriteFile(path, &Model{}), ErrInvalidModel))
}
