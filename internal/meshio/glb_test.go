package meshio

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/neuroview/internal/assets"
	"github.com/Faultbox/neuroview/internal/region"
)

// triangleDoc returns a document with one node holding a mesh of
// prims identical triangle primitives.
func triangleDoc(prims int, node gltf.Node) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})

	mesh := &gltf.Mesh{Name: "region"}
	for i := 0; i < prims; i++ {
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.NORMAL: nrm},
		})
	}
	doc.Meshes = []*gltf.Mesh{mesh}
	node.Mesh = gltf.Index(0)
	doc.Nodes = []*gltf.Node{&node}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func encode(t *testing.T, doc *gltf.Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

func plainNode() gltf.Node {
	return gltf.Node{
		Matrix:   gltf.DefaultMatrix,
		Rotation: gltf.DefaultRotation,
		Scale:    gltf.DefaultScale,
	}
}

func TestDecodeAppliesNodeTransform(t *testing.T) {
	node := plainNode()
	node.Translation = [3]float64{0, 0, 1}
	node.Scale = [3]float64{2, 2, 2}

	meshes, err := Decode(encode(t, triangleDoc(1, node)), "100L")
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "100L", m.Name)
	require.Len(t, m.Geometry.Positions, 3)
	assert.InDelta(t, 2, m.Geometry.Positions[1].X(), 1e-5)
	assert.InDelta(t, 1, m.Geometry.Positions[1].Z(), 1e-5)
	assert.Equal(t, []uint32{0, 1, 2}, m.Geometry.Indices)

	require.Len(t, m.Geometry.Normals, 3)
	assert.InDelta(t, 1, m.Geometry.Normals[0].Len(), 1e-5, "normals stay unit length under scale")
	assert.InDelta(t, 1, m.Geometry.Normals[0].Z(), 1e-5)

	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Geometry.Min)
	assert.True(t, m.Material.DepthWrite)
	assert.Equal(t, float32(1), m.Material.Opacity)
}

func TestDecodeNamesExtraPrimitives(t *testing.T) {
	meshes, err := Decode(encode(t, triangleDoc(3, plainNode())), "7R")
	require.NoError(t, err)
	require.Len(t, meshes, 3)
	assert.Equal(t, "7R", meshes[0].Name)
	assert.Equal(t, "7R_1", meshes[1].Name)
	assert.Equal(t, "7R_2", meshes[2].Name)
}

func TestDecodeRejectsUnregisteredCompression(t *testing.T) {
	doc := triangleDoc(1, plainNode())
	doc.ExtensionsUsed = []string{"EXT_meshopt_compression"}
	doc.ExtensionsRequired = []string{"EXT_meshopt_compression"}

	_, err := Decode(encode(t, doc), "1L")
	assert.ErrorIs(t, err, ErrCompressed)
}

func TestDecodeUsesRegisteredDecompressor(t *testing.T) {
	const ext = "EXT_test_compression"
	var payloads []any
	decompressors[ext] = func(_ *gltf.Document, _ *gltf.Primitive, p any) ([][3]float32, [][3]float32, []uint32, error) {
		payloads = append(payloads, p)
		return [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}},
			[][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			[]uint32{0, 1, 2}, nil
	}
	t.Cleanup(func() { delete(decompressors, ext) })

	node := plainNode()
	node.Translation = [3]float64{0, 0, 3}
	doc := triangleDoc(1, node)
	doc.ExtensionsUsed = []string{ext}
	doc.ExtensionsRequired = []string{ext}
	doc.Meshes[0].Primitives[0].Extensions = gltf.Extensions{ext: map[string]any{"bufferView": 0}}

	meshes, err := Decode(encode(t, doc), "5L")
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Len(t, payloads, 1)

	g := meshes[0].Geometry
	assert.InDelta(t, 2, g.Positions[1].X(), 1e-5, "decompressed positions, not the accessor ones")
	assert.InDelta(t, 3, g.Positions[1].Z(), 1e-5, "node transform applied")
	require.Len(t, g.Normals, 3)
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
}

func TestDecodeDecompressorFailure(t *testing.T) {
	const ext = "EXT_test_compression"
	decompressors[ext] = func(*gltf.Document, *gltf.Primitive, any) ([][3]float32, [][3]float32, []uint32, error) {
		return nil, nil, nil, assert.AnError
	}
	t.Cleanup(func() { delete(decompressors, ext) })

	doc := triangleDoc(1, plainNode())
	doc.Meshes[0].Primitives[0].Extensions = gltf.Extensions{ext: map[string]any{}}

	_, err := Decode(encode(t, doc), "5L")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), ext)
}

func TestDecodeWithoutGeometry(t *testing.T) {
	_, err := Decode(encode(t, gltf.NewDocument()), "1L")
	assert.ErrorIs(t, err, ErrNoGeometry)

	_, err = Decode([]byte("not a glb"), "1L")
	assert.Error(t, err)
}

func TestDecoderDecodeRegion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "1L.glb"), encode(t, triangleDoc(1, plainNode())), 0o644))

	d := NewDecoder(assets.NewManager(assets.NewDirSource(dir), nil), nil)
	meshes, err := d.DecodeRegion(context.Background(), region.ID("1L"))
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, "1L", meshes[0].Name)

	_, err = d.DecodeRegion(context.Background(), region.ID("2L"))
	assert.ErrorIs(t, err, assets.ErrNotFound)
}
