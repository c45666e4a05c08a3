//go:build draco

package meshio

import (
	"fmt"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
)

func init() {
	decompressors[DracoExtension] = decodeDraco
}

// decodeDraco decompresses a KHR_draco_mesh_compression primitive. The
// Draco C++ decoder is linked through cgo.
func decodeDraco(doc *gltf.Document, prim *gltf.Primitive, ext any) (positions, normals [][3]float32, indices []uint32, err error) {
	pe, ok := ext.(*draco.PrimitiveExt)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unexpected extension payload %T", ext)
	}
	bv := int(pe.BufferView)
	if bv < 0 || bv >= len(doc.BufferViews) {
		return nil, nil, nil, fmt.Errorf("buffer view %d out of range", bv)
	}

	pd, err := draco.UnmarshalMesh(doc, doc.BufferViews[bv])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decompressing: %w", err)
	}
	if indices, err = pd.ReadIndices(nil); err != nil {
		return nil, nil, nil, fmt.Errorf("reading indices: %w", err)
	}
	if positions, err = readVec3(pd, prim, gltf.POSITION); err != nil {
		return nil, nil, nil, err
	}
	if _, ok := pe.Attributes[gltf.NORMAL]; ok {
		if normals, err = readVec3(pd, prim, gltf.NORMAL); err != nil {
			return nil, nil, nil, err
		}
	}
	return positions, normals, indices, nil
}

func readVec3(pd *draco.PrimitiveDecoder, prim *gltf.Primitive, name string) ([][3]float32, error) {
	data, err := pd.ReadAttr(prim, name, nil)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	v, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected attribute type %T", name, data)
	}
	return v, nil
}
