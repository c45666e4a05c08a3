//go:build draco

package meshio

import (
	"testing"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDracoRegistered(t *testing.T) {
	_, ok := decompressors[DracoExtension]
	assert.True(t, ok)
	assert.Equal(t, draco.ExtensionName, DracoExtension)
}

func TestDecodeCorruptDracoPrimitive(t *testing.T) {
	doc := triangleDoc(1, plainNode())
	doc.ExtensionsUsed = []string{DracoExtension}
	doc.ExtensionsRequired = []string{DracoExtension}
	doc.Meshes[0].Primitives[0].Extensions = gltf.Extensions{
		DracoExtension: &draco.PrimitiveExt{BufferView: 0},
	}

	_, err := Decode(encode(t, doc), "1L")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCompressed, "draco documents are accepted when built with the tag")
	assert.Contains(t, err.Error(), DracoExtension)
}
