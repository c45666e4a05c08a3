package outline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/neuroview/internal/scene"
)

func TestBuildOffsetsAlongNormals(t *testing.T) {
	pos := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := []mgl32.Vec3{{0, 0, 2}, {0, 0, 1}, {0, 0, 0}}
	m := &scene.Mesh{
		Name:     "100L",
		Owner:    "100L",
		Geometry: scene.NewGeometry(pos, normals, nil),
	}

	o, err := Build(m, DefaultThickness)
	require.NoError(t, err)

	assert.Same(t, o, m.Outline)
	assert.Equal(t, "100LOutline", o.Name)
	assert.Equal(t, scene.KindOutline, o.Kind)
	assert.Equal(t, "100L", o.Owner)
	assert.False(t, o.Shown(), "outlines start hidden")
	assert.True(t, o.Material.BackSide)
	assert.Equal(t, scene.Black, o.Material.Color)

	assert.InDelta(t, DefaultThickness, o.Geometry.Positions[0].Z(), 1e-7, "normal is normalized first")
	assert.InDelta(t, DefaultThickness, o.Geometry.Positions[1].Z(), 1e-7)
	assert.Equal(t, pos[2], o.Geometry.Positions[2], "zero normal leaves vertex in place")
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, m.Geometry.Positions[0], "source geometry untouched")
}

func TestBuildWithoutNormals(t *testing.T) {
	m := &scene.Mesh{
		Name:     "7R",
		Geometry: scene.NewGeometry([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil),
	}
	_, err := Build(m, DefaultThickness)
	assert.ErrorIs(t, err, ErrNoNormals)
	assert.Nil(t, m.Outline)

	_, err = Build(&scene.Mesh{Name: "empty"}, DefaultThickness)
	assert.ErrorIs(t, err, ErrNoNormals)
}
