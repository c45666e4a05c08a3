// Package outline builds silhouette meshes by pushing vertices outward
// along their normals and rendering only back faces.
package outline

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/neuroview/internal/scene"
)

// DefaultThickness is the outward offset in model units.
const DefaultThickness = 0.005

// Suffix is appended to a mesh name to name its outline.
const Suffix = "Outline"

// ErrNoNormals is returned for meshes whose normals are missing or do not
// match their positions.
var ErrNoNormals = errors.New("mesh has no usable normals")

// Name returns the outline name of a mesh.
func Name(meshName string) string {
	return meshName + Suffix
}

// Build creates a hidden outline for m and attaches it as m.Outline.
// The source geometry is left untouched.
func Build(m *scene.Mesh, thickness float32) (*scene.Mesh, error) {
	g := m.Geometry
	if g == nil || len(g.Positions) == 0 || len(g.Normals) != len(g.Positions) {
		return nil, fmt.Errorf("outline %s: %w", m.Name, ErrNoNormals)
	}

	positions := make([]mgl32.Vec3, len(g.Positions))
	for i, p := range g.Positions {
		n := g.Normals[i]
		if n.Len() == 0 {
			positions[i] = p
			continue
		}
		positions[i] = p.Add(n.Normalize().Mul(thickness))
	}

	o := &scene.Mesh{
		Name:     Name(m.Name),
		Kind:     scene.KindOutline,
		Owner:    m.Owner,
		Geometry: scene.NewGeometry(positions, g.Normals, g.Indices),
		Material: scene.Material{
			Color:      scene.Black,
			Opacity:    1,
			DepthWrite: true,
			BackSide:   true,
		},
	}
	m.Outline = o
	return o, nil
}
