package renderer

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/neuroview/internal/scene"
)

// Pass is one stage of a frame.
type Pass int

const (
	// PassOpaque draws fully opaque region meshes with depth writes.
	PassOpaque Pass = iota
	// PassOutline draws back faces of the enlarged outline meshes.
	PassOutline
	// PassBlend draws fading regions and the root overlay far to near.
	PassBlend
)

// Draw is a mesh scheduled in a pass.
type Draw struct {
	Pass Pass
	Mesh *scene.Mesh
	// Depth is the squared distance from the eye to the mesh bounds center.
	Depth float32
}

// Plan orders the drawable objects for one frame: opaque first, then
// outlines, then blended meshes far to near. Hidden meshes and meshes
// with zero opacity are skipped.
func Plan(objects []*scene.Mesh, eye mgl32.Vec3) []Draw {
	draws := make([]Draw, 0, len(objects))
	for _, m := range objects {
		if !m.Shown() || m.Geometry == nil || m.Geometry.TriangleCount() == 0 {
			continue
		}
		off := center(m).Sub(eye)
		d := Draw{Mesh: m, Depth: off.Dot(off)}
		switch {
		case m.Kind == scene.KindOutline:
			d.Pass = PassOutline
		case m.Material.Transparent:
			if m.Material.Opacity <= 0 {
				continue
			}
			d.Pass = PassBlend
		default:
			d.Pass = PassOpaque
		}
		draws = append(draws, d)
	}
	sort.SliceStable(draws, func(i, j int) bool {
		a, b := draws[i], draws[j]
		if a.Pass != b.Pass {
			return a.Pass < b.Pass
		}
		if a.Pass == PassBlend {
			return a.Depth > b.Depth
		}
		return false
	})
	return draws
}

func center(m *scene.Mesh) mgl32.Vec3 {
	g := m.Geometry
	return g.Min.Add(g.Max).Mul(0.5)
}
