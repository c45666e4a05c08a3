package raycast

import (
	"sort"

	"github.com/Faultbox/neuroview/internal/scene"
)

// Intersection is one mesh crossed by a ray.
type Intersection struct {
	Mesh     *scene.Mesh
	Distance float32
}

// Intersector finds every mesh crossed by a ray, nearest first.
type Intersector interface {
	Intersect(r Ray, meshes []*scene.Mesh) []Intersection
}

// MeshIntersector tests bounding boxes then triangles on the CPU.
type MeshIntersector struct{}

// Intersect implements Intersector.
func (MeshIntersector) Intersect(r Ray, meshes []*scene.Mesh) []Intersection {
	var hits []Intersection
	for _, m := range meshes {
		if m == nil || m.Geometry == nil {
			continue
		}
		g := m.Geometry
		if _, ok := r.IntersectAABB(g.Min, g.Max); !ok {
			continue
		}

		nearest := float32(-1)
		for i := 0; i < g.TriangleCount(); i++ {
			a, b, c, ok := g.Triangle(i)
			if !ok {
				continue
			}
			if t, ok := r.IntersectTriangle(a, b, c); ok && (nearest < 0 || t < nearest) {
				nearest = t
			}
		}
		if nearest >= 0 {
			hits = append(hits, Intersection{Mesh: m, Distance: nearest})
		}
	}
	sortByDistance(hits)
	return hits
}

func sortByDistance(hits []Intersection) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
}
