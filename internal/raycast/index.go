package raycast

import (
	"github.com/Faultbox/neuroview/internal/region"
	"github.com/Faultbox/neuroview/internal/scene"
	"github.com/Faultbox/neuroview/internal/visibility"
)

// Hit is the region under the pointer.
type Hit struct {
	Region   region.ID
	Mesh     *scene.Mesh
	Distance float32
}

// Index is the flattened list of hit-testable meshes of every visible
// region. Any membership change of the visibility set marks it dirty; the
// list is rebuilt on the next Query, never eagerly.
type Index struct {
	reg   *region.Registry
	vis   *visibility.Set
	isect Intersector

	meshes   []*scene.Mesh
	dirty    bool
	rebuilds int
}

// NewIndex creates an index over vis and subscribes to its changes.
// A nil intersector selects MeshIntersector.
func NewIndex(reg *region.Registry, vis *visibility.Set, isect Intersector) *Index {
	if isect == nil {
		isect = MeshIntersector{}
	}
	idx := &Index{reg: reg, vis: vis, isect: isect, dirty: true}
	vis.Subscribe(func(region.ID, bool) { idx.Invalidate() })
	return idx
}

// Invalidate forces a rebuild on the next query.
func (x *Index) Invalidate() {
	x.dirty = true
}

// Dirty reports whether the next query will rebuild.
func (x *Index) Dirty() bool {
	return x.dirty
}

// Rebuilds returns how many times the list has been rebuilt.
func (x *Index) Rebuilds() int {
	return x.rebuilds
}

// Meshes returns the current hit-test list, rebuilding it if needed.
func (x *Index) Meshes() []*scene.Mesh {
	if x.dirty {
		x.rebuild()
	}
	return x.meshes
}

func (x *Index) rebuild() {
	x.meshes = x.meshes[:0]
	for _, id := range x.vis.Members() {
		for _, m := range x.reg.Meshes(id) {
			if m.Kind.Decorative() {
				continue
			}
			x.meshes = append(x.meshes, m)
		}
	}
	x.dirty = false
	x.rebuilds++
}

// Query returns the nearest visible region mesh crossed by r. With no
// visible region it returns immediately without intersecting anything.
func (x *Index) Query(r Ray) (Hit, bool) {
	if x.vis.Len() == 0 {
		return Hit{}, false
	}
	hits := x.isect.Intersect(r, x.Meshes())
	sortByDistance(hits)
	for _, h := range hits {
		if h.Mesh.Kind.Decorative() {
			continue
		}
		id := region.ID(h.Mesh.Owner)
		if !x.vis.Has(id) {
			continue
		}
		return Hit{Region: id, Mesh: h.Mesh, Distance: h.Distance}, true
	}
	return Hit{}, false
}
