// Package scene holds the drawable objects the viewer manipulates and the
// renderer consumes.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind classifies a drawable for hit-testing and rendering.
type Kind int

const (
	// KindRegion is a hit-testable anatomical region mesh.
	KindRegion Kind = iota
	// KindOutline is the inflated back-face companion of a region mesh.
	KindOutline
	// KindRoot is the translucent whole-brain overlay.
	KindRoot
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindOutline:
		return "outline"
	case KindRoot:
		return "root"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decorative reports whether drawables of this kind are ignored by picking.
func (k Kind) Decorative() bool {
	return k != KindRegion
}

// Color is a 24-bit RGB color in 0xRRGGBB form.
type Color uint32

// Common colors.
const (
	White Color = 0xffffff
	Black Color = 0x000000
)

// RGB returns the normalized channel values.
func (c Color) RGB() (r, g, b float32) {
	r = float32((c>>16)&0xff) / 255
	g = float32((c>>8)&0xff) / 255
	b = float32(c&0xff) / 255
	return r, g, b
}

// Hex returns the lowercase six digit hex form, e.g. "ffffff".
func (c Color) Hex() string {
	return fmt.Sprintf("%06x", uint32(c)&0xffffff)
}

// Material describes how a mesh is shaded.
type Material struct {
	Color       Color
	Opacity     float32
	Transparent bool // alpha blending enabled
	Visible     bool
	DepthWrite  bool
	BackSide    bool // render back faces only
}

// Geometry is an indexed triangle list. When Indices is empty every three
// consecutive positions form a triangle.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
	Min, Max  mgl32.Vec3
}

// NewGeometry creates geometry and computes its bounding box.
func NewGeometry(positions, normals []mgl32.Vec3, indices []uint32) *Geometry {
	g := &Geometry{
		Positions: positions,
		Normals:   normals,
		Indices:   indices,
	}
	g.computeBounds()
	return g
}

func (g *Geometry) computeBounds() {
	if len(g.Positions) == 0 {
		return
	}
	g.Min = g.Positions[0]
	g.Max = g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < g.Min[i] {
				g.Min[i] = p[i]
			}
			if p[i] > g.Max[i] {
				g.Max[i] = p[i]
			}
		}
	}
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the corners of triangle i. ok is false when an index
// points outside the position array.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3, ok bool) {
	var i0, i1, i2 int
	if len(g.Indices) > 0 {
		i0, i1, i2 = int(g.Indices[i*3]), int(g.Indices[i*3+1]), int(g.Indices[i*3+2])
	} else {
		i0, i1, i2 = i*3, i*3+1, i*3+2
	}
	n := len(g.Positions)
	if i0 >= n || i1 >= n || i2 >= n {
		return a, b, c, false
	}
	return g.Positions[i0], g.Positions[i1], g.Positions[i2], true
}

// Mesh is a drawable object.
type Mesh struct {
	Name     string
	Kind     Kind
	Owner    string // region id for region and outline meshes
	Geometry *Geometry
	Material Material
	Visible  bool

	// Outline is the companion outline of a region mesh, nil if none was built.
	Outline *Mesh
}

// SetShown toggles both the object and material visibility.
func (m *Mesh) SetShown(shown bool) {
	m.Visible = shown
	m.Material.Visible = shown
}

// Shown reports whether the mesh would be drawn.
func (m *Mesh) Shown() bool {
	return m.Visible && m.Material.Visible
}
