// Package meshio decodes region meshes from glTF binary (GLB) assets.
package meshio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/assets"
	"github.com/Faultbox/neuroview/internal/region"
	"github.com/Faultbox/neuroview/internal/scene"
)

var (
	// ErrCompressed is returned for documents requiring a mesh compression
	// extension no decompressor is registered for.
	ErrCompressed = errors.New("compressed mesh data not supported")
	// ErrNoGeometry is returned when a document has no triangle primitives.
	ErrNoGeometry = errors.New("no triangle geometry")
)

// DracoExtension is the glTF extension name of Draco mesh compression.
const DracoExtension = "KHR_draco_mesh_compression"

var compressionExtensions = []string{
	DracoExtension,
	"EXT_meshopt_compression",
}

// decompressor decodes a primitive whose geometry lives in a compression
// extension. ext is the extension payload as parsed by gltf.
type decompressor func(doc *gltf.Document, prim *gltf.Primitive, ext any) (positions, normals [][3]float32, indices []uint32, err error)

// decompressors maps extension names to their decoders. Draco registers
// itself when built with the draco tag.
var decompressors = map[string]decompressor{}

// ModelPath returns the asset name of a region model.
func ModelPath(name string) string {
	return "models/" + name + ".glb"
}

// Decoder loads GLB assets through an asset manager.
type Decoder struct {
	assets *assets.Manager
	log    *zap.Logger
}

// NewDecoder creates a decoder.
func NewDecoder(m *assets.Manager, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{assets: m, log: log}
}

// DecodeRegion fetches and decodes models/<id>.glb. Mesh names derive
// from the region id.
func (d *Decoder) DecodeRegion(ctx context.Context, id region.ID) ([]*scene.Mesh, error) {
	return d.DecodeAsset(ctx, ModelPath(id.String()), id.String())
}

// DecodeAsset fetches and decodes a GLB asset, naming meshes after name.
func (d *Decoder) DecodeAsset(ctx context.Context, asset, name string) ([]*scene.Mesh, error) {
	data, err := d.assets.Load(ctx, asset)
	if err != nil {
		return nil, err
	}
	meshes, err := Decode(data, name)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", asset, err)
	}
	d.log.Debug("decoded model",
		zap.String("asset", asset),
		zap.Int("meshes", len(meshes)),
		zap.Int("bytes", len(data)))
	return meshes, nil
}

// Decode parses a GLB document and returns one mesh per triangle
// primitive, with node transforms baked into positions and normals.
// The first mesh is called name, later ones name_1, name_2 and so on.
func Decode(data []byte, name string) ([]*scene.Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("parsing glb: %w", err)
	}
	for _, ext := range doc.ExtensionsRequired {
		if _, ok := decompressors[ext]; !ok && slices.Contains(compressionExtensions, ext) {
			if ext == DracoExtension {
				return nil, fmt.Errorf("%w: %s (build with -tags draco)", ErrCompressed, ext)
			}
			return nil, fmt.Errorf("%w: %s", ErrCompressed, ext)
		}
	}

	b := &builder{doc: doc, name: name}
	for _, root := range rootNodes(doc) {
		if err := b.visit(root, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}
	if len(b.meshes) == 0 {
		return nil, ErrNoGeometry
	}
	return b.meshes, nil
}

// rootNodes returns the nodes of the default scene, or every parentless
// node when the document names no scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxDepth bounds node recursion in malformed documents with cycles.
const maxDepth = 64

type builder struct {
	doc    *gltf.Document
	name   string
	meshes []*scene.Mesh
}

func (b *builder) visit(idx int, parent mgl32.Mat4, depth int) error {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxDepth {
		return fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}
	node := b.doc.Nodes[idx]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		if *node.Mesh >= len(b.doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", idx, *node.Mesh)
		}
		for _, prim := range b.doc.Meshes[*node.Mesh].Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			m, err := b.primitive(prim, world)
			if err != nil {
				return fmt.Errorf("node %d: %w", idx, err)
			}
			b.meshes = append(b.meshes, m)
		}
	}
	for _, c := range node.Children {
		if err := b.visit(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) meshName() string {
	if len(b.meshes) == 0 {
		return b.name
	}
	return fmt.Sprintf("%s_%d", b.name, len(b.meshes))
}

func (b *builder) accessor(i int) *gltf.Accessor {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil
	}
	return b.doc.Accessors[i]
}

func (b *builder) primitive(prim *gltf.Primitive, world mgl32.Mat4) (*scene.Mesh, error) {
	for name, ext := range prim.Extensions {
		dec, ok := decompressors[name]
		if !ok {
			continue
		}
		positions, normals, indices, err := dec(b.doc, prim, ext)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(positions) == 0 {
			return nil, fmt.Errorf("%s: primitive without positions", name)
		}
		return b.mesh(positions, normals, indices, world), nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || b.accessor(posIdx) == nil {
		return nil, fmt.Errorf("primitive without positions")
	}
	for _, i := range []int{attr(prim, gltf.NORMAL), index(prim)} {
		if i >= 0 && b.accessor(i) == nil {
			return nil, fmt.Errorf("accessor %d out of range", i)
		}
	}
	positions, err := modeler.ReadPosition(b.doc, b.accessor(posIdx), nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	var normals [][3]float32
	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(b.doc, b.accessor(nIdx), nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(b.doc, b.accessor(*prim.Indices), nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}
	return b.mesh(positions, normals, indices, world), nil
}

// mesh bakes world into the vertex data and wraps it as a region mesh.
func (b *builder) mesh(rawP, rawN [][3]float32, indices []uint32, world mgl32.Mat4) *scene.Mesh {
	positions := make([]mgl32.Vec3, len(rawP))
	for i, p := range rawP {
		positions[i] = mgl32.TransformCoordinate(mgl32.Vec3(p), world)
	}

	var normals []mgl32.Vec3
	if len(rawN) > 0 {
		normalMat := world.Mat3().Inv().Transpose()
		normals = make([]mgl32.Vec3, len(rawN))
		for i, n := range rawN {
			v := normalMat.Mul3x1(mgl32.Vec3(n))
			if v.Len() > 0 {
				v = v.Normalize()
			}
			normals[i] = v
		}
	}

	return &scene.Mesh{
		Name:     b.meshName(),
		Kind:     scene.KindRegion,
		Geometry: scene.NewGeometry(positions, normals, indices),
		Material: scene.Material{
			Color:      scene.White,
			Opacity:    1,
			DepthWrite: true,
		},
	}
}

func attr(prim *gltf.Primitive, name string) int {
	if i, ok := prim.Attributes[name]; ok {
		return i
	}
	return -1
}

func index(prim *gltf.Primitive) int {
	if prim.Indices == nil {
		return -1
	}
	return *prim.Indices
}

// localMatrix returns the node transform, from its matrix when set and
// from translation, rotation and scale otherwise.
func localMatrix(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != gltf.DefaultMatrix && n.Matrix != ([16]float64{}) {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}
