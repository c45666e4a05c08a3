// Package renderer draws the viewer scene with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/engine/shader"
	"github.com/Faultbox/neuroview/internal/scene"
)

// Camera supplies the frame transforms.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	ProjectionMatrix() mgl32.Mat4
	Position() mgl32.Vec3
}

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	Logger *zap.Logger
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	program *shader.Program
	buffers map[*scene.Mesh]*gpuMesh

	lightDir mgl32.Vec3
	frames   uint64
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

const vertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec3 vViewPos;

void main() {
	vec4 viewPos = uView * vec4(aPos, 1.0);
	vViewPos = viewPos.xyz;
	vNormal = mat3(uView) * aNormal;
	gl_Position = uProjection * viewPos;
}
`

const fragmentSrc = `
#version 410 core
in vec3 vNormal;
in vec3 vViewPos;

uniform vec3 uColor;
uniform float uOpacity;
uniform vec3 uLightDir;
uniform int uUnlit;

out vec4 FragColor;

void main() {
	if (uUnlit == 1) {
		FragColor = vec4(uColor, uOpacity);
		return;
	}
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	float diffuse = max(dot(n, -uLightDir), 0.0);
	vec3 viewDir = normalize(-vViewPos);
	float rim = pow(1.0 - max(dot(n, viewDir), 0.0), 3.0) * 0.15;
	vec3 lit = uColor * (0.45 + 0.55 * diffuse) + vec3(rim);
	FragColor = vec4(lit, uOpacity);
}
`

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config:   cfg,
		log:      log,
		buffers:  make(map[*scene.Mesh]*gpuMesh),
		lightDir: mgl32.Vec3{-0.3, -0.6, -0.75}.Normalize(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.MULTISAMPLE)

	var err error
	r.program, err = shader.Compile(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("buffers", len(r.buffers)))
	for m := range r.buffers {
		r.release(m)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize. Width and height are drawable pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Frames returns how many frames were drawn.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// Render clears to the scene background and draws every shown mesh.
func (r *Renderer) Render(s *scene.Scene, cam Camera) {
	cr, cg, cb := s.Background().RGB()
	gl.ClearColor(cr, cg, cb, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	objects := s.Objects()
	r.collect(objects)

	r.program.Use()
	r.program.SetMat4("uView", cam.ViewMatrix())
	r.program.SetMat4("uProjection", cam.ProjectionMatrix())
	r.program.SetVec3("uLightDir", r.lightDir)

	for _, d := range Plan(objects, cam.Position()) {
		r.draw(d)
	}

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(0)
	r.frames++
}

func (r *Renderer) draw(d Draw) {
	m := d.Mesh
	buf, err := r.upload(m)
	if err != nil {
		r.log.Warn("mesh upload failed", zap.String("mesh", m.Name), zap.Error(err))
		return
	}

	mat := m.Material
	switch {
	case mat.BackSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case mat.Transparent:
		// Both faces so the far side of a translucent shell shows.
		gl.Disable(gl.CULL_FACE)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	if mat.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
	gl.DepthMask(mat.DepthWrite)

	cr, cg, cb := mat.Color.RGB()
	r.program.SetVec3("uColor", mgl32.Vec3{cr, cg, cb})
	opacity := mat.Opacity
	if !mat.Transparent {
		opacity = 1
	}
	r.program.SetFloat("uOpacity", opacity)
	unlit := int32(0)
	if m.Kind == scene.KindOutline {
		unlit = 1
	}
	r.program.SetInt("uUnlit", unlit)

	gl.BindVertexArray(buf.vao)
	if buf.indexed {
		gl.DrawElements(gl.TRIANGLES, buf.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, buf.count)
	}
}

// collect frees buffers of meshes no longer in the scene.
func (r *Renderer) collect(objects []*scene.Mesh) {
	if len(r.buffers) <= len(objects) {
		return
	}
	live := make(map[*scene.Mesh]struct{}, len(objects))
	for _, m := range objects {
		live[m] = struct{}{}
	}
	for m := range r.buffers {
		if _, ok := live[m]; !ok {
			r.release(m)
		}
	}
}

func (r *Renderer) upload(m *scene.Mesh) (*gpuMesh, error) {
	if buf, ok := r.buffers[m]; ok {
		return buf, nil
	}
	g := m.Geometry
	data, err := Interleave(g)
	if err != nil {
		return nil, err
	}

	buf := &gpuMesh{}
	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	const stride = 6 * 4
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	if len(g.Indices) > 0 {
		gl.GenBuffers(1, &buf.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		buf.indexed = true
		buf.count = int32(len(g.Indices))
	} else {
		buf.count = int32(len(g.Positions))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.buffers[m] = buf
	r.log.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(g.Positions)),
		zap.Uint32("vao", buf.vao),
	)
	return buf, nil
}

func (r *Renderer) release(m *scene.Mesh) {
	buf, ok := r.buffers[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &buf.vao)
	gl.DeleteBuffers(1, &buf.vbo)
	if buf.ebo != 0 {
		gl.DeleteBuffers(1, &buf.ebo)
	}
	delete(r.buffers, m)
}

// Interleave packs positions and normals as x y z nx ny nz. Missing
// normals are written as zero.
func Interleave(g *scene.Geometry) ([]float32, error) {
	if g == nil || len(g.Positions) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}
	out := make([]float32, 0, len(g.Positions)*6)
	hasNormals := len(g.Normals) == len(g.Positions)
	for i, p := range g.Positions {
		out = append(out, p[0], p[1], p[2])
		if hasNormals {
			n := g.Normals[i]
			out = append(out, n[0], n[1], n[2])
		} else {
			out = append(out, 0, 0, 0)
		}
	}
	return out, nil
}
