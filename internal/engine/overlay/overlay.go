// Package overlay draws the hover tooltip and the info panel on top of
// the 3D scene.
package overlay

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/engine/shader"
	"github.com/Faultbox/neuroview/internal/reference"
)

// PanelMargin is the distance of the info panel from the top right corner.
const PanelMargin = 16

// box is one text box; the texture is rebuilt when dirty.
type box struct {
	lines   []string
	style   Style
	block   Block
	visible bool
	dirty   bool
	x, y    int

	tex uint32
}

func (b *box) set(lines []string, st Style) {
	b.lines = lines
	b.style = st
	b.block = Layout(lines, st)
	b.visible = true
	b.dirty = true
}

// Overlay renders tooltips and panels. Its presenter methods only record
// state, so they may be called before a GL context exists; Draw does the
// GL work.
type Overlay struct {
	log *zap.Logger

	screenW, screenH int

	tooltip box
	panel   box

	program *shader.Program
	vao     uint32
	vbo     uint32
}

// New creates an overlay for a screen of the given size.
func New(width, height int, log *zap.Logger) *Overlay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Overlay{log: log, screenW: width, screenH: height}
}

// Init creates the GL resources. Call after the context exists.
func (o *Overlay) Init() error {
	var err error
	o.program, err = shader.Compile(quadVertexSrc, quadFragmentSrc)
	if err != nil {
		return fmt.Errorf("overlay shader: %w", err)
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)

	const stride = 4 * 4
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Resize updates the screen size in pointer coordinates.
func (o *Overlay) Resize(width, height int) {
	o.screenW, o.screenH = width, height
	o.placePanel()
}

// ShowTooltip displays t with its top left corner at (x, y).
func (o *Overlay) ShowTooltip(t reference.Tooltip, x, y float64) {
	o.tooltip.set(t.Lines(), TooltipStyle)
	o.MoveTooltip(x, y)
}

// MoveTooltip moves the visible tooltip.
func (o *Overlay) MoveTooltip(x, y float64) {
	o.tooltip.x, o.tooltip.y = Place(int(x), int(y), o.tooltip.block.Width, o.tooltip.block.Height, o.screenW, o.screenH)
}

// HideTooltip hides the tooltip.
func (o *Overlay) HideTooltip() {
	o.tooltip.visible = false
}

// ShowInfoPanel displays p in the top right corner.
func (o *Overlay) ShowInfoPanel(p reference.Panel) {
	o.panel.set(p.Lines(), PanelStyle)
	o.placePanel()
	o.log.Debug("info panel shown", zap.String("title", p.Title), zap.Int("lines", len(o.panel.block.Lines)))
}

// HideInfoPanel hides the info panel.
func (o *Overlay) HideInfoPanel() {
	o.panel.visible = false
}

// TooltipVisible reports whether a tooltip is shown and where.
func (o *Overlay) TooltipVisible() (x, y int, ok bool) {
	return o.tooltip.x, o.tooltip.y, o.tooltip.visible
}

// PanelVisible reports whether the info panel is shown.
func (o *Overlay) PanelVisible() bool {
	return o.panel.visible
}

// PanelLines returns the wrapped panel text.
func (o *Overlay) PanelLines() []string {
	return o.panel.block.Lines
}

func (o *Overlay) placePanel() {
	x := o.screenW - o.panel.block.Width - PanelMargin
	o.panel.x, o.panel.y = Place(x, PanelMargin, o.panel.block.Width, o.panel.block.Height, o.screenW, o.screenH)
}

// Draw renders the visible boxes. The panel is drawn below the tooltip.
func (o *Overlay) Draw() {
	if o.program == nil || (!o.tooltip.visible && !o.panel.visible) {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	o.program.Use()
	o.program.SetMat4("uProjection", mgl32.Ortho2D(0, float32(o.screenW), float32(o.screenH), 0))
	o.program.SetInt("uTexture", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)

	for _, b := range []*box{&o.panel, &o.tooltip} {
		if b.visible {
			o.drawBox(b)
		}
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
}

func (o *Overlay) drawBox(b *box) {
	if b.block.Width <= 0 || b.block.Height <= 0 {
		return
	}
	if b.dirty {
		o.upload(b, Rasterize(b.block, b.style))
		b.dirty = false
	}

	x0, y0 := float32(b.x), float32(b.y)
	x1, y1 := x0+float32(b.block.Width), y0+float32(b.block.Height)
	verts := [24]float32{
		x0, y0, 0, 0,
		x1, y0, 1, 0,
		x1, y1, 1, 1,
		x0, y0, 0, 0,
		x1, y1, 1, 1,
		x0, y1, 0, 1,
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, unsafe.Pointer(&verts[0]))
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

func (o *Overlay) upload(b *box, img *image.RGBA) {
	if b.tex == 0 {
		gl.GenTextures(1, &b.tex)
	}
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	size := img.Bounds().Size()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
}

// Close releases GL resources.
func (o *Overlay) Close() {
	for _, b := range []*box{&o.tooltip, &o.panel} {
		if b.tex != 0 {
			gl.DeleteTextures(1, &b.tex)
			b.tex = 0
		}
	}
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.program != nil {
		o.program.Delete()
	}
}

const quadVertexSrc = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
uniform mat4 uProjection;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
}
`

const quadFragmentSrc = `
#version 410 core
in vec2 vUV;
uniform sampler2D uTexture;
out vec4 FragColor;
void main() {
	FragColor = texture(uTexture, vUV);
}
`
