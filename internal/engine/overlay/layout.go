package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style controls how a text box is drawn.
type Style struct {
	Face       font.Face
	Padding    int
	LineGap    int
	MaxWidth   int // text width in pixels, 0 for no wrapping
	Background color.RGBA
	Border     color.RGBA
	Text       color.RGBA
	Title      color.RGBA // first line
}

// TooltipStyle is used for hover tooltips.
var TooltipStyle = Style{
	Face:       basicfont.Face7x13,
	Padding:    6,
	LineGap:    3,
	MaxWidth:   280,
	Background: color.RGBA{20, 20, 28, 235},
	Border:     color.RGBA{90, 90, 110, 255},
	Text:       color.RGBA{225, 225, 225, 255},
	Title:      color.RGBA{255, 236, 132, 255},
}

// PanelStyle is used for the info panel.
var PanelStyle = Style{
	Face:       basicfont.Face7x13,
	Padding:    10,
	LineGap:    4,
	MaxWidth:   380,
	Background: color.RGBA{12, 12, 18, 242},
	Border:     color.RGBA{77, 85, 255, 255},
	Text:       color.RGBA{230, 230, 230, 255},
	Title:      color.RGBA{255, 255, 255, 255},
}

// Block is wrapped text with its pixel size including padding.
type Block struct {
	Lines  []string
	Width  int
	Height int
}

// Layout wraps lines to the style's width and measures the box.
func Layout(lines []string, st Style) Block {
	var out []string
	for _, l := range lines {
		out = append(out, wrap(l, st)...)
	}

	widest := 0
	for _, l := range out {
		if w := font.MeasureString(st.Face, l).Ceil(); w > widest {
			widest = w
		}
	}
	lineH := lineHeight(st)
	h := 2 * st.Padding
	if len(out) > 0 {
		h += len(out)*lineH - st.LineGap
	}
	return Block{Lines: out, Width: widest + 2*st.Padding, Height: h}
}

// wrap splits one line on spaces. Leading indentation is repeated on
// continuation lines. Words wider than the limit stay whole.
func wrap(line string, st Style) []string {
	if st.MaxWidth <= 0 || font.MeasureString(st.Face, line).Ceil() <= st.MaxWidth {
		return []string{line}
	}
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]

	var (
		out []string
		cur = indent
	)
	for _, word := range strings.Fields(trimmed) {
		if cur == indent {
			cur += word
			continue
		}
		next := cur + " " + word
		if font.MeasureString(st.Face, next).Ceil() > st.MaxWidth {
			out = append(out, cur)
			next = indent + word
		}
		cur = next
	}
	if cur != indent {
		out = append(out, cur)
	}
	return out
}

func lineHeight(st Style) int {
	return st.Face.Metrics().Height.Ceil() + st.LineGap
}

// Rasterize draws the block into a new RGBA image.
func Rasterize(b Block, st Style) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	border := image.NewUniform(st.Border)
	draw.Draw(img, image.Rect(0, 0, b.Width, 1), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, b.Height-1, b.Width, b.Height), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 1, b.Height), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(b.Width-1, 0, b.Width, b.Height), border, image.Point{}, draw.Src)

	ascent := st.Face.Metrics().Ascent.Ceil()
	lineH := lineHeight(st)
	d := &font.Drawer{Dst: img, Face: st.Face}
	for i, l := range b.Lines {
		c := st.Text
		if i == 0 {
			c = st.Title
		}
		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(st.Padding, st.Padding+ascent+i*lineH)
		d.DrawString(l)
	}
	return img
}

// Place keeps a w×h box anchored at (x, y) inside the screen, flipping it
// to the other side of the anchor when it would overflow.
func Place(x, y, w, h, screenW, screenH int) (int, int) {
	if x+w > screenW {
		x = x - w
	}
	if y+h > screenH {
		y = y - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
