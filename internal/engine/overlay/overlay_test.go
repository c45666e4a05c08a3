package overlay

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"

	"github.com/Faultbox/neuroview/internal/interaction"
	"github.com/Faultbox/neuroview/internal/reference"
)

var _ interaction.Presenter = (*Overlay)(nil)

func TestLayoutWrapsLongLines(t *testing.T) {
	st := TooltipStyle
	st.MaxWidth = 70 // ten 7px glyphs

	b := Layout([]string{"Amygdala", "part of the limbic system"}, st)
	assert.Equal(t, "Amygdala", b.Lines[0])
	require.Greater(t, len(b.Lines), 2)
	for _, l := range b.Lines {
		assert.LessOrEqual(t, font.MeasureString(st.Face, l).Ceil(), st.MaxWidth, l)
	}
	assert.Equal(t, "Amygdala part of the limbic system", joinWords(b.Lines))
	assert.LessOrEqual(t, b.Width, st.MaxWidth+2*st.Padding)
}

func TestLayoutKeepsIndentAndLongWords(t *testing.T) {
	st := PanelStyle
	st.MaxWidth = 56

	b := Layout([]string{"  alpha beta gamma", "  supercalifragilistic"}, st)
	for _, l := range b.Lines {
		assert.True(t, strings.HasPrefix(l, "  "), l)
	}
	assert.Contains(t, b.Lines, "  supercalifragilistic")
}

func TestLayoutHeight(t *testing.T) {
	st := TooltipStyle
	one := Layout([]string{"a"}, st)
	two := Layout([]string{"a", "b"}, st)
	assert.Equal(t, lineHeight(st), two.Height-one.Height)
	assert.Equal(t, 2*st.Padding, Layout(nil, st).Height)
}

func TestRasterize(t *testing.T) {
	st := TooltipStyle
	b := Layout([]string{"Hippocampus"}, st)
	img := Rasterize(b, st)

	assert.Equal(t, b.Width, img.Bounds().Dx())
	assert.Equal(t, b.Height, img.Bounds().Dy())
	assert.Equal(t, st.Border, img.RGBAAt(0, 0))
	assert.Equal(t, st.Background, img.RGBAAt(2, 2))

	found := false
	for y := 0; y < b.Height && !found; y++ {
		for x := 0; x < b.Width; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{255, 236, 132, 255}) {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "title glyphs not drawn")
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h int
		wantX      int
		wantY      int
	}{
		{"fits", 10, 10, 50, 20, 10, 10},
		{"flips left", 180, 10, 50, 20, 130, 10},
		{"flips up", 10, 190, 50, 20, 10, 170},
		{"clamps", 10, 10, 300, 300, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Place(tt.x, tt.y, tt.w, tt.h, 200, 200)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestPresenterState(t *testing.T) {
	o := New(800, 600, nil)

	o.ShowTooltip(reference.Tooltip{Title: "100"}, 110, 120)
	x, y, ok := o.TooltipVisible()
	assert.True(t, ok)
	assert.Equal(t, 110, x)
	assert.Equal(t, 120, y)

	o.MoveTooltip(790, 120)
	x, _, _ = o.TooltipVisible()
	assert.Less(t, x, 790)

	o.HideTooltip()
	_, _, ok = o.TooltipVisible()
	assert.False(t, ok)

	o.ShowInfoPanel(reference.Panel{Title: "Thalamus"})
	assert.True(t, o.PanelVisible())
	assert.Equal(t, []string{"Thalamus"}, o.PanelLines())
	o.HideInfoPanel()
	assert.False(t, o.PanelVisible())

	// Draw without GL resources is a no-op.
	o.Draw()
}

func joinWords(lines []string) string {
	return strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
}
