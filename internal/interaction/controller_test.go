package interaction

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/neuroview/internal/reference"
	"github.com/Faultbox/neuroview/internal/region"
)

type fakeUI struct {
	tooltip     *reference.Tooltip
	tx, ty      float64
	shows       int
	moves       int
	panel       *reference.Panel
	panelShows  int
	tooltipHide int
	panelHide   int
}

func (f *fakeUI) ShowTooltip(t reference.Tooltip, x, y float64) {
	f.tooltip = &t
	f.tx, f.ty = x, y
	f.shows++
}

func (f *fakeUI) MoveTooltip(x, y float64) {
	f.tx, f.ty = x, y
	f.moves++
}

func (f *fakeUI) HideTooltip() {
	f.tooltip = nil
	f.tooltipHide++
}

func (f *fakeUI) ShowInfoPanel(p reference.Panel) {
	f.panel = &p
	f.panelShows++
}

func (f *fakeUI) HideInfoPanel() {
	f.panel = nil
	f.panelHide++
}

// picker reports a fixed region for the left eighth of an 800px surface
// (x < 100) and a miss elsewhere.
type picker struct {
	region region.ID
	calls  int
	last   mgl32.Vec2
}

func (p *picker) pick(ndc mgl32.Vec2) (region.ID, bool) {
	p.calls++
	p.last = ndc
	if p.region == "" || ndc.X() >= -0.75 {
		return "", false
	}
	return p.region, true
}

func newController(p *picker) (*Controller, *fakeUI) {
	ui := &fakeUI{}
	entries := map[string]*reference.Entry{
		"100": {Name: "Hippocampus", Groups: reference.List{"Limbic system"}},
	}
	c := New(Config{
		Pick: p.pick,
		Lookup: func(base string) (*reference.Entry, bool) {
			e, ok := entries[base]
			return e, ok
		},
		Presenter: ui,
		Offset:    DefaultTooltipOffset,
		Width:     800,
		Height:    600,
	})
	return c, ui
}

func TestPointerMoveDefersHitTest(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 20)
	c.PointerMove(11, 21)
	c.PointerMove(12, 22)
	assert.Zero(t, p.calls, "no hit-test inside the input handler")
	assert.True(t, c.Pending())

	c.Tick()
	assert.Equal(t, 1, p.calls, "one hit-test per tick")
	require.NotNil(t, ui.tooltip)
	assert.Equal(t, "Hippocampus", ui.tooltip.Title)
	assert.Equal(t, 22.0, ui.tx)
	assert.Equal(t, 32.0, ui.ty)

	c.Tick()
	assert.Equal(t, 1, p.calls, "nothing pending")
}

func TestPickReceivesNormalizedPointer(t *testing.T) {
	p := &picker{}
	c, _ := newController(p)

	c.PointerMove(400, 150)
	c.Tick()
	assert.InDelta(t, 0, p.last.X(), 1e-6)
	assert.InDelta(t, 0.5, p.last.Y(), 1e-6)

	c.Click(0, 600)
	assert.InDelta(t, -1, p.last.X(), 1e-6)
	assert.InDelta(t, -1, p.last.Y(), 1e-6)

	c.Resize(400, 300)
	c.PointerMove(200, 75)
	c.Tick()
	assert.InDelta(t, 0, p.last.X(), 1e-6)
	assert.InDelta(t, 0.5, p.last.Y(), 1e-6)
}

func TestSameRegionOnlyMovesTooltip(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 10)
	c.Tick()
	c.PointerMove(20, 10)
	c.Tick()

	assert.Equal(t, 1, ui.shows)
	assert.Equal(t, 1, ui.moves)
	assert.Equal(t, 30.0, ui.tx)
}

func TestMissHidesTooltip(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 10)
	c.Tick()
	c.PointerMove(500, 10)
	c.Tick()

	assert.Nil(t, ui.tooltip)
	_, hovering := c.Hovered()
	assert.False(t, hovering)
}

func TestHoverThenLeave(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 10)
	c.Tick()
	require.NotNil(t, ui.tooltip)

	c.PointerMove(11, 10)
	c.PointerLeave()
	assert.Nil(t, ui.tooltip)
	_, hovering := c.Hovered()
	assert.False(t, hovering)
	assert.False(t, c.Pending())

	c.Tick()
	c.Tick()
	assert.Equal(t, 1, p.calls, "leave cancels the scheduled recompute")
	assert.Equal(t, 1, c.HoverTests())
}

func TestOutsideSurfaceSkipsHitTest(t *testing.T) {
	p := &picker{region: "100L"}
	c, _ := newController(p)

	c.PointerMove(-5, 10)
	c.Tick()
	assert.Zero(t, p.calls)

	c.Resize(1000, 1000)
	c.PointerMove(900, 900)
	c.Tick()
	assert.Equal(t, 1, p.calls)
}

func TestMovingOffSurfaceHidesTooltip(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(50, 50)
	c.Tick()
	require.NotNil(t, ui.tooltip)

	c.PointerMove(-20, 50)
	c.Tick()
	assert.Nil(t, ui.tooltip)
	_, hovering := c.Hovered()
	assert.False(t, hovering)
	assert.Equal(t, 1, p.calls, "no hit-test off the surface")
}

func TestInvalidateWhileOffSurfaceHidesTooltip(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(50, 50)
	c.Tick()
	require.NotNil(t, ui.tooltip)

	// Motion outside the window without a leave event, then the hovered
	// region is hidden.
	c.PointerMove(900, 50)
	c.InvalidateHover("100L")
	c.Tick()
	assert.Nil(t, ui.tooltip)
	assert.Equal(t, 1, ui.tooltipHide)
}

func TestTooltipsDisabled(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 10)
	c.Tick()
	require.NotNil(t, ui.tooltip)

	c.SetTooltipsEnabled(false)
	assert.Nil(t, ui.tooltip)

	c.PointerMove(12, 10)
	c.Tick()
	assert.Equal(t, 1, p.calls, "no hover hit-test while disabled")

	assert.True(t, c.Click(10, 10))
	assert.Nil(t, ui.tooltip, "click shows no tooltip while disabled")
	assert.NotNil(t, ui.panel)
}

func TestClickShowsTooltipAndPanel(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	stopped := c.Click(50, 60)
	assert.True(t, stopped)
	assert.Equal(t, 1, p.calls, "click hit-tests immediately")
	require.NotNil(t, ui.tooltip)
	require.NotNil(t, ui.panel)
	assert.Equal(t, "Hippocampus", ui.panel.Title)
	assert.Equal(t, 60.0, ui.tx)
	assert.Equal(t, 70.0, ui.ty)

	id, hovering := c.Hovered()
	assert.True(t, hovering)
	assert.Equal(t, region.ID("100L"), id)
}

func TestClickMissHidesBoth(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.Click(10, 10)
	assert.False(t, c.Click(500, 10))
	assert.Nil(t, ui.tooltip)
	assert.Nil(t, ui.panel)
}

func TestDispatchClick(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.DispatchClick(10, 10)
	assert.NotNil(t, ui.panel, "page handler does not dismiss a consumed click")
	assert.NotNil(t, ui.tooltip)

	c.DispatchClick(500, 10)
	assert.Nil(t, ui.panel)
	assert.Nil(t, ui.tooltip)
}

func TestDescriptionBoxesDisabled(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.Click(10, 10)
	require.NotNil(t, ui.panel)

	c.SetDescriptionBoxesEnabled(false)
	assert.Nil(t, ui.panel)

	c.Click(10, 10)
	assert.Nil(t, ui.panel)
	assert.NotNil(t, ui.tooltip)
}

func TestMissingMetadataShowsRawID(t *testing.T) {
	p := &picker{region: "42R"}
	c, ui := newController(p)

	c.Click(10, 10)
	require.NotNil(t, ui.tooltip)
	assert.Equal(t, reference.Tooltip{Title: "42"}, *ui.tooltip)
	assert.Equal(t, "42", ui.panel.Title)
}

func TestInvalidateHoverReschedules(t *testing.T) {
	p := &picker{region: "100L"}
	c, ui := newController(p)

	c.PointerMove(10, 10)
	c.Tick()

	p.region = ""
	c.InvalidateHover("7L")
	_, hovering := c.Hovered()
	assert.True(t, hovering, "other regions leave hover state alone")

	c.InvalidateHover("100L")
	_, hovering = c.Hovered()
	assert.False(t, hovering)
	assert.True(t, c.Pending())

	c.Tick()
	assert.Nil(t, ui.tooltip, "region gone from under the pointer")
}
