// Package interaction turns pointer input into tooltip and info panel
// updates. Hover hit-tests are deferred to the render tick; clicks are
// resolved immediately.
package interaction

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/reference"
	"github.com/Faultbox/neuroview/internal/region"
)

// DefaultTooltipOffset is the distance in pixels between the pointer and
// the tooltip corner.
const DefaultTooltipOffset = 10

// PickFunc hit-tests a pointer position in normalized device coordinates
// (-1..1, y up) and returns the nearest visible region.
type PickFunc func(ndc mgl32.Vec2) (region.ID, bool)

// LookupFunc returns metadata for a base region id.
type LookupFunc func(base string) (*reference.Entry, bool)

// Presenter displays the tooltip and info panel.
type Presenter interface {
	ShowTooltip(t reference.Tooltip, x, y float64)
	MoveTooltip(x, y float64)
	HideTooltip()
	ShowInfoPanel(p reference.Panel)
	HideInfoPanel()
}

// Config wires a controller.
type Config struct {
	Pick      PickFunc
	Lookup    LookupFunc
	Presenter Presenter
	Offset    float64
	Width     int
	Height    int
	Logger    *zap.Logger
}

// Controller holds pointer and hover state.
type Controller struct {
	pick   PickFunc
	lookup LookupFunc
	ui     Presenter
	offset float64
	log    *zap.Logger

	width, height int

	x, y    float64
	ndc     mgl32.Vec2
	inside  bool
	pending bool

	hovered  region.ID
	hovering bool

	tooltips     bool
	descriptions bool
	tooltipShown bool
	panelShown   bool

	hoverTests int
}

// New creates a controller with tooltips and description boxes enabled.
func New(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		pick:         cfg.Pick,
		lookup:       cfg.Lookup,
		ui:           cfg.Presenter,
		offset:       cfg.Offset,
		log:          log,
		width:        cfg.Width,
		height:       cfg.Height,
		tooltips:     true,
		descriptions: true,
	}
}

// Resize updates the render surface bounds.
func (c *Controller) Resize(width, height int) {
	c.width, c.height = width, height
	c.inside = c.contains(c.x, c.y)
	c.ndc = c.normalize(c.x, c.y)
}

func (c *Controller) contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(c.width) && y < float64(c.height)
}

func (c *Controller) normalize(x, y float64) mgl32.Vec2 {
	if c.width <= 0 || c.height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(x/float64(c.width))*2 - 1,
		1 - float32(y/float64(c.height))*2,
	}
}

// PointerMove records the pointer and schedules a hover recompute for the
// next Tick.
func (c *Controller) PointerMove(x, y float64) {
	c.x, c.y = x, y
	c.inside = c.contains(x, y)
	c.ndc = c.normalize(x, y)
	c.pending = true
}

// PointerLeave hides the tooltip and cancels any scheduled recompute.
func (c *Controller) PointerLeave() {
	c.inside = false
	c.pending = false
	c.clearHover()
}

// Pending reports whether a hover recompute is scheduled.
func (c *Controller) Pending() bool {
	return c.pending
}

// Hovered returns the region under the tooltip.
func (c *Controller) Hovered() (region.ID, bool) {
	return c.hovered, c.hovering
}

// HoverTests returns how many hover hit-tests Tick has run.
func (c *Controller) HoverTests() int {
	return c.hoverTests
}

// Tick runs the deferred hover hit-test, at most once per call. A pointer
// outside the surface hides the tooltip without hit-testing.
func (c *Controller) Tick() {
	if !c.pending {
		return
	}
	c.pending = false
	if !c.inside {
		c.clearHover()
		return
	}
	if !c.tooltips {
		return
	}

	c.hoverTests++
	id, ok := c.pick(c.ndc)
	if !ok {
		c.clearHover()
		return
	}
	if c.hovering && c.hovered == id && c.tooltipShown {
		c.ui.MoveTooltip(c.x+c.offset, c.y+c.offset)
		return
	}
	c.showTooltip(id)
}

// Click hit-tests immediately. On a hit it shows the tooltip and info
// panel and reports that the click was consumed.
func (c *Controller) Click(x, y float64) bool {
	c.x, c.y = x, y
	c.inside = c.contains(x, y)
	c.ndc = c.normalize(x, y)

	id, ok := c.pick(c.ndc)
	if !ok {
		c.clearHover()
		c.hidePanel()
		return false
	}
	if c.tooltips {
		c.showTooltip(id)
	}
	if c.descriptions {
		base := id.Base()
		entry, _ := c.lookupEntry(base)
		c.ui.ShowInfoPanel(reference.PanelFor(base, entry))
		c.panelShown = true
	}
	c.log.Debug("region clicked", zap.String("region", id.String()))
	return true
}

// PageClick dismisses the tooltip and info panel.
func (c *Controller) PageClick() {
	c.clearHover()
	c.hidePanel()
}

// DispatchClick delivers a click to the surface first and to the page
// unless the surface consumed it.
func (c *Controller) DispatchClick(x, y float64) {
	if c.Click(x, y) {
		return
	}
	c.PageClick()
}

// InvalidateHover forgets id as the hovered region and schedules a
// recompute.
func (c *Controller) InvalidateHover(id region.ID) {
	if c.hovering && c.hovered == id {
		c.hovering = false
		c.hovered = ""
	}
	c.pending = true
}

// SetTooltipsEnabled toggles tooltips. Disabling hides the current one.
func (c *Controller) SetTooltipsEnabled(enabled bool) {
	c.tooltips = enabled
	if !enabled {
		c.clearHover()
	}
}

// SetDescriptionBoxesEnabled toggles info panels. Disabling hides the
// current one.
func (c *Controller) SetDescriptionBoxesEnabled(enabled bool) {
	c.descriptions = enabled
	if !enabled {
		c.hidePanel()
	}
}

// TooltipsEnabled reports the tooltip setting.
func (c *Controller) TooltipsEnabled() bool {
	return c.tooltips
}

// DescriptionBoxesEnabled reports the info panel setting.
func (c *Controller) DescriptionBoxesEnabled() bool {
	return c.descriptions
}

func (c *Controller) lookupEntry(base string) (*reference.Entry, bool) {
	if c.lookup == nil {
		return nil, false
	}
	return c.lookup(base)
}

func (c *Controller) showTooltip(id region.ID) {
	base := id.Base()
	entry, _ := c.lookupEntry(base)
	c.ui.ShowTooltip(reference.TooltipFor(base, entry), c.x+c.offset, c.y+c.offset)
	c.tooltipShown = true
	c.hovered = id
	c.hovering = true
}

func (c *Controller) clearHover() {
	c.hovering = false
	c.hovered = ""
	if c.tooltipShown {
		c.ui.HideTooltip()
		c.tooltipShown = false
	}
}

func (c *Controller) hidePanel() {
	if c.panelShown {
		c.ui.HideInfoPanel()
		c.panelShown = false
	}
}
