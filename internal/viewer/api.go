package viewer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/region"
	"github.com/Faultbox/neuroview/internal/scene"
)

// ErrEmptyID is returned for an empty base region id.
var ErrEmptyID = errors.New("empty region id")

// parse validates the shared arguments of the region operations.
func parse(base, hemi string) ([]region.ID, error) {
	if base == "" {
		return nil, ErrEmptyID
	}
	sel, err := region.ParseSelection(hemi)
	if err != nil {
		return nil, err
	}
	return sel.IDs(base), nil
}

// LoadRegion shows the selected hemispheres of region base in the named
// color, loading them first when needed. Unknown colors or hemispheres
// leave the viewer unchanged.
func (v *Viewer) LoadRegion(base, color, hemi string) error {
	c, err := ParseColor(color)
	if err != nil {
		return err
	}
	ids, err := parse(base, hemi)
	if err != nil {
		return err
	}
	for _, id := range ids {
		v.show(id, c)
	}
	return nil
}

func (v *Viewer) show(id region.ID, c scene.Color) {
	v.colors[id] = c
	v.desired[id] = true

	switch v.reg.State(id) {
	case region.Loaded:
		v.paint(id, c)
		if _, err := v.vis.Show(id); err != nil {
			v.log.Error("show region", zap.String("region", id.String()), zap.Error(err))
		}
	default:
		v.gw.EnsureLoaded(id)
	}
}

// HideRegion hides the selected hemispheres of region base. Hiding a
// region that is still loading cancels its pending show.
func (v *Viewer) HideRegion(base, hemi string) error {
	ids, err := parse(base, hemi)
	if err != nil {
		return err
	}
	for _, id := range ids {
		v.hide(id)
	}
	return nil
}

func (v *Viewer) hide(id region.ID) {
	v.desired[id] = false
	v.vis.Hide(id)
}

// HideAll hides every visible region.
func (v *Viewer) HideAll() {
	for id, want := range v.desired {
		if want {
			v.desired[id] = false
		}
	}
	hidden := v.vis.HideAll()
	v.log.Debug("hid all regions", zap.Int("count", len(hidden)))
}

// UpdateColor recolors the selected hemispheres of region base. Regions
// that are not loaded yet take the color when they load.
func (v *Viewer) UpdateColor(color, base, hemi string) error {
	c, err := ParseColor(color)
	if err != nil {
		return err
	}
	ids, err := parse(base, hemi)
	if err != nil {
		return err
	}
	for _, id := range ids {
		v.colors[id] = c
		v.paint(id, c)
	}
	return nil
}

func (v *Viewer) paint(id region.ID, c scene.Color) {
	for _, m := range v.reg.Meshes(id) {
		m.Material.Color = c
	}
}

// UpdateHemisphere switches region base to the selected hemispheres: a
// single side is shown and the opposite side hidden, Both shows both.
func (v *Viewer) UpdateHemisphere(base, hemi, color string) error {
	c, err := ParseColor(color)
	if err != nil {
		return err
	}
	sel, err := region.ParseSelection(hemi)
	if err != nil {
		return err
	}
	if base == "" {
		return ErrEmptyID
	}

	for _, id := range sel.IDs(base) {
		v.show(id, c)
	}
	switch sel {
	case region.SelectLeft:
		v.hide(region.NewID(base, region.Right))
	case region.SelectRight:
		v.hide(region.NewID(base, region.Left))
	}
	return nil
}

// HideRoot toggles the translucent root overlay.
func (v *Viewer) HideRoot() {
	v.rootVisible = !v.rootVisible
	for _, m := range v.root {
		m.SetShown(v.rootVisible)
	}
}

// RootVisible reports whether the root overlay is drawn.
func (v *Viewer) RootVisible() bool {
	return v.rootVisible
}

// UpdateOutlines turns region outlines on or off. Outlines of regions
// still fading in appear when their fade completes.
func (v *Viewer) UpdateOutlines(enabled bool) {
	v.outlines = enabled
	for _, id := range v.reg.IDs() {
		shown := enabled && v.vis.Has(id)
		for _, m := range v.reg.Meshes(id) {
			if m.Outline == nil {
				continue
			}
			m.Outline.SetShown(shown && !v.anim.FadingIn(m))
		}
	}
}

// OutlinesEnabled reports the outline setting.
func (v *Viewer) OutlinesEnabled() bool {
	return v.outlines
}

// UpdateBackground toggles the background between white and black and
// reports whether it is now black.
func (v *Viewer) UpdateBackground() bool {
	if v.scene.Background() == scene.Black {
		v.scene.SetBackground(scene.White)
		return false
	}
	v.scene.SetBackground(scene.Black)
	return true
}

// DisableTooltips follows the tooltip checkbox: unchecked disables hover
// tooltips and hides the current one.
func (v *Viewer) DisableTooltips(checked bool) {
	v.ctl.SetTooltipsEnabled(checked)
}

// DisableDescriptionBoxes follows the description box checkbox: unchecked
// disables click panels and closes the open one.
func (v *Viewer) DisableDescriptionBoxes(checked bool) {
	v.ctl.SetDescriptionBoxesEnabled(checked)
}
