// Package viewer ties the region registry, visibility set, hit-test index,
// fade animator and interaction controller into one viewer instance.
//
// A Viewer is owned by a single goroutine (the render loop). Region
// decodes run concurrently and are applied during Tick.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/neuroview/internal/fade"
	"github.com/Faultbox/neuroview/internal/interaction"
	"github.com/Faultbox/neuroview/internal/metrics"
	"github.com/Faultbox/neuroview/internal/outline"
	"github.com/Faultbox/neuroview/internal/raycast"
	"github.com/Faultbox/neuroview/internal/reference"
	"github.com/Faultbox/neuroview/internal/region"
	"github.com/Faultbox/neuroview/internal/scene"
	"github.com/Faultbox/neuroview/internal/visibility"
)

// Projector supplies the camera transform used to unproject the pointer.
type Projector interface {
	InverseViewProjection() mgl32.Mat4
}

// Config wires a Viewer.
type Config struct {
	// Decode resolves a region to meshes. Required.
	Decode region.DecodeFunc
	// LoadRoot resolves the translucent root overlay.
	LoadRoot func(ctx context.Context) ([]*scene.Mesh, error)
	// LoadReference populates Reference.
	LoadReference func(ctx context.Context) error

	Reference *reference.Store
	Presenter interaction.Presenter
	Projector Projector
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time

	Width  int
	Height int

	FadeDuration     time.Duration
	OutlineThickness float32
	TooltipOffset    float64

	Outlines         bool
	Tooltips         bool
	DescriptionBoxes bool
}

// DefaultConfig returns the settings the viewer starts with.
func DefaultConfig() Config {
	return Config{
		Width:            1280,
		Height:           720,
		FadeDuration:     fade.DefaultDuration,
		OutlineThickness: outline.DefaultThickness,
		TooltipOffset:    interaction.DefaultTooltipOffset,
		Outlines:         true,
		Tooltips:         true,
		DescriptionBoxes: true,
	}
}

// Viewer is one brain viewer instance.
type Viewer struct {
	cfg Config
	log *zap.Logger
	now func() time.Time

	scene *scene.Scene
	reg   *region.Registry
	gw    *region.Gateway
	vis   *visibility.Set
	index *raycast.Index
	anim  *fade.Animator
	ctl   *interaction.Controller
	ref   *reference.Store
	proj  Projector
	stats *metrics.Metrics

	// desired holds the last show/hide request per region, so a hide
	// issued during loading wins over the show that started the load.
	desired map[region.ID]bool
	colors  map[region.ID]scene.Color

	root        []*scene.Mesh
	rootVisible bool
	outlines    bool

	seenRebuilds int
}

// New creates a viewer.
func New(cfg Config) (*Viewer, error) {
	if cfg.Decode == nil {
		return nil, errors.New("viewer: decode function required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ref := cfg.Reference
	if ref == nil {
		ref = reference.NewStore(log)
	}
	proj := cfg.Projector
	if proj == nil {
		proj = identityProjector{}
	}
	presenter := cfg.Presenter
	if presenter == nil {
		presenter = nopPresenter{}
	}

	v := &Viewer{
		cfg:         cfg,
		log:         log,
		now:         now,
		scene:       scene.New(),
		reg:         region.NewRegistry(),
		ref:         ref,
		proj:        proj,
		stats:       cfg.Metrics,
		desired:     make(map[region.ID]bool),
		colors:      make(map[region.ID]scene.Color),
		rootVisible: true,
		outlines:    cfg.Outlines,
	}

	v.gw = region.NewGateway(v.reg, region.GatewayConfig{
		Decode:   v.decode,
		OnLoaded: v.onLoaded,
		OnFailed: v.onFailed,
		Logger:   log.Named("gateway"),
	})
	v.vis = visibility.New(v.reg)
	v.index = raycast.NewIndex(v.reg, v.vis, nil)
	v.anim = fade.New(cfg.FadeDuration, v.outlineAllowed)
	v.ctl = interaction.New(interaction.Config{
		Pick:      v.pick,
		Lookup:    v.ref.Lookup,
		Presenter: presenter,
		Offset:    cfg.TooltipOffset,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Logger:    log.Named("interaction"),
	})
	v.ctl.SetTooltipsEnabled(cfg.Tooltips)
	v.ctl.SetDescriptionBoxesEnabled(cfg.DescriptionBoxes)

	v.vis.Subscribe(v.onVisibilityChanged)
	return v, nil
}

// Start loads the root overlay and the reference table concurrently and
// blocks until both finish. Either may fail without affecting the other;
// the first error is returned and the viewer stays usable.
func (v *Viewer) Start(ctx context.Context) error {
	var (
		g    errgroup.Group
		root []*scene.Mesh
	)
	if v.cfg.LoadRoot != nil {
		g.Go(func() error {
			meshes, err := v.cfg.LoadRoot(ctx)
			if err != nil {
				v.log.Warn("root overlay not loaded", zap.Error(err))
				return err
			}
			root = meshes
			return nil
		})
	}
	if v.cfg.LoadReference != nil {
		g.Go(func() error {
			if err := v.cfg.LoadReference(ctx); err != nil {
				v.log.Warn("reference not loaded, tooltips show raw ids", zap.Error(err))
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	if root != nil {
		v.SetRoot(root)
	}
	return err
}

// SetRoot installs the root overlay meshes with the translucent material.
func (v *Viewer) SetRoot(meshes []*scene.Mesh) {
	for _, m := range v.root {
		v.scene.Remove(m)
	}
	for _, m := range meshes {
		m.Kind = scene.KindRoot
		m.Owner = ""
		m.Material = rootMaterial()
		m.SetShown(v.rootVisible)
		v.scene.Add(m)
	}
	v.root = meshes
}

// Tick applies finished loads, advances fades and runs the deferred
// hover hit-test. The render loop calls it once per frame.
func (v *Viewer) Tick(now time.Time) {
	v.gw.Drain()
	fades := v.anim.Tick(now)
	v.ctl.Tick()
	v.stats.SetState(v.vis.Len(), fades)
}

// Close cancels running decodes and waits for them until ctx is done.
func (v *Viewer) Close(ctx context.Context) error {
	v.gw.Close()
	v.ctl.PageClick()
	if err := v.gw.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for %d loads: %w", v.gw.InFlight(), err)
	}
	v.gw.Drain()
	return nil
}

// Wait blocks until every started decode has finished and applies the
// results. It is meant for headless use and tests.
func (v *Viewer) Wait(ctx context.Context) error {
	if err := v.gw.Wait(ctx); err != nil {
		return err
	}
	v.gw.Drain()
	return nil
}

// Scene returns the drawable scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Registry returns the region registry.
func (v *Viewer) Registry() *region.Registry { return v.reg }

// Visibility returns the visibility set.
func (v *Viewer) Visibility() *visibility.Set { return v.vis }

// Index returns the hit-test index.
func (v *Viewer) Index() *raycast.Index { return v.index }

// Animator returns the fade animator.
func (v *Viewer) Animator() *fade.Animator { return v.anim }

// Controller returns the interaction controller.
func (v *Viewer) Controller() *interaction.Controller { return v.ctl }

// Reference returns the metadata store.
func (v *Viewer) Reference() *reference.Store { return v.ref }

// PointerMove forwards pointer motion in window pixels.
func (v *Viewer) PointerMove(x, y float64) { v.ctl.PointerMove(x, y) }

// PointerLeave forwards the pointer leaving the window.
func (v *Viewer) PointerLeave() { v.ctl.PointerLeave() }

// Click forwards a primary click in window pixels.
func (v *Viewer) Click(x, y float64) { v.ctl.DispatchClick(x, y) }

// Resize updates the surface size.
func (v *Viewer) Resize(width, height int) {
	v.ctl.Resize(width, height)
	if a, ok := v.proj.(interface{ SetAspect(w, h int) }); ok {
		a.SetAspect(width, height)
	}
}

// decode runs on a gateway goroutine.
func (v *Viewer) decode(ctx context.Context, id region.ID) ([]*scene.Mesh, error) {
	start := time.Now()
	meshes, err := v.cfg.Decode(ctx, id)
	v.stats.ObserveDecode(time.Since(start))
	return meshes, err
}

func (v *Viewer) onLoaded(rec *region.Record) {
	v.stats.LoadFinished(nil)
	color := v.colorOf(rec.ID)
	for _, m := range rec.Meshes {
		m.Kind = scene.KindRegion
		m.Material.Color = color
		m.Material.Opacity = 1
		m.SetShown(false)
		if _, err := outline.Build(m, v.cfg.OutlineThickness); err != nil {
			v.log.Warn("outline skipped", zap.String("mesh", m.Name), zap.Error(err))
		}
		v.scene.Add(m)
		if m.Outline != nil {
			v.scene.Add(m.Outline)
		}
	}
	if !v.desired[rec.ID] {
		v.log.Debug("region loaded hidden", zap.String("region", rec.ID.String()))
		return
	}
	if _, err := v.vis.Show(rec.ID); err != nil {
		v.log.Error("show after load", zap.String("region", rec.ID.String()), zap.Error(err))
	}
}

func (v *Viewer) onFailed(rec *region.Record) {
	v.stats.LoadFinished(rec.Err)
}

// onVisibilityChanged pairs every membership change with fades of the
// region's meshes. The index invalidates itself through its own
// subscription.
func (v *Viewer) onVisibilityChanged(id region.ID, shown bool) {
	now := v.now()
	dir := fade.Out
	if shown {
		dir = fade.In
	}
	for _, m := range v.reg.Meshes(id) {
		v.anim.Start(m, dir, now)
	}
	if !shown {
		v.ctl.InvalidateHover(id)
	}
}

func (v *Viewer) outlineAllowed(m *scene.Mesh) bool {
	return v.outlines && v.vis.Has(region.ID(m.Owner))
}

func (v *Viewer) colorOf(id region.ID) scene.Color {
	if c, ok := v.colors[id]; ok {
		return c
	}
	return Palette[DefaultColor]
}

func (v *Viewer) pick(ndc mgl32.Vec2) (region.ID, bool) {
	ray := raycast.PointerRay(ndc, v.proj.InverseViewProjection())
	hit, ok := v.index.Query(ray)
	v.stats.HitTest(ok)
	v.stats.SetRebuilds(v.index.Rebuilds(), v.seenRebuilds)
	v.seenRebuilds = v.index.Rebuilds()
	return hit.Region, ok
}

type identityProjector struct{}

func (identityProjector) InverseViewProjection() mgl32.Mat4 { return mgl32.Ident4() }

type nopPresenter struct{}

func (nopPresenter) ShowTooltip(reference.Tooltip, float64, float64) {}
func (nopPresenter) MoveTooltip(float64, float64)                    {}
func (nopPresenter) HideTooltip()                                    {}
func (nopPresenter) ShowInfoPanel(reference.Panel)                   {}
func (nopPresenter) HideInfoPanel()                                  {}
