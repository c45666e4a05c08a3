// Command neuroview opens the 3D brain region viewer.
//
// Keys: O outlines, B background, R root overlay, T tooltips,
// D description boxes, H hide all, Esc quit.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/assets"
	"github.com/Faultbox/neuroview/internal/config"
	"github.com/Faultbox/neuroview/internal/engine/camera"
	"github.com/Faultbox/neuroview/internal/engine/input"
	"github.com/Faultbox/neuroview/internal/engine/overlay"
	"github.com/Faultbox/neuroview/internal/engine/renderer"
	"github.com/Faultbox/neuroview/internal/engine/window"
	"github.com/Faultbox/neuroview/internal/logger"
	"github.com/Faultbox/neuroview/internal/meshio"
	"github.com/Faultbox/neuroview/internal/metrics"
	"github.com/Faultbox/neuroview/internal/reference"
	"github.com/Faultbox/neuroview/internal/scene"
	"github.com/Faultbox/neuroview/internal/viewer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	if cfg.Path != "" {
		logger.Log.Info("settings loaded", zap.String("path", cfg.Path))
	}

	if err := run(cfg); err != nil {
		logger.Log.Error("neuroview exited with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) (err error) {
	log := logger.Log
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := openSource(ctx, cfg.Assets)
	if err != nil {
		return fmt.Errorf("opening assets: %w", err)
	}
	cache := assets.NewCache(int64(cfg.Assets.CacheMB) << 20)
	mgr := assets.NewManager(src, cache)
	defer func() {
		hits, misses := cache.Stats()
		log.Info("asset cache",
			zap.Int("hits", hits),
			zap.Int("misses", misses),
			zap.Int64("bytes", cache.Size()))
		mgr.Close()
	}()
	log.Info("assets ready", zap.Stringer("source", src))

	stats := metrics.New()
	metricsDone := make(chan error, 1)
	if cfg.Metrics.Listen != "" {
		go func() { metricsDone <- stats.Serve(ctx, cfg.Metrics.Listen, logger.Named("metrics")) }()
	} else {
		metricsDone <- nil
	}

	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Logger:     logger.Named("window"),
	})
	if err != nil {
		return err
	}
	defer win.Close()

	dw, dh := win.DrawableSize()
	rend, err := renderer.New(renderer.Config{Width: dw, Height: dh, Logger: logger.Named("renderer")})
	if err != nil {
		return err
	}
	defer rend.Close()

	ww, wh := win.GetSize()
	ui := overlay.New(ww, wh, logger.Named("overlay"))
	if err := ui.Init(); err != nil {
		return err
	}
	defer ui.Close()

	cam := camera.NewOrbitCamera(float32(ww) / float32(wh))
	decoder := meshio.NewDecoder(mgr, logger.Named("meshio"))
	refs := reference.NewStore(logger.Named("reference"))

	vcfg := viewer.DefaultConfig()
	vcfg.Decode = decoder.DecodeRegion
	vcfg.LoadRoot = func(ctx context.Context) ([]*scene.Mesh, error) {
		return decoder.DecodeAsset(ctx, meshio.ModelPath(cfg.Assets.RootModel), viewer.RootName)
	}
	vcfg.LoadReference = func(ctx context.Context) error {
		return refs.Load(ctx, src, cfg.Assets.Reference)
	}
	vcfg.Reference = refs
	vcfg.Presenter = ui
	vcfg.Projector = cam
	vcfg.Metrics = stats
	vcfg.Logger = logger.Named("viewer")
	vcfg.Width, vcfg.Height = ww, wh
	vcfg.FadeDuration = cfg.Viewer.FadeDuration
	vcfg.OutlineThickness = cfg.Viewer.OutlineThickness
	vcfg.TooltipOffset = cfg.Viewer.TooltipOffset
	vcfg.Outlines = cfg.Viewer.Outlines
	vcfg.Tooltips = cfg.Viewer.Tooltips
	vcfg.DescriptionBoxes = cfg.Viewer.DescriptionBoxes

	v, err := viewer.New(vcfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer closeCancel()
		cancel()
		err = multierr.Combine(err, v.Close(closeCtx), <-metricsDone)
	}()

	if err := v.Start(ctx); err != nil {
		log.Warn("startup assets incomplete", zap.Error(err))
	}
	if cfg.Viewer.DarkBackground {
		v.UpdateBackground()
	}
	if dir, ok := src.(*assets.DirSource); ok && cfg.Viewer.WatchReference {
		path := dir.Path(cfg.Assets.Reference)
		if err := refs.Watch(ctx, path, func() { log.Info("reference reloaded", zap.Int("entries", refs.Len())) }); err != nil {
			log.Warn("reference watch disabled", zap.Error(err))
		}
	}
	for _, perr := range preload(v, cfg.Viewer.Regions) {
		log.Warn("skipping startup region", zap.Error(perr))
	}

	loop(win, rend, ui, cam, v, cfg.Window.FPSLimit)
	return nil
}

func loop(win *window.Window, rend *renderer.Renderer, ui *overlay.Overlay, cam *camera.OrbitCamera, v *viewer.Viewer, fpsLimit int) {
	log := logger.Named("loop")
	in := input.New()

	var frameBudget time.Duration
	if fpsLimit > 0 {
		frameBudget = time.Second / time.Duration(fpsLimit)
	}

	for {
		frameStart := time.Now()
		quit := in.Update()

		for _, ev := range in.Events() {
			switch ev.Type {
			case input.EventWindowResize:
				ww, wh := win.GetSize()
				dw, dh := win.DrawableSize()
				rend.Resize(dw, dh)
				ui.Resize(ww, wh)
				v.Resize(ww, wh)
			case input.EventPointerMove:
				v.PointerMove(float64(ev.X), float64(ev.Y))
			case input.EventPointerLeave:
				v.PointerLeave()
			case input.EventClick:
				v.Click(float64(ev.X), float64(ev.Y))
			case input.EventDrag:
				cam.HandleDrag(float32(ev.DX), float32(ev.DY))
			case input.EventPan:
				cam.HandlePan(float32(ev.DX), float32(ev.DY))
			case input.EventWheel:
				cam.HandleZoom(ev.Wheel)
			case input.EventKeyDown:
				if ev.Key == sdl.K_ESCAPE {
					quit = true
				}
				handleKey(v, ev.Key, log)
			}
		}
		if quit {
			log.Info("quit requested", zap.Uint64("frames", rend.Frames()))
			return
		}

		v.Tick(time.Now())
		rend.Render(v.Scene(), cam)
		ui.Draw()
		win.SwapBuffers()

		if frameBudget > 0 {
			if spent := time.Since(frameStart); spent < frameBudget {
				sdl.Delay(uint32((frameBudget - spent) / time.Millisecond))
			}
		}
	}
}

// handleKey maps keys to the control panel switches.
func handleKey(v *viewer.Viewer, key sdl.Keycode, log *zap.Logger) {
	switch key {
	case sdl.K_o:
		v.UpdateOutlines(!v.OutlinesEnabled())
		log.Info("outlines", zap.Bool("enabled", v.OutlinesEnabled()))
	case sdl.K_b:
		log.Info("background", zap.Bool("dark", v.UpdateBackground()))
	case sdl.K_r:
		v.HideRoot()
		log.Info("root overlay", zap.Bool("visible", v.RootVisible()))
	case sdl.K_t:
		v.DisableTooltips(!v.Controller().TooltipsEnabled())
	case sdl.K_d:
		v.DisableDescriptionBoxes(!v.Controller().DescriptionBoxesEnabled())
	case sdl.K_h:
		v.HideAll()
	}
}
