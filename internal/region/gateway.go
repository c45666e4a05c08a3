package region

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/neuroview/internal/scene"
)

// DecodeFunc resolves a region id to its meshes. It runs on its own
// goroutine and must not touch viewer state.
type DecodeFunc func(ctx context.Context, id ID) ([]*scene.Mesh, error)

// Future is the pending or finished result of a load.
type Future struct {
	id     ID
	done   chan struct{}
	meshes []*scene.Mesh
	err    error
}

func newFuture(id ID) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

func (f *Future) resolve(meshes []*scene.Mesh, err error) {
	f.meshes = meshes
	f.err = err
	close(f.done)
}

// ID returns the region the future belongs to.
func (f *Future) ID() ID { return f.id }

// Done is closed once the load has been applied to the registry.
func (f *Future) Done() <-chan struct{} { return f.done }

// Resolved reports whether Done is closed.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Meshes returns the loaded meshes. Only valid after Done.
func (f *Future) Meshes() []*scene.Mesh { return f.meshes }

// Err returns the decode error. Only valid after Done.
func (f *Future) Err() error { return f.err }

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	Decode DecodeFunc

	// OnLoaded runs on the draining goroutine after a record becomes Loaded.
	OnLoaded func(rec *Record)
	// OnFailed runs on the draining goroutine after a record becomes Failed.
	OnFailed func(rec *Record)

	Logger *zap.Logger
}

type completion struct {
	id     ID
	meshes []*scene.Mesh
	err    error
}

// Gateway guarantees at most one in-flight decode per region. Decodes run
// concurrently; their results are queued and applied to the registry by
// Drain, which the render loop calls once per frame.
type Gateway struct {
	reg *Registry
	cfg GatewayConfig
	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	pending map[ID]*Future
	wg      sync.WaitGroup

	mu    sync.Mutex
	queue []completion
}

// NewGateway creates a gateway that records loads in reg.
func NewGateway(reg *Registry, cfg GatewayConfig) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		reg:     reg,
		cfg:     cfg,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[ID]*Future),
	}
}

// EnsureLoaded returns a future for id's meshes.
//
// A loaded region resolves immediately without decoding again or running
// OnLoaded; the caller re-shows it itself. A region that is already
// loading shares the in-flight future. Unloaded and failed regions start
// a new decode.
func (g *Gateway) EnsureLoaded(id ID) *Future {
	rec := g.reg.ensure(id)
	switch rec.State {
	case Loaded:
		f := newFuture(id)
		f.resolve(rec.Meshes, nil)
		return f
	case Loading:
		return g.pending[id]
	}

	if rec.State == Failed {
		g.log.Info("retrying failed region", zap.String("region", string(id)), zap.Error(rec.Err))
	}
	rec.State = Loading
	rec.Err = nil

	f := newFuture(id)
	g.pending[id] = f

	g.log.Debug("decode started", zap.String("region", string(id)))
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		meshes, err := g.cfg.Decode(g.ctx, id)

		g.mu.Lock()
		g.queue = append(g.queue, completion{id: id, meshes: meshes, err: err})
		g.mu.Unlock()
	}()

	return f
}

// Drain applies every finished decode to the registry and returns how many
// were applied. It must be called from the goroutine that owns the viewer.
func (g *Gateway) Drain() int {
	g.mu.Lock()
	queue := g.queue
	g.queue = nil
	g.mu.Unlock()

	for _, c := range queue {
		rec := g.reg.ensure(c.id)
		f := g.pending[c.id]
		delete(g.pending, c.id)

		if c.err != nil {
			rec.State = Failed
			rec.Err = c.err
			g.log.Warn("region load failed", zap.String("region", string(c.id)), zap.Error(c.err))
			if g.cfg.OnFailed != nil {
				g.cfg.OnFailed(rec)
			}
			if f != nil {
				f.resolve(nil, c.err)
			}
			continue
		}

		for _, m := range c.meshes {
			m.Owner = string(c.id)
		}
		rec.Meshes = c.meshes
		rec.State = Loaded
		g.log.Debug("region loaded",
			zap.String("region", string(c.id)),
			zap.Int("meshes", len(c.meshes)),
		)
		if g.cfg.OnLoaded != nil {
			g.cfg.OnLoaded(rec)
		}
		if f != nil {
			f.resolve(c.meshes, nil)
		}
	}
	return len(queue)
}

// InFlight returns the number of loads not yet drained.
func (g *Gateway) InFlight() int {
	return len(g.pending)
}

// Wait blocks until every started decode has queued its result or ctx is
// done. Results still need a Drain.
func (g *Gateway) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the context handed to running decodes.
func (g *Gateway) Close() {
	g.cancel()
}
