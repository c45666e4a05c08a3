// Package fade animates mesh opacity when regions are shown or hidden.
package fade

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/neuroview/internal/scene"
)

// DefaultDuration is the length of a fade.
const DefaultDuration = 100 * time.Millisecond

// Direction of a fade.
type Direction int

const (
	In Direction = iota
	Out
)

// String returns "in" or "out".
func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// OutlineGate decides whether a mesh's outline may appear once its
// fade-in completes.
type OutlineGate func(m *scene.Mesh) bool

type transition struct {
	dir     Direction
	start   time.Time
	tween   *gween.Tween
	opacity float32
}

// Animator holds the active transitions, at most one per mesh. It is
// advanced by Tick from the render loop.
type Animator struct {
	duration time.Duration
	gate     OutlineGate
	active   map[*scene.Mesh]*transition
}

// New creates an animator. A nil gate always allows outlines.
func New(duration time.Duration, gate OutlineGate) *Animator {
	return &Animator{
		duration: duration,
		gate:     gate,
		active:   make(map[*scene.Mesh]*transition),
	}
}

// Duration returns the fade length.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// Start begins a fade of m at now, replacing any fade already running on
// it. The progress-0 state is applied immediately. Opacity does not carry
// over from a superseded fade.
func (a *Animator) Start(m *scene.Mesh, dir Direction, now time.Time) {
	tr := &transition{
		dir:   dir,
		start: now,
		tween: gween.New(0, 1, float32(a.duration.Seconds()), ease.Linear),
	}
	a.active[m] = tr
	if a.apply(m, tr, now) {
		delete(a.active, m)
	}
}

// Tick advances every transition to now and drops finished ones.
// It returns the number still running.
func (a *Animator) Tick(now time.Time) int {
	for m, tr := range a.active {
		if a.apply(m, tr, now) {
			delete(a.active, m)
		}
	}
	return len(a.active)
}

// Active returns the direction of the running fade on m.
func (a *Animator) Active(m *scene.Mesh) (Direction, bool) {
	tr, ok := a.active[m]
	if !ok {
		return 0, false
	}
	return tr.dir, true
}

// FadingIn reports whether m has an unfinished fade-in.
func (a *Animator) FadingIn(m *scene.Mesh) bool {
	dir, ok := a.Active(m)
	return ok && dir == In
}

// Opacity returns the opacity last applied by a running fade on m.
func (a *Animator) Opacity(m *scene.Mesh) (float32, bool) {
	tr, ok := a.active[m]
	if !ok {
		return 0, false
	}
	return tr.opacity, true
}

// Len returns the number of running fades.
func (a *Animator) Len() int {
	return len(a.active)
}

func (a *Animator) progress(tr *transition, now time.Time) float32 {
	if a.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(tr.start)
	if elapsed < 0 {
		elapsed = 0
	}
	p, finished := tr.tween.Set(float32(elapsed.Seconds()))
	if finished || p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// apply writes the state for the current progress and reports completion.
func (a *Animator) apply(m *scene.Mesh, tr *transition, now time.Time) bool {
	p := a.progress(tr, now)

	switch tr.dir {
	case In:
		m.SetShown(true)
		m.Material.Transparent = true
		m.Material.Opacity = p
		tr.opacity = p
		if p < 1 {
			return false
		}
		m.Material.Opacity = 1
		m.Material.Transparent = false
		if m.Outline != nil {
			m.Outline.SetShown(a.gate == nil || a.gate(m))
		}
		return true

	default:
		if m.Outline != nil {
			m.Outline.SetShown(false)
		}
		m.Material.Transparent = true
		m.Material.Opacity = 1 - p
		tr.opacity = 1 - p
		if p < 1 {
			return false
		}
		m.Material.Opacity = 0
		m.SetShown(false)
		return true
	}
}
