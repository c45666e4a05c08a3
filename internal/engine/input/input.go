// Package input translates SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventPointerMove
	EventPointerLeave
	EventClick
	EventDrag
	EventPan
	EventWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Width  int
	Height int
	X, Y   int
	// DX, DY carry drag and pan deltas in pixels.
	DX, DY int
	Wheel  float32
}

// ClickSlop is how far the pointer may travel between press and release
// for the pair to count as a click rather than a drag.
const ClickSlop = 4

// Input handles all input processing.
type Input struct {
	events  []Event
	gesture Gesture
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them. It returns true when the
// window was asked to close.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			case sdl.WINDOWEVENT_LEAVE:
				i.gesture.Cancel()
				i.events = append(i.events, Event{Type: EventPointerLeave})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Sym})
			}

		case *sdl.MouseMotionEvent:
			x, y := int(e.X), int(e.Y)
			if ev, ok := i.gesture.Move(x, y); ok {
				i.events = append(i.events, ev)
			}
			i.events = append(i.events, Event{Type: EventPointerMove, X: x, Y: y})

		case *sdl.MouseButtonEvent:
			x, y := int(e.X), int(e.Y)
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.gesture.Press(e.Button, x, y)
			} else if ev, ok := i.gesture.Release(e.Button, x, y); ok {
				i.events = append(i.events, ev)
			}

		case *sdl.MouseWheelEvent:
			dy := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				dy = -dy
			}
			i.events = append(i.events, Event{Type: EventWheel, Wheel: dy})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key sdl.Keycode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// Gesture tells clicks from drags. The left button rotates, the right
// button pans.
type Gesture struct {
	button   uint8
	down     bool
	dragging bool
	startX   int
	startY   int
	lastX    int
	lastY    int
}

// Press starts tracking a button.
func (g *Gesture) Press(button uint8, x, y int) {
	if g.down {
		return
	}
	*g = Gesture{button: button, down: true, startX: x, startY: y, lastX: x, lastY: y}
}

// Move returns a drag or pan event once the pointer left the click slop.
func (g *Gesture) Move(x, y int) (Event, bool) {
	if !g.down {
		return Event{}, false
	}
	if !g.dragging {
		dx, dy := x-g.startX, y-g.startY
		if dx*dx+dy*dy <= ClickSlop*ClickSlop {
			return Event{}, false
		}
		g.dragging = true
	}
	ev := Event{Type: EventDrag, X: x, Y: y, DX: x - g.lastX, DY: y - g.lastY}
	if g.button == sdl.BUTTON_RIGHT {
		ev.Type = EventPan
	}
	g.lastX, g.lastY = x, y
	return ev, true
}

// Release ends tracking and returns a click when the left button went up
// without dragging.
func (g *Gesture) Release(button uint8, x, y int) (Event, bool) {
	if !g.down || button != g.button {
		return Event{}, false
	}
	click := !g.dragging && button == sdl.BUTTON_LEFT
	*g = Gesture{}
	if !click {
		return Event{}, false
	}
	return Event{Type: EventClick, X: x, Y: y}, true
}

// Cancel drops any press in progress.
func (g *Gesture) Cancel() {
	*g = Gesture{}
}

// Dragging reports whether the current press turned into a drag.
func (g *Gesture) Dragging() bool {
	return g.dragging
}
