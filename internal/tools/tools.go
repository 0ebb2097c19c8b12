// Package tools turns pointer input into stroke store calls. Pen and eraser
// differ only in their style metadata; the select tool queries the hit index.
package tools

import (
	"log/slog"
	"time"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/state"
)

// PointerEvent is one pointer sample in client (window) coordinates.
type PointerEvent struct {
	PointerID int
	X, Y      float64
	Time      time.Time
}

// Tool is an input mode. Only the enabled tool reacts to pointer-down.
type Tool interface {
	Name() string
	Enable()
	Disable()
	Enabled() bool
	PointerDown(e PointerEvent)
	PointerMove(e PointerEvent)
	PointerUp(e PointerEvent)
	PointerCancel(e PointerEvent)
}

// Canvas is the stroke store a tool draws through. *surface.Surface
// satisfies it.
type Canvas interface {
	Begin(meta state.Meta) string
	Update(id string, p state.Point)
	End(id string) (state.Stroke, bool)
}

// Committer receives finished strokes. *state.History satisfies it.
type Committer interface {
	PushStroke(s state.Stroke) bool
}

// Capturer routes a pointer's later events to the overlay even after it
// leaves the surface. Errors mean the platform cannot capture and are
// ignored.
type Capturer interface {
	Capture(pointerID int) error
	Release(pointerID int) error
}

// Origin returns the surface's top-left corner in client coordinates.
type Origin func() (x, y float64)

type Deps struct {
	Bus      *bus.Bus
	Canvas   Canvas
	History  Committer
	Capturer Capturer
	Origin   Origin
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Origin == nil {
		d.Origin = func() (float64, float64) { return 0, 0 }
	}
	d.Logger = logging.Component(d.Logger, "tools")
	return d
}

// Bus payloads consumed or produced by tools.
type (
	ColorChange struct{ Color string }
	WidthChange struct{ Width float64 }
	ToolSelect  struct{ Tool string }
	SelectHit   struct{ Stroke state.Stroke }
)

func (d Deps) local(e PointerEvent) state.Point {
	ox, oy := d.Origin()
	t := e.Time
	if t.IsZero() {
		t = time.Now()
	}
	return state.Point{X: e.X - ox, Y: e.Y - oy, T: t}
}
