package tools

import (
	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
)

const (
	EraserMinWidth     = 4.0
	EraserMaxWidth     = 64.0
	EraserDefaultWidth = 24.0
)

// Eraser draws strokes that clear pixels.
type Eraser struct {
	stroker
	width float64
}

// NewEraser creates a disabled eraser listening for tool:eraserWidth.
func NewEraser(deps Deps) *Eraser {
	e := &Eraser{width: EraserDefaultWidth}
	e.stroker = newStroker(deps, "eraser", e.meta)
	if b := deps.Bus; b != nil {
		b.Subscribe(bus.ToolEraserWidth, func(payload any) {
			if w, ok := payload.(WidthChange); ok {
				e.SetWidth(w.Width)
			}
		})
	}
	return e
}

func (e *Eraser) Name() string { return string(state.ToolEraser) }

func (e *Eraser) meta() state.Meta {
	return state.Meta{Tool: state.ToolEraser, Width: e.width, Composite: state.CompositeErase}
}

// SetWidth clamps width to the eraser range; NaN and infinities are ignored.
func (e *Eraser) SetWidth(width float64) {
	if w, ok := clampWidth(width, EraserMinWidth, EraserMaxWidth); ok {
		e.width = w
	}
}

func (e *Eraser) Width() float64 { return e.width }
