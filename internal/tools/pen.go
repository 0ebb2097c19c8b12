package tools

import (
	"math"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
)

const (
	PenMinWidth     = 1.0
	PenMaxWidth     = 32.0
	PenDefaultWidth = 4.0
	PenDefaultColor = "#000000"
)

// Pen paints normal strokes in a runtime-adjustable color and width.
type Pen struct {
	stroker
	color string
	width float64
}

// NewPen creates a disabled pen listening for tool:color and tool:penWidth.
func NewPen(deps Deps) *Pen {
	p := &Pen{color: PenDefaultColor, width: PenDefaultWidth}
	p.stroker = newStroker(deps, "pen", p.meta)
	if b := deps.Bus; b != nil {
		b.Subscribe(bus.ToolColor, func(payload any) {
			if c, ok := payload.(ColorChange); ok {
				p.SetColor(c.Color)
			}
		})
		b.Subscribe(bus.ToolPenWidth, func(payload any) {
			if w, ok := payload.(WidthChange); ok {
				p.SetWidth(w.Width)
			}
		})
	}
	return p
}

func (p *Pen) Name() string { return string(state.ToolPen) }

func (p *Pen) meta() state.Meta {
	return state.Meta{Tool: state.ToolPen, Color: p.color, Width: p.width, Composite: state.CompositeNormal}
}

// SetColor changes the color of the next stroke. Anything other than a hex
// color is ignored.
func (p *Pen) SetColor(color string) {
	if !state.ValidColor(color) {
		p.logger.Debug("ignoring invalid color", "color", color)
		return
	}
	p.color = color
}

// SetWidth clamps width to the pen range; NaN and infinities are ignored.
func (p *Pen) SetWidth(width float64) {
	if w, ok := clampWidth(width, PenMinWidth, PenMaxWidth); ok {
		p.width = w
	}
}

func (p *Pen) Color() string  { return p.color }
func (p *Pen) Width() float64 { return p.width }

func clampWidth(width, lo, hi float64) (float64, bool) {
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return 0, false
	}
	return math.Max(lo, math.Min(width, hi)), true
}
