package tools

import (
	"log/slog"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
)

// Hitter finds the committed stroke under a point. *spatial.Index satisfies
// it.
type Hitter interface {
	StrokeAt(x, y float64) (state.Stroke, bool)
}

// Select publishes bus.SelectHit with the stroke under a pointer-down. It
// never draws.
type Select struct {
	deps    Deps
	hits    Hitter
	logger  *slog.Logger
	enabled bool
}

func NewSelect(deps Deps, hits Hitter) *Select {
	deps = deps.withDefaults()
	return &Select{deps: deps, hits: hits, logger: deps.Logger.With("tool", "select")}
}

func (s *Select) Name() string  { return "select" }
func (s *Select) Enable()       { s.enabled = true }
func (s *Select) Disable()      { s.enabled = false }
func (s *Select) Enabled() bool { return s.enabled }

func (s *Select) PointerDown(e PointerEvent) {
	if !s.enabled || s.hits == nil {
		return
	}
	p := s.deps.local(e)
	st, ok := s.hits.StrokeAt(p.X, p.Y)
	if !ok {
		return
	}
	s.logger.Debug("stroke hit", "id", st.ID, "x", p.X, "y", p.Y)
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(bus.SelectHit, SelectHit{Stroke: st})
	}
}

func (s *Select) PointerMove(PointerEvent)   {}
func (s *Select) PointerUp(PointerEvent)     {}
func (s *Select) PointerCancel(PointerEvent) {}
