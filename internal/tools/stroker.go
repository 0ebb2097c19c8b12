package tools

import (
	"log/slog"

	"ScreenNote/internal/state"
)

// stroker is the pointer-to-stroke adapter shared by pen and eraser. At most
// one stroke is in progress per instance.
type stroker struct {
	deps    Deps
	logger  *slog.Logger
	meta    func() state.Meta
	enabled bool

	active    bool
	strokeID  string
	pointerID int
}

func newStroker(deps Deps, name string, meta func() state.Meta) stroker {
	deps = deps.withDefaults()
	return stroker{
		deps:   deps,
		logger: deps.Logger.With("tool", name),
		meta:   meta,
	}
}

func (s *stroker) Enable()       { s.enabled = true }
func (s *stroker) Enabled() bool { return s.enabled }

// Disable seals any stroke still in progress so it does not linger in the
// canvas table.
func (s *stroker) Disable() {
	if s.active {
		s.finish()
	}
	s.enabled = false
}

// Drawing reports whether a stroke is in progress.
func (s *stroker) Drawing() bool { return s.active }

func (s *stroker) PointerDown(e PointerEvent) {
	if !s.enabled {
		return
	}
	if s.active {
		s.logger.Debug("ignoring pointer-down during a stroke", "pointer", e.PointerID)
		return
	}
	if s.deps.Capturer != nil {
		if err := s.deps.Capturer.Capture(e.PointerID); err != nil {
			s.logger.Debug("pointer capture unavailable", "err", err)
		}
	}
	s.active = true
	s.pointerID = e.PointerID
	s.strokeID = s.deps.Canvas.Begin(s.meta())
	s.deps.Canvas.Update(s.strokeID, s.deps.local(e))
}

func (s *stroker) PointerMove(e PointerEvent) {
	if !s.enabled || !s.active || e.PointerID != s.pointerID {
		return
	}
	s.deps.Canvas.Update(s.strokeID, s.deps.local(e))
}

func (s *stroker) PointerUp(e PointerEvent) {
	if !s.enabled || !s.active || e.PointerID != s.pointerID {
		return
	}
	s.finish()
}

// PointerCancel seals and commits the partial stroke exactly like a
// pointer-up.
func (s *stroker) PointerCancel(e PointerEvent) {
	s.PointerUp(e)
}

func (s *stroker) finish() {
	id := s.strokeID
	s.active = false
	s.strokeID = ""
	if st, ok := s.deps.Canvas.End(id); ok && len(st.Points) > 0 && s.deps.History != nil {
		s.deps.History.PushStroke(st)
	}
	if s.deps.Capturer != nil {
		if err := s.deps.Capturer.Release(s.pointerID); err != nil {
			s.logger.Debug("pointer release failed", "err", err)
		}
	}
}
