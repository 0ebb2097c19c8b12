// Package session assembles one overlay: bus, surface, history, hit index,
// tools and metrics, wired together the way the desktop host and the bridge
// expect.
package session

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/config"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/spatial"
	"ScreenNote/internal/state"
	"ScreenNote/internal/surface"
	"ScreenNote/internal/telemetry"
	"ScreenNote/internal/tools"
)

type Options struct {
	Width, Height, Scale float64

	Logger   *slog.Logger
	Meter    metric.Meter
	Capturer tools.Capturer
	Origin   tools.Origin
	IDs      state.IDSource
}

// Session is owned by the UI thread. Other goroutines reach it through the
// host's dispatcher.
type Session struct {
	Bus     *bus.Bus
	Surface *surface.Surface
	History *state.History
	Index   *spatial.Index

	Pen    *tools.Pen
	Eraser *tools.Eraser
	Select *tools.Select
	Tools  *tools.Coordinator

	Metrics *telemetry.Metrics

	logger *slog.Logger
}

func New(cfg config.Config, opts Options) (*Session, error) {
	logger := logging.Component(opts.Logger, "session")
	b := bus.New(opts.Logger)

	s := &Session{Bus: b, logger: logger}
	s.Surface = surface.New(b, surface.Options{
		Width:  opts.Width,
		Height: opts.Height,
		Scale:  opts.Scale,
		IDs:    opts.IDs,
		Logger: opts.Logger,
	})
	s.History = state.NewHistory(b, opts.Logger)
	s.Index = spatial.NewIndex(b, s.History, spatial.Options{
		CellSize:  cfg.Canvas.CellSize,
		Threshold: cfg.Canvas.HitThreshold,
		Logger:    opts.Logger,
	})

	replay := func(any) { s.Surface.RenderStrokes(s.History.Past()) }
	b.Subscribe(bus.HistoryUndo, replay)
	b.Subscribe(bus.HistoryRedo, replay)

	deps := tools.Deps{
		Bus:      b,
		Canvas:   s.Surface,
		History:  s.History,
		Capturer: opts.Capturer,
		Origin:   opts.Origin,
		Logger:   opts.Logger,
	}
	s.Pen = tools.NewPen(deps)
	s.Pen.SetColor(cfg.Pen.Color)
	s.Pen.SetWidth(cfg.Pen.Width)
	s.Eraser = tools.NewEraser(deps)
	s.Eraser.SetWidth(cfg.Eraser.Width)
	s.Select = tools.NewSelect(deps, s.Index)
	s.Tools = tools.NewCoordinator(b, tools.Actions{
		Undo:  func() { s.Undo() },
		Redo:  func() { s.Redo() },
		Clear: s.Clear,
	}, opts.Logger, s.Pen, s.Eraser, s.Select)

	m, err := telemetry.NewMetrics(opts.Meter)
	if err != nil {
		_ = s.Surface.Close()
		return nil, fmt.Errorf("session metrics: %w", err)
	}
	m.Attach(b)
	s.Metrics = m

	w, h, scale := s.Surface.Size()
	logger.Info("session ready", "width", w, "height", h, "scale", scale)
	return s, nil
}

// Undo reverts the newest committed stroke and repaints.
func (s *Session) Undo() bool {
	_, ok := s.History.Undo()
	return ok
}

// Redo reapplies the most recently undone stroke and repaints.
func (s *Session) Redo() bool {
	_, ok := s.History.Redo()
	return ok
}

// Clear wipes pixels and history through canvas:clear.
func (s *Session) Clear() {
	s.Bus.Publish(bus.CanvasClear, nil)
}

// Resize reallocates the raster for a new viewport and replays history onto
// it. In-progress strokes are dropped with the old pixels.
func (s *Session) Resize(width, height, scale float64) {
	s.Surface.Resize(width, height, scale)
	s.Surface.RenderStrokes(s.History.Past())
}

// Counts reports both history stack sizes.
func (s *Session) Counts() state.HistoryCounts {
	past, future := s.History.Len()
	return state.HistoryCounts{Past: past, Future: future}
}

func (s *Session) Close() error {
	return s.Surface.Close()
}
