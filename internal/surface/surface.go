// Package surface owns the overlay raster, the table of strokes being drawn,
// and the routines that paint strokes onto the raster.
package surface

import (
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/gogpu/gg"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/state"
)

const (
	defaultWidth = 4.0
	defaultColor = "#ffff00"
)

type Options struct {
	// Width and Height are the viewport size in logical pixels.
	Width, Height float64
	// Scale is the display-scaling factor (backing pixels per logical pixel).
	Scale float64
	// IDs issues stroke ids; defaults to random UUIDs.
	IDs    state.IDSource
	Logger *slog.Logger
}

// Surface is not safe for concurrent use.
type Surface struct {
	bus    *bus.Bus
	ids    state.IDSource
	logger *slog.Logger

	width, height, scale float64

	dc      *gg.Context
	scratch *gg.Context // eraser coverage, kept transparent between uses

	active map[string]*state.Stroke
}

// New allocates a surface sized to the viewport. When b is non-nil the
// surface clears itself on bus.CanvasClear and announces bus.CanvasCleared.
func New(b *bus.Bus, opts Options) *Surface {
	s := &Surface{
		bus:    b,
		ids:    opts.IDs,
		logger: logging.Component(opts.Logger, "surface"),
		active: make(map[string]*state.Stroke),
	}
	if s.ids == nil {
		s.ids = state.NewStrokeID
	}
	w, h, scale := opts.Width, opts.Height, sanitizeScale(opts.Scale)
	if !(w > 0 && h > 0) {
		s.logger.Warn("invalid viewport, using 1x1", "width", w, "height", h)
		w, h = 1, 1
	}
	pw, ph := backingSize(w, h, scale)
	s.dc = gg.NewContext(pw, ph)
	s.scratch = gg.NewContext(pw, ph)
	s.setGeometry(w, h, scale)

	if b != nil {
		b.Subscribe(bus.CanvasClear, func(any) {
			s.Clear()
			b.Publish(bus.CanvasCleared, nil)
		})
	}
	return s
}

// Begin opens a new in-progress stroke and returns its id.
func (s *Surface) Begin(meta state.Meta) string {
	id := s.ids()
	s.active[id] = &state.Stroke{
		ID:        id,
		Tool:      meta.Tool,
		Color:     meta.Color,
		Width:     meta.Width,
		Composite: meta.Composite,
	}
	s.logger.Debug("stroke started", "id", id, "tool", meta.Tool)
	return id
}

// Update appends p to stroke id and paints only the newest segment. Unknown
// ids are ignored.
func (s *Surface) Update(id string, p state.Point) {
	st, ok := s.active[id]
	if !ok {
		return
	}
	st.Points = append(st.Points, p)
	if n := len(st.Points); n >= 2 {
		s.paint(st, st.Points[n-2:])
	}
}

// End repaints stroke id as one continuous path, removes it from the
// in-progress table, publishes bus.StrokeFinished and returns the frozen
// stroke. Unknown ids report false.
func (s *Surface) End(id string) (state.Stroke, bool) {
	st, ok := s.active[id]
	if !ok {
		return state.Stroke{}, false
	}
	s.paint(st, st.Points)
	delete(s.active, id)

	done := st.Clone()
	s.logger.Debug("stroke finished", "id", id, "points", len(done.Points))
	if s.bus != nil {
		s.bus.Publish(bus.StrokeFinished, state.StrokeFinished{Stroke: done})
	}
	return done, true
}

// Clear wipes every pixel and drops in-progress strokes. History is not
// touched.
func (s *Surface) Clear() {
	s.dc.Clear()
	clear(s.active)
}

// RenderStrokes clears the surface and repaints entries in order.
func (s *Surface) RenderStrokes(entries []state.Entry) {
	s.Clear()
	for i := range entries {
		if entries[i].Type != state.EntryStroke {
			continue
		}
		st := entries[i].Stroke
		s.paint(&st, st.Points)
	}
}

// Resize recomputes the backing raster for a new viewport. Pixels are not
// replayed; callers that need the strokes back call RenderStrokes.
func (s *Surface) Resize(width, height, scale float64) {
	if !(width > 0 && height > 0) {
		s.logger.Warn("ignoring invalid resize", "width", width, "height", height)
		return
	}
	scale = sanitizeScale(scale)
	pw, ph := backingSize(width, height, scale)
	if err := s.dc.Resize(pw, ph); err != nil {
		s.logger.Warn("resize failed", "err", err)
		return
	}
	if err := s.scratch.Resize(pw, ph); err != nil {
		s.logger.Warn("resize failed", "err", err)
		return
	}
	s.setGeometry(width, height, scale)
}

func (s *Surface) setGeometry(width, height, scale float64) {
	s.width, s.height, s.scale = width, height, scale
	for _, dc := range []*gg.Context{s.dc, s.scratch} {
		dc.Identity()
		dc.Scale(scale, scale)
	}
}

// Size returns the logical viewport and the display-scaling factor.
func (s *Surface) Size() (width, height, scale float64) {
	return s.width, s.height, s.scale
}

// PixelSize returns the backing raster dimensions.
func (s *Surface) PixelSize() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

// Active reports how many strokes are in progress.
func (s *Surface) Active() int {
	return len(s.active)
}

// Image returns a copy of the backing raster.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the current raster as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// Close releases the rasterizer contexts.
func (s *Surface) Close() error {
	err := s.dc.Close()
	if serr := s.scratch.Close(); err == nil {
		err = serr
	}
	return err
}

func sanitizeScale(scale float64) float64 {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 1
	}
	return scale
}

func backingSize(width, height, scale float64) (int, int) {
	return max(1, int(math.Round(width*scale))), max(1, int(math.Round(height*scale)))
}
