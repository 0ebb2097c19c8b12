package export

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"testing"

	"ScreenNote/internal/state"
	"ScreenNote/internal/surface"
)

func entry(tool state.Tool, composite state.CompositeMode, pts ...state.Point) state.Entry {
	return state.Entry{Type: state.EntryStroke, Stroke: state.Stroke{
		ID:        string(tool),
		Tool:      tool,
		Color:     "#ff0000",
		Width:     4,
		Composite: composite,
		Points:    pts,
	}}
}

func TestPDF_WritesDocument(t *testing.T) {
	entries := []state.Entry{
		entry(state.ToolPen, state.CompositeNormal, state.Point{X: 1, Y: 1}, state.Point{X: 50, Y: 20}),
		entry(state.ToolPen, state.CompositeNormal, state.Point{X: 30, Y: 30}),
		entry(state.ToolEraser, state.CompositeErase, state.Point{X: 10, Y: 10}, state.Point{X: 20, Y: 20}),
	}
	var buf bytes.Buffer
	if err := PDF(&buf, entries, 200, 100); err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestPDF_EmptyPage(t *testing.T) {
	for _, size := range [][2]float64{{0, 10}, {10, -1}} {
		if err := PDF(io.Discard, nil, size[0], size[1]); !errors.Is(err, ErrEmptyPage) {
			t.Errorf("size %v: err = %v, want ErrEmptyPage", size, err)
		}
	}
}

func TestDrawable_SkipsErasersAndEmptyStrokes(t *testing.T) {
	entries := []state.Entry{
		entry(state.ToolPen, state.CompositeNormal, state.Point{X: 1}),
		entry(state.ToolEraser, state.CompositeErase, state.Point{X: 2}),
		entry(state.ToolPen, state.CompositeNormal),
		{Type: "marker", Stroke: state.Stroke{Points: []state.Point{{X: 3}}}},
	}
	got := drawable(entries)
	if len(got) != 1 || got[0].Points[0].X != 1 {
		t.Errorf("drawable() = %+v, want only the first pen stroke", got)
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{{0, 0}, {1, 255}, {0.5, 128}, {-1, 0}, {2, 255}}
	for _, tt := range tests {
		if got := channel(tt.in); got != tt.want {
			t.Errorf("channel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

type failingEncoder struct{}

func (failingEncoder) EncodePNG(io.Writer) error { return errors.New("boom") }

func TestPNG(t *testing.T) {
	s := surface.New(nil, surface.Options{Width: 20, Height: 10, Scale: 1})
	defer s.Close()

	var buf bytes.Buffer
	if err := PNG(&buf, s); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", b)
	}

	if err := PNG(io.Discard, failingEncoder{}); err == nil {
		t.Error("expected encoder error to surface")
	}
}
