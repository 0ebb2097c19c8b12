package spatial

import (
	"math"
	"reflect"
	"testing"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
)

type fixedSource []state.Entry

func (f fixedSource) Past() []state.Entry { return f }

func entry(id string, pts ...float64) state.Entry {
	s := state.Stroke{ID: id, Tool: state.ToolPen, Width: 4}
	for i := 0; i+1 < len(pts); i += 2 {
		s.Points = append(s.Points, state.Point{X: pts[i], Y: pts[i+1]})
	}
	return state.Entry{Type: state.EntryStroke, Stroke: s}
}

func TestIndex_HitOnRecordedPoints(t *testing.T) {
	src := fixedSource{
		entry("a", 0, 0, 10, 0, 20, 5),
		entry("b", 500, 500, 530, 470),
		entry("neg", -100, -100, -90, -120),
	}
	idx := NewIndex(nil, src, Options{})
	idx.Rebuild()

	for _, e := range src {
		for _, p := range e.Stroke.Points {
			if !idx.IsPointNearStroke(p.X, p.Y) {
				t.Errorf("%s: point (%v,%v) should hit", e.Stroke.ID, p.X, p.Y)
			}
		}
	}
}

func TestIndex_MissFarFromEverything(t *testing.T) {
	idx := NewIndex(nil, fixedSource{entry("a", 0, 0, 10, 0)}, Options{})
	idx.Rebuild()

	tests := []struct{ x, y float64 }{
		{5, 1000},
		{-500, 0},
		{0, 10.5},
		{200, 200},
	}
	for _, tt := range tests {
		if idx.IsPointNearStroke(tt.x, tt.y) {
			t.Errorf("(%v,%v) should miss", tt.x, tt.y)
		}
	}
}

func TestIndex_ThresholdBoundary(t *testing.T) {
	idx := NewIndex(nil, fixedSource{entry("a", 0, 0)}, Options{})
	idx.Rebuild()

	if !idx.IsPointNearStroke(10, 0) {
		t.Error("point exactly at threshold should hit")
	}
	if !idx.IsPointNearStroke(6, 8) {
		t.Error("point at distance 10 diagonally should hit")
	}
	if idx.IsPointNearStroke(10.01, 0) {
		t.Error("point just beyond threshold should miss")
	}
}

func TestIndex_NeighbourCellHitViaExpandedBox(t *testing.T) {
	// Stroke sits just left of the x=48 cell boundary; the query lands in the
	// next cell but within the threshold.
	idx := NewIndex(nil, fixedSource{entry("a", 45, 10)}, Options{})
	idx.Rebuild()

	if !idx.IsPointNearStroke(52, 10) {
		t.Error("query across a cell boundary should still hit")
	}
}

func TestIndex_SparseSegmentMidpointMisses(t *testing.T) {
	idx := NewIndex(nil, fixedSource{entry("line", 0, 0, 200, 0)}, Options{})
	idx.Rebuild()

	if idx.IsPointNearStroke(100, 0) {
		t.Error("distance is measured to samples; the midpoint of a sparse segment is expected to miss")
	}
}

func TestIndex_RebuildIdempotent(t *testing.T) {
	src := fixedSource{entry("a", 0, 0, 100, 40), entry("b", -60, 300)}
	idx := NewIndex(nil, src, Options{CellSize: 32})

	idx.Rebuild()
	first := idx.Snapshot()
	idx.Rebuild()
	second := idx.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuild not idempotent:\n%v\n%v", first, second)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}

func TestIndex_CellRangeInclusive(t *testing.T) {
	idx := NewIndex(nil, fixedSource{entry("a", 0, 0)}, Options{CellSize: 10, Threshold: 5})
	idx.Rebuild()

	// Box [-5,5] spans cells -1 and 0 on both axes.
	want := map[Cell][]int{
		{-1, -1}: {0}, {-1, 0}: {0},
		{0, -1}: {0}, {0, 0}: {0},
	}
	if got := idx.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIndex_StrokeAtPrefersNewest(t *testing.T) {
	src := fixedSource{entry("old", 0, 0), entry("new", 2, 0), entry("far", 400, 400)}
	idx := NewIndex(nil, src, Options{})
	idx.Rebuild()

	s, ok := idx.StrokeAt(1, 0)
	if !ok || s.ID != "new" {
		t.Errorf("StrokeAt = %q, %v; want new, true", s.ID, ok)
	}
	if _, ok := idx.StrokeAt(200, 200); ok {
		t.Error("StrokeAt should miss in an empty area")
	}
}

func TestIndex_FollowsHistory(t *testing.T) {
	b := bus.New(nil)
	h := state.NewHistory(b, nil)
	idx := NewIndex(b, h, Options{})

	h.PushStroke(entry("a", 0, 0, 10, 0).Stroke)
	if !idx.IsPointNearStroke(5, 0) {
		t.Fatal("commit should be visible to the index synchronously")
	}

	h.Undo()
	if idx.IsPointNearStroke(5, 0) {
		t.Error("undone stroke should not hit")
	}

	h.Redo()
	if !idx.IsPointNearStroke(5, 0) {
		t.Error("redone stroke should hit again")
	}

	h.Clear()
	if idx.Len() != 0 || len(idx.Snapshot()) != 0 {
		t.Errorf("clear should empty the index, got %d strokes", idx.Len())
	}
}

func TestIndex_OptionsDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero value", Options{}},
		{"negative", Options{CellSize: -1, Threshold: -3}},
		{"nan", Options{CellSize: math.NaN(), Threshold: math.NaN()}},
		{"inf", Options{CellSize: math.Inf(1), Threshold: math.Inf(1)}},
		{"negative inf", Options{CellSize: math.Inf(-1), Threshold: math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex(nil, nil, tt.opts)
			if idx.cellSize != DefaultCellSize || idx.threshold != DefaultThreshold {
				t.Errorf("got cell=%v threshold=%v", idx.cellSize, idx.threshold)
			}
		})
	}

	idx := NewIndex(nil, nil, Options{})
	idx.Rebuild()
	if idx.IsPointNearStroke(0, 0) {
		t.Error("index without a source should never hit")
	}
}

func TestIndex_ZeroOptionsUsesDefaultThreshold(t *testing.T) {
	idx := NewIndex(nil, fixedSource{entry("a", 0, 0, 10, 0)}, Options{})
	idx.Rebuild()

	if !idx.IsPointNearStroke(5, 0) {
		t.Error("IsPointNearStroke(5, 0) = false, want true")
	}
	if !idx.IsPointNearStroke(0, 3) {
		t.Error("IsPointNearStroke(0, 3) = false, want true")
	}
	if idx.IsPointNearStroke(5, 1000) {
		t.Error("IsPointNearStroke(5, 1000) = true, want false")
	}
}
