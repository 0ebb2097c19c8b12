// Package spatial answers "is this point near a committed stroke" using a
// uniform grid that is rebuilt from history whenever history changes.
// The index owns no stroke lifetimes and can always be discarded and
// recomputed from history.
package spatial

import (
	"log/slog"
	"math"
	"sort"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/state"
)

const (
	DefaultCellSize  = 48.0
	DefaultThreshold = 10.0
)

// Source supplies the committed strokes to index. *state.History satisfies it.
type Source interface {
	Past() []state.Entry
}

type Options struct {
	// CellSize is the edge of a grid cell in logical pixels.
	CellSize float64
	// Threshold is the hit distance in logical pixels.
	Threshold float64
	Logger    *slog.Logger
}

// Cell addresses one grid square: (floor(x/size), floor(y/size)).
type Cell struct {
	X, Y int
}

// Index is not safe for concurrent use.
type Index struct {
	source      Source
	cellSize    float64
	threshold   float64
	thresholdSq float64
	logger      *slog.Logger

	grid    map[Cell]map[int]struct{}
	strokes []state.Stroke // local sequence index -> stroke, reassigned on rebuild
}

// NewIndex builds an index over source. When b is non-nil the index rebuilds
// on history changes and resets on history clears.
func NewIndex(b *bus.Bus, source Source, opts Options) *Index {
	if !finitePositive(opts.CellSize) {
		opts.CellSize = DefaultCellSize
	}
	if !finitePositive(opts.Threshold) {
		opts.Threshold = DefaultThreshold
	}
	idx := &Index{
		source:      source,
		cellSize:    opts.CellSize,
		threshold:   opts.Threshold,
		thresholdSq: opts.Threshold * opts.Threshold,
		logger:      logging.Component(opts.Logger, "index"),
		grid:        make(map[Cell]map[int]struct{}),
	}
	if b != nil {
		rebuild := func(any) { idx.Rebuild() }
		b.Subscribe(bus.HistoryChanged, rebuild)
		b.Subscribe(bus.HistoryUndo, rebuild)
		b.Subscribe(bus.HistoryRedo, rebuild)
		b.Subscribe(bus.HistoryCleared, func(any) { idx.Reset() })
	}
	return idx
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Reset empties the grid and the stroke cache.
func (idx *Index) Reset() {
	idx.grid = make(map[Cell]map[int]struct{})
	idx.strokes = nil
}

// Rebuild discards everything and re-indexes the source's committed strokes.
func (idx *Index) Rebuild() {
	idx.Reset()
	if idx.source == nil {
		return
	}
	for _, e := range idx.source.Past() {
		if e.Type != state.EntryStroke {
			continue
		}
		seq := len(idx.strokes)
		idx.strokes = append(idx.strokes, e.Stroke)
		idx.insert(seq, e.Stroke.Points)
	}
	idx.logger.Debug("index rebuilt", "strokes", len(idx.strokes), "cells", len(idx.grid))
}

func (idx *Index) insert(seq int, pts []state.Point) {
	if len(pts) == 0 {
		return
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	// Expand by the hit distance so a query only ever inspects its own cell.
	lo := idx.cellOf(minX-idx.threshold, minY-idx.threshold)
	hi := idx.cellOf(maxX+idx.threshold, maxY+idx.threshold)
	for cx := lo.X; cx <= hi.X; cx++ {
		for cy := lo.Y; cy <= hi.Y; cy++ {
			c := Cell{cx, cy}
			set, ok := idx.grid[c]
			if !ok {
				set = make(map[int]struct{})
				idx.grid[c] = set
			}
			set[seq] = struct{}{}
		}
	}
}

func (idx *Index) cellOf(x, y float64) Cell {
	return Cell{
		X: int(math.Floor(x / idx.cellSize)),
		Y: int(math.Floor(y / idx.cellSize)),
	}
}

// IsPointNearStroke reports whether any committed stroke has a sample point
// within the threshold of (x, y). Distance is measured to samples, not to
// the segments between them, so sparse straight strokes can miss near their
// midpoints.
func (idx *Index) IsPointNearStroke(x, y float64) bool {
	_, ok := idx.nearest(x, y, false)
	return ok
}

// StrokeAt returns the most recently committed stroke within the threshold
// of (x, y).
func (idx *Index) StrokeAt(x, y float64) (state.Stroke, bool) {
	seq, ok := idx.nearest(x, y, true)
	if !ok {
		return state.Stroke{}, false
	}
	return idx.strokes[seq], true
}

// nearest scans the candidates registered in the query cell. With newest set
// it keeps looking for the highest sequence index; otherwise it returns on
// the first hit.
func (idx *Index) nearest(x, y float64, newest bool) (int, bool) {
	candidates := idx.grid[idx.cellOf(x, y)]
	if len(candidates) == 0 {
		return 0, false
	}
	best, found := -1, false
	for seq := range candidates {
		if found && seq < best {
			continue
		}
		if !idx.within(idx.strokes[seq].Points, x, y) {
			continue
		}
		if !newest {
			return seq, true
		}
		best, found = seq, true
	}
	return best, found
}

func (idx *Index) within(pts []state.Point, x, y float64) bool {
	for _, p := range pts {
		dx, dy := p.X-x, p.Y-y
		if dx*dx+dy*dy <= idx.thresholdSq {
			return true
		}
	}
	return false
}

// Len reports how many strokes are indexed.
func (idx *Index) Len() int {
	return len(idx.strokes)
}

// Snapshot returns the grid contents with each cell's sequence indexes
// sorted.
func (idx *Index) Snapshot() map[Cell][]int {
	out := make(map[Cell][]int, len(idx.grid))
	for c, set := range idx.grid {
		seqs := make([]int, 0, len(set))
		for seq := range set {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)
		out[c] = seqs
	}
	return out
}
