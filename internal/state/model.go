package state

import "time"

// Point is one pointer sample in surface-local logical coordinates.
type Point struct {
	X float64   `json:"x"`
	Y float64   `json:"y"`
	T time.Time `json:"t"`
}

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// CompositeMode controls how a stroke combines with pixels already on the
// surface.
type CompositeMode int

const (
	CompositeNormal CompositeMode = iota
	// CompositeErase clears covered pixels instead of painting over them.
	CompositeErase
)

func (m CompositeMode) String() string {
	if m == CompositeErase {
		return "erase"
	}
	return "normal"
}

// Meta is the style a tool hands to the surface when a stroke begins.
type Meta struct {
	Tool      Tool
	Color     string // hex, ignored for erase strokes
	Width     float64
	Composite CompositeMode
}

// Stroke is one continuous pen or eraser gesture. Points only grow while the
// stroke is in progress and are frozen once it is committed.
type Stroke struct {
	ID        string        `json:"id"`
	Points    []Point       `json:"points"`
	Tool      Tool          `json:"tool"`
	Color     string        `json:"color,omitempty"`
	Width     float64       `json:"width"`
	Composite CompositeMode `json:"composite"`
}

// Clone returns a copy that does not share the point slice.
func (s Stroke) Clone() Stroke {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	s.Points = pts
	return s
}

type EntryType string

const EntryStroke EntryType = "stroke"

// Entry is a committed history record.
type Entry struct {
	Type   EntryType `json:"type"`
	Stroke Stroke    `json:"data"`
}

// StrokeFinished is the payload of bus.StrokeFinished.
type StrokeFinished struct {
	Stroke Stroke
}

// HistoryCounts is the payload of bus.HistoryChanged.
type HistoryCounts struct {
	Past   int
	Future int
}

// ValidColor reports whether c is a #rgb, #rgba, #rrggbb or #rrggbbaa hex
// color.
func ValidColor(c string) bool {
	if len(c) < 2 || c[0] != '#' {
		return false
	}
	switch len(c) - 1 {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
