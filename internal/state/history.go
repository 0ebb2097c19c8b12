package state

import (
	"log/slog"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
)

// History is the two-stack undo/redo record of committed strokes. past is in
// commit order; future holds undone entries with the most recently undone
// last. Every mutation is announced on the bus.
type History struct {
	bus    *bus.Bus
	logger *slog.Logger
	past   []Entry
	future []Entry
}

// NewHistory creates an empty history. When b is non-nil the history also
// empties itself on bus.CanvasClear.
func NewHistory(b *bus.Bus, logger *slog.Logger) *History {
	h := &History{
		bus:    b,
		logger: logging.Component(logger, "history"),
	}
	if b != nil {
		b.Subscribe(bus.CanvasClear, func(any) { h.Clear() })
	}
	return h
}

// PushStroke commits s and drops the redo lineage. Strokes without points
// are refused.
func (h *History) PushStroke(s Stroke) bool {
	if len(s.Points) == 0 {
		h.logger.Debug("refusing empty stroke", "id", s.ID)
		return false
	}
	h.past = append(h.past, Entry{Type: EntryStroke, Stroke: s.Clone()})
	h.future = nil
	h.logger.Debug("stroke committed", "id", s.ID, "points", len(s.Points), "past", len(h.past))
	h.publish(bus.HistoryChanged, HistoryCounts{Past: len(h.past)})
	return true
}

// Undo moves the newest committed entry onto the redo stack.
func (h *History) Undo() (Entry, bool) {
	if len(h.past) == 0 {
		return Entry{}, false
	}
	e := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, e)
	h.publish(bus.HistoryUndo, e)
	return e, true
}

// Redo moves the most recently undone entry back onto the committed stack.
func (h *History) Redo() (Entry, bool) {
	if len(h.future) == 0 {
		return Entry{}, false
	}
	e := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, e)
	h.publish(bus.HistoryRedo, e)
	return e, true
}

// Clear empties both stacks. Clearing an already empty history publishes
// nothing.
func (h *History) Clear() {
	if len(h.past) == 0 && len(h.future) == 0 {
		return
	}
	h.past = nil
	h.future = nil
	h.logger.Debug("history cleared")
	h.publish(bus.HistoryCleared, nil)
	h.publish(bus.HistoryChanged, HistoryCounts{})
}

// Past returns a copy of the committed entries, oldest first.
func (h *History) Past() []Entry {
	return cloneEntries(h.past)
}

// Future returns a copy of the undone entries, most recently undone last.
func (h *History) Future() []Entry {
	return cloneEntries(h.future)
}

// Len reports the sizes of both stacks.
func (h *History) Len() (past, future int) {
	return len(h.past), len(h.future)
}

func (h *History) publish(topic string, payload any) {
	if h.bus != nil {
		h.bus.Publish(topic, payload)
	}
}

func cloneEntries(src []Entry) []Entry {
	out := make([]Entry, len(src))
	for i, e := range src {
		e.Stroke = e.Stroke.Clone()
		out[i] = e
	}
	return out
}
