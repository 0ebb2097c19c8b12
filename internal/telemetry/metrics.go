// Package telemetry records overlay activity as OpenTelemetry metrics.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
)

// Metrics translates bus traffic into counters and histograms.
type Metrics struct {
	strokes      metric.Int64Counter
	strokePoints metric.Int64Histogram
	undos        metric.Int64Counter
	redos        metric.Int64Counter
	clears       metric.Int64Counter
}

// NewMetrics creates the instruments on meter. A nil meter records nothing.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("screennote")
	}

	strokes, err := meter.Int64Counter("screennote.strokes.committed",
		metric.WithDescription("Number of finished strokes with at least one point"),
	)
	if err != nil {
		return nil, err
	}

	points, err := meter.Int64Histogram("screennote.stroke.points",
		metric.WithDescription("Samples per finished stroke"),
		metric.WithUnit("{point}"),
	)
	if err != nil {
		return nil, err
	}

	undos, err := meter.Int64Counter("screennote.history.undo",
		metric.WithDescription("Number of undone entries"),
	)
	if err != nil {
		return nil, err
	}

	redos, err := meter.Int64Counter("screennote.history.redo",
		metric.WithDescription("Number of redone entries"),
	)
	if err != nil {
		return nil, err
	}

	clears, err := meter.Int64Counter("screennote.canvas.clears",
		metric.WithDescription("Number of canvas clears"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		strokes:      strokes,
		strokePoints: points,
		undos:        undos,
		redos:        redos,
		clears:       clears,
	}, nil
}

// Attach subscribes the instruments to b and returns a function that
// detaches them again.
func (m *Metrics) Attach(b *bus.Bus) (detach func()) {
	unsubs := []func(){
		b.Subscribe(bus.StrokeFinished, m.strokeFinished),
		b.Subscribe(bus.HistoryUndo, func(any) { m.undos.Add(context.Background(), 1) }),
		b.Subscribe(bus.HistoryRedo, func(any) { m.redos.Add(context.Background(), 1) }),
		b.Subscribe(bus.CanvasCleared, func(any) { m.clears.Add(context.Background(), 1) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (m *Metrics) strokeFinished(payload any) {
	ev, ok := payload.(state.StrokeFinished)
	if !ok || len(ev.Stroke.Points) == 0 {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("tool", string(ev.Stroke.Tool)))
	m.strokes.Add(ctx, 1, attrs)
	m.strokePoints.Record(ctx, int64(len(ev.Stroke.Points)), attrs)
}
