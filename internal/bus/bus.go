// Package bus is the synchronous publish/subscribe channel that decouples the
// overlay components. Handlers run on the publisher's goroutine, in
// subscription order, against a snapshot of the subscribers taken at publish
// time.
package bus

import (
	"fmt"
	"log/slog"

	"ScreenNote/internal/logging"
)

// Handler receives the payload of a published topic. Payload may be nil.
type Handler func(payload any)

type subscriber struct {
	id uint64
	fn Handler
}

// Bus is not safe for concurrent use; publish and subscribe from the UI
// goroutine only.
type Bus struct {
	handlers map[string][]subscriber
	nextID   uint64
	logger   *slog.Logger
}

// New creates an empty bus. A nil logger discards listener failures.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]subscriber),
		logger:   logging.Component(logger, "bus"),
	}
}

// Subscribe registers fn for topic and returns a func that removes it.
// Calling the returned func more than once is harmless.
func (b *Bus) Subscribe(topic string, fn Handler) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.handlers[topic] = append(b.handlers[topic], subscriber{id: id, fn: fn})
	return func() { b.unsubscribe(topic, id) }
}

func (b *Bus) unsubscribe(topic string, id uint64) {
	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		// Build a fresh slice so snapshots held by an in-flight Publish stay intact.
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, topic)
		} else {
			b.handlers[topic] = next
		}
		return
	}
}

// Publish delivers payload to every handler subscribed to topic. A handler
// that panics is logged and skipped; delivery to the rest continues.
func (b *Bus) Publish(topic string, payload any) {
	subs := b.handlers[topic]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]subscriber, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		b.deliver(topic, s.fn, payload)
	}
}

func (b *Bus) deliver(topic string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler failed", "topic", topic, "err", fmt.Sprint(r))
		}
	}()
	fn(payload)
}

// Count reports how many handlers are subscribed to topic.
func (b *Bus) Count(topic string) int {
	return len(b.handlers[topic])
}
