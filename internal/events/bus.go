// Package events carries change notifications from the core services to their observers.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topic names a notification kind.
type Topic string

const (
	// DataReset is emitted after every herd, goal and record was deleted.
	DataReset Topic = "dataReset"
	// RecordUpdated is emitted after a daily record or goal was saved.
	RecordUpdated Topic = "recordUpdated"
)

// Event is one published notification.
type Event struct {
	Topic      Topic     `json:"topic"`
	Day        string    `json:"day,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Handler reacts to an event. Handlers must not publish on the bus they are called from.
type Handler func(Event)

// Publisher is the emitting side of the bus.
type Publisher interface {
	Publish(topic Topic, day string)
}

// Bus is a synchronous publish/subscribe hub owned by the application root. Delivery
// happens on the publisher's goroutine after the mutation has completed, in
// subscription order; a panicking handler is logged and does not affect the others.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Topic][]subscription
	logger   *zap.Logger
	now      func() time.Time
}

type subscription struct {
	id      int
	handler Handler
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[Topic][]subscription),
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe registers h for the given topics and returns a function removing it.
func (b *Bus) Subscribe(h Handler, topics ...Topic) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	for _, t := range topics {
		b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, t := range topics {
			subs := b.handlers[t]
			kept := make([]subscription, 0, len(subs))
			for _, s := range subs {
				if s.id != id {
					kept = append(kept, s)
				}
			}
			b.handlers[t] = kept
		}
	}
}

// Publish delivers an event to every subscriber of the topic.
func (b *Bus) Publish(topic Topic, day string) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[topic]))
	for _, s := range b.handlers[topic] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	evt := Event{Topic: topic, Day: day, OccurredAt: b.now()}
	for _, h := range handlers {
		b.deliver(h, evt)
	}
}

func (b *Bus) deliver(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", zap.String("topic", string(evt.Topic)), zap.Any("panic", r))
		}
	}()
	h(evt)
}
