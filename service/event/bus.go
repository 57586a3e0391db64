package event

import (
	"context"
	"sync"

	"rtoken/core"
)

// Subscriber receives committed events
type Subscriber interface {
	Handle(ctx context.Context, event *core.Event)
}

// SubscriberFunc func adapter
type SubscriberFunc func(ctx context.Context, event *core.Event)

func (f SubscriberFunc) Handle(ctx context.Context, event *core.Event) {
	f(ctx, event)
}

// Bus buffers events of the running transaction, publishing them on Flush
type Bus struct {
	mu          sync.Mutex
	pending     []*core.Event
	subscribers []Subscriber
}

// New new event bus
func New(subscribers ...Subscriber) *Bus {
	return &Bus{
		subscribers: subscribers,
	}
}

// Subscribe add a subscriber
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, s)
}

// Emit buffer event until the transaction commits
func (b *Bus) Emit(_ context.Context, event *core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, event)
}

// Pending buffered events
func (b *Bus) Pending() []*core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*core.Event(nil), b.pending...)
}

// Flush publish buffered events in emission order
func (b *Bus) Flush(ctx context.Context) []*core.Event {
	b.mu.Lock()
	events := b.pending
	subscribers := b.subscribers
	b.pending = nil
	b.mu.Unlock()

	for _, e := range events {
		for _, s := range subscribers {
			s.Handle(ctx, e)
		}
	}

	return events
}

// Checkpoint drop events emitted after the checkpoint on restore
func (b *Bus) Checkpoint() func() {
	b.mu.Lock()
	n := len(b.pending)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		if n <= len(b.pending) {
			b.pending = b.pending[:n]
		}
		b.mu.Unlock()
	}
}
