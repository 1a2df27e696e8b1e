package events

import (
	"context"
	"sync"
)

type bufferKey struct{}

// Buffer holds events raised inside a transaction until it commits.
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// WithBuffer returns a context under which Emit collects events into the
// returned buffer instead of publishing them.
func WithBuffer(ctx context.Context) (context.Context, *Buffer) {
	b := &Buffer{}
	return context.WithValue(ctx, bufferKey{}, b), b
}

// Reset drops events collected by a previous transaction attempt.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *Buffer) Flush(ctx context.Context, p Publisher) {
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()

	for _, e := range pending {
		p.Publish(ctx, e)
	}
}

// Emit publishes e, or buffers it when ctx carries a Buffer.
func Emit(ctx context.Context, p Publisher, e Event) {
	if b, ok := ctx.Value(bufferKey{}).(*Buffer); ok {
		b.mu.Lock()
		b.events = append(b.events, e)
		b.mu.Unlock()
		return
	}
	p.Publish(ctx, e)
}
