package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"parkproof/pkg/kafka"
	"parkproof/pkg/logger"
)

func TestMetricsProducerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := MetricsProducerMiddleware(m)
	msg := kafka.Message{Key: "k", Value: []byte("{}")}

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("broker down") }

	_ = mw(context.Background(), msg, ok)
	_ = mw(context.Background(), msg, ok)
	if err := mw(context.Background(), msg, fail); err == nil {
		t.Fatal("expected error to propagate")
	}

	snap := m.Snapshot()
	if snap.Published != 2 || snap.Failed != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	m.Reset()
	if m.Snapshot().Published != 0 {
		t.Error("Reset did not clear counters")
	}
}

func TestLoggingProducerMiddleware_PassesThrough(t *testing.T) {
	mw := LoggingProducerMiddleware(logger.Discard())
	want := errors.New("boom")
	got := mw(context.Background(), kafka.Message{Key: "k"}, func(context.Context, kafka.Message) error { return want })
	if !errors.Is(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
