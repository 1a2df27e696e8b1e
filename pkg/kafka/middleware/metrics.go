package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"parkproof/pkg/kafka"
)

// Metrics counts publish outcomes for one producer.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64
}

type MetricsSnapshot struct {
	Published  int64
	Failed     int64
	AvgLatency time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	snap := MetricsSnapshot{
		Published: published,
		Failed:    m.failed.Load(),
	}
	if published > 0 {
		snap.AvgLatency = time.Duration(m.durationTotal.Load() / published)
	}
	return snap
}

func (m *Metrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.durationTotal.Add(int64(time.Since(start)))
		return nil
	}
}
