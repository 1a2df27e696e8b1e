package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"parkproof/pkg/logger"
)

// BatchAnalyzer is the part of Analyzer the scheduler drives.
type BatchAnalyzer interface {
	AnalyzeAll(ctx context.Context) (int, error)
}

// Scheduler runs a full risk analysis on start and then every interval.
type Scheduler struct {
	analyzer BatchAnalyzer
	interval time.Duration
	log      *logger.Logger

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

func NewScheduler(analyzer BatchAnalyzer, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		analyzer: analyzer,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.log.Info("Risk scheduler started", "interval", s.interval)
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.analyze()
		select {
		case <-ticker.C:
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) analyze() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, _ = s.analyzer.AnalyzeAll(ctx)
}

// Stop cancels an in-flight analysis and waits for it to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.done
		}
		s.log.Info("Risk scheduler stopped")
	})
}
