package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"parkproof/pkg/logger"
)

// Sweeper periodically expires CREATED tickets past their validity. Lazy
// expiry on read stays authoritative; the sweep only keeps stored state tidy
// for reporting.
type Sweeper struct {
	svc      TicketService
	interval time.Duration
	log      *logger.Logger

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

func NewSweeper(svc TicketService, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.log.Info("Ticket sweeper started", "interval", s.interval)
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			_, _ = s.svc.SweepExpired(ctx)
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.done
		}
		s.log.Info("Ticket sweeper stopped")
	})
}
