package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	riskerrors "parkproof/internal/risk/errors"
	"parkproof/pkg/config"
	"parkproof/pkg/logger"
	"parkproof/pkg/model"
)

const (
	lotA = "65f1c2a9e4b0a1b2c3d4e5f6"
	lotB = "65f1c2a9e4b0a1b2c3d4e5f7"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{Log: logger.Discard(), ReadTimeout: 5 * time.Second}
}

type memReports struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (m *memReports) Create(_ context.Context, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	r.ID = fmt.Sprintf("65f1c2a9e4b0a1b2c3d4%04x", len(m.reports))
	m.reports = append(m.reports, r)
	return nil
}

func (m *memReports) FindByLotSince(_ context.Context, lotID string, since time.Time) ([]*model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Report
	for _, r := range m.reports {
		if r.ParkingLotID == lotID && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memReports) FindAll(_ context.Context, limit int, offset int64) ([]*model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if offset >= int64(len(m.reports)) {
		return nil, nil
	}
	end := min(int(offset)+limit, len(m.reports))
	return m.reports[offset:end], nil
}

func (m *memReports) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.reports)), m.err
}

func (m *memReports) add(lotID, userID string, at time.Time) {
	m.reports = append(m.reports, &model.Report{
		ParkingLotID: lotID,
		UserID:       userID,
		Type:         model.ReportOvercharging,
		Status:       model.ReportPending,
		CreatedAt:    at,
	})
}

type memScores struct {
	mu     sync.Mutex
	scores map[string]*model.RiskScore
}

func newMemScores() *memScores {
	return &memScores{scores: make(map[string]*model.RiskScore)}
}

func (m *memScores) Upsert(_ context.Context, s *model.RiskScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.scores[s.ParkingLotID] = &cp
	return nil
}

func (m *memScores) FindByLot(_ context.Context, lotID string) (*model.RiskScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[lotID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", riskerrors.ErrNotFound, lotID)
	}
	cp := *s
	return &cp, nil
}

func (m *memScores) FindAll(context.Context) ([]*model.RiskScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.RiskScore, 0, len(m.scores))
	for _, s := range m.scores {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

type lotPages struct {
	lots  []*model.ParkingLot
	calls int
	err   error
}

func (l *lotPages) FindAll(_ context.Context, limit int, offset int64) ([]*model.ParkingLot, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if offset >= int64(len(l.lots)) {
		return nil, nil
	}
	end := min(int(offset)+limit, len(l.lots))
	return l.lots[offset:end], nil
}

type fixedOccupancy map[string]int64

func (f fixedOccupancy) CountActiveByLot(_ context.Context, lotID string) (int64, error) {
	return f[lotID], nil
}

// issuedTickets holds creation times per lot.
type issuedTickets map[string][]time.Time

func (f issuedTickets) CountIssuedSince(_ context.Context, lotID string, since time.Time) (int64, error) {
	var n int64
	for _, at := range f[lotID] {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}
