package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	riskerrors "parkproof/internal/risk/errors"
	"parkproof/internal/risk/repository"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	"parkproof/pkg/model"
)

const (
	reportWindow      = 48 * time.Hour
	reportDedupWindow = 24 * time.Hour
	activityWindow    = time.Hour
	stallWindow       = 2 * time.Hour

	congestedPercent = 80
	lowTicketing     = 5

	lotPageSize     = 100
	analyzeParallel = 8

	maxScore = 100
)

// LotSource pages through every lot.
type LotSource interface {
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLot, error)
}

type OccupancyCounter interface {
	CountActiveByLot(ctx context.Context, lotID string) (int64, error)
}

type TicketActivity interface {
	CountIssuedSince(ctx context.Context, lotID string, since time.Time) (int64, error)
}

// Analyzer scores each lot from its complaint history and from how its
// ticketing keeps pace with occupancy.
type Analyzer struct {
	lots     LotSource
	sessions OccupancyCounter
	tickets  TicketActivity
	reports  repository.ReportRepository
	scores   repository.ScoreRepository
	clock    clock.Clock
	cfg      *config.Config
}

func NewAnalyzer(
	lots LotSource,
	sessions OccupancyCounter,
	tickets TicketActivity,
	reports repository.ReportRepository,
	scores repository.ScoreRepository,
	clk clock.Clock,
	cfg *config.Config,
) *Analyzer {
	return &Analyzer{
		lots:     lots,
		sessions: sessions,
		tickets:  tickets,
		reports:  reports,
		scores:   scores,
		clock:    clk,
		cfg:      cfg,
	}
}

// AnalyzeAll scores every lot and returns how many were stored. A failing
// lot is logged and skipped.
func (a *Analyzer) AnalyzeAll(ctx context.Context) (int, error) {
	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, analyzeParallel)
		stored atomic.Int64
		offset int64
	)

	for {
		lots, err := a.lots.FindAll(ctx, lotPageSize, offset)
		if err != nil {
			wg.Wait()
			a.cfg.Log.Error("Failed to list lots for risk analysis", "offset", offset, "error", err)
			return int(stored.Load()), err
		}

		for _, lot := range lots {
			wg.Add(1)
			sem <- struct{}{}
			go func(lot *model.ParkingLot) {
				defer wg.Done()
				defer func() { <-sem }()
				if _, err := a.AnalyzeLot(ctx, lot); err != nil {
					a.cfg.Log.Warn("Risk analysis failed for lot", "parking_lot_id", lot.ID, "error", err)
					return
				}
				stored.Add(1)
			}(lot)
		}

		if len(lots) < lotPageSize {
			break
		}
		offset += int64(len(lots))
	}

	wg.Wait()
	a.cfg.Log.Info("Risk analysis complete", "lots_scored", stored.Load())
	return int(stored.Load()), nil
}

// AnalyzeLot computes and stores the lot's score.
func (a *Analyzer) AnalyzeLot(ctx context.Context, lot *model.ParkingLot) (*model.RiskScore, error) {
	now := a.clock.Now()
	var (
		score   int
		factors []string
	)

	reportScore, reportFactor, err := a.reportDensity(ctx, lot.ID, now)
	if err != nil {
		return nil, err
	}
	if reportScore > 0 {
		score += reportScore
		factors = append(factors, reportFactor)
	}

	activityScore, activityFactor, err := a.ticketActivity(ctx, lot, now)
	if err != nil {
		return nil, err
	}
	if activityScore > 0 {
		score += activityScore
		factors = append(factors, activityFactor)
	}

	previous, err := a.scores.FindByLot(ctx, lot.ID)
	switch {
	case err == nil:
		if carry := previous.Score / 4; carry > 0 {
			score += carry
			factors = append(factors, "Historical risk factor contributing")
		}
	case errors.Is(err, riskerrors.ErrNotFound):
	default:
		return nil, err
	}

	if score > maxScore {
		score = maxScore
	}

	reason := "Normal operations"
	if len(factors) > 0 {
		reason = strings.Join(factors, ". ")
	} else {
		factors = []string{}
	}

	result := &model.RiskScore{
		ParkingLotID: lot.ID,
		Score:        score,
		Level:        model.RiskLevelFor(score),
		Reason:       reason,
		Factors:      factors,
		AnalyzedAt:   now,
	}
	if err := a.scores.Upsert(ctx, result); err != nil {
		return nil, err
	}

	if result.Level == model.RiskHigh {
		a.cfg.Log.Warn("Lot flagged high risk",
			"parking_lot_id", lot.ID,
			"score", result.Score,
			"reason", result.Reason,
		)
	}
	return result, nil
}

// reportDensity counts recent reports, at most one per reporter per day.
// Anonymous reports share a single reporter.
func (a *Analyzer) reportDensity(ctx context.Context, lotID string, now time.Time) (int, string, error) {
	reports, err := a.reports.FindByLotSince(ctx, lotID, now.Add(-reportWindow))
	if err != nil {
		return 0, "", err
	}

	lastCounted := make(map[string]time.Time)
	valid := 0
	for _, r := range reports {
		last, seen := lastCounted[r.UserID]
		if seen && r.CreatedAt.Sub(last) < reportDedupWindow {
			continue
		}
		lastCounted[r.UserID] = r.CreatedAt
		valid++
	}

	switch {
	case valid >= 5:
		return 50, "High number of user reports in the last 48 hours", nil
	case valid >= 3:
		return 30, "Multiple user reports in the last 48 hours", nil
	default:
		return 0, "", nil
	}
}

// ticketActivity flags a congested lot whose ticketing has slowed or
// stopped.
func (a *Analyzer) ticketActivity(ctx context.Context, lot *model.ParkingLot, now time.Time) (int, string, error) {
	if lot.Capacity <= 0 {
		return 0, "", nil
	}
	active, err := a.sessions.CountActiveByLot(ctx, lot.ID)
	if err != nil {
		return 0, "", err
	}
	if active*100 < int64(lot.Capacity)*congestedPercent {
		return 0, "", nil
	}

	lastHour, err := a.tickets.CountIssuedSince(ctx, lot.ID, now.Add(-activityWindow))
	if err != nil {
		return 0, "", err
	}
	if lastHour >= lowTicketing {
		return 0, "", nil
	}
	if lastHour == 0 {
		lastTwo, err := a.tickets.CountIssuedSince(ctx, lot.ID, now.Add(-stallWindow))
		if err != nil {
			return 0, "", err
		}
		if lastTwo == 0 {
			return 60, "Lot congested with no tickets issued in 2 hours", nil
		}
	}
	return 40, "Lot congested with low ticket activity", nil
}
