package service

import (
	"context"
	"errors"

	riskerrors "parkproof/internal/risk/errors"
	"parkproof/internal/risk/repository"
	"parkproof/internal/risk/validator"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
)

// LotFinder resolves a lot or fails with LOT_NOT_FOUND.
type LotFinder interface {
	GetByID(ctx context.Context, id string) (*model.ParkingLot, error)
}

type RiskService interface {
	SubmitReport(ctx context.Context, userID string, req *model.ReportRequest) (*model.Report, error)
	ListReports(ctx context.Context, limit int, offset int64) ([]*model.Report, int64, error)
	GetScore(ctx context.Context, lotID string) (*model.RiskScore, error)
	ListScores(ctx context.Context) ([]*model.RiskScore, error)
}

type riskService struct {
	reports   repository.ReportRepository
	scores    repository.ScoreRepository
	lots      LotFinder
	validator *validator.ReportValidator
	clock     clock.Clock
	cfg       *config.Config
}

func NewRiskService(
	reports repository.ReportRepository,
	scores repository.ScoreRepository,
	lots LotFinder,
	clk clock.Clock,
	cfg *config.Config,
) RiskService {
	return &riskService{
		reports:   reports,
		scores:    scores,
		lots:      lots,
		validator: validator.NewReportValidator(),
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *riskService) SubmitReport(ctx context.Context, userID string, req *model.ReportRequest) (*model.Report, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.ParkingLotID != "" {
		if _, err := s.lots.GetByID(ctx, req.ParkingLotID); err != nil {
			return nil, err
		}
	}

	report := &model.Report{
		ParkingLotID: req.ParkingLotID,
		UserID:       userID,
		Type:         model.ReportType(req.Type),
		Description:  req.Description,
		Status:       model.ReportPending,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		s.cfg.Log.Error("Failed to create report",
			"parking_lot_id", report.ParkingLotID,
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to submit report", err)
	}

	s.cfg.Log.Info("Report submitted",
		"report_id", report.ID,
		"parking_lot_id", report.ParkingLotID,
		"type", report.Type,
	)
	return report, nil
}

func (s *riskService) ListReports(ctx context.Context, limit int, offset int64) ([]*model.Report, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	reports, err := s.reports.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list reports", "error", err)
		return nil, 0, apperrors.Internal("Failed to list reports", err)
	}
	total, err := s.reports.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count reports", "error", err)
		return nil, 0, apperrors.Internal("Failed to count reports", err)
	}
	return reports, total, nil
}

func (s *riskService) GetScore(ctx context.Context, lotID string) (*model.RiskScore, error) {
	score, err := s.scores.FindByLot(ctx, lotID)
	if err != nil {
		if errors.Is(err, riskerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Risk score", lotID)
		}
		if errors.Is(err, riskerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid parking lot ID format")
		}
		s.cfg.Log.Error("Failed to get risk score", "parking_lot_id", lotID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve risk score", err)
	}
	return score, nil
}

func (s *riskService) ListScores(ctx context.Context) ([]*model.RiskScore, error) {
	scores, err := s.scores.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list risk scores", "error", err)
		return nil, apperrors.Internal("Failed to list risk scores", err)
	}
	return scores, nil
}
