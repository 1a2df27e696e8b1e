package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lotserrors "parkproof/internal/lots/errors"
	"parkproof/internal/lots/repository"
	"parkproof/internal/lots/validator"
	"parkproof/pkg/cache"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/locale"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionCounter is the part of the session ledger occupancy is derived from.
type SessionCounter interface {
	CountActiveByLot(ctx context.Context, lotID string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	SumChargedSince(ctx context.Context, lotID string, since time.Time) (int64, error)
}

// ReservationCounter is the part of the ticket ledger that holds spots.
type ReservationCounter interface {
	CountReservedByLot(ctx context.Context, lotID string, now time.Time) (int64, error)
	CountReserved(ctx context.Context, now time.Time) (int64, error)
	SumAmountSince(ctx context.Context, lotID string, since time.Time) (int64, error)
}

// AdmitFunc runs inside the admission transaction after the capacity check
// passed. It may be invoked more than once when the transaction retries.
type AdmitFunc func(ctx context.Context, lot *model.ParkingLot) error

type LotService interface {
	Create(ctx context.Context, lot *model.ParkingLot) error
	GetByID(ctx context.Context, id string) (*model.ParkingLot, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLot, int64, error)

	Stats(ctx context.Context, id string) (*model.LotStats, error)
	Overview(ctx context.Context) (*model.LotOverview, error)
	InvalidateStats(ctx context.Context, id string)

	Admit(ctx context.Context, id string, fn AdmitFunc) error
}

type lotService struct {
	repo         repository.LotRepository
	sessions     SessionCounter
	reservations ReservationCounter
	cache        cache.StatsCache
	validator    *validator.LotValidator
	clock        clock.Clock
	cfg          *config.Config
}

func NewLotService(
	repo repository.LotRepository,
	sessions SessionCounter,
	reservations ReservationCounter,
	statsCache cache.StatsCache,
	validator *validator.LotValidator,
	clk clock.Clock,
	cfg *config.Config,
) LotService {
	return &lotService{
		repo:         repo,
		sessions:     sessions,
		reservations: reservations,
		cache:        statsCache,
		validator:    validator,
		clock:        clk,
		cfg:          cfg,
	}
}

// LotFull is the admission rejection for a lot whose active sessions and live
// reservations already cover its capacity.
func LotFull(lot *model.ParkingLot, held int64) error {
	return apperrors.Conflict("Parking lot is full").
		WithReason(apperrors.ReasonLotFull).
		WithDetails(map[string]any{
			"parkingLotId": lot.ID,
			"capacity":     lot.Capacity,
			"held":         held,
		})
}

func lotNotFound(id string) error {
	return apperrors.NotFoundWithID("Parking lot", id).WithReason(apperrors.ReasonLotNotFound)
}

func (s *lotService) sanitize(lot *model.ParkingLot) {
	lot.PID = sanitizer.NormalizeLotPID(lot.PID)
	lot.Name = sanitizer.NormalizeName(lot.Name)
	lot.Area = sanitizer.NormalizeArea(lot.Area)
	lot.Address = sanitizer.NormalizeAddress(lot.Address)
	if phone := sanitizer.NormalizePhone(lot.ContractorPhone); phone != "" {
		lot.ContractorPhone = phone
	}
}

func (s *lotService) Create(ctx context.Context, lot *model.ParkingLot) error {
	s.sanitize(lot)

	if err := s.validator.Validate(lot); err != nil {
		s.cfg.Log.Warn("Parking lot validation failed",
			"pid", lot.PID,
			"name", lot.Name,
			"error", err,
		)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Parking lot validation failed", verrs.Details())
		}
		return apperrors.Validation("Parking lot validation failed", map[string]any{"error": err.Error()})
	}

	lot.CreatedAt = s.clock.Now()
	if err := s.repo.Create(ctx, lot); err != nil {
		if errors.Is(err, lotserrors.ErrDuplicatePID) {
			return apperrors.Conflict(fmt.Sprintf("Parking lot with pid %s already exists", lot.PID))
		}
		s.cfg.Log.Error("Failed to create parking lot",
			"pid", lot.PID,
			"error", err,
		)
		return apperrors.Internal("Failed to create parking lot", err)
	}

	s.cfg.Log.Info("Parking lot created",
		"id", lot.ID,
		"pid", lot.PID,
		"capacity", lot.Capacity,
	)
	return nil
}

func (s *lotService) GetByID(ctx context.Context, id string) (*model.ParkingLot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Parking lot ID cannot be empty")
	}

	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, lotserrors.ErrNotFound) {
			return nil, lotNotFound(id)
		}
		if errors.Is(err, lotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid parking lot ID format")
		}
		s.cfg.Log.Error("Failed to get parking lot by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve parking lot", err)
	}
	return lot, nil
}

func (s *lotService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLot, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var lots []*model.ParkingLot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count parking lots", "error", err)
			errCount = apperrors.Internal("Failed to count parking lots", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		lots, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all parking lots",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve parking lots", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return lots, count, nil
}

// Stats derives occupancy from the ledgers. Cached results are served until
// their TTL or the next admission or exit on the lot.
func (s *lotService) Stats(ctx context.Context, id string) (*model.LotStats, error) {
	lot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, lot.ID)
	if err != nil {
		s.cfg.Log.Warn("Stats cache read failed", "parking_lot_id", lot.ID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	// "today" is the lot's local day, taken from the contractor's number.
	now := s.clock.Now()
	since := clock.StartOfDayIn(now, locale.LocationForPhone(lot.ContractorPhone))

	var active, reserved, ticketRevenue, sessionRevenue int64
	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		active, errs[0] = s.sessions.CountActiveByLot(ctx, lot.ID)
	}()
	go func() {
		defer wg.Done()
		reserved, errs[1] = s.reservations.CountReservedByLot(ctx, lot.ID, now)
	}()
	go func() {
		defer wg.Done()
		ticketRevenue, errs[2] = s.reservations.SumAmountSince(ctx, lot.ID, since)
	}()
	go func() {
		defer wg.Done()
		sessionRevenue, errs[3] = s.sessions.SumChargedSince(ctx, lot.ID, since)
	}()
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		s.cfg.Log.Error("Failed to compute parking lot stats",
			"parking_lot_id", lot.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to compute parking lot stats", err)
	}

	stats := &model.LotStats{
		ParkingLotID: lot.ID,
		Capacity:     lot.Capacity,
		Active:       active,
		Reserved:     reserved,
		RevenueToday: ticketRevenue + sessionRevenue,
		ComputedAt:   now,
	}
	stats.Available = max(0, int64(lot.Capacity)-stats.Held())

	if err := s.cache.Set(ctx, stats); err != nil {
		s.cfg.Log.Warn("Stats cache write failed", "parking_lot_id", lot.ID, "error", err)
	}
	return stats, nil
}

func (s *lotService) Overview(ctx context.Context) (*model.LotOverview, error) {
	now := s.clock.Now()

	var lots, capacity, active, reserved int64
	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		lots, errs[0] = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		capacity, errs[1] = s.repo.SumCapacity(ctx)
	}()
	go func() {
		defer wg.Done()
		active, errs[2] = s.sessions.CountActive(ctx)
	}()
	go func() {
		defer wg.Done()
		reserved, errs[3] = s.reservations.CountReserved(ctx, now)
	}()
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		s.cfg.Log.Error("Failed to compute parking overview", "error", err)
		return nil, apperrors.Internal("Failed to compute parking overview", err)
	}

	return &model.LotOverview{
		TotalLots:      lots,
		TotalCapacity:  capacity,
		OccupiedSlots:  active,
		AvailableSlots: max(0, capacity-active-reserved),
	}, nil
}

func (s *lotService) InvalidateStats(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.cfg.Log.Warn("Stats cache invalidation failed", "parking_lot_id", id, "error", err)
	}
}

// Admit serializes admissions per lot. The transaction bumps the lot's
// admission_seq first, so two concurrent admissions on one lot conflict and
// the driver re-runs the loser against the winner's committed state.
func (s *lotService) Admit(ctx context.Context, id string, fn AdmitFunc) error {
	if !primitive.IsValidObjectID(id) {
		return apperrors.InvalidInput("Invalid parking lot ID format")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		lot, err := s.repo.BumpAdmissionSeq(sessCtx, id)
		if err != nil {
			if errors.Is(err, lotserrors.ErrNotFound) {
				return lotNotFound(id)
			}
			return err
		}

		now := s.clock.Now()
		active, err := s.sessions.CountActiveByLot(sessCtx, lot.ID)
		if err != nil {
			return err
		}
		reserved, err := s.reservations.CountReservedByLot(sessCtx, lot.ID, now)
		if err != nil {
			return err
		}
		if held := active + reserved; held >= int64(lot.Capacity) {
			s.cfg.Log.Warn("Admission rejected, lot full",
				"parking_lot_id", lot.ID,
				"capacity", lot.Capacity,
				"active", active,
				"reserved", reserved,
			)
			return LotFull(lot, held)
		}

		return fn(sessCtx, lot)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Admission transaction failed",
			"parking_lot_id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to admit vehicle", err)
	}

	s.InvalidateStats(ctx, id)
	return nil
}
