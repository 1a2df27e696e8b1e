package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"parkproof/internal/events"
	sessionserrors "parkproof/internal/sessions/errors"
	"parkproof/internal/sessions/repository"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"
)

type OpenInput struct {
	ParkingLotID  string
	VehicleNumber string
	EntryMethod   model.EntryMethod
	UserID        string
	TicketID      string
}

type SessionService interface {
	Open(ctx context.Context, in OpenInput) (*model.Session, error)
	FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*model.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Session, error)
	Close(ctx context.Context, session *model.Session, exitTime time.Time, amount int) (*model.Session, error)
	CountActiveByLot(ctx context.Context, lotID string) (int64, error)
	ListByLot(ctx context.Context, lotID string, status model.SessionStatus, limit int, offset int64) ([]*model.Session, int64, error)
}

type sessionService struct {
	repo      repository.SessionRepository
	clock     clock.Clock
	publisher events.Publisher
	cfg       *config.Config
}

func NewSessionService(
	repo repository.SessionRepository,
	clk clock.Clock,
	publisher events.Publisher,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		repo:      repo,
		clock:     clk,
		publisher: publisher,
		cfg:       cfg,
	}
}

// VehicleAlreadyInside is the conflict reported for a second entry of a plate
// that already has an ACTIVE session.
func VehicleAlreadyInside(vehicleNumber string) error {
	return apperrors.Conflict("Vehicle is already inside a parking lot").
		WithReason(apperrors.ReasonVehicleAlreadyInside).
		WithDetails(map[string]any{"vehicleNumber": vehicleNumber})
}

func (s *sessionService) Open(ctx context.Context, in OpenInput) (*model.Session, error) {
	plate := sanitizer.NormalizeVehicleNumber(in.VehicleNumber)
	if plate == "" {
		return nil, apperrors.InvalidInput("vehicleNumber is required")
	}

	now := s.clock.Now()
	session := &model.Session{
		ParkingLotID:  in.ParkingLotID,
		VehicleNumber: plate,
		UserID:        in.UserID,
		TicketID:      in.TicketID,
		EntryTime:     now,
		EntryMethod:   in.EntryMethod,
		Status:        model.SessionActive,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, sessionserrors.ErrDuplicateActive) {
			s.cfg.Log.Warn("Rejected second active session",
				"vehicle_number", plate,
				"parking_lot_id", in.ParkingLotID,
			)
			return nil, VehicleAlreadyInside(plate)
		}
		s.cfg.Log.Error("Failed to open parking session",
			"vehicle_number", plate,
			"parking_lot_id", in.ParkingLotID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to open parking session", err)
	}

	s.cfg.Log.Info("Parking session opened",
		"session_id", session.ID,
		"parking_lot_id", session.ParkingLotID,
		"vehicle_number", plate,
		"entry_method", session.EntryMethod,
		"ticket_id", session.TicketID,
		"user_id", session.UserID,
	)
	events.Emit(ctx, s.publisher, events.FromSession(events.SessionOpened, session, now))
	return session, nil
}

func (s *sessionService) active(ctx context.Context, find func() (*model.Session, error), what string) (*model.Session, error) {
	session, err := find()
	if err != nil {
		if errors.Is(err, sessionserrors.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, sessionserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid " + what + " format")
		}
		s.cfg.Log.Error("Failed to look up active session", "by", what, "error", err)
		return nil, apperrors.Internal("Failed to look up active session", err)
	}
	return session, nil
}

// FindActiveByVehicle returns the vehicle's ACTIVE session, or nil.
func (s *sessionService) FindActiveByVehicle(ctx context.Context, vehicleNumber string) (*model.Session, error) {
	plate := sanitizer.NormalizeVehicleNumber(vehicleNumber)
	if plate == "" {
		return nil, apperrors.InvalidInput("vehicleNumber is required")
	}
	return s.active(ctx, func() (*model.Session, error) {
		return s.repo.FindActiveByVehicle(ctx, plate)
	}, "vehicleNumber")
}

func (s *sessionService) FindActiveByUser(ctx context.Context, userID string) (*model.Session, error) {
	return s.active(ctx, func() (*model.Session, error) {
		return s.repo.FindActiveByUser(ctx, userID)
	}, "userId")
}

// Close ends the session. Closing an already CLOSED session returns the
// stored terminal state and changes nothing.
func (s *sessionService) Close(ctx context.Context, session *model.Session, exitTime time.Time, amount int) (*model.Session, error) {
	if session.Status == model.SessionClosed {
		return session, nil
	}

	err := s.repo.Close(ctx, session.ID, exitTime, amount)
	if err == nil {
		closed := *session
		closed.Status = model.SessionClosed
		closed.ExitTime = &exitTime
		closed.AmountCharged = &amount

		s.cfg.Log.Info("Parking session closed",
			"session_id", closed.ID,
			"parking_lot_id", closed.ParkingLotID,
			"vehicle_number", closed.VehicleNumber,
			"amount_charged", amount,
			"duration", exitTime.Sub(closed.EntryTime),
		)
		events.Emit(ctx, s.publisher, events.FromSession(events.SessionClosed, &closed, exitTime))
		return &closed, nil
	}

	if !errors.Is(err, sessionserrors.ErrNotActive) {
		s.cfg.Log.Error("Failed to close parking session", "session_id", session.ID, "error", err)
		return nil, apperrors.Internal("Failed to close parking session", err)
	}

	stored, findErr := s.repo.FindByID(ctx, session.ID)
	if findErr != nil {
		s.cfg.Log.Error("Failed to reload closed session", "session_id", session.ID, "error", findErr)
		return nil, apperrors.Internal("Failed to close parking session", findErr)
	}
	s.cfg.Log.Info("Parking session already closed", "session_id", stored.ID)
	return stored, nil
}

func (s *sessionService) CountActiveByLot(ctx context.Context, lotID string) (int64, error) {
	n, err := s.repo.CountActiveByLot(ctx, lotID)
	if err != nil {
		s.cfg.Log.Error("Failed to count active sessions", "parking_lot_id", lotID, "error", err)
		return 0, apperrors.Internal("Failed to count active sessions", err)
	}
	return n, nil
}

func (s *sessionService) ListByLot(ctx context.Context, lotID string, status model.SessionStatus, limit int, offset int64) ([]*model.Session, int64, error) {
	switch status {
	case "", model.SessionActive, model.SessionClosed:
	default:
		return nil, 0, apperrors.InvalidInput("status must be ACTIVE or CLOSED")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var sessions []*model.Session
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.CountByLot(ctx, lotID, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count sessions", "parking_lot_id", lotID, "error", err)
			errCount = apperrors.Internal("Failed to count sessions", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		sessions, err = s.repo.FindByLot(ctx, lotID, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list sessions",
				"parking_lot_id", lotID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve sessions", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sessions, count, nil
}
