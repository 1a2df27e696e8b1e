package service

import (
	"context"
	"errors"
	"time"

	"parkproof/internal/events"
	ticketserrors "parkproof/internal/tickets/errors"
	"parkproof/internal/tickets/repository"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"
)

// CreateInput describes a new ticket. HoldFor is mandatory, each caller
// states its own validity window.
type CreateInput struct {
	ParkingLotID  string
	VehicleNumber string
	VehicleType   string
	Amount        int
	HoldFor       time.Duration
}

type TicketService interface {
	Create(ctx context.Context, in CreateInput) (*model.Ticket, error)
	IssueReceipt(ctx context.Context, in CreateInput) (*model.Ticket, error)
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	Validate(ctx context.Context, id string) (*model.Ticket, error)
	ExpireIfPastDue(ctx context.Context, ticket *model.Ticket) (bool, error)
	MarkUsed(ctx context.Context, id string) error
	FindActiveForVehicle(ctx context.Context, vehicleNumber string) (*model.Ticket, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type ticketService struct {
	repo      repository.TicketRepository
	clock     clock.Clock
	publisher events.Publisher
	cfg       *config.Config
}

func NewTicketService(
	repo repository.TicketRepository,
	clk clock.Clock,
	publisher events.Publisher,
	cfg *config.Config,
) TicketService {
	return &ticketService{
		repo:      repo,
		clock:     clk,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *ticketService) newTicket(in CreateInput, status model.TicketStatus) (*model.Ticket, error) {
	if in.HoldFor <= 0 {
		return nil, apperrors.InvalidInput("ticket validity window must be positive")
	}
	if in.Amount < 0 {
		return nil, apperrors.InvalidInput("amount cannot be negative")
	}
	plate := sanitizer.NormalizeVehicleNumber(in.VehicleNumber)
	if plate == "" {
		return nil, apperrors.InvalidInput("vehicleNumber is required")
	}
	vehicleType := sanitizer.NormalizeVehicleType(in.VehicleType)
	if vehicleType == "" {
		return nil, apperrors.InvalidInput("vehicleType must be one of 4w, 2w, 3w")
	}

	now := s.clock.Now()
	t := &model.Ticket{
		ParkingLotID:  in.ParkingLotID,
		VehicleNumber: plate,
		VehicleType:   vehicleType,
		Amount:        in.Amount,
		Status:        status,
		ValidTill:     now.Add(in.HoldFor),
		CreatedAt:     now,
	}
	if status == model.TicketUsed {
		t.UsedAt = &now
	}
	return t, nil
}

func (s *ticketService) insert(ctx context.Context, t *model.Ticket) error {
	if err := s.repo.Create(ctx, t); err != nil {
		s.cfg.Log.Error("Failed to create ticket",
			"parking_lot_id", t.ParkingLotID,
			"vehicle_number", t.VehicleNumber,
			"status", t.Status,
			"error", err,
		)
		return apperrors.Internal("Failed to create ticket", err)
	}
	return nil
}

// Create issues a reservation ticket in CREATED state.
func (s *ticketService) Create(ctx context.Context, in CreateInput) (*model.Ticket, error) {
	t, err := s.newTicket(in, model.TicketCreated)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Ticket created",
		"ticket_id", t.ID,
		"parking_lot_id", t.ParkingLotID,
		"vehicle_number", t.VehicleNumber,
		"valid_till", t.ValidTill,
	)
	events.Emit(ctx, s.publisher, events.FromTicket(events.TicketCreated, t, t.CreatedAt))
	return t, nil
}

// IssueReceipt records an entry that had no prior reservation. The ticket is
// born USED so it never counts as a held spot.
func (s *ticketService) IssueReceipt(ctx context.Context, in CreateInput) (*model.Ticket, error) {
	t, err := s.newTicket(in, model.TicketUsed)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Entry receipt issued",
		"ticket_id", t.ID,
		"parking_lot_id", t.ParkingLotID,
		"vehicle_number", t.VehicleNumber,
	)
	events.Emit(ctx, s.publisher, events.FromTicket(events.TicketUsed, t, t.CreatedAt))
	return t, nil
}

func (s *ticketService) find(ctx context.Context, id string) (*model.Ticket, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("ticketId is required")
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ticketserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid ticketId format")
		}
		if errors.Is(err, ticketserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ticket", id).WithReason(apperrors.ReasonTicketNotFound)
		}
		s.cfg.Log.Error("Failed to get ticket by ID", "ticket_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve ticket", err)
	}
	return t, nil
}

// GetByID returns the ticket in whatever state it is stored.
func (s *ticketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	return s.find(ctx, id)
}

// Validate returns the ticket when it can still be used for entry. A CREATED
// ticket found past its validity is expired on the spot.
func (s *ticketService) Validate(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch t.Status {
	case model.TicketUsed:
		return nil, ticketUsed(t.ID)
	case model.TicketExpired:
		return nil, ticketExpired(t.ID)
	}

	if t.IsPastDue(s.clock.Now()) {
		expired, err := s.ExpireIfPastDue(ctx, t)
		if err != nil {
			return nil, err
		}
		if !expired {
			// Someone else moved the ticket first; report the state they left.
			current, err := s.find(ctx, id)
			if err != nil {
				return nil, err
			}
			if current.Status == model.TicketUsed {
				return nil, ticketUsed(current.ID)
			}
		}
		return nil, ticketExpired(t.ID)
	}

	return t, nil
}

func ticketUsed(id string) error {
	return apperrors.Conflict("Ticket has already been used").
		WithReason(apperrors.ReasonTicketAlreadyUsed).
		WithDetails(map[string]any{"ticketId": id})
}

func ticketExpired(id string) error {
	return apperrors.Expired("Ticket has expired").
		WithReason(apperrors.ReasonTicketExpired).
		WithDetails(map[string]any{"ticketId": id})
}

// ExpireIfPastDue applies the lazy CREATED -> EXPIRED transition. The event
// is emitted only by the caller that actually performed it.
func (s *ticketService) ExpireIfPastDue(ctx context.Context, ticket *model.Ticket) (bool, error) {
	now := s.clock.Now()
	if !ticket.IsPastDue(now) {
		return false, nil
	}

	expired, err := s.repo.ExpireIfPastDue(ctx, ticket.ID, now)
	if err != nil {
		s.cfg.Log.Error("Failed to expire ticket", "ticket_id", ticket.ID, "error", err)
		return false, apperrors.Internal("Failed to expire ticket", err)
	}
	if !expired {
		return false, nil
	}

	ticket.Status = model.TicketExpired
	ticket.ExpiredAt = &now
	s.cfg.Log.Info("Ticket expired",
		"ticket_id", ticket.ID,
		"vehicle_number", ticket.VehicleNumber,
		"valid_till", ticket.ValidTill,
	)
	events.Emit(ctx, s.publisher, events.FromTicket(events.TicketExpired, ticket, now))
	return true, nil
}

func (s *ticketService) MarkUsed(ctx context.Context, id string) error {
	err := s.repo.MarkUsed(ctx, id, s.clock.Now())
	if err == nil {
		s.cfg.Log.Info("Ticket used", "ticket_id", id)
		return nil
	}

	if errors.Is(err, ticketserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid ticketId format")
	}
	if !errors.Is(err, ticketserrors.ErrNotCreated) {
		s.cfg.Log.Error("Failed to mark ticket used", "ticket_id", id, "error", err)
		return apperrors.Internal("Failed to mark ticket used", err)
	}

	// Lost the race; report the state the winner left behind.
	current, findErr := s.find(ctx, id)
	if findErr != nil {
		return findErr
	}
	if current.Status == model.TicketExpired {
		return ticketExpired(id)
	}
	return ticketUsed(id)
}

// FindActiveForVehicle returns the newest ticket that still covers a stay
// or hold for the vehicle, or nil.
func (s *ticketService) FindActiveForVehicle(ctx context.Context, vehicleNumber string) (*model.Ticket, error) {
	plate := sanitizer.NormalizeVehicleNumber(vehicleNumber)
	if plate == "" {
		return nil, apperrors.InvalidInput("vehicleNumber is required")
	}

	t, err := s.repo.FindLatestLiveForVehicle(ctx, plate, s.clock.Now())
	if err != nil {
		if errors.Is(err, ticketserrors.ErrNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to find live ticket", "vehicle_number", plate, "error", err)
		return nil, apperrors.Internal("Failed to retrieve ticket", err)
	}
	return t, nil
}

func (s *ticketService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepExpired(ctx, s.clock.Now())
	if err != nil {
		s.cfg.Log.Error("Ticket sweep failed", "error", err)
		return 0, apperrors.Internal("Failed to sweep expired tickets", err)
	}
	if n > 0 {
		s.cfg.Log.Info("Expired stale tickets", "count", n)
	}
	return n, nil
}
