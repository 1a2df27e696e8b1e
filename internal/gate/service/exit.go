package service

import (
	"context"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"
)

func sessionNotFound() error {
	return apperrors.NotFound("Active parking session").WithReason(apperrors.ReasonSessionNotFound)
}

// resolve finds the ACTIVE session an exit refers to, by ticket, then user,
// then plate.
func (s *gateService) resolve(ctx context.Context, req *model.ExitRequest) (*model.Session, error) {
	if req.Empty() {
		return nil, apperrors.InvalidInput("ticketId or userId or vehicleNumber is required")
	}
	if err := s.validator.ValidateExit(req); err != nil {
		return nil, err
	}

	var (
		session *model.Session
		err     error
	)
	switch {
	case req.TicketID != "":
		ticket, findErr := s.tickets.GetByID(ctx, req.TicketID)
		if findErr != nil {
			return nil, findErr
		}
		session, err = s.sessions.FindActiveByVehicle(ctx, ticket.VehicleNumber)
	case req.UserID != "":
		session, err = s.sessions.FindActiveByUser(ctx, req.UserID)
	default:
		plate := sanitizer.NormalizeVehicleNumber(req.VehicleNumber)
		if plate == "" {
			return nil, apperrors.InvalidInput("vehicleNumber is required")
		}
		session, err = s.sessions.FindActiveByVehicle(ctx, plate)
	}
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, sessionNotFound()
	}
	return session, nil
}

// QuoteExit prices the stay as of now without changing anything.
func (s *gateService) QuoteExit(ctx context.Context, req *model.ExitRequest) (*model.ExitQuote, error) {
	session, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.ExitQuote{
		SessionID:     session.ID,
		VehicleNumber: session.VehicleNumber,
		EntryTime:     session.EntryTime,
		AmountDue:     s.fees.Amount(session.EntryTime, s.clock.Now()),
	}, nil
}

func (s *gateService) Exit(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error) {
	session, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	closed, err := s.sessions.Close(ctx, session, now, s.fees.Amount(session.EntryTime, now))
	if err != nil {
		return nil, err
	}
	s.lots.InvalidateStats(ctx, closed.ParkingLotID)

	result := &model.ExitResult{
		SessionID:     closed.ID,
		VehicleNumber: closed.VehicleNumber,
		EntryTime:     closed.EntryTime,
		Status:        closed.Status,
	}
	if closed.ExitTime != nil {
		result.ExitTime = *closed.ExitTime
	}
	if closed.AmountCharged != nil {
		result.AmountCharged = *closed.AmountCharged
	}
	return result, nil
}
