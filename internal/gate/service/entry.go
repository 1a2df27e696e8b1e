package service

import (
	"context"
	"errors"

	"parkproof/internal/events"
	sessionsservice "parkproof/internal/sessions/service"
	ticketsservice "parkproof/internal/tickets/service"
	userserrors "parkproof/internal/users/errors"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

func (s *gateService) Enter(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error) {
	if err := s.validator.ValidateEntry(req); err != nil {
		s.cfg.Log.Warn("Entry request rejected", "error", err)
		return nil, err
	}

	if req.TicketID != "" {
		return s.enterReserved(ctx, req.TicketID)
	}

	plate := sanitizer.NormalizeVehicleNumber(req.VehicleNumber)
	if req.ParkingLotID == "" || plate == "" {
		return nil, apperrors.InvalidInput("parkingLotId and vehicleNumber are required")
	}

	lot, err := s.lots.GetByID(ctx, req.ParkingLotID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotInside(ctx, plate); err != nil {
		return nil, err
	}

	if req.UserID != "" || req.ContactPhone() != "" {
		return s.enterProfile(ctx, lot, plate, req)
	}
	return s.enterManual(ctx, lot, plate)
}

func (s *gateService) ensureNotInside(ctx context.Context, plate string) error {
	active, err := s.sessions.FindActiveByVehicle(ctx, plate)
	if err != nil {
		return err
	}
	if active != nil {
		s.cfg.Log.Warn("Vehicle already inside",
			"vehicle_number", plate,
			"session_id", active.ID,
			"parking_lot_id", active.ParkingLotID,
		)
		return sessionsservice.VehicleAlreadyInside(plate)
	}
	return nil
}

// enterReserved consumes a booking. The spot was already counted while the
// ticket was live, so capacity is not checked again. Opening the session and
// using the ticket commit together.
func (s *gateService) enterReserved(ctx context.Context, ticketID string) (*model.EntryResult, error) {
	ticket, err := s.tickets.Validate(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotInside(ctx, ticket.VehicleNumber); err != nil {
		return nil, err
	}

	txCtx, buf := events.WithBuffer(ctx)
	var session *model.Session
	err = s.tx.ExecuteTransaction(txCtx, func(sessCtx mongo.SessionContext) error {
		buf.Reset()
		var err error
		session, err = s.sessions.Open(sessCtx, sessionsservice.OpenInput{
			ParkingLotID:  ticket.ParkingLotID,
			VehicleNumber: ticket.VehicleNumber,
			EntryMethod:   model.EntryMethodQR,
			TicketID:      ticket.ID,
		})
		if err != nil {
			return err
		}
		if err := s.tickets.MarkUsed(sessCtx, ticket.ID); err != nil {
			return err
		}
		used := *ticket
		used.Status = model.TicketUsed
		events.Emit(sessCtx, s.publisher, events.FromTicket(events.TicketUsed, &used, session.EntryTime))
		return nil
	})
	if err != nil {
		return nil, s.entryFailed(err, ticket.ParkingLotID, ticket.VehicleNumber)
	}

	buf.Flush(ctx, s.publisher)
	s.lots.InvalidateStats(ctx, ticket.ParkingLotID)

	s.cfg.Log.Info("Reserved entry admitted",
		"session_id", session.ID,
		"ticket_id", ticket.ID,
		"parking_lot_id", ticket.ParkingLotID,
		"vehicle_number", ticket.VehicleNumber,
	)
	return &model.EntryResult{
		SessionID:   session.ID,
		EntryMethod: model.EntryMethodQR,
		Type:        model.EntryReserved,
		TicketID:    ticket.ID,
	}, nil
}

func (s *gateService) resolveUser(ctx context.Context, req *model.EntryRequest) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if req.UserID != "" {
		user, err = s.users.FindByID(ctx, req.UserID)
	} else {
		phone := sanitizer.NormalizePhone(req.ContactPhone())
		if phone == "" {
			return nil, userNotFound()
		}
		user, err = s.users.FindByPhone(ctx, phone)
	}

	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, userNotFound()
		}
		return nil, err
	}
	return user, nil
}

func userNotFound() error {
	return apperrors.NotFound("User").WithReason(apperrors.ReasonUserNotFound)
}

// enterProfile admits a registered user without a booking. A zero amount
// receipt is issued already USED so the stay shows up in the app.
func (s *gateService) enterProfile(ctx context.Context, lot *model.ParkingLot, plate string, req *model.EntryRequest) (*model.EntryResult, error) {
	var (
		session *model.Session
		receipt *model.Ticket
	)

	txCtx, buf := events.WithBuffer(ctx)
	err := s.lots.Admit(txCtx, lot.ID, func(sessCtx context.Context, lot *model.ParkingLot) error {
		buf.Reset()

		user, err := s.resolveUser(sessCtx, req)
		if err != nil {
			return err
		}

		receipt, err = s.tickets.IssueReceipt(sessCtx, ticketsservice.CreateInput{
			ParkingLotID:  lot.ID,
			VehicleNumber: plate,
			VehicleType:   req.VehicleType,
			HoldFor:       s.cfg.ProfileReceiptValidity,
		})
		if err != nil {
			return err
		}

		session, err = s.sessions.Open(sessCtx, sessionsservice.OpenInput{
			ParkingLotID:  lot.ID,
			VehicleNumber: plate,
			EntryMethod:   model.EntryMethodQR,
			UserID:        user.ID,
			TicketID:      receipt.ID,
		})
		return err
	})
	if err != nil {
		return nil, s.entryFailed(err, lot.ID, plate)
	}

	buf.Flush(ctx, s.publisher)
	s.cfg.Log.Info("Profile entry admitted",
		"session_id", session.ID,
		"ticket_id", receipt.ID,
		"user_id", session.UserID,
		"parking_lot_id", lot.ID,
		"vehicle_number", plate,
	)
	return &model.EntryResult{
		SessionID:   session.ID,
		EntryMethod: model.EntryMethodQR,
		Type:        model.EntryProfile,
		TicketID:    receipt.ID,
	}, nil
}

func (s *gateService) enterManual(ctx context.Context, lot *model.ParkingLot, plate string) (*model.EntryResult, error) {
	var session *model.Session

	txCtx, buf := events.WithBuffer(ctx)
	err := s.lots.Admit(txCtx, lot.ID, func(sessCtx context.Context, lot *model.ParkingLot) error {
		buf.Reset()
		var err error
		session, err = s.sessions.Open(sessCtx, sessionsservice.OpenInput{
			ParkingLotID:  lot.ID,
			VehicleNumber: plate,
			EntryMethod:   model.EntryMethodOffline,
		})
		return err
	})
	if err != nil {
		return nil, s.entryFailed(err, lot.ID, plate)
	}

	buf.Flush(ctx, s.publisher)
	s.cfg.Log.Info("Manual entry admitted",
		"session_id", session.ID,
		"parking_lot_id", lot.ID,
		"vehicle_number", plate,
	)
	return &model.EntryResult{
		SessionID:   session.ID,
		EntryMethod: model.EntryMethodOffline,
		Type:        model.EntryManual,
	}, nil
}

func (s *gateService) entryFailed(err error, lotID, plate string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error("Entry failed",
		"parking_lot_id", lotID,
		"vehicle_number", plate,
		"error", err,
	)
	return apperrors.Internal("Failed to admit vehicle", err)
}
