package service

import (
	"context"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"
)

func (s *gateService) ActiveStatus(ctx context.Context, vehicleNumber string) (*model.ActiveStatus, error) {
	plate := sanitizer.NormalizeVehicleNumber(vehicleNumber)
	if plate == "" {
		return nil, apperrors.InvalidInput("vehicleNumber is required")
	}

	session, err := s.sessions.FindActiveByVehicle(ctx, plate)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindActiveForVehicle(ctx, plate)
	if err != nil {
		return nil, err
	}

	switch {
	case session != nil:
		return &model.ActiveStatus{
			Active:     true,
			Status:     model.ActivityParked,
			EntryTime:  &session.EntryTime,
			Ticket:     ticket,
			Session:    session,
			ParkingLot: s.lotFor(ctx, session.ParkingLotID),
		}, nil
	case ticket != nil && ticket.Status == model.TicketCreated:
		return &model.ActiveStatus{
			Active:     true,
			Status:     model.ActivityReserved,
			Ticket:     ticket,
			ParkingLot: s.lotFor(ctx, ticket.ParkingLotID),
		}, nil
	default:
		return &model.ActiveStatus{Active: false}, nil
	}
}

// lotFor is best effort; the status is still useful without lot details.
func (s *gateService) lotFor(ctx context.Context, lotID string) *model.ParkingLot {
	lot, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load parking lot for status", "parking_lot_id", lotID, "error", err)
		return nil
	}
	return lot
}
