package service

import (
	"context"

	"parkproof/internal/bookings/validator"
	"parkproof/internal/events"
	lotsservice "parkproof/internal/lots/service"
	ticketsservice "parkproof/internal/tickets/service"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
)

type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error)
}

type bookingService struct {
	lots      lotsservice.LotService
	tickets   ticketsservice.TicketService
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	lots lotsservice.LotService,
	tickets ticketsservice.TicketService,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		lots:      lots,
		tickets:   tickets,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Book reserves a spot by issuing a CREATED ticket. A live reservation holds
// capacity, so it goes through the same admission control as an entry.
func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking request rejected", "error", err)
		return nil, err
	}

	var ticket *model.Ticket
	txCtx, buf := events.WithBuffer(ctx)
	err := s.lots.Admit(txCtx, req.ParkingLotID, func(sessCtx context.Context, lot *model.ParkingLot) error {
		buf.Reset()
		var err error
		ticket, err = s.tickets.Create(sessCtx, ticketsservice.CreateInput{
			ParkingLotID:  lot.ID,
			VehicleNumber: req.VehicleNumber,
			VehicleType:   req.VehicleType,
			Amount:        req.Amount,
			HoldFor:       s.cfg.BookingHoldWindow,
		})
		return err
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Booking failed", "parking_lot_id", req.ParkingLotID, "error", err)
			return nil, apperrors.Internal("Failed to create booking", err)
		}
		return nil, err
	}

	buf.Flush(ctx, s.publisher)
	s.cfg.Log.Info("Booking created",
		"ticket_id", ticket.ID,
		"parking_lot_id", ticket.ParkingLotID,
		"vehicle_number", ticket.VehicleNumber,
		"valid_till", ticket.ValidTill,
	)
	return &model.BookingResult{
		TicketID:  ticket.ID,
		ValidTill: ticket.ValidTill,
	}, nil
}
