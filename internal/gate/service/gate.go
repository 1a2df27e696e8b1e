package service

import (
	"context"

	"parkproof/internal/events"
	"parkproof/internal/gate/validator"
	lotsservice "parkproof/internal/lots/service"
	sessionsservice "parkproof/internal/sessions/service"
	ticketsservice "parkproof/internal/tickets/service"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	mongotx "parkproof/pkg/db/mongo"
	"parkproof/pkg/model"
)

// UserDirectory resolves the registered user behind a profile QR.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
}

// GateService coordinates the ledgers for the physical gate: the three entry
// paths, exit quotes and closes, and the per-plate status the app polls.
type GateService interface {
	Enter(ctx context.Context, req *model.EntryRequest) (*model.EntryResult, error)
	QuoteExit(ctx context.Context, req *model.ExitRequest) (*model.ExitQuote, error)
	Exit(ctx context.Context, req *model.ExitRequest) (*model.ExitResult, error)
	ActiveStatus(ctx context.Context, vehicleNumber string) (*model.ActiveStatus, error)
}

type gateService struct {
	tickets   ticketsservice.TicketService
	sessions  sessionsservice.SessionService
	lots      lotsservice.LotService
	users     UserDirectory
	tx        mongotx.TransactionManager
	publisher events.Publisher
	validator *validator.RequestValidator
	fees      FeeSchedule
	clock     clock.Clock
	cfg       *config.Config
}

func NewGateService(
	tickets ticketsservice.TicketService,
	sessions sessionsservice.SessionService,
	lots lotsservice.LotService,
	users UserDirectory,
	tx mongotx.TransactionManager,
	publisher events.Publisher,
	validator *validator.RequestValidator,
	clk clock.Clock,
	cfg *config.Config,
) GateService {
	return &gateService{
		tickets:   tickets,
		sessions:  sessions,
		lots:      lots,
		users:     users,
		tx:        tx,
		publisher: publisher,
		validator: validator,
		fees:      FeeSchedule{Base: cfg.FeeBase, PerHour: cfg.FeePerHour},
		clock:     clk,
		cfg:       cfg,
	}
}
