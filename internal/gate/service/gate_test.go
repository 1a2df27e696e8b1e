package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"parkproof/internal/events"
	"parkproof/internal/gate/validator"
	lotsservice "parkproof/internal/lots/service"
	lotsvalidator "parkproof/internal/lots/validator"
	sessionsservice "parkproof/internal/sessions/service"
	ticketsservice "parkproof/internal/tickets/service"
	"parkproof/pkg/cache"
	"parkproof/pkg/clock"
	"parkproof/pkg/config"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/logger"
	"parkproof/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Type
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e.Type)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Type(nil), p.got...)
}

type GateSuite struct {
	suite.Suite

	ctx     context.Context
	store   *store
	clock   *clock.Manual
	pub     *recordingPublisher
	tickets ticketsservice.TicketService
	lots    lotsservice.LotService
	gate    GateService
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newStore()
	s.clock = clock.NewManual(t0)
	s.pub = &recordingPublisher{}

	cfg := &config.Config{
		Log:                    logger.Discard(),
		ReadTimeout:            5 * time.Second,
		FeeBase:                20,
		FeePerHour:             10,
		BookingHoldWindow:      10 * time.Minute,
		ProfileReceiptValidity: 24 * time.Hour,
	}

	s.tickets = ticketsservice.NewTicketService(ticketRepo{s.store}, s.clock, s.pub, cfg)
	sessions := sessionsservice.NewSessionService(sessionRepo{s.store}, s.clock, s.pub, cfg)
	s.lots = lotsservice.NewLotService(
		lotRepo{s.store},
		sessionRepo{s.store},
		ticketRepo{s.store},
		cache.NoopStatsCache{},
		lotsvalidator.NewLotValidator(),
		s.clock,
		cfg,
	)
	s.gate = NewGateService(s.tickets, sessions, s.lots, userRepo{s.store}, s.store, s.pub, validator.NewRequestValidator(), s.clock, cfg)
}

func (s *GateSuite) newLot(capacity int) string {
	lot := &model.ParkingLot{PID: fmt.Sprintf("LOT-%d", len(s.store.lots)), Name: "Lot", Area: "Jayanagar", Capacity: capacity}
	s.Require().NoError(s.lots.Create(s.ctx, lot))
	return lot.ID
}

func (s *GateSuite) book(lotID, plate string) *model.Ticket {
	t, err := s.tickets.Create(s.ctx, ticketsservice.CreateInput{
		ParkingLotID:  lotID,
		VehicleNumber: plate,
		Amount:        50,
		HoldFor:       10 * time.Minute,
	})
	s.Require().NoError(err)
	return t
}

func (s *GateSuite) requireReason(err error, status int, reason string) {
	s.T().Helper()
	appErr := apperrors.AsAppError(err)
	s.Require().NotNil(appErr, "expected an AppError, got %v", err)
	s.Equal(status, appErr.StatusCode(), "status for %v", err)
	s.Equal(reason, appErr.Reason, "reason for %v", err)
}

func (s *GateSuite) TestReservedEntry() {
	lotID := s.newLot(5)
	ticket := s.book(lotID, "ka01ab1234")

	res, err := s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.Require().NoError(err)
	s.Equal(model.EntryReserved, res.Type)
	s.Equal(model.EntryMethodQR, res.EntryMethod)
	s.Equal(ticket.ID, res.TicketID)

	stored, err := s.tickets.GetByID(s.ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal(model.TicketUsed, stored.Status)
	s.Require().NotNil(stored.UsedAt)

	session := s.store.sessions[res.SessionID]
	s.Require().NotNil(session)
	s.Equal("KA01AB1234", session.VehicleNumber)
	s.Equal(ticket.ID, session.TicketID)
	s.Equal(model.SessionActive, session.Status)

	s.Equal([]events.Type{events.TicketCreated, events.SessionOpened, events.TicketUsed}, s.pub.types())

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.requireReason(err, http.StatusConflict, apperrors.ReasonTicketAlreadyUsed)
}

func (s *GateSuite) TestReservedEntryWithExpiredTicket() {
	lotID := s.newLot(5)
	ticket := s.book(lotID, "KA02")
	s.clock.Advance(11 * time.Minute)

	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.requireReason(err, http.StatusGone, apperrors.ReasonTicketExpired)

	stored, _ := s.tickets.GetByID(s.ctx, ticket.ID)
	s.Equal(model.TicketExpired, stored.Status)
	s.Empty(s.store.sessions)
}

func (s *GateSuite) TestReservedEntryErrors() {
	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: "not-an-id"})
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: newID()})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonTicketNotFound)
}

func (s *GateSuite) TestReservedEntryWhileAlreadyInside() {
	lotID := s.newLot(5)
	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: "KA03"})
	s.Require().NoError(err)
	ticket := s.book(lotID, "KA03")

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.requireReason(err, http.StatusConflict, apperrors.ReasonVehicleAlreadyInside)

	stored, _ := s.tickets.GetByID(s.ctx, ticket.ID)
	s.Equal(model.TicketCreated, stored.Status, "a rejected entry must not consume the ticket")
}

func (s *GateSuite) TestManualEntryAndReentry() {
	lotID := s.newLot(5)
	req := &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: " mh12 cd 2222 "}

	res, err := s.gate.Enter(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(model.EntryManual, res.Type)
	s.Equal(model.EntryMethodOffline, res.EntryMethod)
	s.Empty(res.TicketID)

	_, err = s.gate.Enter(s.ctx, req)
	s.requireReason(err, http.StatusConflict, apperrors.ReasonVehicleAlreadyInside)

	s.clock.Advance(30 * time.Minute)
	_, err = s.gate.Exit(s.ctx, &model.ExitRequest{VehicleNumber: "MH12 CD 2222"})
	s.Require().NoError(err)

	_, err = s.gate.Enter(s.ctx, req)
	s.NoError(err, "re-entry after exit must be admitted")
}

func (s *GateSuite) TestEntryPreconditions() {
	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{VehicleNumber: "KA01"})
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: "xyz", VehicleNumber: "KA01"})
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: newID(), VehicleNumber: "KA01"})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonLotNotFound)
}

func (s *GateSuite) TestLiveReservationFillsLot() {
	lotID := s.newLot(1)
	s.book(lotID, "KA10")

	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: "KA11"})
	s.requireReason(err, http.StatusConflict, apperrors.ReasonLotFull)

	s.clock.Advance(11 * time.Minute)
	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: "KA11"})
	s.NoError(err, "an expired reservation no longer holds the spot")
}

func (s *GateSuite) TestConcurrentAdmissionsRespectCapacity() {
	lotID := s.newLot(3)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, full := 0, 0
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: fmt.Sprintf("KA%02d", i)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case apperrors.HasReason(err, apperrors.ReasonLotFull):
				full++
			}
		}()
	}
	wg.Wait()

	s.Equal(3, admitted)
	s.Equal(7, full)
}

func (s *GateSuite) TestProfileEntryByPhone() {
	lotID := s.newLot(5)
	userID := newID()
	s.store.users[userID] = &model.User{ID: userID, Phone: "+919876543210", Role: model.RoleParker}

	res, err := s.gate.Enter(s.ctx, &model.EntryRequest{
		ParkingLotID:  lotID,
		VehicleNumber: "KA20",
		Username:      "98765 43210",
		VehicleType:   "bike",
	})
	s.Require().NoError(err)
	s.Equal(model.EntryProfile, res.Type)
	s.Equal(model.EntryMethodQR, res.EntryMethod)
	s.Require().NotEmpty(res.TicketID)

	receipt := s.store.tickets[res.TicketID]
	s.Equal(model.TicketUsed, receipt.Status)
	s.Equal(0, receipt.Amount)
	s.Equal("2w", receipt.VehicleType)
	s.True(receipt.ValidTill.Equal(t0.Add(24 * time.Hour)))

	session := s.store.sessions[res.SessionID]
	s.Equal(userID, session.UserID)
	s.Equal(res.TicketID, session.TicketID)

	out, err := s.gate.Exit(s.ctx, &model.ExitRequest{UserID: userID})
	s.Require().NoError(err)
	s.Equal(res.SessionID, out.SessionID)
}

func (s *GateSuite) TestProfileEntryUnknownUser() {
	lotID := s.newLot(5)

	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: "KA21", UserID: newID()})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonUserNotFound)
	s.Empty(s.store.sessions)
	s.Empty(s.store.tickets)
	s.Empty(s.pub.types(), "nothing may be published for a rolled back admission")
}

func (s *GateSuite) TestQuoteThenClose() {
	lotID := s.newLot(5)
	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{ParkingLotID: lotID, VehicleNumber: "DL01"})
	s.Require().NoError(err)

	s.clock.Advance(65 * time.Minute)
	quote, err := s.gate.QuoteExit(s.ctx, &model.ExitRequest{VehicleNumber: "dl01"})
	s.Require().NoError(err)
	s.Equal(40, quote.AmountDue)
	s.True(quote.EntryTime.Equal(t0))

	s.clock.Advance(5 * time.Minute)
	out, err := s.gate.Exit(s.ctx, &model.ExitRequest{VehicleNumber: "DL01"})
	s.Require().NoError(err)
	s.Equal(model.SessionClosed, out.Status)
	s.Equal(40, out.AmountCharged)
	s.True(out.ExitTime.Equal(t0.Add(70 * time.Minute)))

	_, err = s.gate.Exit(s.ctx, &model.ExitRequest{VehicleNumber: "DL01"})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonSessionNotFound)

	stats, err := s.lots.Stats(s.ctx, lotID)
	s.Require().NoError(err)
	s.EqualValues(0, stats.Active)
	s.EqualValues(40, stats.RevenueToday)
}

func (s *GateSuite) TestExitByTicket() {
	lotID := s.newLot(5)
	ticket := s.book(lotID, "TN09")
	_, err := s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)
	out, err := s.gate.Exit(s.ctx, &model.ExitRequest{TicketID: ticket.ID, VehicleNumber: "IGNORED"})
	s.Require().NoError(err)
	s.Equal("TN09", out.VehicleNumber)
	s.Equal(40, out.AmountCharged)
}

func (s *GateSuite) TestExitErrors() {
	_, err := s.gate.Exit(s.ctx, &model.ExitRequest{})
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())

	_, err = s.gate.QuoteExit(s.ctx, &model.ExitRequest{UserID: "bad"})
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())

	_, err = s.gate.Exit(s.ctx, &model.ExitRequest{TicketID: newID()})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonTicketNotFound)

	_, err = s.gate.Exit(s.ctx, &model.ExitRequest{VehicleNumber: "NOPE"})
	s.requireReason(err, http.StatusNotFound, apperrors.ReasonSessionNotFound)
}

func (s *GateSuite) TestActiveStatus() {
	lotID := s.newLot(5)

	st, err := s.gate.ActiveStatus(s.ctx, "KA30")
	s.Require().NoError(err)
	s.False(st.Active)

	ticket := s.book(lotID, "KA30")
	st, err = s.gate.ActiveStatus(s.ctx, "ka30")
	s.Require().NoError(err)
	s.Equal(model.ActivityReserved, st.Status)
	s.Equal(ticket.ID, st.Ticket.ID)
	s.Require().NotNil(st.ParkingLot)
	s.Equal(lotID, st.ParkingLot.ID)

	_, err = s.gate.Enter(s.ctx, &model.EntryRequest{TicketID: ticket.ID})
	s.Require().NoError(err)
	st, err = s.gate.ActiveStatus(s.ctx, "KA30")
	s.Require().NoError(err)
	s.Equal(model.ActivityParked, st.Status)
	s.NotNil(st.Session)
	s.NotNil(st.EntryTime)

	_, err = s.gate.Exit(s.ctx, &model.ExitRequest{VehicleNumber: "KA30"})
	s.Require().NoError(err)
	st, err = s.gate.ActiveStatus(s.ctx, "KA30")
	s.Require().NoError(err)
	s.False(st.Active)

	_, err = s.gate.ActiveStatus(s.ctx, " ")
	s.Equal(http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())
}

func TestFeeSchedule(t *testing.T) {
	fees := FeeSchedule{Base: 20, PerHour: 10}
	tests := []struct {
		stay time.Duration
		want int
	}{
		{0, 30},
		{time.Minute, 30},
		{60 * time.Minute, 30},
		{61 * time.Minute, 40},
		{65 * time.Minute, 40},
		{120 * time.Minute, 40},
		{121 * time.Minute, 50},
		{-time.Minute, 30},
	}

	for _, tt := range tests {
		t.Run(tt.stay.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, fees.Amount(t0, t0.Add(tt.stay)))
		})
	}
}

func TestBillableHours(t *testing.T) {
	require.Equal(t, 1, BillableHours(0))
	require.Equal(t, 3, BillableHours(2*time.Hour+time.Second))
}
