//go:build integration

package parking

import (
	"net/http"
	"sync"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
)

func (s *ParkingSuite) TestBookEnterExit() {
	lotID := s.createLot(5)
	plate := s.plate()

	resp, err := s.api.Book(map[string]any{"parkingLotId": lotID, "vehicleNumber": plate, "amount": 50})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	var booking model.BookingResult
	s.Require().NoError(resp.DecodeJSON(&booking))

	resp, err = s.api.ValidateTicket(booking.TicketID)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = s.api.ActiveStatus(plate)
	s.Require().NoError(err)
	var status model.ActiveStatus
	s.Require().NoError(resp.DecodeJSON(&status))
	s.Equal(model.ActivityReserved, status.Status)

	resp, err = s.api.Enter(map[string]any{"ticketId": booking.TicketID})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	var entry model.EntryResult
	s.Require().NoError(resp.DecodeJSON(&entry))
	s.Equal(model.EntryReserved, entry.Type)

	resp, err = s.api.Enter(map[string]any{"ticketId": booking.TicketID})
	s.Require().NoError(err)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apperrors.ReasonTicketAlreadyUsed, s.reason(resp))

	resp, err = s.api.QuoteExit("", "", plate)
	s.Require().NoError(err)
	var quote model.ExitQuote
	s.Require().NoError(resp.DecodeJSON(&quote))
	s.Equal(30, quote.AmountDue)

	resp, err = s.api.Exit(map[string]any{"ticketId": booking.TicketID})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(resp.Body))
	var exit model.ExitResult
	s.Require().NoError(resp.DecodeJSON(&exit))
	s.Equal(model.SessionClosed, exit.Status)
	s.Equal(30, exit.AmountCharged)

	resp, err = s.api.LotStats(lotID)
	s.Require().NoError(err)
	var stats model.LotStats
	s.Require().NoError(resp.DecodeJSON(&stats))
	s.EqualValues(0, stats.Active)
	s.EqualValues(80, stats.RevenueToday)
}

func (s *ParkingSuite) TestManualReentryIsRejectedWhileInside() {
	lotID := s.createLot(5)
	body := map[string]any{"parkingLotId": lotID, "vehicleNumber": s.plate()}

	resp, err := s.api.Enter(body)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp, err = s.api.Enter(body)
	s.Require().NoError(err)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apperrors.ReasonVehicleAlreadyInside, s.reason(resp))
}

func (s *ParkingSuite) TestReservationFillsLot() {
	lotID := s.createLot(1)

	resp, err := s.api.Book(map[string]any{"parkingLotId": lotID, "vehicleNumber": s.plate()})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp, err = s.api.Enter(map[string]any{"parkingLotId": lotID, "vehicleNumber": s.plate()})
	s.Require().NoError(err)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(apperrors.ReasonLotFull, s.reason(resp))
}

func (s *ParkingSuite) TestConcurrentEntriesRespectCapacity() {
	lotID := s.createLot(3)
	plates := make([]string, 8)
	for i := range plates {
		plates[i] = s.plate()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for _, plate := range plates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.api.Enter(map[string]any{"parkingLotId": lotID, "vehicleNumber": plate})
			if err != nil {
				return
			}
			if resp.StatusCode == http.StatusCreated {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(3, admitted)
}

func (s *ParkingSuite) TestProfileEntryAndExitByUser() {
	lotID := s.createLot(5)
	userID := s.seedUser("+919812345678")

	resp, err := s.api.Enter(map[string]any{"parkingLotId": lotID, "vehicleNumber": s.plate(), "phone": "9812345678"})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(resp.Body))
	var entry model.EntryResult
	s.Require().NoError(resp.DecodeJSON(&entry))
	s.Equal(model.EntryProfile, entry.Type)
	s.NotEmpty(entry.TicketID)

	resp, err = s.api.Exit(map[string]any{"userId": userID})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode, string(resp.Body))

	resp, err = s.api.Exit(map[string]any{"userId": userID})
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(apperrors.ReasonSessionNotFound, s.reason(resp))
}

func (s *ParkingSuite) TestUnknownUserIsRejected() {
	lotID := s.createLot(5)

	resp, err := s.api.Enter(map[string]any{"parkingLotId": lotID, "vehicleNumber": s.plate(), "phone": "9800000000"})
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(apperrors.ReasonUserNotFound, s.reason(resp))
}
