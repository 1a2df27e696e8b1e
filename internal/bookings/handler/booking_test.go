package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parkproof/internal/bookings/service"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/logger"
	"parkproof/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	service.BookingService
	bookFunc func(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error)
}

func (m *mockBookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingResult, error) {
	return m.bookFunc(ctx, req)
}

func TestBookingHandler_Book(t *testing.T) {
	validTill := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		result     *model.BookingResult
		err        error
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"parkingLotId":"65f1c2a9e4b0a1b2c3d4e5f6","vehicleNumber":"KA01","amount":50}`,
			result:     &model.BookingResult{TicketID: "t1", ValidTill: validTill},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "lot full",
			body:       `{"parkingLotId":"65f1c2a9e4b0a1b2c3d4e5f6","vehicleNumber":"KA01"}`,
			err:        apperrors.Conflict("Parking lot is full").WithReason(apperrors.ReasonLotFull),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "malformed body",
			body:       `{"parkingLotId":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				bookFunc: func(context.Context, *model.BookingRequest) (*model.BookingResult, error) {
					return tt.result, tt.err
				},
			}
			router := httprouter.New()
			NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/booking", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.result == nil {
				return
			}
			var body model.BookingResult
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.TicketID != "t1" || !body.ValidTill.Equal(validTill) {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
