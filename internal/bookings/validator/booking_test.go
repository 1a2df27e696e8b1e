package validator

import (
	"net/http"
	"testing"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingValidator(t *testing.T) {
	v := NewBookingValidator()

	tests := []struct {
		name      string
		req       model.BookingRequest
		wantField string
	}{
		{"valid", model.BookingRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01AB1234", Amount: 50}, ""},
		{"missing lot", model.BookingRequest{VehicleNumber: "KA01"}, "parkingLotId"},
		{"malformed lot", model.BookingRequest{ParkingLotID: "lot-1", VehicleNumber: "KA01"}, "parkingLotId"},
		{"blank plate", model.BookingRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "   "}, "vehicleNumber"},
		{"synonym type", model.BookingRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01", VehicleType: "scooter"}, ""},
		{"unknown type", model.BookingRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01", VehicleType: "truck"}, "vehicleType"},
		{"negative amount", model.BookingRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01", Amount: -5}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			appErr := apperrors.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
			assert.Contains(t, appErr.Details, tt.wantField)
		})
	}
}
