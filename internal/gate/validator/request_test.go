package validator

import (
	"testing"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
)

func TestValidateEntry(t *testing.T) {
	v := NewRequestValidator()

	if err := v.ValidateEntry(&model.EntryRequest{}); err != nil {
		t.Errorf("empty request is structurally valid, got %v", err)
	}

	err := v.ValidateEntry(&model.EntryRequest{TicketID: "abc"})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 400 {
		t.Fatalf("status = %d, want 400", appErr.StatusCode())
	}
	if appErr.Details["ticketId"] != "mongodb" {
		t.Errorf("details = %v, want ticketId flagged", appErr.Details)
	}
}

func TestValidateEntry_VehicleType(t *testing.T) {
	v := NewRequestValidator()

	for _, ok := range []string{"", "2w", "bike", "AUTO"} {
		req := &model.EntryRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01AB1234", VehicleType: ok}
		if err := v.ValidateEntry(req); err != nil {
			t.Errorf("vehicleType %q: unexpected error %v", ok, err)
		}
	}

	err := v.ValidateEntry(&model.EntryRequest{ParkingLotID: "65f1c2a9e4b0a1b2c3d4e5f6", VehicleNumber: "KA01AB1234", VehicleType: "truck"})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 400 {
		t.Fatalf("status = %d, want 400", appErr.StatusCode())
	}
	if appErr.Details["vehicleType"] != "vehicle_type" {
		t.Errorf("details = %v, want vehicleType flagged", appErr.Details)
	}
}

func TestValidateExit(t *testing.T) {
	v := NewRequestValidator()

	if err := v.ValidateExit(&model.ExitRequest{VehicleNumber: "KA01AB1234"}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	err := v.ValidateExit(&model.ExitRequest{UserID: "42"})
	if apperrors.AsAppError(err).Details["userId"] == nil {
		t.Errorf("expected userId to be flagged, got %v", err)
	}
}
