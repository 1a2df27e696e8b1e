package validator

import (
	"errors"
	"reflect"
	"strings"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"
	"parkproof/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":     "is required",
	"mongodb":      "must be a valid id",
	"min":          "is too short or negative",
	"max":          "is too long",
	"vehicle_type": "must be one of 4w, 2w, 3w",
}

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("vehicle_type", func(fl validator.FieldLevel) bool {
		return sanitizer.IsVehicleType(fl.Field().String())
	})
	return &BookingValidator{validate: v}
}

// Validate trims the request in place and reports failing fields by their
// JSON name.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	req.ParkingLotID = strings.TrimSpace(req.ParkingLotID)
	req.VehicleNumber = strings.TrimSpace(req.VehicleNumber)
	req.VehicleType = strings.TrimSpace(req.VehicleType)

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.InvalidInput(err.Error())
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		details[fe.Field()] = msg
	}
	return apperrors.Validation("Invalid booking request", details)
}
