package validator

import (
	"errors"
	"reflect"
	"strings"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"

	"github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "is required",
	"mongodb":  "must be a valid id",
	"oneof":    "must be one of OVERPARKING, UNAUTHORIZED_PARKING, TICKET_FRAUD, OVERCHARGING, OTHER",
	"max":      "is too long",
}

type ReportValidator struct {
	validate *validator.Validate
}

func NewReportValidator() *ReportValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &ReportValidator{validate: v}
}

// Validate trims the request in place. Type is matched case-insensitively.
func (v *ReportValidator) Validate(req *model.ReportRequest) error {
	req.ParkingLotID = strings.TrimSpace(req.ParkingLotID)
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	req.Description = strings.TrimSpace(req.Description)

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
	return apperrors.Validation("Invalid report", details)
}
