package validator

import (
	"errors"

	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/model"

	"github.com/go-playground/validator/v10"
)

type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation(vehicleTypeTag, vehicleType)
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) ValidateEntry(req *model.EntryRequest) error {
	return v.check(req)
}

func (v *RequestValidator) ValidateExit(req *model.ExitRequest) error {
	return v.check(req)
}

// check reports every failing field as {field: tag}. Malformed ids surface
// as "mongodb".
func (v *RequestValidator) check(req any) error {
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
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.Validation("Invalid gate request", details)
}
