package validator

import (
	"errors"

	"parkproof/pkg/model"

	"github.com/go-playground/validator/v10"
)

type VehicleValidator struct {
	validate *validator.Validate
}

func NewVehicleValidator() *VehicleValidator {
	return &VehicleValidator{validate: validator.New()}
}

// Validate returns a field -> tag map when the vehicle fails validation.
func (v *VehicleValidator) Validate(vehicle *model.Vehicle) map[string]any {
	err := v.validate.Struct(vehicle)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]any{"error": err.Error()}
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
