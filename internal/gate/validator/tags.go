package validator

import (
	"reflect"
	"strings"

	"parkproof/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const vehicleTypeTag = "vehicle_type"

// jsonName reports fields by their wire name so errors match the request body.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func vehicleType(fl validator.FieldLevel) bool {
	return sanitizer.IsVehicleType(fl.Field().String())
}
