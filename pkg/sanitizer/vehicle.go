package sanitizer

import "strings"

const (
	VehicleType4W = "4w"
	VehicleType2W = "2w"
	VehicleType3W = "3w"
)

var vehicleTypeAliases = map[string]string{
	"4W":       VehicleType4W,
	"CAR":      VehicleType4W,
	"2W":       VehicleType2W,
	"BIKE":     VehicleType2W,
	"SCOOTER":  VehicleType2W,
	"3W":       VehicleType3W,
	"AUTO":     VehicleType3W,
	"RICKSHAW": VehicleType3W,
}

// NormalizeVehicleNumber is the single plate normalization used for every
// lookup and write. Plates compare equal only after this.
func NormalizeVehicleNumber(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// IsVehicleType reports whether vehicleType is one of the stored codes or a
// known synonym. Empty input is left to the caller's required rule.
func IsVehicleType(vehicleType string) bool {
	_, ok := vehicleTypeAliases[strings.ToUpper(strings.TrimSpace(vehicleType))]
	return ok
}

// NormalizeVehicleType maps gate and app vocabulary onto the stored
// 4w/2w/3w codes. Empty input defaults to a car; unknown input maps to ""
// so model validation rejects it.
func NormalizeVehicleType(vehicleType string) string {
	key := strings.ToUpper(strings.TrimSpace(vehicleType))
	if key == "" {
		return VehicleType4W
	}
	return vehicleTypeAliases[key]
}
