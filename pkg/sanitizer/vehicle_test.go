package sanitizer

import "testing"

func TestNormalizeVehicleNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DL01AB1111", "DL01AB1111"},
		{"  dl01ab1111 ", "DL01AB1111"},
		{"mh12 de 1433", "MH12 DE 1433"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVehicleNumber(tt.input); got != tt.want {
			t.Errorf("NormalizeVehicleNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeVehicleType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CAR", VehicleType4W},
		{"4w", VehicleType4W},
		{"bike", VehicleType2W},
		{"Scooter", VehicleType2W},
		{"2W", VehicleType2W},
		{"AUTO", VehicleType3W},
		{"rickshaw", VehicleType3W},
		{"3w", VehicleType3W},
		{"", VehicleType4W},
		{"truck", ""},
	}
	for _, tt := range tests {
		if got := NormalizeVehicleType(tt.input); got != tt.want {
			t.Errorf("NormalizeVehicleType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsVehicleType(t *testing.T) {
	for _, ok := range []string{"4w", "2W", " bike ", "Auto", "car"} {
		if !IsVehicleType(ok) {
			t.Errorf("IsVehicleType(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "truck", "5w", "bus"} {
		if IsVehicleType(bad) {
			t.Errorf("IsVehicleType(%q) = true", bad)
		}
	}
}
