package locale

import (
	"strings"
)

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "IN")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // E.164 calling code prefixes (e.g., ["+91", "91"])
	DefaultTimezone string   // IANA timezone identifier (e.g., "Asia/Kolkata")
}

var (
	Countries = map[string]Country{
		"IN": {
			Code:            "IN",
			Name:            "India",
			PhonePrefixes:   []string{"+91", "91"},
			DefaultTimezone: "Asia/Kolkata",
		},
		"LK": {
			Code:            "LK",
			Name:            "Sri Lanka",
			PhonePrefixes:   []string{"+94", "94"},
			DefaultTimezone: "Asia/Colombo",
		},
		"NP": {
			Code:            "NP",
			Name:            "Nepal",
			PhonePrefixes:   []string{"+977", "977"},
			DefaultTimezone: "Asia/Kathmandu",
		},
		"AE": {
			Code:            "AE",
			Name:            "United Arab Emirates",
			PhonePrefixes:   []string{"+971", "971"},
			DefaultTimezone: "Asia/Dubai",
		},
	}

	TimeZoneTags = map[string][]string{
		"IN": {"Asia/Kolkata", "Asia/Calcutta"},
		"LK": {"Asia/Colombo"},
		"NP": {"Asia/Kathmandu", "Asia/Katmandu"},
		"AE": {"Asia/Dubai"},
	}
)

// DetectRegion maps an IANA zone back to a country code, defaulting to IN.
func DetectRegion(tz string) string {
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return "IN"
}
