package locale

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// InferCountryFromPhone matches the longest calling code so +977 is not
// read as +97x.
func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}

	var (
		best    *Country
		bestLen int
	)
	for _, country := range Countries {
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) && len(prefix) > bestLen {
				c := country
				best, bestLen = &c, len(prefix)
			}
		}
	}
	return best
}

func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

var locations sync.Map

// LocationForPhone returns the local zone of whoever owns the number,
// falling back to UTC. Loaded zones are cached.
func LocationForPhone(phone string) *time.Location {
	name := InferTimezoneFromPhone(phone)
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	locations.Store(name, loc)
	return loc
}
