package service

import "time"

// FeeSchedule prices a stay as Base plus PerHour for every started hour,
// with one hour minimum.
type FeeSchedule struct {
	Base    int
	PerHour int
}

func (f FeeSchedule) Amount(entry, exit time.Time) int {
	return f.Base + f.PerHour*BillableHours(exit.Sub(entry))
}

// BillableHours rounds d up to whole hours, never below one.
func BillableHours(d time.Duration) int {
	if d <= time.Hour {
		return 1
	}
	return int((d + time.Hour - 1) / time.Hour)
}
