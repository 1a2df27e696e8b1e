package model

import "time"

// ParkingLot is the static identity and capacity of a lot. Occupancy is
// never stored here, it is counted from ACTIVE sessions.
type ParkingLot struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PID             string    `json:"pid" bson:"pid" validate:"required,min=2,max=40"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Area            string    `json:"area" bson:"area" validate:"required,min=2,max=100"`
	Address         string    `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
	Lat             float64   `json:"lat" bson:"lat" validate:"latitude"`
	Lng             float64   `json:"lng" bson:"lng" validate:"longitude"`
	Capacity        int       `json:"capacity" bson:"capacity" validate:"min=0,max=100000"`
	HasEVCharger    bool      `json:"hasEvCharger" bson:"has_ev_charger"`
	ContractorPhone string    `json:"contractorPhone,omitempty" bson:"contractor_phone,omitempty" validate:"omitempty,e164"`
	AdmissionSeq    int64     `json:"-" bson:"admission_seq"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
}

// LotStats is the derived occupancy of a single lot.
type LotStats struct {
	ParkingLotID string    `json:"parkingLotId"`
	Capacity     int       `json:"capacity"`
	Active       int64     `json:"active"`
	Reserved     int64     `json:"reserved"`
	Available    int64     `json:"available"`
	RevenueToday int64     `json:"revenueToday"`
	ComputedAt   time.Time `json:"computedAt"`
}

// Held is the number of spots taken by parked vehicles and live reservations.
func (s *LotStats) Held() int64 {
	return s.Active + s.Reserved
}

// LotOverview aggregates occupancy across every lot.
type LotOverview struct {
	TotalLots      int64 `json:"totalParkingLots"`
	TotalCapacity  int64 `json:"totalCapacity"`
	OccupiedSlots  int64 `json:"occupiedSlots"`
	AvailableSlots int64 `json:"availableSlots"`
}
