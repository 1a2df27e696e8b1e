package model

import "time"

type TicketStatus string

const (
	TicketCreated TicketStatus = "CREATED"
	TicketUsed    TicketStatus = "USED"
	TicketExpired TicketStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketUsed || s == TicketExpired
}

// Ticket is a reservation or an entry receipt. CREATED tickets hold a spot
// against lot capacity until ValidTill.
type Ticket struct {
	ID            string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ParkingLotID  string       `json:"parkingLotId" bson:"parking_lot_id" validate:"required,mongodb"`
	VehicleNumber string       `json:"vehicleNumber" bson:"vehicle_number" validate:"required,min=2,max=20"`
	VehicleType   string       `json:"vehicleType" bson:"vehicle_type" validate:"required,oneof=4w 2w 3w"`
	Amount        int          `json:"amount" bson:"amount" validate:"min=0"`
	Status        TicketStatus `json:"status" bson:"status" validate:"required,oneof=CREATED USED EXPIRED"`
	ValidTill     time.Time    `json:"validTill" bson:"valid_till" validate:"required"`
	UsedAt        *time.Time   `json:"usedAt,omitempty" bson:"used_at,omitempty"`
	ExpiredAt     *time.Time   `json:"expiredAt,omitempty" bson:"expired_at,omitempty"`
	CreatedAt     time.Time    `json:"createdAt" bson:"created_at"`
}

// IsPastDue is true for a CREATED ticket whose validity ended strictly
// before now.
func (t *Ticket) IsPastDue(now time.Time) bool {
	return t.Status == TicketCreated && t.ValidTill.Before(now)
}

// IsLive reports whether the ticket still refers to a current stay or hold.
func (t *Ticket) IsLive(now time.Time) bool {
	return t.Status != TicketExpired && !t.ValidTill.Before(now)
}
