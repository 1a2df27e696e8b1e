package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionClosed SessionStatus = "CLOSED"
)

type EntryMethod string

const (
	EntryMethodQR      EntryMethod = "QR"
	EntryMethodOffline EntryMethod = "OFFLINE"
)

// EntryType tells the gate which entry path admitted the vehicle.
type EntryType string

const (
	EntryReserved EntryType = "RESERVED"
	EntryProfile  EntryType = "PROFILE"
	EntryManual   EntryType = "MANUAL"
)

// Session is one physical stay of a vehicle in a lot. At most one ACTIVE
// session exists per vehicle number.
type Session struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ParkingLotID  string        `json:"parkingLotId" bson:"parking_lot_id" validate:"required,mongodb"`
	VehicleNumber string        `json:"vehicleNumber" bson:"vehicle_number" validate:"required,min=2,max=20"`
	UserID        string        `json:"userId,omitempty" bson:"user_id,omitempty" validate:"omitempty,mongodb"`
	TicketID      string        `json:"ticketId,omitempty" bson:"ticket_id,omitempty" validate:"omitempty,mongodb"`
	EntryTime     time.Time     `json:"entryTime" bson:"entry_time"`
	ExitTime      *time.Time    `json:"exitTime,omitempty" bson:"exit_time,omitempty"`
	EntryMethod   EntryMethod   `json:"entryMethod" bson:"entry_method" validate:"required,oneof=QR OFFLINE"`
	Status        SessionStatus `json:"status" bson:"status" validate:"required,oneof=ACTIVE CLOSED"`
	AmountCharged *int          `json:"amountCharged,omitempty" bson:"amount_charged,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"created_at"`
}

func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}
