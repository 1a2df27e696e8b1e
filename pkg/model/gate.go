package model

import "time"

// EntryRequest is a gate admission. TicketID selects the reserved path;
// otherwise ParkingLotID and VehicleNumber are required and UserID or Phone
// select the registered-user path.
type EntryRequest struct {
	TicketID      string `json:"ticketId" validate:"omitempty,mongodb"`
	UserID        string `json:"userId" validate:"omitempty,mongodb"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	Username      string `json:"username" validate:"omitempty,max=20"`
	ParkingLotID  string `json:"parkingLotId" validate:"omitempty,mongodb"`
	VehicleNumber string `json:"vehicleNumber" validate:"omitempty,max=20"`
	VehicleType   string `json:"vehicleType" validate:"omitempty,vehicle_type"`
}

// ContactPhone accepts the legacy username field carrying the phone.
func (r *EntryRequest) ContactPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	return r.Username
}

type EntryResult struct {
	SessionID   string      `json:"sessionId"`
	EntryMethod EntryMethod `json:"entryMethod"`
	Type        EntryType   `json:"type"`
	TicketID    string      `json:"ticketId,omitempty"`
}

// ExitRequest identifies the stay to end. Fields are tried in order:
// ticket, user, plate.
type ExitRequest struct {
	TicketID      string `json:"ticketId" validate:"omitempty,mongodb"`
	UserID        string `json:"userId" validate:"omitempty,mongodb"`
	VehicleNumber string `json:"vehicleNumber" validate:"omitempty,max=20"`
}

func (r *ExitRequest) Empty() bool {
	return r.TicketID == "" && r.UserID == "" && r.VehicleNumber == ""
}

type ExitQuote struct {
	SessionID     string    `json:"sessionId"`
	VehicleNumber string    `json:"vehicleNumber"`
	EntryTime     time.Time `json:"entryTime"`
	AmountDue     int       `json:"amountDue"`
}

type ExitResult struct {
	SessionID     string        `json:"sessionId"`
	VehicleNumber string        `json:"vehicleNumber"`
	EntryTime     time.Time     `json:"entryTime"`
	ExitTime      time.Time     `json:"exitTime"`
	Status        SessionStatus `json:"status"`
	AmountCharged int           `json:"amountCharged"`
}

type ActivityStatus string

const (
	ActivityParked   ActivityStatus = "PARKED"
	ActivityReserved ActivityStatus = "RESERVED"
)

// ActiveStatus is what the app shows for a plate: parked, holding a
// reservation, or nothing.
type ActiveStatus struct {
	Active     bool           `json:"active"`
	Status     ActivityStatus `json:"status,omitempty"`
	EntryTime  *time.Time     `json:"entryTime,omitempty"`
	Ticket     *Ticket        `json:"ticket,omitempty"`
	Session    *Session       `json:"session,omitempty"`
	ParkingLot *ParkingLot    `json:"parkingLot,omitempty"`
}

type BookingRequest struct {
	ParkingLotID  string `json:"parkingLotId" validate:"required,mongodb"`
	VehicleNumber string `json:"vehicleNumber" validate:"required,min=2,max=20"`
	VehicleType   string `json:"vehicleType" validate:"omitempty,vehicle_type"`
	Amount        int    `json:"amount" validate:"min=0"`
}

type BookingResult struct {
	TicketID  string    `json:"ticketId"`
	ValidTill time.Time `json:"validTill"`
}
