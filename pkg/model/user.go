package model

import "time"

type Role string

const (
	RoleParker    Role = "PARKER"
	RoleAttendant Role = "ATTENDANT"
	RoleAdmin     Role = "ADMIN"
)

// User is read-only here; accounts are provisioned elsewhere.
type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Phone        string    `json:"phone" bson:"phone"`
	Password     string    `json:"-" bson:"password"`
	Role         Role      `json:"role" bson:"role"`
	ParkingLotID string    `json:"parkingLotId,omitempty" bson:"parking_lot_id,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}
