package model

import "time"

const DefaultVehicleName = "Unknown Vehicle"

type Vehicle struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleNumber string    `json:"vehicleNumber" bson:"vehicle_number" validate:"required,min=2,max=20"`
	UserID        string    `json:"userId,omitempty" bson:"user_id,omitempty" validate:"omitempty,mongodb"`
	Name          string    `json:"name" bson:"name" validate:"required,max=100"`
	Type          string    `json:"type" bson:"type" validate:"required,oneof=4w 2w 3w"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}
