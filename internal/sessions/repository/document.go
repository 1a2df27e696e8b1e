package repository

import (
	"time"

	"parkproof/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionDocument struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	ParkingLotID  primitive.ObjectID  `bson:"parking_lot_id"`
	VehicleNumber string              `bson:"vehicle_number"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty"`
	TicketID      *primitive.ObjectID `bson:"ticket_id,omitempty"`
	EntryTime     time.Time           `bson:"entry_time"`
	ExitTime      *time.Time          `bson:"exit_time,omitempty"`
	EntryMethod   model.EntryMethod   `bson:"entry_method"`
	Status        model.SessionStatus `bson:"status"`
	AmountCharged *int                `bson:"amount_charged,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

func optionalObjectID(hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func optionalHex(oid *primitive.ObjectID) string {
	if oid == nil {
		return ""
	}
	return oid.Hex()
}

func fromModel(s *model.Session) (*sessionDocument, error) {
	lotID, err := primitive.ObjectIDFromHex(s.ParkingLotID)
	if err != nil {
		return nil, err
	}
	userID, err := optionalObjectID(s.UserID)
	if err != nil {
		return nil, err
	}
	ticketID, err := optionalObjectID(s.TicketID)
	if err != nil {
		return nil, err
	}
	return &sessionDocument{
		ParkingLotID:  lotID,
		VehicleNumber: s.VehicleNumber,
		UserID:        userID,
		TicketID:      ticketID,
		EntryTime:     s.EntryTime,
		ExitTime:      s.ExitTime,
		EntryMethod:   s.EntryMethod,
		Status:        s.Status,
		AmountCharged: s.AmountCharged,
		CreatedAt:     s.CreatedAt,
	}, nil
}

func (d *sessionDocument) toModel() *model.Session {
	return &model.Session{
		ID:            d.ID.Hex(),
		ParkingLotID:  d.ParkingLotID.Hex(),
		VehicleNumber: d.VehicleNumber,
		UserID:        optionalHex(d.UserID),
		TicketID:      optionalHex(d.TicketID),
		EntryTime:     d.EntryTime,
		ExitTime:      d.ExitTime,
		EntryMethod:   d.EntryMethod,
		Status:        d.Status,
		AmountCharged: d.AmountCharged,
		CreatedAt:     d.CreatedAt,
	}
}
