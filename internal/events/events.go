package events

import (
	"context"
	"time"

	"parkproof/pkg/model"
)

type Type string

const (
	TicketCreated Type = "ticket.created"
	TicketUsed    Type = "ticket.used"
	TicketExpired Type = "ticket.expired"
	SessionOpened Type = "session.opened"
	SessionClosed Type = "session.closed"
)

const SchemaVersion = "1"

// Event is the outward record of one lifecycle transition.
type Event struct {
	Type          Type      `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	ParkingLotID  string    `json:"parkingLotId"`
	VehicleNumber string    `json:"vehicleNumber"`
	SessionID     string    `json:"sessionId,omitempty"`
	TicketID      string    `json:"ticketId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	EntryMethod   string    `json:"entryMethod,omitempty"`
	Amount        *int      `json:"amount,omitempty"`
}

// Key routes every event of a vehicle to one partition.
func (e Event) Key() string {
	return e.VehicleNumber
}

// Publisher fans lifecycle events out. Publish never fails the caller;
// delivery problems are the publisher's to log.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

func FromTicket(t Type, ticket *model.Ticket, at time.Time) Event {
	amount := ticket.Amount
	return Event{
		Type:          t,
		OccurredAt:    at,
		ParkingLotID:  ticket.ParkingLotID,
		VehicleNumber: ticket.VehicleNumber,
		TicketID:      ticket.ID,
		Amount:        &amount,
	}
}

func FromSession(t Type, session *model.Session, at time.Time) Event {
	return Event{
		Type:          t,
		OccurredAt:    at,
		ParkingLotID:  session.ParkingLotID,
		VehicleNumber: session.VehicleNumber,
		SessionID:     session.ID,
		TicketID:      session.TicketID,
		UserID:        session.UserID,
		EntryMethod:   string(session.EntryMethod),
		Amount:        session.AmountCharged,
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
func (NoopPublisher) Close() error                   { return nil }
