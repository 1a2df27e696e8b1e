package events

import (
	"context"
	"time"

	"parkproof/pkg/kafka"
	"parkproof/pkg/logger"
	"parkproof/pkg/middleware"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer producer
	source   string
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(p *kafka.Producer, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: p,
		source:   source,
		timeout:  5 * time.Second,
		log:      log,
	}
}

// Publish detaches from the request context: the HTTP response may already
// be on its way when the write happens.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	msg, err := kafka.NewMessage().
		WithKey(event.Key()).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to build lifecycle event", "type", event.Type, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Warn("Lifecycle event not delivered",
			"type", event.Type,
			"vehicle_number", event.VehicleNumber,
			"session_id", event.SessionID,
			"ticket_id", event.TicketID,
			"error", err,
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
