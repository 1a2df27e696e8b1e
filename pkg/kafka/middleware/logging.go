package kafka_middleware

import (
	"context"
	"time"

	"parkproof/pkg/kafka"
	"parkproof/pkg/logger"
)

// LoggingProducerMiddleware logs every publish attempt. Success is logged at
// debug, failures at error.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"correlation_id", msg.CorrelationID(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to publish message", append(attrs, "transient", kafka.IsTransient(err), "error", err)...)
			return err
		}
		log.Debug("Published message", attrs...)
		return nil
	}
}
