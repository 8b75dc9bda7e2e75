package events

import (
	"context"

	"slotly/pkg/config"
	"slotly/pkg/kafka"
	kafka_middleware "slotly/pkg/kafka/middleware"
	"slotly/pkg/logger"
	"slotly/pkg/middleware"
)

const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"

	schemaVersion = "1"
)

// Publisher announces booking lifecycle changes. Publishing is best effort:
// a failure is logged and never changes the outcome of the booking operation.
type Publisher interface {
	Publish(ctx context.Context, eventType, hostEmail string, payload any)
	Close() error
}

type Deleted struct {
	ID        string `json:"id"`
	HostEmail string `json:"host_email"`
}

type Updated struct {
	ID        string `json:"id"`
	HostEmail string `json:"host_email"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Note      string `json:"note"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg *config.Config, source string) (Publisher, error) {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return NopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.BookingsTopic, cfg.BookingsDLQTopic, cfg.Log)
	if err != nil {
		return nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingsTopic, "dlq_topic", cfg.BookingsDLQTopic)
	return NewKafkaPublisher(producer, source, cfg.Log), nil
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, hostEmail string, payload any) {
	msg, err := kafka.NewMessage().
		WithKey(hostEmail).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion(schemaVersion).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		p.log.Warn("Failed to encode booking event", "event_type", eventType, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"event_id", msg.GetEventID(),
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) {}

func (NopPublisher) Close() error { return nil }
