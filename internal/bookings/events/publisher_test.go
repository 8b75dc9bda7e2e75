package events

import (
	"context"
	"errors"
	"testing"

	"slotly/pkg/config"
	"slotly/pkg/kafka"
	kafka_config "slotly/pkg/kafka/config"
	"slotly/pkg/logger"
	"slotly/pkg/middleware"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	producer := kafka.NewProducerWithWriters(writer, nil, "bookings.events", "")
	p := NewKafkaPublisher(producer, "bookings", logger.Discard())

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-7")
	p.Publish(ctx, BookingDeleted, "h@x.com", Deleted{ID: "abc", HostEmail: "h@x.com"})

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "h@x.com", string(msg.Key))
	assert.JSONEq(t, `{"id":"abc","host_email":"h@x.com"}`, string(msg.Value))
	assert.Equal(t, BookingDeleted, header(msg, kafka.HeaderEventType))
	assert.Equal(t, "req-7", header(msg, kafka.HeaderCorrelationID))
	assert.Equal(t, "bookings", header(msg, kafka.HeaderSource))
	assert.Equal(t, schemaVersion, header(msg, kafka.HeaderSchemaVersion))
}

func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	producer := kafka.NewProducerWithWriters(&fakeWriter{err: errors.New("broker down")}, nil, "bookings.events", "")
	p := NewKafkaPublisher(producer, "bookings", logger.Discard())

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), BookingCreated, "h@x.com", map[string]string{"id": "abc"})
		p.Publish(context.Background(), BookingCreated, "h@x.com", make(chan int))
	})
	assert.NoError(t, p.Close())
}

func TestNewPublisher_DisabledWithoutBrokers(t *testing.T) {
	cfg := &config.Config{Kafka: &kafka_config.Config{}, Log: logger.Discard()}

	p, err := NewPublisher(cfg, "bookings")

	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Close())
}
