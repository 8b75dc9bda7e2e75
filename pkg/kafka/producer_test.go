package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("host@example.com").
		WithValue(map[string]string{"id": "abc"}).
		WithEventType("booking.created").
		Build()
	require.NoError(t, err)
	return msg
}

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := NewProducerWithWriters(writer, nil, "bookings.events", "")

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))

	require.Len(t, writer.messages, 1)
	got := writer.messages[0]
	assert.Equal(t, "host@example.com", string(got.Key))
	assert.JSONEq(t, `{"id":"abc"}`, string(got.Value))
	assert.Equal(t, "booking.created", headerValue(got, HeaderEventType))
	assert.NotEmpty(t, headerValue(got, HeaderEventID))
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "bookings.events", "")

	err := p.Publish(context.Background(), Message{Value: []byte("x"), Headers: map[string]string{}})
	assert.ErrorIs(t, err, ErrEmptyKey)

	err = p.Publish(context.Background(), Message{Key: "k", Headers: map[string]string{}})
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	writer := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(writer, dlq, "bookings.events", "dlq-bookings")

	err := p.Publish(context.Background(), buildMessage(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.NoError(t, pubErr.DLQErr)

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "bookings.events", headerValue(dlq.messages[0], HeaderOriginalTopic))
	assert.Equal(t, writeErr.Error(), headerValue(dlq.messages[0], HeaderDLQError))
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "bookings.events", "")

	var order []string
	for _, name := range []string{"first", "second"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestProducer_Closed(t *testing.T) {
	writer := &fakeWriter{}
	p := NewProducerWithWriters(writer, nil, "bookings.events", "")

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
	assert.NoError(t, p.Close())
}

func TestMessageBuilder_ValueEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}
