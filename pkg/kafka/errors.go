package kafka

import (
	"errors"
	"fmt"
)

var (
	// ErrProducerClosed indicates the producer has been closed
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrInvalidMessage indicates the message is invalid
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyKey indicates the message key is empty
	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue indicates the message value is empty
	ErrEmptyValue = errors.New("message value cannot be empty")
)

// PublishError reports a failed write together with the outcome of the DLQ fallback.
type PublishError struct {
	Topic  string
	Key    string
	Err    error
	DLQErr error
}

func (e *PublishError) Error() string {
	if e.DLQErr != nil {
		return fmt.Sprintf("publish to %s failed: %v (dlq: %v)", e.Topic, e.Err, e.DLQErr)
	}
	return fmt.Sprintf("publish to %s failed: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
