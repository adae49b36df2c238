package kafka

import (
	"errors"
	"fmt"
)

var (
	// ErrProducerClosed indicates the producer has been closed
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrInvalidMessage indicates the message could not be built
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyKey indicates the message key is empty
	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue indicates the message value is empty
	ErrEmptyValue = errors.New("message value cannot be empty")
)

// PublishError reports a failed write, and whether the message was parked on the DLQ
type PublishError struct {
	Topic     string
	Key       string
	SentToDLQ bool
	DLQErr    error
	Err       error
}

func (e *PublishError) Error() string {
	switch {
	case e.DLQErr != nil:
		return fmt.Sprintf("publish to %s failed: %v (dlq also failed: %v)", e.Topic, e.Err, e.DLQErr)
	case e.SentToDLQ:
		return fmt.Sprintf("publish to %s failed, message sent to dlq: %v", e.Topic, e.Err)
	default:
		return fmt.Sprintf("publish to %s failed: %v", e.Topic, e.Err)
	}
}

// Unwrap returns the underlying write error
func (e *PublishError) Unwrap() error {
	return e.Err
}
