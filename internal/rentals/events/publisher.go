package events

import (
	"context"
	"fmt"
	"time"

	"carrental/pkg/kafka"
	"carrental/pkg/logger"
	"carrental/pkg/middleware"
	"carrental/pkg/model"
)

const (
	RentalBooked          = "rental.booked"
	RentalCancelled       = "rental.cancelled"
	RentalRescheduled     = "rental.rescheduled"
	RentalPaymentReceived = "rental.payment_received"
	RentalConfirmed       = "rental.confirmed"
	RentalSubmitted       = "rental.submitted"

	SchemaVersion = "1"
)

// RentalEvent is the payload of every rental.* event.
type RentalEvent struct {
	RentalID    string    `json:"rental_id"`
	CarID       string    `json:"car_id"`
	CustomerID  string    `json:"customer_id"`
	Status      string    `json:"status"`
	RentalType  string    `json:"rental_type"`
	StartDate   string    `json:"start_date"`
	PickUpTime  string    `json:"pick_up_time"`
	EndDate     string    `json:"end_date"`
	DropTime    string    `json:"drop_time"`
	AmountCents int64     `json:"amount_cents"`
	PaidCents   int64     `json:"paid_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewRentalEvent(r *model.Rental) RentalEvent {
	return RentalEvent{
		RentalID:    r.ID,
		CarID:       r.CarID,
		CustomerID:  r.CustomerID,
		Status:      r.Status,
		RentalType:  r.RentalType,
		StartDate:   r.StartDate,
		PickUpTime:  r.PickUpTime,
		EndDate:     r.EndDate,
		DropTime:    r.DropTime,
		AmountCents: r.AmountCents,
		PaidCents:   r.PaidCents + r.RedeemedCents,
		OccurredAt:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, rental *model.Rental) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher keys events by car ID so one car's history stays in order.
type KafkaPublisher struct {
	producer messagePublisher
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, rental *model.Rental) error {
	msg, err := kafka.NewMessage().
		WithKey(rental.CarID).
		WithValue(NewRentalEvent(rental)).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	return p.producer.Publish(ctx, msg)
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(_ context.Context, eventType string, rental *model.Rental) error {
	p.log.Debug("event publishing disabled", "event_type", eventType, "rental_id", rental.ID)
	return nil
}
