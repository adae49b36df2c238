package model

import "time"

type Car struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	State           string    `json:"state" bson:"state" validate:"required,min=2,max=100"`
	City            string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	HourlyRateCents int64     `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"gt=0"`
	DailyRateCents  int64     `json:"daily_rate_cents" bson:"daily_rate_cents" validate:"gt=0"`
	Active          bool      `json:"active" bson:"active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// AvailableCar is a catalog entry priced for a specific window.
type AvailableCar struct {
	Car
	QuotedAmountCents int64 `json:"quoted_amount_cents"`
}
