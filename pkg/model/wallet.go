package model

import "time"

// Wallet keeps the redeemable cash credited to a customer by cancellations.
type Wallet struct {
	ID              string    `json:"-" bson:"_id,omitempty"`
	CustomerID      string    `json:"customer_id" bson:"customer_id"`
	RedeemableCents int64     `json:"redeemable_cents" bson:"redeemable_cents"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}
