package model

import "time"

// RentalLock is an advisory lock held on a car while its calendar is being checked and written.
// ID is derived from the car ID, so a second holder fails on the duplicate key.
type RentalLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
