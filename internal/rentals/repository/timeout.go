package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CarsCollection        = "Cars"
	RentalsCollection     = "Rentals"
	WalletsCollection     = "Wallets"
	RentalLocksCollection = "Rental_locks"
)

// withTimeout bounds ctx by timeout, or by its own deadline when that is sooner.
// A SessionContext is returned unchanged so operations inside a transaction run
// under the deadline the transaction was started with.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	// Use the shorter of remaining time or requested timeout
	if remaining := time.Until(deadline); remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
