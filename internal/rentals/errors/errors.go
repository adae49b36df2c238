package errors

import "errors"

var (
	ErrNotFound = errors.New("rental not found")

	ErrCarNotFound = errors.New("car not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrTimeConflict = errors.New("rental window conflicts with an existing rental")

	ErrLockHeld = errors.New("car is being booked by another request")

	ErrNotCancellable = errors.New("rental can no longer be cancelled or rescheduled")

	// ErrInvalidTransition is returned when a rental is not in the status an operation requires,
	// including when another request changed it first.
	ErrInvalidTransition = errors.New("rental status does not allow this operation")

	ErrInsufficientRedeemable = errors.New("not enough redeemable cash")
)
