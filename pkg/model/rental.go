package model

import "time"

const (
	RentalTypeHourly = "Hourly"
	RentalTypeDaily  = "Daily"
)

// Rental statuses. A rental moves
// Booked -> Pending -> Confirmed -> Final Pending -> Completed,
// and can be Cancelled while Booked or Confirmed.
const (
	StatusBooked       = "Booked"
	StatusPending      = "Pending"
	StatusConfirmed    = "Confirmed"
	StatusFinalPending = "Final Pending"
	StatusCompleted    = "Completed"
	StatusCancelled    = "Cancelled"
)

const (
	PaymentMethodCash = "Cash"
	PaymentMethodCard = "Card"
	PaymentMethodUPI  = "UPI"
)

const (
	PaymentKindAdvance = "advance"
	PaymentKindFinal   = "final"
)

type Rental struct {
	ID            string `json:"id,omitempty" bson:"_id,omitempty"`
	CarID         string `json:"car_id" bson:"car_id"`
	CarName       string `json:"car_name" bson:"car_name"`
	State         string `json:"state" bson:"state"`
	City          string `json:"city" bson:"city"`
	CustomerID    string `json:"customer_id" bson:"customer_id"`
	LicenseNumber string `json:"license_number" bson:"license_number"`
	RentalType    string `json:"rental_type" bson:"rental_type"`

	// Calendar fields as the customer entered them, dates YYYY-MM-DD and times HH:MM.
	StartDate     string `json:"start_date" bson:"start_date"`
	PickUpTime    string `json:"pick_up_time" bson:"pick_up_time"`
	EndDate       string `json:"end_date" bson:"end_date"`
	DropTime      string `json:"drop_time" bson:"drop_time"`
	NumberOfHours int    `json:"number_of_hours,omitempty" bson:"number_of_hours,omitempty"`

	// The same window resolved in the reference timezone, used for range queries.
	StartAt time.Time `json:"start_at" bson:"start_at"`
	EndAt   time.Time `json:"end_at" bson:"end_at"`

	AmountCents   int64     `json:"amount_cents" bson:"amount_cents"`
	PaidCents     int64     `json:"paid_cents" bson:"paid_cents"`
	RedeemedCents int64     `json:"redeemed_cents" bson:"redeemed_cents"`
	Payments      []Payment `json:"payments" bson:"payments"`

	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (r *Rental) BalanceCents() int64 {
	return max(0, r.AmountCents-r.PaidCents-r.RedeemedCents)
}

// ActiveStatuses hold the car; Cancelled and Completed rentals do not.
var ActiveStatuses = []string{
	StatusBooked,
	StatusPending,
	StatusConfirmed,
	StatusFinalPending,
}

type Payment struct {
	Kind          string    `json:"kind" bson:"kind"`
	Method        string    `json:"method" bson:"method"`
	AmountCents   int64     `json:"amount_cents" bson:"amount_cents"`
	RedeemedCents int64     `json:"redeemed_cents,omitempty" bson:"redeemed_cents,omitempty"`
	Reference     string    `json:"reference,omitempty" bson:"reference,omitempty"`
	PaidAt        time.Time `json:"paid_at" bson:"paid_at"`
}

// RentalView is what customers see in their rentals list.
type RentalView struct {
	*Rental
	DropTime12h    string `json:"drop_time_12h"`
	PickUpTime12h  string `json:"pick_up_time_12h"`
	BalanceDue     int64  `json:"balance_due_cents"`
	CanCancel      bool   `json:"can_cancel"`
	CanUpdateDates bool   `json:"can_update_dates"`
	CanPay         bool   `json:"can_pay"`
	CanSubmit      bool   `json:"can_submit"`
}
