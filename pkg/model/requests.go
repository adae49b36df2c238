package model

// RentalWindowRequest is the calendar part shared by quote, availability, booking and reschedule.
// PickUpTime accepts "HH:MM" or "h:MM AM/PM".
type RentalWindowRequest struct {
	RentalType    string `json:"rental_type" validate:"required,oneof=Hourly Daily"`
	StartDate     string `json:"start_date" validate:"required,iso_date"`
	PickUpTime    string `json:"pick_up_time" validate:"required,time_of_day"`
	NumberOfHours int    `json:"number_of_hours,omitempty" validate:"gte=0"`
	EndDate       string `json:"end_date,omitempty" validate:"omitempty,iso_date"`
}

type AvailabilityRequest struct {
	State string `json:"state" validate:"required,min=2,max=100"`
	City  string `json:"city" validate:"required,min=2,max=100"`
	RentalWindowRequest
}

type CreateRentalRequest struct {
	CarID         string `json:"car_id" validate:"required,mongodb"`
	CustomerID    string `json:"customer_id" validate:"required,min=1,max=64"`
	LicenseNumber string `json:"license_number" validate:"required,license_number"`
	RentalWindowRequest
}

type RescheduleRequest struct {
	RentalWindowRequest
}

// PaymentRequest carries the fields of every method; which ones are required
// depends on Method and is checked by the rentals validator.
type PaymentRequest struct {
	Method         string `json:"method" validate:"required,oneof=Cash Card UPI"`
	CashReceived   bool   `json:"cash_received,omitempty"`
	CardNumber     string `json:"card_number,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty" validate:"omitempty,max=100"`
	ExpiryMonth    int    `json:"expiry_month,omitempty"`
	ExpiryYear     int    `json:"expiry_year,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	UPIID          string `json:"upi_id,omitempty" validate:"omitempty,upi_id"`
	UseRedeemable  bool   `json:"use_redeemable_cash,omitempty"`
}

// Quote is a computed rental window with the drop time in both clock formats.
type Quote struct {
	RentalType    string `json:"rental_type"`
	StartDate     string `json:"start_date"`
	PickUpTime    string `json:"pick_up_time"`
	EndDate       string `json:"end_date"`
	DropTime      string `json:"drop_time"`
	DropTime12h   string `json:"drop_time_12h"`
	DurationMins  int    `json:"duration_minutes"`
	NumberOfHours int    `json:"number_of_hours,omitempty"`
}

type RedeemableCash struct {
	CustomerID      string `json:"customer_id"`
	RedeemableCents int64  `json:"redeemable_cents"`
}
