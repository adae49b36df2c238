package validator

import (
	"errors"
	"testing"
	"time"

	"carrental/pkg/logger"
	"carrental/pkg/model"
)

func newTestValidator() *RentalValidator {
	v := NewRentalValidator(logger.Discard())
	v.now = func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }
	return v
}

func fields(t *testing.T, err error) map[string]bool {
	t.Helper()
	if err == nil {
		return map[string]bool{}
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %v is not ValidationErrors", err)
	}
	out := map[string]bool{}
	for _, e := range verrs {
		out[e.Field] = true
	}
	return out
}

func validWindow() model.RentalWindowRequest {
	return model.RentalWindowRequest{
		RentalType:    "Hourly",
		StartDate:     "2024-06-20",
		PickUpTime:    "10:30 AM",
		NumberOfHours: 4,
	}
}

func TestValidateCreate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name       string
		mutate     func(*model.CreateRentalRequest)
		wantFields []string
	}{
		{name: "valid", mutate: func(*model.CreateRentalRequest) {}},
		{name: "24h pick up time", mutate: func(r *model.CreateRentalRequest) { r.PickUpTime = "22:30" }},
		{name: "padded license", mutate: func(r *model.CreateRentalRequest) { r.LicenseNumber = " DL04201101 " }},
		{name: "bad car id", mutate: func(r *model.CreateRentalRequest) { r.CarID = "car-1" }, wantFields: []string{"car_id"}},
		{name: "short license", mutate: func(r *model.CreateRentalRequest) { r.LicenseNumber = "AB12" }, wantFields: []string{"license_number"}},
		{name: "license with dash", mutate: func(r *model.CreateRentalRequest) { r.LicenseNumber = "DL-0420110149" }, wantFields: []string{"license_number"}},
		{name: "unknown rental type", mutate: func(r *model.CreateRentalRequest) { r.RentalType = "Weekly" }, wantFields: []string{"rental_type"}},
		{name: "bad date", mutate: func(r *model.CreateRentalRequest) { r.StartDate = "2024-02-30" }, wantFields: []string{"start_date"}},
		{name: "bad time", mutate: func(r *model.CreateRentalRequest) { r.PickUpTime = "25:00" }, wantFields: []string{"pick_up_time"}},
		{
			name: "every problem reported",
			mutate: func(r *model.CreateRentalRequest) {
				r.CustomerID = ""
				r.StartDate = ""
				r.NumberOfHours = -1
				r.EndDate = "tomorrow"
			},
			wantFields: []string{"customer_id", "start_date", "number_of_hours", "end_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := model.CreateRentalRequest{
				CarID:               "507f1f77bcf86cd799439011",
				CustomerID:          "cust-1",
				LicenseNumber:       "DL0420110149",
				RentalWindowRequest: validWindow(),
			}
			tt.mutate(&req)

			got := fields(t, v.ValidateCreate(&req))
			if len(got) != len(tt.wantFields) {
				t.Errorf("failed fields = %v, want %v", got, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !got[f] {
					t.Errorf("expected a violation on %s, got %v", f, got)
				}
			}
		})
	}
}

func TestValidateAvailability(t *testing.T) {
	v := newTestValidator()

	req := model.AvailabilityRequest{State: "Karnataka", City: "Bengaluru", RentalWindowRequest: validWindow()}
	if err := v.ValidateAvailability(&req); err != nil {
		t.Fatalf("ValidateAvailability() error = %v", err)
	}

	req.City = ""
	if got := fields(t, v.ValidateAvailability(&req)); !got["city"] {
		t.Errorf("missing city not reported: %v", got)
	}
}

func TestValidatePayment(t *testing.T) {
	v := newTestValidator()

	card := func(mutate func(*model.PaymentRequest)) *model.PaymentRequest {
		req := &model.PaymentRequest{
			Method:         model.PaymentMethodCard,
			CardNumber:     "4111111111111111",
			CardHolderName: "Asha Rao",
			ExpiryMonth:    8,
			ExpiryYear:     2024,
			CVV:            "123",
		}
		mutate(req)
		return req
	}

	tests := []struct {
		name       string
		req        *model.PaymentRequest
		wantFields []string
	}{
		{name: "cash acknowledged", req: &model.PaymentRequest{Method: model.PaymentMethodCash, CashReceived: true}},
		{name: "cash not acknowledged", req: &model.PaymentRequest{Method: model.PaymentMethodCash}, wantFields: []string{"cash_received"}},
		{name: "valid card", req: card(func(*model.PaymentRequest) {})},
		{name: "card number too short", req: card(func(r *model.PaymentRequest) { r.CardNumber = "411111111111" }), wantFields: []string{"card_number"}},
		{name: "card expired last year", req: card(func(r *model.PaymentRequest) { r.ExpiryYear = 2023 }), wantFields: []string{"expiry_year"}},
		{name: "card expired this year", req: card(func(r *model.PaymentRequest) { r.ExpiryMonth = 5 }), wantFields: []string{"expiry_month"}},
		{name: "bad month", req: card(func(r *model.PaymentRequest) { r.ExpiryMonth = 13 }), wantFields: []string{"expiry_month"}},
		{name: "bad cvv", req: card(func(r *model.PaymentRequest) { r.CVV = "12a" }), wantFields: []string{"cvv"}},
		{
			name:       "empty card",
			req:        &model.PaymentRequest{Method: model.PaymentMethodCard},
			wantFields: []string{"card_number", "card_holder_name", "expiry_month", "expiry_year", "cvv"},
		},
		{name: "valid upi", req: &model.PaymentRequest{Method: model.PaymentMethodUPI, UPIID: "asha.rao@okaxis"}},
		{name: "missing upi", req: &model.PaymentRequest{Method: model.PaymentMethodUPI}, wantFields: []string{"upi_id"}},
		{name: "malformed upi", req: &model.PaymentRequest{Method: model.PaymentMethodUPI, UPIID: "asha"}, wantFields: []string{"upi_id"}},
		{name: "unknown method", req: &model.PaymentRequest{Method: "Cheque"}, wantFields: []string{"method"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(t, v.ValidatePayment(tt.req))
			if len(got) != len(tt.wantFields) {
				t.Errorf("failed fields = %v, want %v", got, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !got[f] {
					t.Errorf("expected a violation on %s, got %v", f, got)
				}
			}
		})
	}
}

func TestValidateCar(t *testing.T) {
	v := newTestValidator()

	car := &model.Car{Name: "Swift", State: "Goa", City: "Panaji", HourlyRateCents: 15000, DailyRateCents: 250000, Active: true}
	if err := v.ValidateCar(car); err != nil {
		t.Fatalf("ValidateCar() error = %v", err)
	}

	car.HourlyRateCents = 0
	if got := fields(t, v.ValidateCar(car)); !got["hourly_rate_cents"] {
		t.Errorf("zero hourly rate not reported: %v", got)
	}
}
