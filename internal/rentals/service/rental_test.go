package service

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/internal/rentals/events"
	apperrors "carrental/pkg/errors"
	"carrental/pkg/model"
)

func dailyRequest(carID, start, pickUp, end string) *model.CreateRentalRequest {
	return &model.CreateRentalRequest{
		CarID:         carID,
		CustomerID:    testCustomer,
		LicenseNumber: "ka01ab1234",
		RentalWindowRequest: model.RentalWindowRequest{
			RentalType: model.RentalTypeDaily,
			StartDate:  start,
			PickUpTime: pickUp,
			EndDate:    end,
		},
	}
}

func assertAppError(t *testing.T, err error, wantStatus int) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.StatusCode() != wantStatus {
		t.Fatalf("status = %d, want %d (%v)", appErr.StatusCode(), wantStatus, err)
	}
	return appErr
}

// ────────────────────────────────────────────────
// Book
// ────────────────────────────────────────────────

func TestBook_Daily(t *testing.T) {
	f := newFixture(t)

	view, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00 AM", "2024-06-22"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Status != model.StatusBooked {
		t.Errorf("status = %s, want %s", view.Status, model.StatusBooked)
	}
	if view.PickUpTime != "10:00" || view.DropTime != "10:00" || view.EndDate != "2024-06-22" {
		t.Errorf("window = %s %s - %s %s", view.StartDate, view.PickUpTime, view.EndDate, view.DropTime)
	}
	if view.AmountCents != 30000 {
		t.Errorf("amount = %d, want 30000 (2 days)", view.AmountCents)
	}
	if view.LicenseNumber != "KA01AB1234" {
		t.Errorf("license not normalized: %s", view.LicenseNumber)
	}
	if view.State != "Karnataka" || view.City != "Bengaluru" {
		t.Errorf("location not copied from car: %s/%s", view.State, view.City)
	}
	if !view.StartAt.Equal(time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("start_at = %v", view.StartAt)
	}
	if !view.CanCancel || !view.CanPay || view.CanSubmit {
		t.Errorf("flags = cancel:%v pay:%v submit:%v", view.CanCancel, view.CanPay, view.CanSubmit)
	}
	if view.PickUpTime12h != "10:00 AM" {
		t.Errorf("pick_up_time_12h = %s", view.PickUpTime12h)
	}
	if got := f.publisher.types(); !reflect.DeepEqual(got, []string{events.RentalBooked}) {
		t.Errorf("events = %v", got)
	}
	if f.locks.created != 1 || f.locks.released != 1 || len(f.locks.locks) != 0 {
		t.Errorf("lock created=%d released=%d held=%d", f.locks.created, f.locks.released, len(f.locks.locks))
	}
}

func TestBook_HourlyRollsOverMidnight(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateRentalRequest{
		CarID:         testCarID,
		CustomerID:    testCustomer,
		LicenseNumber: "KA01AB1234",
		RentalWindowRequest: model.RentalWindowRequest{
			RentalType:    "hourly",
			StartDate:     "2024-06-20",
			PickUpTime:    "22:30",
			NumberOfHours: 5,
		},
	}
	view, err := f.service.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.EndDate != "2024-06-21" || view.DropTime != "03:30" || view.DropTime12h != "3:30 AM" {
		t.Errorf("end = %s %s (%s)", view.EndDate, view.DropTime, view.DropTime12h)
	}
	if view.AmountCents != 5000 {
		t.Errorf("amount = %d, want 5000", view.AmountCents)
	}
	if view.RentalType != model.RentalTypeHourly {
		t.Errorf("rental type = %s", view.RentalType)
	}
}

func TestBook_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		req        *model.CreateRentalRequest
		wantStatus int
	}{
		{
			name:       "start in the past",
			req:        dailyRequest(testCarID, "2024-06-14", "10:00", "2024-06-16"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "same day daily",
			req:        dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-20"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "end before start",
			req:        dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-19"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "bad time",
			req:        dailyRequest(testCarID, "2024-06-20", "25:00", "2024-06-22"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown car",
			req:        dailyRequest("665f1c2e8a1b2c3d4e5f6aff", "2024-06-20", "10:00", "2024-06-22"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.service.Book(context.Background(), tt.req)
			assertAppError(t, err, tt.wantStatus)
			if len(f.publisher.types()) != 0 {
				t.Errorf("no event expected on failure")
			}
		})
	}
}

func TestBook_ValidationListsViolations(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateRentalRequest{
		RentalWindowRequest: model.RentalWindowRequest{RentalType: "Weekly"},
	}
	_, err := f.service.Book(context.Background(), req)
	appErr := assertAppError(t, err, http.StatusUnprocessableEntity)

	violations, ok := appErr.Details["violations"]
	if !ok {
		t.Fatalf("details missing violations: %v", appErr.Details)
	}
	if v := reflect.ValueOf(violations); v.Len() < 4 {
		t.Errorf("expected every missing field to be reported, got %d: %v", v.Len(), violations)
	}
}

func TestBook_ShapeAndCalendarViolationsMerged(t *testing.T) {
	f := newFixture(t)

	req := &model.CreateRentalRequest{
		CarID:         testCarID,
		CustomerID:    testCustomer,
		LicenseNumber: "x",
		RentalWindowRequest: model.RentalWindowRequest{
			RentalType:    model.RentalTypeHourly,
			StartDate:     "2024-06-01",
			PickUpTime:    "10:00",
			NumberOfHours: 100,
		},
	}
	_, err := f.service.Book(context.Background(), req)

	want := []string{"license_number", "start_date", "number_of_hours"}
	if got := violationFields(t, err); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
	if f.locks.created != 0 {
		t.Errorf("lock taken for an invalid request")
	}
}

func TestBook_Overlap(t *testing.T) {
	existing := storedRental("665f1c2e8a1b2c3d4e5f6b01", model.StatusConfirmed, "2024-06-21", "09:00", "2024-06-23", "09:00", 30000)

	tests := []struct {
		name      string
		req       *model.CreateRentalRequest
		wantError bool
	}{
		{name: "overlapping", req: dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22"), wantError: true},
		{name: "contained", req: dailyRequest(testCarID, "2024-06-19", "10:00", "2024-06-25"), wantError: true},
		{name: "ends when existing starts", req: dailyRequest(testCarID, "2024-06-19", "09:00", "2024-06-21"), wantError: false},
		{name: "starts when existing ends", req: dailyRequest(testCarID, "2024-06-23", "09:00", "2024-06-24"), wantError: false},
		{name: "other car", req: dailyRequest(testOtherCarID, "2024-06-20", "10:00", "2024-06-22"), wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copied := *existing
			f := newFixture(t, &copied)

			_, err := f.service.Book(context.Background(), tt.req)
			if !tt.wantError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertAppError(t, err, http.StatusConflict)
			if !errors.Is(err, rentalserrors.ErrTimeConflict) {
				t.Errorf("expected ErrTimeConflict, got %v", err)
			}
			if len(f.rentals.rentals) != 1 {
				t.Errorf("conflicting rental was stored")
			}
			if len(f.locks.locks) != 0 {
				t.Errorf("lock not released after conflict")
			}
		})
	}
}

func TestBook_CancelledRentalDoesNotBlock(t *testing.T) {
	f := newFixture(t, storedRental("665f1c2e8a1b2c3d4e5f6b01", model.StatusCancelled, "2024-06-20", "10:00", "2024-06-22", "10:00", 30000))

	if _, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22")); err != nil {
		t.Fatalf("cancelled rental should free the car: %v", err)
	}
}

func TestBook_LockHeld(t *testing.T) {
	f := newFixture(t)
	f.locks.locks["rental_lock_"+testCarID] = &model.RentalLock{
		ID:        "rental_lock_" + testCarID,
		Owner:     "someone-else",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	_, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22"))
	assertAppError(t, err, http.StatusConflict)
	if !errors.Is(err, rentalserrors.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld, got %v", err)
	}
	if f.locks.locks["rental_lock_"+testCarID].Owner != "someone-else" {
		t.Errorf("another request's lock was released")
	}
}

func TestBook_StaleLockIsCleared(t *testing.T) {
	f := newFixture(t)
	f.locks.locks["rental_lock_"+testCarID] = &model.RentalLock{
		ID:        "rental_lock_" + testCarID,
		Owner:     "crashed-instance",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	if _, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22")); err != nil {
		t.Fatalf("stale lock should not block booking: %v", err)
	}
}

func TestBook_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	if _, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22")); err != nil {
		t.Fatalf("publish failure must not fail booking: %v", err)
	}
	if len(f.rentals.rentals) != 1 {
		t.Errorf("rental not stored")
	}
}

func TestBook_InactiveCar(t *testing.T) {
	f := newFixture(t)
	f.cars.cars[testCarID].Active = false

	_, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22"))
	assertAppError(t, err, http.StatusConflict)
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID(t *testing.T) {
	f := newFixture(t, storedRental("665f1c2e8a1b2c3d4e5f6b01", model.StatusBooked, "2024-06-20", "10:00", "2024-06-22", "10:00", 30000))

	view, err := f.service.GetByID(context.Background(), "665f1c2e8a1b2c3d4e5f6b01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.BalanceDue != 30000 {
		t.Errorf("balance = %d", view.BalanceDue)
	}

	_, err = f.service.GetByID(context.Background(), "665f1c2e8a1b2c3d4e5f6bff")
	assertAppError(t, err, http.StatusNotFound)

	_, err = f.service.GetByID(context.Background(), "")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestListByCustomer(t *testing.T) {
	older := storedRental("665f1c2e8a1b2c3d4e5f6b01", model.StatusCompleted, "2024-06-01", "10:00", "2024-06-02", "10:00", 15000)
	newer := storedRental("665f1c2e8a1b2c3d4e5f6b02", model.StatusBooked, "2024-06-20", "10:00", "2024-06-22", "10:00", 30000)
	other := storedRental("665f1c2e8a1b2c3d4e5f6b03", model.StatusBooked, "2024-06-25", "10:00", "2024-06-26", "10:00", 15000)
	other.CustomerID = "cust-7"
	f := newFixture(t, older, newer, other)

	views, total, err := f.service.ListByCustomer(context.Background(), " "+testCustomer+" ", 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("total = %d, len = %d, want 2/2", total, len(views))
	}
	if views[0].ID != newer.ID {
		t.Errorf("expected most recent start first, got %s", views[0].ID)
	}
	if views[1].CanCancel || views[1].CanPay {
		t.Errorf("completed rental should have no actions")
	}

	_, _, err = f.service.ListByCustomer(context.Background(), "  ", 10, 0)
	assertAppError(t, err, http.StatusBadRequest)
}

func TestRedeemableCash(t *testing.T) {
	f := newFixture(t)
	f.wallets.balances[testCustomer] = 4200

	got, err := f.service.RedeemableCash(context.Background(), testCustomer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RedeemableCents != 4200 {
		t.Errorf("redeemable = %d, want 4200", got.RedeemableCents)
	}

	got, err = f.service.RedeemableCash(context.Background(), "new-customer")
	if err != nil || got.RedeemableCents != 0 {
		t.Errorf("customer without wallet: %v, %v", got, err)
	}
}

func TestBook_CarLookupFailure(t *testing.T) {
	f := newFixture(t)
	f.cars.findByIDFunc = func(ctx context.Context, id string) (*model.Car, error) {
		return nil, errors.New("server selection timeout")
	}

	_, err := f.service.Book(context.Background(), dailyRequest(testCarID, "2024-06-20", "10:00", "2024-06-22"))
	assertAppError(t, err, http.StatusInternalServerError)
	if f.locks.created != 0 {
		t.Errorf("lock taken before the car was loaded")
	}
}
