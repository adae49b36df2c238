// Package rentalwindow computes rental time windows and judges them against existing bookings.
//
// Everything here is a pure function of its inputs. A Calculator only holds policy
// (maximum hourly duration, reference timezone for "today") and a clock, so a single
// instance is safe to share between goroutines.
package rentalwindow

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultMaxHourlyDuration = 72

type Policy struct {
	// MaxHourlyDuration caps DurationHours for hourly rentals.
	MaxHourlyDuration int
	// Location is the reference timezone used to decide what "today" is.
	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		MaxHourlyDuration: DefaultMaxHourlyDuration,
		Location:          time.UTC,
	}
}

type Calculator struct {
	policy   Policy
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Calculator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

func NewCalculator(policy Policy, opts ...Option) *Calculator {
	if policy.MaxHourlyDuration <= 0 {
		policy.MaxHourlyDuration = DefaultMaxHourlyDuration
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}

	v := validator.New()
	v.RegisterCustomTypeFunc(dateValue, Date{})

	c := &Calculator{
		policy:   policy,
		now:      time.Now,
		validate: v,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func dateValue(field reflect.Value) any {
	d, ok := field.Interface().(Date)
	if !ok || d.IsZero() {
		return ""
	}
	return d.String()
}

func (c *Calculator) Policy() Policy {
	return c.policy
}

// Today is the current calendar date in the policy's reference timezone.
func (c *Calculator) Today() Date {
	return DateOf(c.now().In(c.policy.Location))
}

// ComputeEndOfWindow validates req and derives the end of the rental from it.
// Hourly rentals add DurationHours to the start, rolling over midnight as many times as needed.
// Daily rentals end on the requested EndDate at the same clock time they started.
func (c *Calculator) ComputeEndOfWindow(req RentalRequest) (RentalWindow, error) {
	if err := c.ValidateRequest(req); err != nil {
		return RentalWindow{}, err
	}

	window := RentalWindow{
		StartDate: req.StartDate,
		StartTime: req.StartTime,
	}

	switch req.Mode {
	case ModeHourly:
		window.EndDate, window.EndTime = addHours(req.StartDate, req.StartTime, req.DurationHours)
	case ModeDaily:
		window.EndDate = *req.EndDate
		window.EndTime = req.StartTime
	}

	return window, nil
}

// ValidateRequest returns a *ValidationError listing every problem with req, or nil.
func (c *Calculator) ValidateRequest(req RentalRequest) error {
	verr := &ValidationError{}
	failed := map[string]bool{}

	if err := c.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			failed[fe.Field()] = true
			verr.Violations = append(verr.Violations, translateFieldError(fe))
		}
	}

	if !failed["StartDate"] {
		if today := c.Today(); req.StartDate.Before(today) {
			verr.add("StartDate", "StartDate cannot be earlier than today (%s)", today)
		}
	}

	switch req.Mode {
	case ModeHourly:
		c.checkHourly(req, verr, failed)
	case ModeDaily:
		c.checkDaily(req, verr, failed)
	}

	return verr.orNil()
}

func (c *Calculator) checkHourly(req RentalRequest, verr *ValidationError, failed map[string]bool) {
	if !failed["DurationHours"] {
		switch {
		case req.DurationHours == 0:
			verr.add("DurationHours", "DurationHours is required for hourly rentals")
		case req.DurationHours > c.policy.MaxHourlyDuration:
			verr.add("DurationHours", "DurationHours must be at most %d", c.policy.MaxHourlyDuration)
		}
	}
	if req.EndDate != nil && !failed["EndDate"] {
		verr.add("EndDate", "EndDate must be empty for hourly rentals")
	}
}

func (c *Calculator) checkDaily(req RentalRequest, verr *ValidationError, failed map[string]bool) {
	if req.DurationHours != 0 && !failed["DurationHours"] {
		verr.add("DurationHours", "DurationHours must be empty for daily rentals")
	}
	if failed["EndDate"] {
		return
	}
	if req.EndDate == nil {
		verr.add("EndDate", "EndDate is required for daily rentals")
		return
	}
	if failed["StartDate"] {
		return
	}
	switch req.EndDate.Compare(req.StartDate) {
	case -1:
		verr.add("EndDate", "EndDate cannot be earlier than StartDate")
	case 0:
		// end == start at the same clock time would be an empty window
		verr.add("EndDate", "EndDate must be after StartDate for daily rentals; book an hourly rental to return the same day")
	}
}

func addHours(date Date, start TimeOfDay, hours int) (Date, TimeOfDay) {
	total := int(start) + hours*60
	return date.AddDays(total / MinutesPerDay), TimeOfDay(total % MinutesPerDay)
}

func translateFieldError(fe validator.FieldError) Violation {
	message := fe.Error()

	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		message = fmt.Sprintf("%s must be a valid calendar date (YYYY-MM-DD)", fe.Field())
	case "min", "max":
		message = fmt.Sprintf("%s must be a time of day between 00:00 and 23:59", fe.Field())
	case "gte":
		message = fmt.Sprintf("%s cannot be negative", fe.Field())
	}

	return Violation{Field: fe.Field(), Message: message}
}
