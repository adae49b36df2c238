package service

import (
	"errors"
	"strings"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/internal/rentals/validator"
	"carrental/internal/rentalwindow"
	apperrors "carrental/pkg/errors"
	"carrental/pkg/model"
)

// requestFields maps the calculator's field names onto the JSON names of
// model.RentalWindowRequest, for violation keys and messages alike.
var requestFields = map[string]string{
	"Mode":          "rental_type",
	"StartDate":     "start_date",
	"StartTime":     "pick_up_time",
	"DurationHours": "number_of_hours",
	"EndDate":       "end_date",
}

var requestFieldNames = strings.NewReplacer(
	"Mode", "rental_type",
	"StartDate", "start_date",
	"StartTime", "pick_up_time",
	"DurationHours", "number_of_hours",
	"EndDate", "end_date",
)

func requestViolations(werr *rentalwindow.ValidationError) validator.ValidationErrors {
	out := make(validator.ValidationErrors, 0, len(werr.Violations))
	for _, v := range werr.Violations {
		field, ok := requestFields[v.Field]
		if !ok {
			field = v.Field
		}
		out = append(out, validator.ValidationError{Field: field, Message: requestFieldNames.Replace(v.Message)})
	}
	return out
}

// checkWindow runs the calendar rules even when shapeErr already rejected the request,
// and reports the violations of both in one 422. Calendar violations on a field the
// shape rules already flagged are dropped.
func checkWindow(calc *rentalwindow.Calculator, req *model.RentalWindowRequest, shapeErr error, message string) (rentalwindow.RentalWindow, error) {
	window, err := computeWindow(calc, req)
	if shapeErr == nil && err == nil {
		return window, nil
	}

	var violations validator.ValidationErrors
	if shapeErr != nil && !errors.As(shapeErr, &violations) {
		return rentalwindow.RentalWindow{}, apperrors.Internal(message, shapeErr)
	}

	if err != nil {
		var werr *rentalwindow.ValidationError
		if !errors.As(err, &werr) {
			return rentalwindow.RentalWindow{}, windowError(err)
		}
		reported := make(map[string]bool, len(violations))
		for _, v := range violations {
			reported[v.Field] = true
		}
		merged := append(validator.ValidationErrors{}, violations...)
		for _, v := range requestViolations(werr) {
			if !reported[v.Field] {
				merged = append(merged, v)
			}
		}
		violations = merged
	}

	return rentalwindow.RentalWindow{}, apperrors.Validation(message, map[string]any{"violations": violations})
}

// computeWindow parses what it can of req and runs the calendar rules over it.
// Unparseable fields are left zero; the shape rules report those.
func computeWindow(calc *rentalwindow.Calculator, req *model.RentalWindowRequest) (rentalwindow.RentalWindow, error) {
	rr := rentalwindow.RentalRequest{DurationHours: req.NumberOfHours}

	if mode, ok := rentalwindow.ParseMode(req.RentalType); ok {
		rr.Mode = mode
	}
	if d, err := rentalwindow.ParseDate(req.StartDate); err == nil {
		rr.StartDate = d
	}
	if t, err := rentalwindow.ParseTimeOfDay(req.PickUpTime); err == nil {
		rr.StartTime = t
	}
	if strings.TrimSpace(req.EndDate) != "" {
		if d, err := rentalwindow.ParseDate(req.EndDate); err == nil {
			rr.EndDate = &d
		}
	}

	return calc.ComputeEndOfWindow(rr)
}

func quoteOf(req *model.RentalWindowRequest, w rentalwindow.RentalWindow) *model.Quote {
	q := &model.Quote{
		RentalType:   req.RentalType,
		StartDate:    w.StartDate.String(),
		PickUpTime:   w.StartTime.String(),
		EndDate:      w.EndDate.String(),
		DropTime:     w.EndTime.String(),
		DropTime12h:  w.EndTime.Format12(),
		DurationMins: w.Minutes(),
	}
	if req.RentalType == model.RentalTypeHourly {
		q.NumberOfHours = req.NumberOfHours
	}
	return q
}

// priceCents charges hourly rentals per hour and daily rentals per day. The calculator
// guarantees a daily window spans at least one day.
func priceCents(car *model.Car, rentalType string, hours int, w rentalwindow.RentalWindow) int64 {
	if rentalType == model.RentalTypeHourly {
		return int64(hours) * car.HourlyRateCents
	}
	return int64(w.StartDate.DaysUntil(w.EndDate)) * car.DailyRateCents
}

// applyWindow copies a computed window onto the stored rental.
func applyWindow(r *model.Rental, req *model.RentalWindowRequest, w rentalwindow.RentalWindow, calc *rentalwindow.Calculator) {
	loc := calc.Policy().Location

	r.RentalType = req.RentalType
	r.StartDate = w.StartDate.String()
	r.PickUpTime = w.StartTime.String()
	r.EndDate = w.EndDate.String()
	r.DropTime = w.EndTime.String()
	r.NumberOfHours = 0
	if req.RentalType == model.RentalTypeHourly {
		r.NumberOfHours = req.NumberOfHours
	}
	r.StartAt = w.Start().In(loc).UTC()
	r.EndAt = w.End().In(loc).UTC()
}

// windowOf reads a stored rental back into the calculator's representation. A rental
// with unparseable fields yields a zero window, which BookingSet.Validate rejects.
func windowOf(r *model.Rental) rentalwindow.RentalWindow {
	w := rentalwindow.RentalWindow{ResourceID: r.CarID}
	w.StartDate, _ = rentalwindow.ParseDate(r.StartDate)
	w.StartTime, _ = rentalwindow.ParseTimeOfDay(r.PickUpTime)
	w.EndDate, _ = rentalwindow.ParseDate(r.EndDate)
	w.EndTime, _ = rentalwindow.ParseTimeOfDay(r.DropTime)
	return w
}

func bookingSetOf(rentals []*model.Rental) rentalwindow.BookingSet {
	set := make(rentalwindow.BookingSet, 0, len(rentals))
	for _, r := range rentals {
		set = append(set, windowOf(r))
	}
	return set
}

// sanitizeWindow trims the calendar fields in place.
func sanitizeWindow(req *model.RentalWindowRequest) {
	req.RentalType = strings.TrimSpace(req.RentalType)
	if mode, ok := rentalwindow.ParseMode(req.RentalType); ok {
		req.RentalType = string(mode)
	}
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.PickUpTime = strings.TrimSpace(req.PickUpTime)
	req.EndDate = strings.TrimSpace(req.EndDate)
}

// validationError turns both kinds of validation failure into a 422 listing every violation.
func validationError(message string, err error) error {
	var tagErrs validator.ValidationErrors
	if errors.As(err, &tagErrs) {
		return apperrors.Validation(message, map[string]any{"violations": tagErrs})
	}
	var windowErr *rentalwindow.ValidationError
	if errors.As(err, &windowErr) {
		return apperrors.Validation(message, map[string]any{"violations": requestViolations(windowErr)})
	}
	return apperrors.Internal(message, err)
}

// windowError maps errors coming out of the rentalwindow package.
func windowError(err error) error {
	var precondition *rentalwindow.PreconditionError
	if errors.As(err, &precondition) {
		return apperrors.PreconditionFailed("Stored rentals for this car are inconsistent", err)
	}
	return validationError("Invalid rental window", err)
}

func rentalLookupError(err error, id string) error {
	switch {
	case errors.Is(err, rentalserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Rental", id)
	case errors.Is(err, rentalserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid rental ID format")
	default:
		return apperrors.Internal("Failed to retrieve rental", err)
	}
}

func carLookupError(err error, id string) error {
	switch {
	case errors.Is(err, rentalserrors.ErrCarNotFound):
		return apperrors.NotFoundWithID("Car", id)
	case errors.Is(err, rentalserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid car ID format")
	default:
		return apperrors.Internal("Failed to retrieve car", err)
	}
}
