package rentalwindow

import (
	"strings"
	"time"
)

type Mode string

const (
	ModeHourly Mode = "Hourly"
	ModeDaily  Mode = "Daily"
)

// ParseMode matches rental type labels case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(ModeHourly)):
		return ModeHourly, true
	case strings.EqualFold(strings.TrimSpace(s), string(ModeDaily)):
		return ModeDaily, true
	}
	return "", false
}

// Instant is a (date, time-of-day) pair ordered lexicographically.
type Instant struct {
	Date Date
	Time TimeOfDay
}

func (i Instant) Compare(other Instant) int {
	if c := i.Date.Compare(other.Date); c != 0 {
		return c
	}
	return cmpInt(int(i.Time), int(other.Time))
}

func (i Instant) Before(other Instant) bool {
	return i.Compare(other) < 0
}

// In resolves the instant to wall-clock time in loc.
func (i Instant) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(i.Date.Year, i.Date.Month, i.Date.Day, i.Time.Hour(), i.Time.Minute(), 0, 0, loc)
}

type RentalWindow struct {
	ResourceID string    `json:"resource_id,omitempty"`
	StartDate  Date      `json:"start_date"`
	StartTime  TimeOfDay `json:"start_time"`
	EndDate    Date      `json:"end_date"`
	EndTime    TimeOfDay `json:"end_time"`
}

func (w RentalWindow) Start() Instant {
	return Instant{Date: w.StartDate, Time: w.StartTime}
}

func (w RentalWindow) End() Instant {
	return Instant{Date: w.EndDate, Time: w.EndTime}
}

// Valid reports whether both boundaries are well formed and the end is strictly after the start.
func (w RentalWindow) Valid() bool {
	return w.StartDate.Valid() && w.EndDate.Valid() &&
		w.StartTime.Valid() && w.EndTime.Valid() &&
		w.Start().Before(w.End())
}

// Minutes is the length of the window.
func (w RentalWindow) Minutes() int {
	return w.StartDate.DaysUntil(w.EndDate)*MinutesPerDay + int(w.EndTime) - int(w.StartTime)
}

type RentalRequest struct {
	Mode          Mode      `validate:"required,oneof=Hourly Daily"`
	StartDate     Date      `validate:"required,datetime=2006-01-02"`
	StartTime     TimeOfDay `validate:"min=0,max=1439"`
	DurationHours int       `validate:"gte=0"`
	EndDate       *Date     `validate:"omitempty,datetime=2006-01-02"`
}

// BookingSet holds the existing windows of a single resource. It is never modified here.
type BookingSet []RentalWindow

type ResourceBookings struct {
	ResourceID string
	Bookings   BookingSet
}
