package rentalwindow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var (
	clock24Regex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	clock12Regex = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9])\s*([AaPp][Mm])$`)
)

// TimeOfDay is a clock time stored as minutes since midnight, 0..1439.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay accepts both 24-hour ("09:30", "9:30", "22:05") and
// 12-hour ("9:30 AM", "12:00pm") clock strings.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)

	if m := clock24Regex.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return NewTimeOfDay(hour, minute)
	}

	if m := clock12Regex.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return NewTimeOfDay(hour, minute)
	}

	return 0, fmt.Errorf("invalid time of day %q: expected HH:MM or h:MM AM/PM", s)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// String renders the 24-hour form, e.g. "03:30".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Format12 renders the 12-hour form, e.g. "3:30 AM".
func (t TimeOfDay) Format12() string {
	period := "AM"
	if t.Hour() >= 12 {
		period = "PM"
	}
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), period)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
