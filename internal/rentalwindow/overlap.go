package rentalwindow

// WindowsOverlap treats both windows as half-open intervals [start, end),
// so a rental that ends exactly when another begins does not overlap it.
func WindowsOverlap(a, b RentalWindow) bool {
	return a.Start().Before(b.End()) && b.Start().Before(a.End())
}

// Overlaps reports whether candidate overlaps any window in existing.
// The set is scanned in order and the scan stops at the first hit.
func Overlaps(candidate RentalWindow, existing BookingSet) bool {
	for _, booked := range existing {
		if WindowsOverlap(candidate, booked) {
			return true
		}
	}
	return false
}

// Validate checks that every window in the set is well formed.
func (s BookingSet) Validate(resourceID string) error {
	for i, w := range s {
		if !w.Valid() {
			return &PreconditionError{
				ResourceID: resourceID,
				Index:      i,
				Reason:     "booking window must end strictly after it starts",
			}
		}
	}
	return nil
}

// FilterAvailable returns, in input order, the IDs of the resources whose bookings
// leave candidate free. Input slices are only read.
func FilterAvailable(candidate RentalWindow, resources []ResourceBookings) ([]string, error) {
	if !candidate.Valid() {
		verr := &ValidationError{}
		verr.add("Window", "candidate window must end strictly after it starts")
		return nil, verr
	}

	for _, r := range resources {
		if err := r.Bookings.Validate(r.ResourceID); err != nil {
			return nil, err
		}
	}

	available := make([]string, 0, len(resources))
	for _, r := range resources {
		if !Overlaps(candidate, r.Bookings) {
			available = append(available, r.ResourceID)
		}
	}
	return available, nil
}
