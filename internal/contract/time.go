package contract

import "time"

// IsCurrent reports whether review-platform data is fresh enough to skip
// refetching. Data is current when the snapshot was created after the
// window's end (the window is fully in the past, nothing can change) or
// within FreshnessWindow of now (avoid redundant refetching on repeated
// quick runs). A nil createdOn is never current.
func IsCurrent(windowEnd time.Time, createdOn *time.Time, now time.Time) bool {
	if createdOn == nil {
		return false
	}
	if createdOn.After(windowEnd) {
		return true
	}
	return now.Sub(*createdOn) < FreshnessWindow
}
