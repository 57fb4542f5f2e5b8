package models

import "time"

// NextPaidAt computes the paid_at value that accompanies a status change.
// Entering the paid state stamps now, leaving it clears the value, and
// anything else keeps prev.
func NextPaidAt(wasPaid, isPaid bool, prev *time.Time, now time.Time) *time.Time {
	switch {
	case isPaid && !wasPaid:
		t := now
		return &t
	case !isPaid:
		return nil
	default:
		return prev
	}
}
