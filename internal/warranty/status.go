// Package warranty holds the date arithmetic shared by the interactive
// status fields and the expiration sweep.
package warranty

import (
	"math"
	"time"
)

// SoonThresholdDays is the interactive "expiring soon" window.
const SoonThresholdDays = 30

// SweepLeadDays is how far ahead the daily sweep looks. Unlike the
// interactive threshold this is an exact-day match, not a range.
const SweepLeadDays = 7

const (
	StatusExpired  = "expired"
	StatusExpiring = "expiring"
	StatusActive   = "active"

	StatusOverdue   = "overdue"
	StatusUpcoming  = "upcoming"
	StatusScheduled = "scheduled"
)

// DaysLeft returns the number of days until target, rounded up.
// A target earlier than now yields zero or a negative count.
func DaysLeft(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

// ExpiryDate computes the warranty expiry from the purchase date and the
// warranty period in months. Month overflow follows calendar arithmetic:
// Jan 31 plus one month lands in early March.
func ExpiryDate(purchaseDate time.Time, warrantyPeriodMonths int) time.Time {
	return purchaseDate.AddDate(0, warrantyPeriodMonths, 0)
}

// Status classifies a warranty expiry date against now. daysLeft <= 0 is
// expired, daysLeft <= 30 is expiring, anything later is active. The
// boundary at exactly 30 days still counts as expiring.
func Status(expiry, now time.Time) string {
	daysLeft := DaysLeft(expiry, now)
	switch {
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= SoonThresholdDays:
		return StatusExpiring
	default:
		return StatusActive
	}
}

// DueStatus classifies a next-service-due date the same way Status
// classifies a warranty expiry, with the service label set. A nil due
// date has no status and returns the empty string.
func DueStatus(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	daysLeft := DaysLeft(*due, now)
	switch {
	case daysLeft <= 0:
		return StatusOverdue
	case daysLeft <= SoonThresholdDays:
		return StatusUpcoming
	default:
		return StatusScheduled
	}
}

// SweepWindow returns the calendar day exactly SweepLeadDays ahead of now
// as an inclusive [start, end] range, from 00:00:00.000 to 23:59:59.999
// in now's location.
func SweepWindow(now time.Time) (time.Time, time.Time) {
	target := now.AddDate(0, 0, SweepLeadDays)
	start := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}
