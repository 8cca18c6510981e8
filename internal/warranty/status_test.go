package warranty

import (
	"testing"
	"time"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStatusBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		expiry   time.Time
		expected string
	}{
		{"already expired", now.AddDate(0, 0, -10), StatusExpired},
		{"expires this instant", now, StatusExpired},
		{"expires in one day", now.AddDate(0, 0, 1), StatusExpiring},
		{"expires in exactly 30 days", now.AddDate(0, 0, 30), StatusExpiring},
		{"expires in 31 days", now.AddDate(0, 0, 31), StatusActive},
		{"expires next year", now.AddDate(1, 0, 0), StatusActive},
	}

	for _, tt := range tests {
		if got := Status(tt.expiry, now); got != tt.expected {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.expected, got)
		}
	}
}

func TestDaysLeftRoundsUp(t *testing.T) {
	// Half a day left still counts as one day.
	if got := DaysLeft(now.Add(12*time.Hour), now); got != 1 {
		t.Fatalf("expected 1 day left, got %d", got)
	}
	if got := DaysLeft(now, now); got != 0 {
		t.Fatalf("expected 0 days left, got %d", got)
	}
	if got := DaysLeft(now.Add(-time.Hour), now); got != 0 {
		t.Fatalf("expected 0 days left for past target, got %d", got)
	}
	if got := DaysLeft(now.AddDate(0, 0, -2), now); got != -2 {
		t.Fatalf("expected -2 days left, got %d", got)
	}
}

func TestDueStatus(t *testing.T) {
	if got := DueStatus(nil, now); got != "" {
		t.Fatalf("expected empty status for nil due date, got %q", got)
	}

	overdue := now.AddDate(0, 0, -1)
	if got := DueStatus(&overdue, now); got != StatusOverdue {
		t.Fatalf("expected overdue, got %q", got)
	}

	upcoming := now.AddDate(0, 0, 30)
	if got := DueStatus(&upcoming, now); got != StatusUpcoming {
		t.Fatalf("expected upcoming, got %q", got)
	}

	scheduled := now.AddDate(0, 0, 31)
	if got := DueStatus(&scheduled, now); got != StatusScheduled {
		t.Fatalf("expected scheduled, got %q", got)
	}
}

func TestExpiryDate(t *testing.T) {
	purchase := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	expiry := ExpiryDate(purchase, 12)
	if expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC); !expiry.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, expiry)
	}

	expiry = ExpiryDate(purchase, 18)
	if expected := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC); !expiry.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, expiry)
	}
}

func TestExpiryDateMonthOverflow(t *testing.T) {
	purchase := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	expiry := ExpiryDate(purchase, 1)
	// 2024 is a leap year, so Jan 31 + 1 month overflows to Mar 2.
	if expected := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC); !expiry.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, expiry)
	}
}

func TestSweepWindow(t *testing.T) {
	start, end := SweepWindow(now)

	expectedStart := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	if !start.Equal(expectedStart) {
		t.Fatalf("expected window start %v, got %v", expectedStart, start)
	}
	if end.Before(start) {
		t.Fatal("window end precedes start")
	}
	if end.Day() != 8 || end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Fatalf("expected window end at 23:59:59 of the target day, got %v", end)
	}

	// A product expiring inside the target day is selected; one day on
	// either side is not.
	inside := time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)
	if inside.Before(start) || inside.After(end) {
		t.Fatal("expected +7 day target inside the window")
	}
	sixDays := now.AddDate(0, 0, 6)
	if !sixDays.Before(start) {
		t.Fatal("expected +6 day target before the window")
	}
	eightDays := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	if !eightDays.After(end) {
		t.Fatal("expected +8 day target after the window")
	}
}
