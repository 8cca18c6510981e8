package sweep

import (
	"testing"
	"time"

	"warrantytracker/internal/models"
)

func TestEligible(t *testing.T) {
	if eligible(nil) {
		t.Fatal("nil user must not be eligible")
	}
	if eligible(&models.User{Name: "A", NotificationsEnabled: true}) {
		t.Fatal("user without email must not be eligible")
	}
	if eligible(&models.User{Name: "A", Email: "a@example.com", NotificationsEnabled: false}) {
		t.Fatal("user who disabled notifications must not be eligible")
	}
	if !eligible(&models.User{Name: "A", Email: "a@example.com", NotificationsEnabled: true}) {
		t.Fatal("expected user with email and notifications enabled to be eligible")
	}
}

func TestShouldNotify(t *testing.T) {
	expiry := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)

	if !shouldNotify(nil, expiry) {
		t.Fatal("expected notify when never notified before")
	}
	if shouldNotify(&expiry, expiry) {
		t.Fatal("expected skip when already notified for this expiry")
	}

	// A moved expiry re-arms the warning.
	previous := expiry.AddDate(0, -6, 0)
	if !shouldNotify(&previous, expiry) {
		t.Fatal("expected notify when the expiry changed since the last warning")
	}
}
