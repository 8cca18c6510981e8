package mailer

import (
	"strings"
	"testing"
)

func TestWarrantyWarningHTML(t *testing.T) {
	html := WarrantyWarningHTML("Alex", "Washing Machine", 7)

	for _, expected := range []string{"Alex", "Washing Machine", "7 days"} {
		if !strings.Contains(html, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}

func TestWarrantyWarningSubject(t *testing.T) {
	subject := WarrantyWarningSubject("Washing Machine")
	if subject != "ACTION REQUIRED: Washing Machine Warranty Expiring" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestServiceDueHTML(t *testing.T) {
	html := ServiceDueHTML("Alex", "Car", 7)

	for _, expected := range []string{"Alex", "Car", "7 days"} {
		if !strings.Contains(html, expected) {
			t.Fatalf("expected body to contain %q", expected)
		}
	}
}
