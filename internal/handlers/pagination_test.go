package handlers

import "testing"

func TestParsePaginationDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationRejectsInvalid(t *testing.T) {
	for _, tt := range []struct{ page, limit string }{
		{"0", "10"},
		{"-1", "10"},
		{"abc", "10"},
		{"1", "0"},
		{"1", "-5"},
		{"1", "ten"},
	} {
		if _, _, err := parsePaginationParams(tt.page, tt.limit); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", tt.page, tt.limit)
		}
	}
}

func TestParsePaginationCapsLimit(t *testing.T) {
	_, limit, err := parsePaginationParams("1", "5000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, limit)
	}
}

func TestPaginationEnvelope(t *testing.T) {
	envelope := paginationEnvelope(2, 10, 25)
	if envelope["pages"] != int64(3) {
		t.Fatalf("expected 3 pages for 25 records at limit 10, got %v", envelope["pages"])
	}
	if envelope["total"] != int64(25) {
		t.Fatalf("expected total 25, got %v", envelope["total"])
	}

	envelope = paginationEnvelope(1, 10, 0)
	if envelope["pages"] != int64(0) {
		t.Fatalf("expected 0 pages for empty set, got %v", envelope["pages"])
	}
}
