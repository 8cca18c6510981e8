package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBuildProductFilterAlwaysOwnerScoped(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := buildProductFilter(owner, ProductFilters{})
	if got, ok := filter["user"]; !ok || got != owner {
		t.Fatalf("expected filter scoped to owner %s, got %v", owner.Hex(), filter)
	}

	// Filters never widen the scope.
	filter = buildProductFilter(owner, ProductFilters{Search: "tv", Category: primitive.NewObjectID().Hex(), Status: "expired", Now: testNow})
	if got, ok := filter["user"]; !ok || got != owner {
		t.Fatalf("expected owner scope to survive all filters, got %v", filter)
	}
}

func TestBuildProductFilterSearch(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := buildProductFilter(owner, ProductFilters{Search: "galaxy"})
	or, ok := filter["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or clause for search, got %v", filter)
	}
	if len(or) != 4 {
		t.Fatalf("expected search across 4 fields, got %d", len(or))
	}

	fields := map[string]bool{}
	for _, clause := range or {
		for field, value := range clause {
			fields[field] = true
			re, ok := value.(bson.M)
			if !ok || re["$options"] != "i" {
				t.Fatalf("expected case-insensitive regex on %s, got %v", field, value)
			}
		}
	}
	for _, field := range []string{"name", "description", "model", "serialNumber"} {
		if !fields[field] {
			t.Fatalf("expected search to cover %s", field)
		}
	}
}

func TestBuildProductFilterSearchQuotesRegexMeta(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := buildProductFilter(owner, ProductFilters{Search: "a.c (v2)"})
	or := filter["$or"].([]bson.M)
	pattern := or[0]["name"].(bson.M)["$regex"].(string)
	if pattern != `a\.c \(v2\)` {
		t.Fatalf("expected regex metacharacters quoted, got %q", pattern)
	}
}

func TestBuildProductFilterStatusWindows(t *testing.T) {
	owner := primitive.NewObjectID()
	thirtyDays := testNow.AddDate(0, 0, 30)

	filter := buildProductFilter(owner, ProductFilters{Status: "active", Now: testNow})
	window := filter["warrantyExpiryDate"].(bson.M)
	if !window["$gt"].(time.Time).Equal(thirtyDays) {
		t.Fatalf("active: expected $gt %v, got %v", thirtyDays, window)
	}

	filter = buildProductFilter(owner, ProductFilters{Status: "expiring", Now: testNow})
	window = filter["warrantyExpiryDate"].(bson.M)
	if !window["$lte"].(time.Time).Equal(thirtyDays) || !window["$gt"].(time.Time).Equal(testNow) {
		t.Fatalf("expiring: expected ($gt now, $lte now+30d], got %v", window)
	}

	filter = buildProductFilter(owner, ProductFilters{Status: "expired", Now: testNow})
	window = filter["warrantyExpiryDate"].(bson.M)
	if !window["$lte"].(time.Time).Equal(testNow) {
		t.Fatalf("expired: expected $lte now, got %v", window)
	}

	// The three windows share their boundaries exactly, so any expiry
	// date matches exactly one status.
}

func TestBuildProductFilterIgnoresMalformedCategory(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := buildProductFilter(owner, ProductFilters{Category: "not-an-object-id"})
	if _, ok := filter["category"]; ok {
		t.Fatalf("expected malformed category to be dropped, got %v", filter)
	}

	categoryID := primitive.NewObjectID()
	filter = buildProductFilter(owner, ProductFilters{Category: categoryID.Hex()})
	if got := filter["category"]; got != categoryID {
		t.Fatalf("expected category %s, got %v", categoryID.Hex(), got)
	}
}

func TestParseSortOption(t *testing.T) {
	defaultSort := bson.D{{Key: "createdAt", Value: -1}}

	tests := []struct {
		input    string
		expected bson.D
	}{
		{"", defaultSort},
		{"name:asc", bson.D{{Key: "name", Value: 1}}},
		{"purchaseDate:desc", bson.D{{Key: "purchaseDate", Value: -1}}},
		{"warrantyExpiryDate", bson.D{{Key: "warrantyExpiryDate", Value: 1}}},
		{"secretField:asc", defaultSort},
		{"name:sideways", bson.D{{Key: "name", Value: 1}}},
	}

	for _, tt := range tests {
		got := parseSortOption(tt.input, sortableProductFields)
		if len(got) != 1 || got[0].Key != tt.expected[0].Key || got[0].Value != tt.expected[0].Value {
			t.Fatalf("parseSortOption(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}
