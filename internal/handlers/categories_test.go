package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategoryNameFilterCaseInsensitive(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := categoryNameFilter("Electronics", owner, primitive.NilObjectID)

	name, ok := filter["name"].(bson.M)
	if !ok {
		t.Fatalf("expected name clause, got %v", filter)
	}
	if name["$regex"] != "^Electronics$" || name["$options"] != "i" {
		t.Fatalf("expected anchored case-insensitive match, got %v", name)
	}
}

func TestCategoryNameFilterQuotesRegexMeta(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := categoryNameFilter("A/C (Home)", owner, primitive.NilObjectID)
	name := filter["name"].(bson.M)
	if name["$regex"] != `^A/C \(Home\)$` {
		t.Fatalf("expected quoted pattern, got %q", name["$regex"])
	}
}

func TestCategoryNameFilterScope(t *testing.T) {
	owner := primitive.NewObjectID()

	filter := categoryNameFilter("Electronics", owner, primitive.NilObjectID)
	scope, ok := filter["$or"].([]bson.M)
	if !ok || len(scope) != 2 {
		t.Fatalf("expected defaults-or-owner scope, got %v", filter)
	}
	if scope[0]["isDefault"] != true {
		t.Fatalf("expected defaults in scope, got %v", scope[0])
	}
	if scope[1]["user"] != owner {
		t.Fatalf("expected owner customs in scope, got %v", scope[1])
	}

	if _, ok := filter["_id"]; ok {
		t.Fatal("expected no exclusion clause without an excluded id")
	}
}

func TestCategoryNameFilterExcludesRenamedCategory(t *testing.T) {
	owner := primitive.NewObjectID()
	exclude := primitive.NewObjectID()

	filter := categoryNameFilter("Electronics", owner, exclude)
	clause, ok := filter["_id"].(bson.M)
	if !ok || clause["$ne"] != exclude {
		t.Fatalf("expected $ne exclusion for %s, got %v", exclude.Hex(), filter)
	}
}
