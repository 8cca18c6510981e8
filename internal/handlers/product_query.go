package handlers

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"warrantytracker/internal/warranty"
)

// ProductFilters are the recognized list-endpoint options. The owner is
// deliberately not part of this struct: buildProductFilter takes it as a
// required parameter so an unscoped query cannot be expressed.
type ProductFilters struct {
	Search   string
	Category string
	Status   string
	Now      time.Time
}

func buildProductFilter(ownerID primitive.ObjectID, f ProductFilters) bson.M {
	filter := bson.M{"user": ownerID}

	if category := strings.TrimSpace(f.Category); category != "" {
		if categoryID, err := primitive.ObjectIDFromHex(category); err == nil {
			filter["category"] = categoryID
		}
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"model": bson.M{"$regex": pattern, "$options": "i"}},
			{"serialNumber": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	if status := strings.TrimSpace(f.Status); status != "" {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		thirtyDaysFromNow := now.AddDate(0, 0, warranty.SoonThresholdDays)

		// The three windows partition the expiry axis: every product
		// matches exactly one status.
		switch status {
		case warranty.StatusActive:
			filter["warrantyExpiryDate"] = bson.M{"$gt": thirtyDaysFromNow}
		case warranty.StatusExpiring:
			filter["warrantyExpiryDate"] = bson.M{"$lte": thirtyDaysFromNow, "$gt": now}
		case warranty.StatusExpired:
			filter["warrantyExpiryDate"] = bson.M{"$lte": now}
		}
	}

	return filter
}

var sortableProductFields = map[string]bool{
	"name":               true,
	"purchaseDate":       true,
	"warrantyExpiryDate": true,
	"purchasePrice":      true,
	"createdAt":          true,
}

// parseSortOption turns a "field:direction" query value into a Mongo sort
// document. Unknown fields and empty input fall back to newest-first.
func parseSortOption(sort string, allowed map[string]bool) bson.D {
	defaultSort := bson.D{{Key: "createdAt", Value: -1}}

	sort = strings.TrimSpace(sort)
	if sort == "" {
		return defaultSort
	}

	field := sort
	order := 1
	if idx := strings.Index(sort, ":"); idx >= 0 {
		field = sort[:idx]
		if strings.EqualFold(sort[idx+1:], "desc") {
			order = -1
		}
	}

	if !allowed[field] {
		return defaultSort
	}

	return bson.D{{Key: field, Value: order}}
}
