package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"warrantytracker/internal/models"
)

// SeedDefaultCategories inserts the built-in category set once. Existing
// defaults are left untouched.
func SeedDefaultCategories(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"isDefault": true})
	if err != nil {
		return err
	}
	if count > 0 {
		zap.S().Info("default categories already exist")
		return nil
	}

	defaults := []models.Category{
		{Name: "Appliance", Description: "Kitchen and home appliances", IsDefault: true},
		{Name: "Electronics", Description: "Computers, phones, and other electronic devices", IsDefault: true},
		{Name: "Vehicle", Description: "Cars, motorcycles, and other vehicles", IsDefault: true},
		{Name: "Furniture", Description: "Home and office furniture", IsDefault: true},
		{Name: "Others", Description: "Miscellaneous items", IsDefault: true},
	}

	docs := make([]interface{}, 0, len(defaults))
	now := time.Now()
	for _, category := range defaults {
		category.CreatedAt = now
		docs = append(docs, category)
	}

	if _, err := db.Collection("categories").InsertMany(ctx, docs); err != nil {
		return err
	}

	zap.S().Infof("seeded %d default categories", len(defaults))
	return nil
}
