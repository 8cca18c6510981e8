package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("user_index")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category_index")},
		{Keys: bson.D{{Key: "warrantyExpiryDate", Value: 1}}, Options: options.Index().SetName("warrantyExpiryDate_index")},
		{Keys: bson.D{{Key: "purchaseDate", Value: -1}}, Options: options.Index().SetName("purchaseDate_index")},
	}

	_, err := db.Collection("products").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		zap.S().Errorf("EnsureProductIndexes: %v", err)
		return err
	}
	return nil
}

func EnsureServiceIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("user_index")},
		{Keys: bson.D{{Key: "product", Value: 1}}, Options: options.Index().SetName("product_index")},
		{Keys: bson.D{{Key: "nextServiceDueDate", Value: 1}}, Options: options.Index().SetName("nextServiceDueDate_index")},
		{Keys: bson.D{{Key: "serviceDate", Value: -1}}, Options: options.Index().SetName("serviceDate_index")},
	}

	_, err := db.Collection("services").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		zap.S().Errorf("EnsureServiceIndexes: %v", err)
		return err
	}
	return nil
}

func EnsureCategoryIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Name uniqueness is scope-dependent (defaults plus one owner's
	// customs) and case-insensitive, so it is enforced in the handler
	// rather than by a unique index.
	nameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("name_index"),
	}

	_, err := db.Collection("categories").Indexes().CreateOne(ctx, nameIndex)
	if err != nil {
		zap.S().Errorf("EnsureCategoryIndexes: %v", err)
		return err
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		zap.S().Errorf("EnsureUserIndexes: %v", err)
		return err
	}
	return nil
}
