package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warrantytracker/internal/models"
	"warrantytracker/internal/warranty"
)

type categoryCount struct {
	Category   string             `json:"category"`
	CategoryID primitive.ObjectID `json:"categoryId"`
	Count      int64              `json:"count"`
}

func productsByCategory(ctx context.Context, db *mongo.Database, ownerID primitive.ObjectID) ([]categoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := db.Collection("products").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var grouped []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &grouped); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(grouped))
	for _, g := range grouped {
		ids = append(ids, g.ID)
	}

	nameByID := map[primitive.ObjectID]string{}
	if len(ids) > 0 {
		catCursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		var categories []models.Category
		if err := catCursor.All(ctx, &categories); err != nil {
			return nil, err
		}
		for _, category := range categories {
			nameByID[category.ID] = category.Name
		}
	}

	counts := make([]categoryCount, 0, len(grouped))
	for _, g := range grouped {
		name, ok := nameByID[g.ID]
		if !ok {
			name = "Unknown"
		}
		counts = append(counts, categoryCount{Category: name, CategoryID: g.ID, Count: g.Count})
	}
	return counts, nil
}

/*
GET /api/products/stats/dashboard
- warrantyStatusCounts always sums to totalProducts: the three windows
  partition the expiry axis
*/
func GetDashboardStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/stats/dashboard"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		now := time.Now()
		thirtyDaysFromNow := now.AddDate(0, 0, warranty.SoonThresholdDays)

		ctx, cancel := queryContext(c)
		defer cancel()

		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{"user": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		byCategory, err := productsByCategory(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		expiringCursor, err := db.Collection("products").Find(
			ctx,
			bson.M{
				"user":               userID,
				"warrantyExpiryDate": bson.M{"$gt": now, "$lte": thirtyDaysFromNow},
			},
			options.Find().SetSort(bson.D{{Key: "warrantyExpiryDate", Value: 1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		expiring := make([]models.Product, 0)
		if err := expiringCursor.All(ctx, &expiring); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if err := attachProductMeta(ctx, db, expiring, now); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		activeCount, err := db.Collection("products").CountDocuments(ctx, bson.M{
			"user":               userID,
			"warrantyExpiryDate": bson.M{"$gt": thirtyDaysFromNow},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		expiredCount, err := db.Collection("products").CountDocuments(ctx, bson.M{
			"user":               userID,
			"warrantyExpiryDate": bson.M{"$lte": now},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalProducts":      totalProducts,
			"productsByCategory": byCategory,
			"expiringWarranties": expiring,
			"warrantyStatusCounts": gin.H{
				"active":   activeCount,
				"expiring": int64(len(expiring)),
				"expired":  expiredCount,
			},
		})
	}
}
