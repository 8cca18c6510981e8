package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warrantytracker/internal/models"
)

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// categoryScope matches the categories visible to an owner: the global
// defaults plus their own customs. Name uniqueness is checked within this
// scope.
func categoryScope(ownerID primitive.ObjectID) []bson.M {
	return []bson.M{
		{"isDefault": true},
		{"user": ownerID},
	}
}

// categoryNameFilter matches categories with the given name,
// case-insensitively, inside the owner's visibility scope. exclude drops
// one id from the match (the category being renamed).
func categoryNameFilter(name string, ownerID, exclude primitive.ObjectID) bson.M {
	filter := bson.M{
		"name": bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"},
		"$or":  categoryScope(ownerID),
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

func categoryNameTaken(ctx context.Context, db *mongo.Database, name string, ownerID primitive.ObjectID, exclude primitive.ObjectID) (bool, error) {
	count, err := db.Collection("categories").CountDocuments(ctx, categoryNameFilter(name, ownerID, exclude))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

/*
GET /api/categories
- defaults plus the owner's customs, sorted by name
*/
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		ctx, cancel := queryContext(c)
		defer cancel()

		cursor, err := db.Collection("categories").Find(
			ctx,
			bson.M{"$or": categoryScope(userID)},
			options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, categories)
	}
}

/*
GET /api/categories/:id
*/
func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if !category.IsDefault && category.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to access this category")
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

/*
POST /api/categories
- name must be unique, case-insensitively, among defaults and the owner's
  customs
*/
func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/categories"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		taken, err := categoryNameTaken(ctx, db, name, userID, primitive.NilObjectID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if taken {
			respondWithError(c, http.StatusBadRequest, route, "Category already exists")
			return
		}

		category := models.Category{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			IsDefault:   false,
			User:        userID,
			CreatedAt:   time.Now(),
		}

		result, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		category.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, category)
	}
}

/*
PUT /api/categories/:id
- defaults are never writable
*/
func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/categories/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if category.IsDefault {
			respondWithError(c, http.StatusForbidden, route, "Cannot modify default categories")
			return
		}
		if category.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to update this category")
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			if !strings.EqualFold(name, category.Name) {
				taken, err := categoryNameTaken(ctx, db, name, userID, id)
				if err != nil {
					respondWithError(c, http.StatusInternalServerError, route, "Server error")
					return
				}
				if taken {
					respondWithError(c, http.StatusBadRequest, route, "Category with this name already exists")
					return
				}
			}
			update["name"] = name
		}

		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		var updated models.Category
		err = db.Collection("categories").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id, "user": userID},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /api/categories/:id
- defaults are never deletable; products referencing a removed custom
  category keep the stale id and render as "Unknown"
*/
func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/categories/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Category not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if category.IsDefault {
			respondWithError(c, http.StatusForbidden, route, "Cannot delete default categories")
			return
		}
		if category.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to delete this category")
			return
		}

		if _, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id, "user": userID}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Category removed"})
	}
}
