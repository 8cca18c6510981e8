package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"warrantytracker/internal/models"
	"warrantytracker/internal/warranty"
)

type ProductCreateRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	PurchaseDate   string  `json:"purchaseDate" binding:"required"`
	WarrantyPeriod *int    `json:"warrantyPeriod" binding:"required"`
	Category       string  `json:"category" binding:"required"`
	PurchasePrice  float64 `json:"purchasePrice"`
	Seller         string  `json:"seller"`
	Model          string  `json:"model"`
	SerialNumber   string  `json:"serialNumber"`
	ImageURL       string  `json:"imageUrl"`
	Notes          string  `json:"notes"`
}

type ProductUpdateRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	PurchaseDate   *string  `json:"purchaseDate"`
	WarrantyPeriod *int     `json:"warrantyPeriod"`
	Category       *string  `json:"category"`
	PurchasePrice  *float64 `json:"purchasePrice"`
	Seller         *string  `json:"seller"`
	Model          *string  `json:"model"`
	SerialNumber   *string  `json:"serialNumber"`
	ImageURL       *string  `json:"imageUrl"`
	Notes          *string  `json:"notes"`
}

type DocumentAttachRequest struct {
	Name         string `json:"name" binding:"required"`
	Path         string `json:"path" binding:"required"`
	DocumentType string `json:"documentType"`
}

func parseRequestDate(value string) (time.Time, error) {
	return dateparse.ParseAny(value)
}

// categoryVisible reports whether the category is a default or one of the
// owner's customs. Product writes validate the reference before touching
// the products collection.
func categoryVisible(ctx context.Context, db *mongo.Database, categoryID, ownerID primitive.ObjectID) (bool, error) {
	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{
		"_id": categoryID,
		"$or": []bson.M{
			{"isDefault": true},
			{"user": ownerID},
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// attachProductMeta fills the derived fields: warranty status from the
// expiry date, and the category name resolved in one batched lookup.
func attachProductMeta(ctx context.Context, db *mongo.Database, products []models.Product, now time.Time) error {
	if len(products) == 0 {
		return nil
	}

	seen := map[primitive.ObjectID]struct{}{}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		ids = append(ids, p.Category)
	}

	cursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return err
	}

	nameByID := make(map[primitive.ObjectID]string, len(categories))
	for _, category := range categories {
		nameByID[category.ID] = category.Name
	}

	for i := range products {
		products[i].WarrantyStatus = warranty.Status(products[i].WarrantyExpiryDate, now)
		if name, ok := nameByID[products[i].Category]; ok {
			products[i].CategoryName = name
		} else {
			products[i].CategoryName = "Unknown"
		}
	}
	return nil
}

/*
GET /api/products
- search, category, status, page, limit, sort
- always scoped to the requesting owner
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		filter := buildProductFilter(userID, ProductFilters{
			Search:   c.Query("search"),
			Category: c.Query("category"),
			Status:   c.Query("status"),
			Now:      now,
		})

		ctx, cancel := queryContext(c)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		opts := options.Find().
			SetSort(parseSortOption(c.Query("sort"), sortableProductFields)).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if err := attachProductMeta(ctx, db, products, now); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       products,
			"pagination": paginationEnvelope(page, limit, total),
		})
	}
}

/*
GET /api/products/:id
*/
func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if product.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to access this product")
			return
		}

		products := []models.Product{product}
		if err := attachProductMeta(ctx, db, products, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, products[0])
	}
}

/*
POST /api/products
- validates the category reference before any write
- warrantyExpiryDate is derived, never taken from the request
*/
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name, purchaseDate, warrantyPeriod and category are required")
			return
		}

		purchaseDate, err := parseRequestDate(req.PurchaseDate)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid purchaseDate")
			return
		}

		if *req.WarrantyPeriod < 0 {
			respondWithError(c, http.StatusBadRequest, route, "warrantyPeriod cannot be negative")
			return
		}

		categoryID, err := primitive.ObjectIDFromHex(req.Category)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid category")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		visible, err := categoryVisible(ctx, db, categoryID, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if !visible {
			respondWithError(c, http.StatusBadRequest, route, "Invalid category")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:               req.Name,
			Description:        req.Description,
			PurchaseDate:       purchaseDate,
			WarrantyPeriod:     *req.WarrantyPeriod,
			WarrantyExpiryDate: warranty.ExpiryDate(purchaseDate, *req.WarrantyPeriod),
			Category:           categoryID,
			PurchasePrice:      req.PurchasePrice,
			Seller:             req.Seller,
			Model:              req.Model,
			SerialNumber:       req.SerialNumber,
			ImageURL:           req.ImageURL,
			Notes:              req.Notes,
			User:               userID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		result, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		product.ID = result.InsertedID.(primitive.ObjectID)

		products := []models.Product{product}
		if err := attachProductMeta(ctx, db, products, now); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		zap.S().Infof("[%s] product %s created for user %s", route, product.ID.Hex(), userID.Hex())
		c.JSON(http.StatusCreated, products[0])
	}
}

/*
PUT /api/products/:id
- recomputes the expiry whenever purchaseDate or warrantyPeriod changes
*/
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if product.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to update this product")
			return
		}

		update := bson.M{}

		if req.Name != nil {
			update["name"] = *req.Name
			product.Name = *req.Name
		}
		if req.Description != nil {
			update["description"] = *req.Description
		}

		expiryInputsChanged := false
		if req.PurchaseDate != nil {
			purchaseDate, err := parseRequestDate(*req.PurchaseDate)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid purchaseDate")
				return
			}
			product.PurchaseDate = purchaseDate
			update["purchaseDate"] = purchaseDate
			expiryInputsChanged = true
		}
		if req.WarrantyPeriod != nil {
			if *req.WarrantyPeriod < 0 {
				respondWithError(c, http.StatusBadRequest, route, "warrantyPeriod cannot be negative")
				return
			}
			product.WarrantyPeriod = *req.WarrantyPeriod
			update["warrantyPeriod"] = *req.WarrantyPeriod
			expiryInputsChanged = true
		}
		if expiryInputsChanged {
			update["warrantyExpiryDate"] = warranty.ExpiryDate(product.PurchaseDate, product.WarrantyPeriod)
			// A new expiry re-arms the sweep warning.
			update["warrantyNotifiedFor"] = nil
		}

		if req.Category != nil {
			categoryID, err := primitive.ObjectIDFromHex(*req.Category)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid category")
				return
			}
			visible, err := categoryVisible(ctx, db, categoryID, userID)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "Server error")
				return
			}
			if !visible {
				respondWithError(c, http.StatusBadRequest, route, "Invalid category")
				return
			}
			update["category"] = categoryID
		}

		if req.PurchasePrice != nil {
			update["purchasePrice"] = *req.PurchasePrice
		}
		if req.Seller != nil {
			update["seller"] = *req.Seller
		}
		if req.Model != nil {
			update["model"] = *req.Model
		}
		if req.SerialNumber != nil {
			update["serialNumber"] = *req.SerialNumber
		}
		if req.ImageURL != nil {
			update["imageUrl"] = *req.ImageURL
		}
		if req.Notes != nil {
			update["notes"] = *req.Notes
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Product
		err = db.Collection("products").
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

		products := []models.Product{updated}
		if err := attachProductMeta(ctx, db, products, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, products[0])
	}
}

/*
DELETE /api/products/:id
- cascades to the product's service records so no dangling references
  remain
*/
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if product.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to delete this product")
			return
		}

		if _, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id, "user": userID}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		deleted, err := db.Collection("services").DeleteMany(ctx, bson.M{"product": id, "user": userID})
		if err != nil {
			// The product is already gone; report the cascade failure but
			// do not fail the request.
			zap.S().Errorf("[%s] cascade delete of services failed for product %s: %v", route, id.Hex(), err)
		} else if deleted.DeletedCount > 0 {
			zap.S().Infof("[%s] removed %d service records for product %s", route, deleted.DeletedCount, id.Hex())
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
	}
}

/*
POST /api/products/:id/documents
- stores a path reference only; file storage is external
*/
func AddProductDocument(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/documents"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		var req DocumentAttachRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name and path are required")
			return
		}

		document := models.Document{
			ID:           primitive.NewObjectID(),
			Name:         req.Name,
			Path:         req.Path,
			DocumentType: req.DocumentType,
			UploadDate:   time.Now(),
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		result, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id, "user": userID},
			bson.M{"$push": bson.M{"documents": document}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}

		c.JSON(http.StatusCreated, document)
	}
}

/*
DELETE /api/products/:id/documents/:documentId
*/
func DeleteProductDocument(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id/documents/:documentId"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		documentID, err := primitive.ObjectIDFromHex(c.Param("documentId"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Document not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if product.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to modify this product")
			return
		}

		result, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id, "user": userID},
			bson.M{"$pull": bson.M{"documents": bson.M{"_id": documentID}}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if result.ModifiedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "Document not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Document removed"})
	}
}
