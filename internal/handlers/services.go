package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warrantytracker/internal/models"
	"warrantytracker/internal/warranty"
)

type ServiceCreateRequest struct {
	Product            string  `json:"product" binding:"required"`
	ServiceDate        string  `json:"serviceDate" binding:"required"`
	ServiceCenter      string  `json:"serviceCenter" binding:"required"`
	Cost               float64 `json:"cost"`
	Description        string  `json:"description" binding:"required"`
	NextServiceDueDate string  `json:"nextServiceDueDate"`
	Notes              string  `json:"notes"`
}

type ServiceUpdateRequest struct {
	Product            *string  `json:"product"`
	ServiceDate        *string  `json:"serviceDate"`
	ServiceCenter      *string  `json:"serviceCenter"`
	Cost               *float64 `json:"cost"`
	Description        *string  `json:"description"`
	NextServiceDueDate *string  `json:"nextServiceDueDate"`
	Notes              *string  `json:"notes"`
}

var sortableServiceFields = map[string]bool{
	"serviceDate":        true,
	"nextServiceDueDate": true,
	"cost":               true,
	"createdAt":          true,
}

// ownedProduct verifies the referenced product exists and belongs to the
// owner before a service record is written against it.
func ownedProduct(ctx context.Context, db *mongo.Database, productID, ownerID primitive.ObjectID) (bool, error) {
	count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID, "user": ownerID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// attachServiceMeta fills the derived due status and resolves product
// names in one batched lookup.
func attachServiceMeta(ctx context.Context, db *mongo.Database, services []models.Service, now time.Time) error {
	if len(services) == 0 {
		return nil
	}

	seen := map[primitive.ObjectID]struct{}{}
	ids := make([]primitive.ObjectID, 0, len(services))
	for _, s := range services {
		if _, ok := seen[s.Product]; ok {
			continue
		}
		seen[s.Product] = struct{}{}
		ids = append(ids, s.Product)
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return err
	}

	nameByID := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		nameByID[p.ID] = p.Name
	}

	for i := range services {
		services[i].ServiceDueStatus = warranty.DueStatus(services[i].NextServiceDueDate, now)
		services[i].ProductName = nameByID[services[i].Product]
	}
	return nil
}

/*
GET /api/services
- optional product filter, always owner-scoped
*/
func GetServices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{"user": userID}
		if product := strings.TrimSpace(c.Query("product")); product != "" {
			productID, err := primitive.ObjectIDFromHex(product)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid product filter")
				return
			}
			filter["product"] = productID
		}

		sortOption := parseSortOption(c.Query("sort"), sortableServiceFields)
		if c.Query("sort") == "" {
			sortOption = bson.D{{Key: "serviceDate", Value: -1}}
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		total, err := db.Collection("services").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		opts := options.Find().
			SetSort(sortOption).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("services").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		services := make([]models.Service, 0)
		if err := cursor.All(ctx, &services); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if err := attachServiceMeta(ctx, db, services, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":       services,
			"pagination": paginationEnvelope(page, limit, total),
		})
	}
}

/*
GET /api/services/upcoming/due
- 30-day upcoming window plus everything overdue, both soonest-first
*/
func GetUpcomingServices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services/upcoming/due"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		now := time.Now()
		thirtyDaysFromNow := now.AddDate(0, 0, warranty.SoonThresholdDays)
		dueSort := options.Find().SetSort(bson.D{{Key: "nextServiceDueDate", Value: 1}})

		ctx, cancel := queryContext(c)
		defer cancel()

		upcomingCursor, err := db.Collection("services").Find(ctx, bson.M{
			"user":               userID,
			"nextServiceDueDate": bson.M{"$gte": now, "$lte": thirtyDaysFromNow},
		}, dueSort)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		upcoming := make([]models.Service, 0)
		if err := upcomingCursor.All(ctx, &upcoming); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		overdueCursor, err := db.Collection("services").Find(ctx, bson.M{
			"user":               userID,
			"nextServiceDueDate": bson.M{"$lt": now},
		}, dueSort)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		overdue := make([]models.Service, 0)
		if err := overdueCursor.All(ctx, &overdue); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if err := attachServiceMeta(ctx, db, upcoming, now); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if err := attachServiceMeta(ctx, db, overdue, now); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"upcoming": upcoming,
			"overdue":  overdue,
		})
	}
}

/*
GET /api/services/:id
*/
func GetService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/services/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var service models.Service
		err = db.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if service.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to access this service record")
			return
		}

		services := []models.Service{service}
		if err := attachServiceMeta(ctx, db, services, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, services[0])
	}
}

/*
POST /api/services
*/
func CreateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/services"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		var req ServiceCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "product, serviceDate, serviceCenter and description are required")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.Product)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product")
			return
		}

		serviceDate, err := parseRequestDate(req.ServiceDate)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid serviceDate")
			return
		}

		if req.Cost < 0 {
			respondWithError(c, http.StatusBadRequest, route, "cost cannot be negative")
			return
		}

		var nextDue *time.Time
		if strings.TrimSpace(req.NextServiceDueDate) != "" {
			parsed, err := parseRequestDate(req.NextServiceDueDate)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid nextServiceDueDate")
				return
			}
			nextDue = &parsed
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		owned, err := ownedProduct(ctx, db, productID, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if !owned {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product")
			return
		}

		service := models.Service{
			Product:            productID,
			ServiceDate:        serviceDate,
			ServiceCenter:      req.ServiceCenter,
			Cost:               req.Cost,
			Description:        req.Description,
			NextServiceDueDate: nextDue,
			Notes:              req.Notes,
			User:               userID,
			CreatedAt:          time.Now(),
		}

		result, err := db.Collection("services").InsertOne(ctx, service)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		service.ID = result.InsertedID.(primitive.ObjectID)

		services := []models.Service{service}
		if err := attachServiceMeta(ctx, db, services, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusCreated, services[0])
	}
}

/*
PUT /api/services/:id
*/
func UpdateService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/services/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}

		var req ServiceUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var service models.Service
		err = db.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if service.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to update this service record")
			return
		}

		update := bson.M{}

		if req.Product != nil {
			productID, err := primitive.ObjectIDFromHex(*req.Product)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "Invalid product")
				return
			}
			owned, err := ownedProduct(ctx, db, productID, userID)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "Server error")
				return
			}
			if !owned {
				respondWithError(c, http.StatusBadRequest, route, "Invalid product")
				return
			}
			update["product"] = productID
		}

		if req.ServiceDate != nil {
			serviceDate, err := parseRequestDate(*req.ServiceDate)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid serviceDate")
				return
			}
			update["serviceDate"] = serviceDate
		}
		if req.ServiceCenter != nil {
			update["serviceCenter"] = *req.ServiceCenter
		}
		if req.Cost != nil {
			if *req.Cost < 0 {
				respondWithError(c, http.StatusBadRequest, route, "cost cannot be negative")
				return
			}
			update["cost"] = *req.Cost
		}
		if req.Description != nil {
			update["description"] = *req.Description
		}
		if req.NextServiceDueDate != nil {
			if strings.TrimSpace(*req.NextServiceDueDate) == "" {
				update["nextServiceDueDate"] = nil
			} else {
				nextDue, err := parseRequestDate(*req.NextServiceDueDate)
				if err != nil {
					respondWithError(c, http.StatusBadRequest, route, "invalid nextServiceDueDate")
					return
				}
				update["nextServiceDueDate"] = nextDue
				// A new due date re-arms the reminder.
				update["dueNotifiedFor"] = nil
			}
		}
		if req.Notes != nil {
			update["notes"] = *req.Notes
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		var updated models.Service
		err = db.Collection("services").
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

		services := []models.Service{updated}
		if err := attachServiceMeta(ctx, db, services, time.Now()); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, services[0])
	}
}

/*
DELETE /api/services/:id
*/
func DeleteService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/services/:id"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var service models.Service
		err = db.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		if service.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to delete this service record")
			return
		}

		if _, err := db.Collection("services").DeleteOne(ctx, bson.M{"_id": id, "user": userID}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Service record removed"})
	}
}

/*
DELETE /api/services/:id/documents/:documentId
*/
func DeleteServiceDocument(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/services/:id/documents/:documentId"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}
		documentID, err := primitive.ObjectIDFromHex(c.Param("documentId"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "Document not found")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var service models.Service
		err = db.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "Service record not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}
		if service.User != userID {
			respondWithError(c, http.StatusForbidden, route, "Not authorized to modify this service record")
			return
		}

		result, err := db.Collection("services").UpdateOne(
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
