package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warrantytracker/internal/models"
)

type ProfileUpdateRequest struct {
	Name                 *string `json:"name"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

/*
GET /api/users/profile
*/
func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/profile"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		ctx, cancel := queryContext(c)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

/*
PUT /api/users/profile
- name and the notificationsEnabled toggle the sweep honors
*/
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/profile"
		defer handlePanic(c, route)

		userID := requestUserID(c)

		var req ProfileUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		update := bson.M{}
		if req.Name != nil {
			update["name"] = *req.Name
		}
		if req.NotificationsEnabled != nil {
			update["notificationsEnabled"] = *req.NotificationsEnabled
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := queryContext(c)
		defer cancel()

		var updated models.User
		err := db.Collection("users").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": userID},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}
