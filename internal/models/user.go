package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the owning account for products, service records and custom
// categories. Credential handling lives outside this service; requests
// arrive with an already-issued token.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	NotificationsEnabled bool               `bson:"notificationsEnabled" json:"notificationsEnabled"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}
