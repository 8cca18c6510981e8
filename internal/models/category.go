package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is either a global default (no owner, immutable) or a custom
// category owned by a single user.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsDefault   bool               `bson:"isDefault" json:"isDefault"`
	User        primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
