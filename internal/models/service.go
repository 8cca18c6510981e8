package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Product       primitive.ObjectID `bson:"product" json:"product"`
	ServiceDate   time.Time          `bson:"serviceDate" json:"serviceDate"`
	ServiceCenter string             `bson:"serviceCenter" json:"serviceCenter"`
	Cost          float64            `bson:"cost" json:"cost"`
	Description   string             `bson:"description" json:"description"`

	NextServiceDueDate *time.Time `bson:"nextServiceDueDate,omitempty" json:"nextServiceDueDate,omitempty"`

	Documents []Document         `bson:"documents,omitempty" json:"documents,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	User      primitive.ObjectID `bson:"user" json:"user"`

	// DueNotifiedFor mirrors the product-side sweep marker for service
	// reminders.
	DueNotifiedFor *time.Time `bson:"dueNotifiedFor,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	// ServiceDueStatus is empty when no due date is set.
	ServiceDueStatus string `bson:"-" json:"serviceDueStatus,omitempty"`
	ProductName      string `bson:"-" json:"productName,omitempty"`
}
