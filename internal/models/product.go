package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a stored reference to an externally hosted file attached to
// a product or service record. Only the path is persisted; the file itself
// lives outside the database.
type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Path         string             `bson:"path" json:"path"`
	DocumentType string             `bson:"documentType,omitempty" json:"documentType,omitempty"`
	UploadDate   time.Time          `bson:"uploadDate" json:"uploadDate"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	PurchaseDate   time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	WarrantyPeriod int                `bson:"warrantyPeriod" json:"warrantyPeriod"`

	// WarrantyExpiryDate is derived from purchaseDate and warrantyPeriod
	// and recomputed before every persist.
	WarrantyExpiryDate time.Time `bson:"warrantyExpiryDate" json:"warrantyExpiryDate"`

	Category      primitive.ObjectID `bson:"category" json:"category"`
	PurchasePrice float64            `bson:"purchasePrice,omitempty" json:"purchasePrice,omitempty"`
	Seller        string             `bson:"seller,omitempty" json:"seller,omitempty"`
	Model         string             `bson:"model,omitempty" json:"model,omitempty"`
	SerialNumber  string             `bson:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	ImageURL      string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Documents     []Document         `bson:"documents,omitempty" json:"documents,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	User          primitive.ObjectID `bson:"user" json:"user"`

	// WarrantyNotifiedFor records the expiry date the sweep last warned
	// about, so a product warns at most once per expiry value.
	WarrantyNotifiedFor *time.Time `bson:"warrantyNotifiedFor,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	WarrantyStatus string `bson:"-" json:"warrantyStatus,omitempty"`
	CategoryName   string `bson:"-" json:"categoryName,omitempty"`
}
