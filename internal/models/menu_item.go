package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuItem is a document in the menu_items collection. BasePrice is nil for
// multi-price items, which carry a free-text MultiPrice instead.
type MenuItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug         string             `bson:"slug" json:"slug"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	BasePrice    *float64           `bson:"basePrice" json:"basePrice"`
	IsMultiPrice bool               `bson:"isMultiPrice" json:"isMultiPrice"`
	MultiPrice   string             `bson:"multiPrice,omitempty" json:"multiPrice,omitempty"`
	SaleEnabled  bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice    float64            `bson:"salePrice" json:"salePrice"`
	IsOnSale     bool               `bson:"-" json:"isOnSale"`
	Category     CategoryList       `bson:"category" json:"category"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	IsDeleted    bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
