package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending = "pending"
)

// OrderItem is one line of a placed order. Price is the line total.
type OrderItem struct {
	ItemID   string  `bson:"itemId" json:"itemId"`
	Name     string  `bson:"name" json:"name"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
	Notes    string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// OrderCustomer captures the contact details entered at checkout.
type OrderCustomer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FulfillmentType string             `bson:"fulfillmentType" json:"fulfillmentType"`
	Customer        OrderCustomer      `bson:"customer" json:"customer"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
