package checkout

import (
	"strings"

	"storefront/internal/pricing"
)

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentDineIn   FulfillmentType = "dine-in"
)

// Contact holds the customer and fulfillment details entered at checkout.
type Contact struct {
	FulfillmentType FulfillmentType `json:"type" validate:"required,oneof=pickup delivery dine-in"`
	Name            string          `json:"name" validate:"required"`
	Phone           string          `json:"phone" validate:"required"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Address         string          `json:"address" validate:"required_if=FulfillmentType delivery"`
	Notes           string          `json:"notes"`
}

func (c Contact) normalized() Contact {
	c.FulfillmentType = FulfillmentType(strings.ToLower(strings.TrimSpace(string(c.FulfillmentType))))
	if c.FulfillmentType == "" {
		c.FulfillmentType = FulfillmentPickup
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// OrderRequest is the payload accepted by the order-creation boundary.
type OrderRequest struct {
	FulfillmentType FulfillmentType `json:"type" validate:"required,oneof=pickup delivery dine-in"`
	Name            string          `json:"name" validate:"required"`
	Phone           string          `json:"phone" validate:"required"`
	Email           string          `json:"email,omitempty" validate:"omitempty,email"`
	Address         string          `json:"address,omitempty" validate:"required_if=FulfillmentType delivery"`
	Notes           string          `json:"notes,omitempty"`
	Items           []OrderLine     `json:"items" validate:"required,min=1,dive"`
}

type OrderLine struct {
	ItemID   string  `json:"itemId" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"min=1,max=99"`
	Price    float64 `json:"price" validate:"gte=0"`
	Notes    string  `json:"notes,omitempty"`
}

// BuildRequest shapes cart lines and contact details into the wire payload.
// The address is only sent for delivery orders.
func BuildRequest(lines []pricing.LineItem, contact Contact) OrderRequest {
	contact = contact.normalized()

	req := OrderRequest{
		FulfillmentType: contact.FulfillmentType,
		Name:            contact.Name,
		Phone:           contact.Phone,
		Email:           contact.Email,
		Notes:           contact.Notes,
		Items:           make([]OrderLine, 0, len(lines)),
	}
	if contact.FulfillmentType == FulfillmentDelivery {
		req.Address = contact.Address
	}

	for _, l := range lines {
		req.Items = append(req.Items, OrderLine{
			ItemID:   l.ItemID,
			Name:     l.DisplayName,
			Quantity: l.Quantity,
			Price:    l.FinalLinePrice.Round(2).InexactFloat64(),
			Notes:    l.Notes,
		})
	}
	return req
}
