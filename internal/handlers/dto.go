package handlers

import (
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/pricing"
)

// selectionRequest is the customizer form. A missing quantity means one.
type selectionRequest struct {
	Size      string `json:"size"`
	ExtraShot bool   `json:"extraShot"`
	OatMilk   bool   `json:"oatMilk"`
	NoSugar   bool   `json:"noSugar"`
	NoFoam    bool   `json:"noFoam"`
	Notes     string `json:"notes" binding:"max=500"`
	Quantity  *int   `json:"quantity"`
}

type addCartItemRequest struct {
	Slug string `json:"slug" binding:"required"`
	selectionRequest
}

func (r selectionRequest) toSelection() (pricing.Selection, error) {
	size, err := pricing.ParseSize(r.Size)
	if err != nil {
		return pricing.Selection{}, err
	}

	sel := pricing.DefaultSelection()
	sel.Size = size
	sel.ExtraShot = r.ExtraShot
	sel.OatMilk = r.OatMilk
	sel.NoSugar = r.NoSugar
	sel.NoFoam = r.NoFoam
	sel.Notes = strings.TrimSpace(r.Notes)
	if r.Quantity != nil {
		sel.Quantity = *r.Quantity
	}
	return sel, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type lineItemView struct {
	Key            string   `json:"key"`
	ItemID         string   `json:"itemId"`
	DisplayName    string   `json:"displayName"`
	Options        []string `json:"options"`
	BasePrice      float64  `json:"basePrice"`
	UnitPrice      float64  `json:"unitPrice"`
	Quantity       int      `json:"quantity"`
	FinalLinePrice float64  `json:"finalLinePrice"`
	Notes          string   `json:"notes,omitempty"`
}

type cartView struct {
	Items      []lineItemView `json:"items"`
	Count      int            `json:"count"`
	Subtotal   float64        `json:"subtotal"`
	Policy     string         `json:"mergePolicy"`
	Submitting bool           `json:"submitting"`
}

func newLineItemView(l pricing.LineItem) lineItemView {
	opts := make([]string, 0, 4)
	for _, o := range l.Key.Options() {
		opts = append(opts, string(o))
	}
	return lineItemView{
		Key:            l.Key.String(),
		ItemID:         l.ItemID,
		DisplayName:    l.DisplayName,
		Options:        opts,
		BasePrice:      money(l.BasePrice),
		UnitPrice:      money(l.UnitPrice),
		Quantity:       l.Quantity,
		FinalLinePrice: money(l.FinalLinePrice),
		Notes:          l.Notes,
	}
}

func newCartView(c *cart.Cart, submitting bool) cartView {
	items := c.Items()
	view := cartView{
		Items:      make([]lineItemView, 0, len(items)),
		Subtotal:   money(c.Subtotal()),
		Policy:     c.Policy().String(),
		Submitting: submitting,
	}
	for _, it := range items {
		view.Items = append(view.Items, newLineItemView(it))
		view.Count += it.Quantity
	}
	return view
}
