package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 99

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrNegativePrice   = errors.New("base price must not be negative")
	ErrInvalidSize     = errors.New("size must be small, medium or large")
	ErrMissingItemID   = errors.New("item id is required")
)

// MenuItem is the priced view of a catalog entry.
type MenuItem struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
}

// Selection is the in-progress customization of one menu item.
type Selection struct {
	Size      Size
	ExtraShot bool
	OatMilk   bool
	NoSugar   bool
	NoFoam    bool
	Notes     string
	Quantity  int
}

func DefaultSelection() Selection {
	return Selection{Size: SizeMedium, Quantity: 1}
}

func (s Selection) identity(itemID string) Identity {
	return Identity{
		ItemID:    itemID,
		Size:      s.Size,
		ExtraShot: s.ExtraShot,
		OatMilk:   s.OatMilk,
		NoSugar:   s.NoSugar,
		NoFoam:    s.NoFoam,
		Notes:     strings.TrimSpace(s.Notes),
	}
}

// Surcharge is the per-unit sum of the enabled paid add-ons.
func (s Selection) Surcharge() decimal.Decimal {
	total := decimal.Zero
	for _, opt := range s.identity("").Options() {
		total = total.Add(AddonPrice(opt))
	}
	return total
}

type LineItem struct {
	Key            Identity
	ItemID         string
	DisplayName    string
	BasePrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	Quantity       int
	FinalLinePrice decimal.Decimal
	Notes          string
}

// WithQuantity returns a copy priced for qty units.
func (l LineItem) WithQuantity(qty int) LineItem {
	l.Quantity = qty
	l.FinalLinePrice = l.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return l
}

type Quote struct {
	Surcharge decimal.Decimal
	UnitPrice decimal.Decimal
	LinePrice decimal.Decimal
}

// QuoteFor prices a selection without building a line item.
func QuoteFor(item MenuItem, sel Selection) (Quote, error) {
	if err := validate(item, sel); err != nil {
		return Quote{}, err
	}

	surcharge := sel.Surcharge()
	unit := item.BasePrice.Add(surcharge)
	return Quote{
		Surcharge: surcharge,
		UnitPrice: unit,
		LinePrice: unit.Mul(decimal.NewFromInt(int64(sel.Quantity))),
	}, nil
}

// Resolve turns an item and its customization into a priced cart line. It has
// no side effects and always yields the same result for the same inputs.
func Resolve(item MenuItem, sel Selection) (LineItem, error) {
	if sel.Size == "" {
		sel.Size = SizeMedium
	}

	quote, err := QuoteFor(item, sel)
	if err != nil {
		return LineItem{}, err
	}

	key := sel.identity(item.ID)
	return LineItem{
		Key:            key,
		ItemID:         item.ID,
		DisplayName:    fmt.Sprintf("%s (%s)", item.Name, key.Size),
		BasePrice:      item.BasePrice,
		UnitPrice:      quote.UnitPrice,
		Quantity:       sel.Quantity,
		FinalLinePrice: quote.LinePrice,
		Notes:          key.Notes,
	}, nil
}

func validate(item MenuItem, sel Selection) error {
	if strings.TrimSpace(item.ID) == "" {
		return ErrMissingItemID
	}
	if item.BasePrice.IsNegative() {
		return fmt.Errorf("%w: item %s has %s", ErrNegativePrice, item.ID, item.BasePrice.StringFixed(2))
	}
	if sel.Size != "" && !sel.Size.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSize, sel.Size)
	}
	if sel.Quantity < 1 || sel.Quantity > MaxQuantity {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, sel.Quantity)
	}
	return nil
}
