// Package catalog reads and maintains the menu. The cart engine only sees the
// priced view produced by PricingItem.
package catalog

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/pricing"
)

var (
	ErrNotFound    = errors.New("menu item not found")
	ErrNoBasePrice = errors.New("menu item has no single base price")
	ErrDuplicate   = errors.New("menu item slug already exists")
)

// ListFilter narrows a menu listing. Page and Limit are applied only when
// both are set.
type ListFilter struct {
	Category        string
	Search          string
	Page            int64
	Limit           int64
	IncludeInactive bool
}

func (f ListFilter) Paginated() bool {
	return f.Page > 0 && f.Limit > 0
}

// Lookup is the read side used by the storefront.
type Lookup interface {
	FindBySlug(ctx context.Context, slug string) (models.MenuItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.MenuItem, int64, error)
	Categories(ctx context.Context) ([]string, error)
}

// Editor is the admin side.
type Editor interface {
	Lookup
	FindByID(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, id primitive.ObjectID, set, unset map[string]any) (models.MenuItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PricingItem converts a stored item into the resolver's view, applying the
// sale price. Multi-price items cannot be customized into a cart.
func PricingItem(item models.MenuItem) (pricing.MenuItem, error) {
	if item.IsMultiPrice || item.BasePrice == nil {
		return pricing.MenuItem{}, ErrNoBasePrice
	}

	id := item.Slug
	if !item.ID.IsZero() {
		id = item.ID.Hex()
	}

	price := EffectivePrice(*item.BasePrice, item.SaleEnabled, item.SalePrice)
	return pricing.MenuItem{
		ID:        id,
		Name:      item.Name,
		BasePrice: decimal.NewFromFloat(price).Round(2),
	}, nil
}

// NormalizeCategories trims, drops empties and dedupes while keeping order.
func NormalizeCategories(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify builds a URL slug from a display name.
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
