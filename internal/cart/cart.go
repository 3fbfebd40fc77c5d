package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/pricing"
)

// ErrQuantityLimit is returned when accumulating would push a line past
// pricing.MaxQuantity. The cart is left unchanged.
var ErrQuantityLimit = errors.New("quantity limit reached for this item")

// MergePolicy decides what Add does when an entry with the same identity is
// already in the cart.
type MergePolicy int

const (
	// MergeReplace overwrites the existing entry, keeping its position.
	MergeReplace MergePolicy = iota
	// MergeAccumulate adds the new quantity to the existing entry.
	MergeAccumulate
)

func ParseMergePolicy(raw string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "replace":
		return MergeReplace, nil
	case "accumulate":
		return MergeAccumulate, nil
	default:
		return MergeReplace, fmt.Errorf("unknown cart merge policy %q", raw)
	}
}

func (p MergePolicy) String() string {
	if p == MergeAccumulate {
		return "accumulate"
	}
	return "replace"
}

// Cart is an ordered set of line items, unique by identity. It is not safe for
// concurrent use; the owning session serializes access.
type Cart struct {
	policy MergePolicy
	items  []pricing.LineItem
	index  map[pricing.Identity]int
}

func New(policy MergePolicy) *Cart {
	return &Cart{
		policy: policy,
		index:  make(map[pricing.Identity]int),
	}
}

func (c *Cart) Policy() MergePolicy {
	return c.policy
}

// Add merges the line into an existing entry with the same identity or
// appends it. It returns the entry as stored.
func (c *Cart) Add(line pricing.LineItem) (pricing.LineItem, error) {
	if line.Quantity < 1 || line.Quantity > pricing.MaxQuantity {
		return pricing.LineItem{}, fmt.Errorf("%w: got %d", pricing.ErrInvalidQuantity, line.Quantity)
	}

	pos, ok := c.index[line.Key]
	if !ok {
		c.index[line.Key] = len(c.items)
		c.items = append(c.items, line)
		return line, nil
	}

	if c.policy == MergeAccumulate {
		existing := c.items[pos].Quantity
		if existing > pricing.MaxQuantity-line.Quantity {
			return c.items[pos], fmt.Errorf("%w: %d in cart, adding %d", ErrQuantityLimit, existing, line.Quantity)
		}
		line = line.WithQuantity(existing + line.Quantity)
	}
	c.items[pos] = line
	return line, nil
}

// Remove deletes the entry with the given identity. Absent keys are ignored.
func (c *Cart) Remove(key pricing.Identity) bool {
	pos, ok := c.index[key]
	if !ok {
		return false
	}

	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, key)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].Key] = i
	}
	return true
}

// RemoveKey is Remove addressed by the flat key rendered by Identity.String.
func (c *Cart) RemoveKey(flat string) bool {
	for _, it := range c.items {
		if it.Key.String() == flat {
			return c.Remove(it.Key)
		}
	}
	return false
}

// Settle takes lines that were placed as an order out of the cart. An entry
// changed after the order was built keeps what was not ordered: under
// accumulate the ordered quantity is subtracted, under replace the newer
// entry stays. It returns the number of entries left.
func (c *Cart) Settle(ordered []pricing.LineItem) int {
	for _, o := range ordered {
		pos, ok := c.index[o.Key]
		if !ok {
			continue
		}
		cur := c.items[pos]
		switch {
		case cur.Quantity == o.Quantity && cur.UnitPrice.Equal(o.UnitPrice):
			c.Remove(o.Key)
		case c.policy == MergeAccumulate && cur.Quantity > o.Quantity:
			c.items[pos] = cur.WithQuantity(cur.Quantity - o.Quantity)
		}
	}
	return len(c.items)
}

func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[pricing.Identity]int)
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []pricing.LineItem {
	out := make([]pricing.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Get(key pricing.Identity) (pricing.LineItem, bool) {
	pos, ok := c.index[key]
	if !ok {
		return pricing.LineItem{}, false
	}
	return c.items[pos], true
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal is recomputed from the entries on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.FinalLinePrice)
	}
	return total
}
