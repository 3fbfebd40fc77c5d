package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize accepts the three menu sizes case-insensitively. An empty value
// selects medium, the customizer default.
func ParseSize(raw string) (Size, error) {
	switch Size(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SizeMedium:
		return SizeMedium, nil
	case SizeSmall:
		return SizeSmall, nil
	case SizeLarge:
		return SizeLarge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSize, raw)
	}
}

func (s Size) Valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// Option is a boolean customization. Add-ons carry a surcharge, removals are
// preparation instructions and are always free.
type Option string

const (
	OptionExtraShot Option = "extra-shot"
	OptionOatMilk   Option = "oat-milk"
	OptionNoSugar   Option = "no-sugar"
	OptionNoFoam    Option = "no-foam"
)

var addonPrices = map[Option]decimal.Decimal{
	OptionExtraShot: decimal.RequireFromString("0.80"),
	OptionOatMilk:   decimal.RequireFromString("0.50"),
}

func AddonPrice(opt Option) decimal.Decimal {
	if price, ok := addonPrices[opt]; ok {
		return price
	}
	return decimal.Zero
}

func (o Option) Priced() bool {
	_, ok := addonPrices[o]
	return ok
}
