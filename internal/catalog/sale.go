package catalog

import "fmt"

type SaleUpdateInput struct {
	Price       *float64
	SaleEnabled *bool
	SalePrice   *float64
}

type SaleUpdateResult struct {
	Price          float64
	SaleEnabled    bool
	SalePrice      float64
	SetSaleEnabled bool
	SetSalePrice   bool
}

func IsOnSale(price float64, saleEnabled bool, salePrice float64) bool {
	return saleEnabled && salePrice > 0 && salePrice < price
}

// EffectivePrice is the single-item price a customer pays before add-ons.
func EffectivePrice(price float64, saleEnabled bool, salePrice float64) float64 {
	if IsOnSale(price, saleEnabled, salePrice) {
		return salePrice
	}
	return price
}

func ValidateSaleFields(price float64, saleEnabled bool, salePrice float64, salePriceSet bool) error {
	if !saleEnabled {
		return nil
	}
	if !salePriceSet {
		return fmt.Errorf("salePrice is required when saleEnabled is true")
	}
	if salePrice <= 0 {
		return fmt.Errorf("salePrice must be greater than 0")
	}
	if salePrice >= price {
		return fmt.Errorf("salePrice must be less than basePrice")
	}
	return nil
}

// ResolveSaleUpdate merges a partial update into the stored sale fields and
// validates the result. Disabling the sale resets the sale price.
func ResolveSaleUpdate(existingPrice float64, existingSaleEnabled bool, existingSalePrice float64, input SaleUpdateInput) (SaleUpdateResult, error) {
	result := SaleUpdateResult{
		Price:       existingPrice,
		SaleEnabled: existingSaleEnabled,
		SalePrice:   existingSalePrice,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}

	salePriceSetForValidation := existingSalePrice > 0

	if input.SaleEnabled != nil {
		result.SaleEnabled = *input.SaleEnabled
		result.SetSaleEnabled = true
		if !*input.SaleEnabled {
			result.SalePrice = 0
			result.SetSalePrice = true
			salePriceSetForValidation = false
		}
	}

	if input.SalePrice != nil {
		result.SalePrice = *input.SalePrice
		result.SetSalePrice = true
		salePriceSetForValidation = true
	}

	if err := ValidateSaleFields(result.Price, result.SaleEnabled, result.SalePrice, salePriceSetForValidation); err != nil {
		return SaleUpdateResult{}, err
	}

	return result, nil
}
