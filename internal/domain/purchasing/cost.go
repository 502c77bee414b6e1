package purchasing

import "github.com/shopspring/decimal"

// NextWeightedCost blends a product's existing stock value with a signed
// stock movement and returns the new weighted-average unit cost.
//
// When the movement nets the stock to zero (or below), the last known
// cost is preserved rather than dividing by zero. Negative addedBaseQty
// removes stock at unitPrice, which is how edits reverse an old line's
// contribution before applying the new one. Removing stock at a price
// above the running average can drive the blended value negative once
// sales have drained the cheap stock; the result is floored at zero
// because a negative unit cost is meaningless.
func NextWeightedCost(oldStock, oldCost, addedBaseQty, unitPrice decimal.Decimal) decimal.Decimal {
	newStock := oldStock.Add(addedBaseQty)
	if newStock.LessThanOrEqual(decimal.Zero) {
		return oldCost
	}

	oldValue := oldStock.Mul(oldCost)
	addedValue := addedBaseQty.Mul(unitPrice)
	newCost := oldValue.Add(addedValue).Div(newStock).Round(4)
	if newCost.IsNegative() {
		return decimal.Zero
	}
	return newCost
}
