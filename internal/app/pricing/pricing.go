// Package pricing computes discounted prices and cart totals. Every
// function is pure and total: bad input degrades to a safe default
// instead of an error, so callers never branch on pricing failures.
package pricing

import (
	"math"

	"github.com/dkushnir/lavka-backend/internal/app/model"
)

// EffectivePrice returns the product price after applying its discount
// percentage, rounded to 2 decimals. A discount outside [0, 100] is
// treated as 0/100 for the computation only; the stored value is never
// mutated. Non-finite inputs fall back to the raw price, or 0 when the
// price itself is unusable.
func EffectivePrice(p *model.Product) float64 {
	if p == nil {
		return 0
	}

	price := p.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}

	discount := p.DiscountPercent
	if math.IsNaN(discount) || math.IsInf(discount, 0) {
		return round2(price)
	}
	if discount < 0 {
		discount = 0
	}
	if discount > 100 {
		discount = 100
	}

	return round2(price * (1 - discount/100))
}

// LineSubtotal returns the rounded effective price times quantity for a
// single cart line.
func LineSubtotal(item *model.CartItem) float64 {
	if item == nil {
		return 0
	}
	return round2(EffectivePrice(&item.Product) * float64(item.Quantity))
}

// CartTotal sums the line subtotals, rounded to 2 decimals. Empty and nil
// carts total 0.
func CartTotal(items []model.CartItem) float64 {
	var total float64
	for i := range items {
		total += LineSubtotal(&items[i])
	}
	return round2(total)
}

// CartItemCount sums the quantities across all lines.
func CartItemCount(items []model.CartItem) int {
	count := 0
	for i := range items {
		count += items[i].Quantity
	}
	return count
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
