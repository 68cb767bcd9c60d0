// Package pricing holds the checkout arithmetic shared by the client cart and
// the order validator: a flat tax rate and a delivery fee waived above a
// threshold.
package pricing

import "github.com/shopspring/decimal"

var (
	// TaxRate is the flat GST applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.05")
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = decimal.NewFromInt(500)
	// DeliveryFee is charged below FreeDeliveryThreshold.
	DeliveryFee = decimal.NewFromInt(40)
)

// Breakdown is the full price of a basket.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Line is anything priced as unit price times quantity.
type Line interface {
	UnitPrice() decimal.Decimal
	Count() int
}

// LineTotal is price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums LineTotal over lines.
func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.UnitPrice(), l.Count()))
	}
	return sum
}

// Tax is the tax owed on subtotal.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// Delivery is zero when subtotal reaches the threshold, DeliveryFee otherwise.
func Delivery(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return DeliveryFee
}

// Quote prices a basket with the given subtotal.
func Quote(subtotal decimal.Decimal) Breakdown {
	tax := Tax(subtotal)
	fee := Delivery(subtotal)
	return Breakdown{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
	}
}

// ShortOfFreeDelivery is how much more must be added for free delivery, zero
// once the threshold is met.
func ShortOfFreeDelivery(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return FreeDeliveryThreshold.Sub(subtotal)
}

// SameAmount compares two amounts to the paisa. Client totals are computed in
// floating point, so exact comparison would reject honest submissions.
func SameAmount(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}
