package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the 12% VAT applied to every order
var DefaultTaxRate = decimal.NewFromFloat(0.12)

// PricedLine is one cart line with its authoritative catalog price. Prices
// are always resolved server-side; the client only supplies product ids and
// quantities.
type PricedLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Pricing is the result of pricing a set of lines
type Pricing struct {
	Items    []OrderItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceLines turns cart lines into priced order items with subtotal, tax and
// total. Tax is rounded half-up to two decimal places, matching currency
// semantics.
func PriceLines(lines []PricedLine, taxRate decimal.Decimal) (*Pricing, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for i, line := range lines {
		if line.ProductID == "" {
			return nil, NewInvalidCartItem(i, "missing product id")
		}
		if line.Quantity <= 0 {
			return nil, NewInvalidCartItem(i, "quantity must be positive")
		}
		if line.Price.IsNegative() {
			return nil, NewInvalidCartItem(i, "negative price")
		}

		lineSubtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Subtotal:  lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
	}

	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax).Round(2)

	return &Pricing{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
	}, nil
}
