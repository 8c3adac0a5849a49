package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPriceLines_SingleLine(t *testing.T) {
	lines := []PricedLine{
		{ProductID: "p1", Name: "Widget", Price: dec("100"), Quantity: 2},
	}

	pricing, err := PriceLines(lines, DefaultTaxRate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !pricing.Subtotal.Equal(dec("200")) {
		t.Errorf("expected subtotal 200, got %s", pricing.Subtotal)
	}
	if !pricing.Tax.Equal(dec("24")) {
		t.Errorf("expected tax 24, got %s", pricing.Tax)
	}
	if !pricing.Total.Equal(dec("224")) {
		t.Errorf("expected total 224, got %s", pricing.Total)
	}
}

func TestPriceLines_SubtotalIsSumOfLineSubtotals(t *testing.T) {
	lines := []PricedLine{
		{ProductID: "p1", Name: "Widget", Price: dec("19.99"), Quantity: 3},
		{ProductID: "p2", Name: "Gadget", Price: dec("5.25"), Quantity: 1},
		{ProductID: "p3", Name: "Gizmo", Price: dec("120.00"), Quantity: 2},
	}

	pricing, err := PriceLines(lines, DefaultTaxRate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sum := decimal.Zero
	for i, item := range pricing.Items {
		expected := lines[i].Price.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		if !item.Subtotal.Equal(expected) {
			t.Errorf("line %d: expected subtotal %s, got %s", i, expected, item.Subtotal)
		}
		sum = sum.Add(item.Subtotal)
	}

	if !pricing.Subtotal.Equal(sum) {
		t.Errorf("expected subtotal %s, got %s", sum, pricing.Subtotal)
	}
	if !pricing.Tax.Equal(pricing.Subtotal.Mul(DefaultTaxRate).Round(2)) {
		t.Errorf("tax %s does not match 12%% of subtotal %s", pricing.Tax, pricing.Subtotal)
	}
	if !pricing.Total.Equal(pricing.Subtotal.Add(pricing.Tax)) {
		t.Errorf("total %s does not equal subtotal+tax", pricing.Total)
	}
}

func TestPriceLines_TaxRoundsToTwoPlaces(t *testing.T) {
	// 33.33 * 0.12 = 3.9996, which must round to 4.00
	lines := []PricedLine{
		{ProductID: "p1", Name: "Widget", Price: dec("33.33"), Quantity: 1},
	}

	pricing, err := PriceLines(lines, DefaultTaxRate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !pricing.Tax.Equal(dec("4.00")) {
		t.Errorf("expected tax 4.00, got %s", pricing.Tax)
	}
	if !pricing.Total.Equal(dec("37.33")) {
		t.Errorf("expected total 37.33, got %s", pricing.Total)
	}
}

func TestPriceLines_EmptyInput(t *testing.T) {
	if _, err := PriceLines(nil, DefaultTaxRate); err != ErrEmptyCart {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := PriceLines([]PricedLine{}, DefaultTaxRate); err != ErrEmptyCart {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestPriceLines_RejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		line PricedLine
	}{
		{"missing product id", PricedLine{Price: dec("10"), Quantity: 1}},
		{"zero quantity", PricedLine{ProductID: "p1", Price: dec("10"), Quantity: 0}},
		{"negative quantity", PricedLine{ProductID: "p1", Price: dec("10"), Quantity: -2}},
		{"negative price", PricedLine{ProductID: "p1", Price: dec("-1"), Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PriceLines([]PricedLine{tc.line}, DefaultTaxRate); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}
