package domain

import (
	"github.com/shopspring/decimal"
)

// CartItem is one product line in a session cart. Name and price are
// snapshots taken when the product was added; checkout re-resolves
// authoritative prices from the catalog.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// Cart is the ordered, session-scoped list of items, unique by product id
type Cart struct {
	Items []CartItem `json:"items"`
}

// IsEmpty reports whether the cart has no items
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the index of the line holding productID, or -1
func (c Cart) Find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Op is a pure cart mutation: Apply never modifies the input cart, it
// returns a new one. Ops are executed under a per-session critical section
// so concurrent requests from the same session cannot interleave their
// read-modify-write cycles.
type Op interface {
	Apply(Cart) Cart
}

// AddOp appends a new line, or increments the quantity when the product is
// already in the cart
type AddOp struct {
	Item CartItem
}

// Apply implements Op
func (op AddOp) Apply(c Cart) Cart {
	items := cloneItems(c.Items)
	if i := c.Find(op.Item.ProductID); i >= 0 {
		items[i].Qty++
		return Cart{Items: items}
	}
	return Cart{Items: append(items, op.Item)}
}

// IncreaseOp increments the quantity of an existing line
type IncreaseOp struct {
	ProductID string
}

// Apply implements Op
func (op IncreaseOp) Apply(c Cart) Cart {
	items := cloneItems(c.Items)
	if i := c.Find(op.ProductID); i >= 0 {
		items[i].Qty++
	}
	return Cart{Items: items}
}

// DecreaseOp decrements the quantity of an existing line, removing the line
// when it reaches zero
type DecreaseOp struct {
	ProductID string
}

// Apply implements Op
func (op DecreaseOp) Apply(c Cart) Cart {
	i := c.Find(op.ProductID)
	if i < 0 {
		return Cart{Items: cloneItems(c.Items)}
	}
	items := cloneItems(c.Items)
	items[i].Qty--
	if items[i].Qty <= 0 {
		items = append(items[:i], items[i+1:]...)
	}
	return Cart{Items: items}
}

// RemoveOp drops a line regardless of quantity
type RemoveOp struct {
	ProductID string
}

// Apply implements Op
func (op RemoveOp) Apply(c Cart) Cart {
	i := c.Find(op.ProductID)
	if i < 0 {
		return Cart{Items: cloneItems(c.Items)}
	}
	items := cloneItems(c.Items)
	return Cart{Items: append(items[:i], items[i+1:]...)}
}

// ClearOp empties the cart
type ClearOp struct{}

// Apply implements Op
func (op ClearOp) Apply(Cart) Cart {
	return Cart{}
}

func cloneItems(items []CartItem) []CartItem {
	cloned := make([]CartItem, len(items))
	copy(cloned, items)
	return cloned
}
