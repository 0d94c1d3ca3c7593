// Package cart models the in-progress sale owned by one POS session.
package cart

import (
	"errors"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/pricing"
)

// ErrOutOfStock signals a rejected add: the product has no sellable stock
// left (or the line already claims everything available).
var ErrOutOfStock = errors.New("cart: product out of stock")

// ErrLineNotFound indicates the product has no line in the cart.
var ErrLineNotFound = errors.New("cart: line not found")

// Line is one cart entry. Product is a snapshot taken at add time; UnitPrice
// is resolved for the then-active customer and replaced on reprice.
type Line struct {
	Product   domain.Product `json:"product"`
	Qty       int            `json:"qty"`
	UnitPrice domain.Money   `json:"unitPrice"`
	Subtotal  domain.Money   `json:"subtotal"`
}

// Cart holds ordered lines, one per product. Every mutation maintains
// subtotal == qty * unitPrice on each line.
type Cart struct {
	Lines []Line `json:"lines"`
}

func (c *Cart) find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem appends the product as a new line, or bumps the existing line's
// quantity by one. The quantity is always capped at the product's stock, so
// an add that cannot claim another unit is rejected with ErrOutOfStock.
func (c *Cart) AddItem(p domain.Product, customer domain.Customer) error {
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	if i := c.find(p.ID); i >= 0 {
		line := &c.Lines[i]
		// Callers pass a freshly loaded product; adopting it keeps the stock
		// cap current after restocks instead of pinned to the first add.
		line.Product = p
		if line.Qty >= line.Product.Stock {
			return ErrOutOfStock
		}
		line.Qty++
		line.Subtotal = domain.Money(line.Qty) * line.UnitPrice
		return nil
	}
	price := pricing.ResolveUnitPrice(p, customer.Type)
	c.Lines = append(c.Lines, Line{Product: p, Qty: 1, UnitPrice: price, Subtotal: price})
	return nil
}

// SetQuantity replaces the line's quantity, clamped to [1, stock]. Inputs
// below one coerce to one.
func (c *Cart) SetQuantity(productID string, qty int) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	line := &c.Lines[i]
	if qty < 1 {
		qty = 1
	}
	if qty > line.Product.Stock {
		qty = line.Product.Stock
	}
	if qty < 1 {
		qty = 1
	}
	line.Qty = qty
	line.Subtotal = domain.Money(line.Qty) * line.UnitPrice
	return nil
}

// RemoveItem drops the product's line entirely.
func (c *Cart) RemoveItem(productID string) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

// RepriceForCustomer re-resolves the unit price of every line for the new
// customer classification. Quantities are preserved.
func (c *Cart) RepriceForCustomer(customer domain.Customer) {
	for i := range c.Lines {
		line := &c.Lines[i]
		line.UnitPrice = pricing.ResolveUnitPrice(line.Product, customer.Type)
		line.Subtotal = domain.Money(line.Qty) * line.UnitPrice
	}
}

// GrandTotal recomputes the cart total from line subtotals on every call.
func (c *Cart) GrandTotal() domain.Money {
	items := make([]pricing.Item, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, pricing.Item{Qty: line.Qty, UnitPrice: line.UnitPrice})
	}
	return pricing.Total(items)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Clear empties the cart. Invoked after a successful checkout.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Snapshot freezes the cart into immutable transaction items, capturing each
// product's current cost basis for profit reporting.
func (c *Cart) Snapshot() []domain.TransactionItem {
	items := make([]domain.TransactionItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, domain.TransactionItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			CostPrice:   line.Product.CostPrice,
			Subtotal:    line.Subtotal,
		})
	}
	return items
}
