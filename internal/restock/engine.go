// Package restock builds and commits purchase orders that replenish product
// stock. Receiving a purchase overwrites each product's cost basis with the
// latest unit cost.
package restock

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yusapos/backend-pos/internal/domain"
)

// ValidationError rejects a purchase before any persistence is attempted,
// so the operator can correct the form and resubmit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "restock: " + e.Reason
}

// Line pairs a resolved product with the received quantity and unit cost.
type Line struct {
	Product  domain.Product
	Qty      int
	UnitCost domain.Money
}

// Engine builds purchase orders. Now and NewID are injectable for tests.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// BuildPurchase validates the order and constructs the immutable purchase.
// Each line must reference a distinct product. Negative quantities and costs
// are clamped to zero rather than rejected, matching how the receiving form
// treats cleared numeric fields.
func (e Engine) BuildPurchase(supplier domain.Supplier, operator domain.User, invoiceRef string, lines []Line) (domain.Purchase, error) {
	if supplier.ID == "" {
		return domain.Purchase{}, &ValidationError{Reason: "supplier is required"}
	}
	invoiceRef = strings.TrimSpace(invoiceRef)
	if invoiceRef == "" {
		return domain.Purchase{}, &ValidationError{Reason: "invoice reference is required"}
	}
	if len(lines) == 0 {
		return domain.Purchase{}, &ValidationError{Reason: "at least one line is required"}
	}
	seen := make(map[string]struct{}, len(lines))
	items := make([]domain.PurchaseItem, 0, len(lines))
	var total domain.Money
	for _, line := range lines {
		if line.Product.ID == "" {
			return domain.Purchase{}, &ValidationError{Reason: "every line must reference a product"}
		}
		if _, dup := seen[line.Product.ID]; dup {
			return domain.Purchase{}, &ValidationError{Reason: fmt.Sprintf("duplicate line for product %s", line.Product.ID)}
		}
		seen[line.Product.ID] = struct{}{}
		qty := line.Qty
		if qty < 0 {
			qty = 0
		}
		cost := line.UnitCost
		if cost < 0 {
			cost = 0
		}
		subtotal := domain.Money(qty) * cost
		items = append(items, domain.PurchaseItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Qty:         qty,
			CostPrice:   cost,
			Subtotal:    subtotal,
		})
		total += subtotal
	}
	return domain.Purchase{
		ID:            e.newID(),
		InvoiceNumber: invoiceRef,
		Date:          e.now(),
		SupplierID:    supplier.ID,
		SupplierName:  supplier.Name,
		OperatorID:    operator.ID,
		Items:         items,
		TotalAmount:   total,
	}, nil
}
