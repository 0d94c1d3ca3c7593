// Package checkout turns a cart session into a committed sale. The engine
// decides cash versus debt before any storage call; the pipeline applies the
// resulting transaction atomically.
package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yusapos/backend-pos/internal/cart"
	"github.com/yusapos/backend-pos/internal/domain"
)

var (
	// ErrEmptyCart rejects checkout attempts with no cart lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrDebtNotAllowed rejects underpayment by general or walk-in customers.
	ErrDebtNotAllowed = errors.New("checkout: customer must pay in full")
)

// Engine builds transactions from cart state. Now and NewID are injectable
// for tests; zero values fall back to the clock and random UUIDs.
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

// InvoiceNumber derives the human-visible invoice string for a sale. The
// millisecond timestamp alone collides when two terminals commit in the same
// tick, so a slice of the transaction id keeps the number unique.
func InvoiceNumber(t time.Time, trxID string) string {
	suffix := strings.ReplaceAll(trxID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("INV-%d-%s", t.UnixMilli(), strings.ToUpper(suffix))
}

// Build validates the checkout and constructs the immutable transaction.
// tendered below the grand total marks the sale as debt, which only
// agent and distributor customers may carry. No storage is touched here,
// so every rejection is safe to retry after the operator corrects input.
func (e Engine) Build(c *cart.Cart, customer domain.Customer, cashier domain.User, tendered domain.Money) (domain.Transaction, error) {
	if c == nil || c.Empty() {
		return domain.Transaction{}, ErrEmptyCart
	}
	if tendered < 0 {
		tendered = 0
	}
	total := c.GrandTotal()
	isDebt := tendered < total
	if isDebt && (customer.IsWalkIn() || customer.Type == domain.ClassGeneral) {
		return domain.Transaction{}, ErrDebtNotAllowed
	}
	method := domain.PaymentCash
	change := tendered - total
	if change < 0 {
		change = 0
	}
	if isDebt {
		method = domain.PaymentDebt
		change = 0
	}
	now := e.now()
	id := e.newID()
	return domain.Transaction{
		ID:            id,
		InvoiceNumber: InvoiceNumber(now, id),
		Date:          now,
		CashierID:     cashier.ID,
		CashierName:   cashier.FullName,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerType:  customer.Type,
		Items:         c.Snapshot(),
		TotalAmount:   total,
		AmountPaid:    tendered,
		Change:        change,
		PaymentMethod: method,
	}, nil
}
