// Package domain holds the entities shared by the sale and restock engines.
package domain

import (
	"strings"
	"time"
)

// Money represents a monetary value stored in minor units (whole rupiah).
type Money = int64

// Classification determines which price column applies to a customer and
// whether the customer may carry debt.
type Classification string

const (
	ClassGeneral     Classification = "general"
	ClassAgen        Classification = "agen"
	ClassDistributor Classification = "distributor"
)

// ParseClassification normalises free-form input into a known classification.
// Unknown or empty values fall back to general.
func ParseClassification(value string) Classification {
	switch Classification(strings.ToLower(strings.TrimSpace(value))) {
	case ClassAgen:
		return ClassAgen
	case ClassDistributor:
		return ClassDistributor
	default:
		return ClassGeneral
	}
}

// PaymentMethod describes how a transaction was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentDebt PaymentMethod = "debt"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Product is a sellable item. Stock and cost price are mutated only by the
// sale and purchase commit pipelines.
type Product struct {
	ID               string `json:"id"`
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	Stock            int    `json:"stock"`
	CostPrice        Money  `json:"costPrice"`
	PriceGeneral     Money  `json:"priceGeneral"`
	PriceAgen        Money  `json:"priceAgen"`
	PriceDistributor Money  `json:"priceDistributor"`
	SupplierID       string `json:"supplierId,omitempty"`
}

// Customer carries the classification used for pricing and the outstanding
// debt balance. Debt only grows through the sale commit pipeline.
type Customer struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Phone string         `json:"phone"`
	Type  Classification `json:"type"`
	Debt  Money          `json:"debt"`
}

// walkIn is the well-known sentinel used when no customer is selected.
var walkIn = Customer{ID: "walk-in", Name: "Umum", Type: ClassGeneral}

// WalkIn returns the sentinel customer for anonymous counter sales. Walk-in
// sales are always general-priced and must be paid in full.
func WalkIn() Customer {
	return walkIn
}

// IsWalkIn reports whether the customer is the anonymous sentinel.
func (c Customer) IsWalkIn() bool {
	return c.ID == walkIn.ID
}

// Supplier references the party products are restocked from.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// User is a cashier or admin account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	PINHash  string `json:"-"`
}

// TransactionItem is an immutable snapshot of a cart line at commit time.
// CostPrice captures the product's cost basis for later profit reporting.
type TransactionItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Qty         int    `json:"qty"`
	UnitPrice   Money  `json:"unitPrice"`
	CostPrice   Money  `json:"costPrice"`
	Subtotal    Money  `json:"subtotal"`
}

// Transaction is a committed sale. Never mutated after creation.
type Transaction struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoiceNumber"`
	Date          time.Time         `json:"date"`
	CashierID     string            `json:"cashierId"`
	CashierName   string            `json:"cashierName"`
	CustomerID    string            `json:"customerId"`
	CustomerName  string            `json:"customerName"`
	CustomerType  Classification    `json:"customerType"`
	Items         []TransactionItem `json:"items"`
	TotalAmount   Money             `json:"totalAmount"`
	AmountPaid    Money             `json:"amountPaid"`
	Change        Money             `json:"change"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
}

// DebtAmount returns the balance accrued by a debt sale, zero otherwise.
func (t Transaction) DebtAmount() Money {
	if t.PaymentMethod != PaymentDebt {
		return 0
	}
	owed := t.TotalAmount - t.AmountPaid
	if owed < 0 {
		return 0
	}
	return owed
}

// PurchaseItem records one restocked product line.
type PurchaseItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Qty         int    `json:"qty"`
	CostPrice   Money  `json:"costPrice"`
	Subtotal    Money  `json:"subtotal"`
}

// Purchase is a committed restock order. Immutable after creation.
type Purchase struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoiceNumber"`
	Date          time.Time      `json:"date"`
	SupplierID    string         `json:"supplierId"`
	SupplierName  string         `json:"supplierName"`
	OperatorID    string         `json:"operatorId"`
	Items         []PurchaseItem `json:"items"`
	TotalAmount   Money          `json:"totalAmount"`
}

// Event is a persisted domain event emitted after a successful commit.
type Event struct {
	ID          int64     `json:"id"`
	Topic       string    `json:"topic"`
	AggregateID string    `json:"aggregateId"`
	Payload     []byte    `json:"payload"`
	OccurredAt  time.Time `json:"occurredAt"`
}
