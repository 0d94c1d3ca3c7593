// Package store defines the persistence gateway consumed by the sale and
// restock commit pipelines. It is the only layer allowed to talk to durable
// storage.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/yusapos/backend-pos/internal/domain"
)

var (
	// ErrNotFound indicates the requested record could not be located.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate indicates an insert collided with an existing record id.
	// Commit pipelines treat this as an already-applied commit.
	ErrDuplicate = errors.New("store: duplicate record")
)

// Gateway enumerates the storage operations the engines depend on.
//
// DecrementStock and IncrementDebt must be atomic per row: implementations
// serialize concurrent updates to the same product or customer instead of
// reading then writing from the application layer.
type Gateway interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// DecrementStock applies stock = stock - qty atomically.
	DecrementStock(ctx context.Context, id string, qty int) error
	// AddStockSetCost applies stock = stock + qty and overwrites the cost
	// basis with the supplied unit cost (last restock price wins).
	AddStockSetCost(ctx context.Context, id string, qty int, cost domain.Money) error

	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	// IncrementDebt applies debt = debt + amount atomically.
	IncrementDebt(ctx context.Context, id string, amount domain.Money) error

	GetSupplier(ctx context.Context, id string) (domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// InsertTransaction persists the header and its line items. Returns
	// ErrDuplicate when the transaction id is already committed.
	InsertTransaction(ctx context.Context, tx domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	ListTransactionsBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error)

	// InsertPurchase persists the header and its line items. Returns
	// ErrDuplicate when the purchase id is already committed.
	InsertPurchase(ctx context.Context, p domain.Purchase) error
	GetPurchase(ctx context.Context, id string) (domain.Purchase, error)

	InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (domain.Event, error)

	// RunInTx executes fn against a gateway whose writes commit atomically:
	// either every mutation made through it is applied, or none is.
	RunInTx(ctx context.Context, fn func(Gateway) error) error
}
