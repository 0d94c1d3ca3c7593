// Package postgres implements the persistence gateway on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx so the same methods serve
// both pooled and transactional execution.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL persistence gateway.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// New constructs a gateway backed by the provided pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

var _ store.Gateway = (*Store)(nil)

// RunInTx executes fn against a transaction-scoped gateway. All writes commit
// or roll back together.
func (s *Store) RunInTx(ctx context.Context, fn func(store.Gateway) error) error {
	if s.pool == nil {
		return errors.New("postgres: pool not configured")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const productColumns = `id, sku, name, category, stock, cost_price, price_general, price_agen, price_distributor, COALESCE(supplier_id, '')`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Stock, &p.CostPrice,
		&p.PriceGeneral, &p.PriceAgen, &p.PriceDistributor, &p.SupplierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, store.ErrNotFound
	}
	return p, err
}

// GetProduct loads a single product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// ListProducts returns every product ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecrementStock applies an atomic per-row stock decrement.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) error {
	tag, err := s.db.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AddStockSetCost increments stock and overwrites the cost basis in one
// statement so concurrent restocks serialize on the row.
func (s *Store) AddStockSetCost(ctx context.Context, id string, qty int, cost domain.Money) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products SET stock = stock + $2, cost_price = $3 WHERE id = $1`, id, qty, cost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetCustomer loads a single customer by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRow(ctx,
		`SELECT id, name, phone, type, debt FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Type, &c.Debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, store.ErrNotFound
	}
	return c, err
}

// ListCustomers returns every customer ordered by name.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, phone, type, debt FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Type, &c.Debt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// IncrementDebt applies an atomic per-row debt increment.
func (s *Store) IncrementDebt(ctx context.Context, id string, amount domain.Money) error {
	tag, err := s.db.Exec(ctx, `UPDATE customers SET debt = debt + $2 WHERE id = $1`, id, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetSupplier loads a single supplier by id.
func (s *Store) GetSupplier(ctx context.Context, id string) (domain.Supplier, error) {
	var sp domain.Supplier
	err := s.db.QueryRow(ctx,
		`SELECT id, name, contact, phone FROM suppliers WHERE id = $1`, id).
		Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Supplier{}, store.ErrNotFound
	}
	return sp, err
}

// ListSuppliers returns every supplier ordered by name.
func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, contact, phone FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Supplier
	for rows.Next() {
		var sp domain.Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Phone); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// GetUserByID loads an account by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, username, full_name, role, pin_hash FROM profiles WHERE id = $1`, id)
}

// GetUserByUsername loads an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, username, full_name, role, pin_hash FROM profiles WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.PINHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, store.ErrNotFound
	}
	return u, err
}

// InsertTransaction persists the header plus line items. A conflicting id
// yields ErrDuplicate and leaves the stored transaction untouched, which
// makes commit retries idempotent.
func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO transactions
			(id, invoice_number, date, cashier_id, cashier_name, customer_id, customer_name,
			 customer_type, total_amount, amount_paid, change, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		tx.ID, tx.InvoiceNumber, tx.Date, tx.CashierID, tx.CashierName, tx.CustomerID,
		tx.CustomerName, string(tx.CustomerType), tx.TotalAmount, tx.AmountPaid, tx.Change,
		string(tx.PaymentMethod))
	if err != nil {
		return fmt.Errorf("insert transaction header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDuplicate
	}
	for _, it := range tx.Items {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO transaction_items
				(transaction_id, product_id, product_name, qty, unit_price, cost_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			tx.ID, it.ProductID, it.ProductName, it.Qty, it.UnitPrice, it.CostPrice, it.Subtotal); err != nil {
			return fmt.Errorf("insert transaction item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// GetTransaction loads a committed transaction with its items.
func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	var tx domain.Transaction
	var custType, method string
	err := s.db.QueryRow(ctx, `
		SELECT id, invoice_number, date, cashier_id, cashier_name, customer_id, customer_name,
		       customer_type, total_amount, amount_paid, change, payment_method
		FROM transactions WHERE id = $1`, id).
		Scan(&tx.ID, &tx.InvoiceNumber, &tx.Date, &tx.CashierID, &tx.CashierName,
			&tx.CustomerID, &tx.CustomerName, &custType, &tx.TotalAmount, &tx.AmountPaid,
			&tx.Change, &method)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.CustomerType = domain.Classification(custType)
	tx.PaymentMethod = domain.PaymentMethod(method)
	items, err := s.transactionItems(ctx, []string{id})
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Items = items[id]
	return tx, nil
}

// ListTransactionsBetween returns committed transactions in [from, to) with
// their items, newest first. Used by the sales report aggregation.
func (s *Store) ListTransactionsBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, invoice_number, date, cashier_id, cashier_name, customer_id, customer_name,
		       customer_type, total_amount, amount_paid, change, payment_method
		FROM transactions WHERE date >= $1 AND date < $2 ORDER BY date DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Transaction
	var ids []string
	for rows.Next() {
		var tx domain.Transaction
		var custType, method string
		if err := rows.Scan(&tx.ID, &tx.InvoiceNumber, &tx.Date, &tx.CashierID, &tx.CashierName,
			&tx.CustomerID, &tx.CustomerName, &custType, &tx.TotalAmount, &tx.AmountPaid,
			&tx.Change, &method); err != nil {
			return nil, err
		}
		tx.CustomerType = domain.Classification(custType)
		tx.PaymentMethod = domain.PaymentMethod(method)
		out = append(out, tx)
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	items, err := s.transactionItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *Store) transactionItems(ctx context.Context, ids []string) (map[string][]domain.TransactionItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT transaction_id, product_id, product_name, qty, unit_price, cost_price, subtotal
		FROM transaction_items WHERE transaction_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]domain.TransactionItem, len(ids))
	for rows.Next() {
		var txID string
		var it domain.TransactionItem
		if err := rows.Scan(&txID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitPrice,
			&it.CostPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		out[txID] = append(out[txID], it)
	}
	return out, rows.Err()
}

// InsertPurchase persists the header plus line items, idempotent by id.
func (s *Store) InsertPurchase(ctx context.Context, p domain.Purchase) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO purchases
			(id, invoice_number, date, supplier_id, supplier_name, operator_id, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.InvoiceNumber, p.Date, p.SupplierID, p.SupplierName, p.OperatorID, p.TotalAmount)
	if err != nil {
		return fmt.Errorf("insert purchase header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDuplicate
	}
	for _, it := range p.Items {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO purchase_items (purchase_id, product_id, product_name, qty, cost_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, it.ProductID, it.ProductName, it.Qty, it.CostPrice, it.Subtotal); err != nil {
			return fmt.Errorf("insert purchase item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// GetPurchase loads a committed purchase with its items.
func (s *Store) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	var p domain.Purchase
	err := s.db.QueryRow(ctx, `
		SELECT id, invoice_number, date, supplier_id, supplier_name, operator_id, total_amount
		FROM purchases WHERE id = $1`, id).
		Scan(&p.ID, &p.InvoiceNumber, &p.Date, &p.SupplierID, &p.SupplierName, &p.OperatorID, &p.TotalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Purchase{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Purchase{}, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT product_id, product_name, qty, cost_price, subtotal
		FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.PurchaseItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Qty, &it.CostPrice, &it.Subtotal); err != nil {
			return domain.Purchase{}, err
		}
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

// InsertEvent appends a domain event to the outbox table.
func (s *Store) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (domain.Event, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	var ev domain.Event
	err := s.db.QueryRow(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, topic, aggregate_id, payload, occurred_at`,
		topic, aggregateID, payload).
		Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt)
	return ev, err
}
