// Package memory implements the persistence gateway in process memory. It
// backs the demo/offline mode and serves as the storage double in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store"
)

type state struct {
	products     map[string]domain.Product
	customers    map[string]domain.Customer
	suppliers    map[string]domain.Supplier
	users        map[string]domain.User
	transactions map[string]domain.Transaction
	purchases    map[string]domain.Purchase
	events       []domain.Event
	nextEventID  int64
}

func newState() *state {
	return &state{
		products:     map[string]domain.Product{},
		customers:    map[string]domain.Customer{},
		suppliers:    map[string]domain.Supplier{},
		users:        map[string]domain.User{},
		transactions: map[string]domain.Transaction{},
		purchases:    map[string]domain.Purchase{},
		nextEventID:  1,
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	c.events = append([]domain.Event(nil), s.events...)
	c.nextEventID = s.nextEventID
	return c
}

// Store is an in-memory persistence gateway guarded by a mutex.
type Store struct {
	mu  sync.Mutex
	st  *state
	Now func() time.Time
}

// New constructs an empty in-memory gateway.
func New() *Store {
	return &Store{st: newState()}
}

var _ store.Gateway = (*Store)(nil)

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SeedProduct inserts or replaces a product. Test/demo helper.
func (s *Store) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// SeedCustomer inserts or replaces a customer. Test/demo helper.
func (s *Store) SeedCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.customers[c.ID] = c
}

// SeedSupplier inserts or replaces a supplier. Test/demo helper.
func (s *Store) SeedSupplier(sp domain.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.suppliers[sp.ID] = sp
}

// SeedUser inserts or replaces an account. Test/demo helper.
func (s *Store) SeedUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// RunInTx clones the current state, applies fn to the clone, and swaps the
// clone in only when fn succeeds. Failed pipelines therefore leave no
// partially applied writes behind.
func (s *Store) RunInTx(ctx context.Context, fn func(store.Gateway) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scratch := &Store{st: s.st.clone(), Now: s.Now}
	if err := fn(scratch); err != nil {
		return err
	}
	s.st = scratch.st
	return nil
}

// GetProduct loads a product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return domain.Product{}, store.ErrNotFound
	}
	return p, nil
}

// ListProducts returns every product ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.st.products))
	for _, p := range s.st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DecrementStock applies stock = stock - qty under the store lock.
func (s *Store) DecrementStock(ctx context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock -= qty
	s.st.products[id] = p
	return nil
}

// AddStockSetCost increments stock and overwrites the cost basis.
func (s *Store) AddStockSetCost(ctx context.Context, id string, qty int, cost domain.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock += qty
	p.CostPrice = cost
	s.st.products[id] = p
	return nil
}

// GetCustomer loads a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.customers[id]
	if !ok {
		return domain.Customer{}, store.ErrNotFound
	}
	return c, nil
}

// ListCustomers returns every customer ordered by name.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Customer, 0, len(s.st.customers))
	for _, c := range s.st.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// IncrementDebt applies debt = debt + amount under the store lock.
func (s *Store) IncrementDebt(ctx context.Context, id string, amount domain.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.customers[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Debt += amount
	s.st.customers[id] = c
	return nil
}

// GetSupplier loads a supplier by id.
func (s *Store) GetSupplier(ctx context.Context, id string) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.st.suppliers[id]
	if !ok {
		return domain.Supplier{}, store.ErrNotFound
	}
	return sp, nil
}

// ListSuppliers returns every supplier ordered by name.
func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Supplier, 0, len(s.st.suppliers))
	for _, sp := range s.st.suppliers {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetUserByID loads an account by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

// GetUserByUsername loads an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

// InsertTransaction stores a transaction; duplicates by id are rejected with
// ErrDuplicate so commit retries stay idempotent.
func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.st.transactions[tx.ID]; exists {
		return store.ErrDuplicate
	}
	tx.Items = append([]domain.TransactionItem(nil), tx.Items...)
	s.st.transactions[tx.ID] = tx
	return nil
}

// GetTransaction loads a committed transaction.
func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.st.transactions[id]
	if !ok {
		return domain.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

// ListTransactionsBetween returns transactions in [from, to), newest first.
func (s *Store) ListTransactionsBetween(ctx context.Context, from, to time.Time) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range s.st.transactions {
		if tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// InsertPurchase stores a purchase; duplicates by id yield ErrDuplicate.
func (s *Store) InsertPurchase(ctx context.Context, p domain.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.st.purchases[p.ID]; exists {
		return store.ErrDuplicate
	}
	p.Items = append([]domain.PurchaseItem(nil), p.Items...)
	s.st.purchases[p.ID] = p
	return nil
}

// GetPurchase loads a committed purchase.
func (s *Store) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.purchases[id]
	if !ok {
		return domain.Purchase{}, store.ErrNotFound
	}
	return p, nil
}

// InsertEvent appends a domain event.
func (s *Store) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	ev := domain.Event{
		ID:          s.st.nextEventID,
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     append([]byte(nil), payload...),
		OccurredAt:  s.now(),
	}
	s.st.nextEventID++
	s.st.events = append(s.st.events, ev)
	return ev, nil
}

// Events returns a copy of the recorded events. Test helper.
func (s *Store) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.st.events...)
}
