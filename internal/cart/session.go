package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yusapos/backend-pos/internal/domain"
)

// ErrNotFound indicates the requested cart session could not be located
// (never created, or expired).
var ErrNotFound = errors.New("cart: session not found")

// Session binds an in-progress cart to its active customer. Sessions are
// exclusively owned by one POS terminal; there are no concurrent edits.
type Session struct {
	ID       string          `json:"id"`
	Customer domain.Customer `json:"customer"`
	Cart     Cart            `json:"cart"`
}

// Sessions persists cart sessions in Redis with a sliding TTL: every read or
// write touches the expiry so an active sale never times out mid-checkout.
type Sessions struct {
	R   *redis.Client
	TTL time.Duration
}

func (s *Sessions) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func sessionKey(id string) string {
	return "cart:session:" + id
}

// Create opens a new session for the provided customer. A zero customer
// defaults to the walk-in sentinel.
func (s *Sessions) Create(ctx context.Context, customer domain.Customer) (Session, error) {
	if s == nil || s.R == nil {
		return Session{}, errors.New("cart: session store not configured")
	}
	if customer.ID == "" {
		customer = domain.WalkIn()
	}
	sess := Session{ID: uuid.NewString(), Customer: customer}
	if err := s.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get loads a session and touches its expiry.
func (s *Sessions) Get(ctx context.Context, id string) (Session, error) {
	if s == nil || s.R == nil {
		return Session{}, errors.New("cart: session store not configured")
	}
	raw, err := s.R.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load cart session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode cart session: %w", err)
	}
	_ = s.R.Expire(ctx, sessionKey(id), s.ttl()).Err()
	return sess, nil
}

// Save writes the session back and resets its TTL.
func (s *Sessions) Save(ctx context.Context, sess Session) error {
	if s == nil || s.R == nil {
		return errors.New("cart: session store not configured")
	}
	if sess.ID == "" {
		return errors.New("cart: session id is required")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode cart session: %w", err)
	}
	return s.R.Set(ctx, sessionKey(sess.ID), raw, s.ttl()).Err()
}

// Delete removes the session outright.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart: session store not configured")
	}
	return s.R.Del(ctx, sessionKey(id)).Err()
}
