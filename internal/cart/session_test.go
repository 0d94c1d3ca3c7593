package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/domain"
)

func newSessions(t *testing.T) (*Sessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &Sessions{R: redis.NewClient(&redis.Options{Addr: mr.Addr()}), TTL: time.Hour}, mr
}

func TestSessionsRoundTrip(t *testing.T) {
	sessions, _ := newSessions(t)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, agen())
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	require.NoError(t, sess.Cart.AddItem(beras(), sess.Customer))
	require.NoError(t, sessions.Save(ctx, sess))

	loaded, err := sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "c2", loaded.Customer.ID)
	require.Len(t, loaded.Cart.Lines, 1)
	assert.Equal(t, int64(11000), loaded.Cart.Lines[0].UnitPrice)
}

func TestSessionsDefaultToWalkIn(t *testing.T) {
	sessions, _ := newSessions(t)

	sess, err := sessions.Create(context.Background(), domain.Customer{})
	require.NoError(t, err)
	assert.True(t, sess.Customer.IsWalkIn())
	assert.Equal(t, "Umum", sess.Customer.Name)
}

func TestSessionsExpire(t *testing.T) {
	sessions, mr := newSessions(t)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, domain.Customer{})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsDelete(t *testing.T) {
	sessions, _ := newSessions(t)
	ctx := context.Background()

	sess, err := sessions.Create(ctx, domain.Customer{})
	require.NoError(t, err)
	require.NoError(t, sessions.Delete(ctx, sess.ID))

	_, err = sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
