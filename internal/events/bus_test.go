package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/domain"
)

type fakeStore struct {
	inserted []domain.Event
	err      error
}

func (f *fakeStore) InsertEvent(_ context.Context, topic, aggregateID string, payload []byte) (domain.Event, error) {
	if f.err != nil {
		return domain.Event{}, f.err
	}
	ev := domain.Event{ID: int64(len(f.inserted) + 1), Topic: topic, AggregateID: aggregateID, Payload: payload}
	f.inserted = append(f.inserted, ev)
	return ev, nil
}

type recordingNotifier struct {
	seen []domain.Event
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.Event) error {
	n.seen = append(n.seen, ev)
	return n.err
}

func TestBusEmitPersistsAndNotifies(t *testing.T) {
	st := &fakeStore{}
	n := &recordingNotifier{}
	bus := &Bus{Store: st, Notifiers: []Notifier{n}}

	ev, err := bus.Emit(context.Background(), TopicSaleCommitted, "trx-1", map[string]any{"total": 12000})
	require.NoError(t, err)
	assert.Equal(t, TopicSaleCommitted, ev.Topic)
	assert.Equal(t, "trx-1", ev.AggregateID)
	require.Len(t, st.inserted, 1)
	assert.JSONEq(t, `{"total":12000}`, string(st.inserted[0].Payload))
	require.Len(t, n.seen, 1)
}

func TestBusEmitValidation(t *testing.T) {
	bus := &Bus{Store: &fakeStore{}}

	_, err := bus.Emit(context.Background(), "", "trx-1", nil)
	assert.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicStockLow, "  ", nil)
	assert.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicStockLow, "p-1", []byte("not json"))
	assert.Error(t, err)
}

func TestBusEmitNotifierFailureKeepsEvent(t *testing.T) {
	st := &fakeStore{}
	n := &recordingNotifier{err: errors.New("boom")}
	bus := &Bus{Store: st, Notifiers: []Notifier{n}}

	ev, err := bus.Emit(context.Background(), TopicPurchaseCommitted, "pur-1", nil)
	assert.Error(t, err)
	assert.Equal(t, TopicPurchaseCommitted, ev.Topic)
	assert.Len(t, st.inserted, 1)
}
