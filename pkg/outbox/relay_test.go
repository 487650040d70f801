package outbox

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	pending  []Event
	sent     []int64
	failed   map[int64]string
	extended int
	markedBy []string
}

func (s *fakeStore) LockBatch(_ context.Context, _ string, batchSize int, _ time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(batchSize, len(s.pending))
	batch := s.pending[:n]
	s.pending = s.pending[n:]
	return batch, nil
}

func (s *fakeStore) MarkSent(_ context.Context, relayID string, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedBy = append(s.markedBy, relayID)
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, relayID string, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedBy = append(s.markedBy, relayID)
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

func (s *fakeStore) ExtendLease(context.Context, string, []int64, time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extended++
	return nil
}

type fakeProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker unavailable")
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRelayRunOnce(t *testing.T) {
	log := discardLogger()
	store := &fakeStore{pending: []Event{
		{ID: 1, AggregateType: "order", AggregateID: "10", Type: "OrderPlaced", Payload: []byte(`{}`)},
		{ID: 2, AggregateType: "order", AggregateID: "11", Type: "OrderPlaced", Payload: []byte(`{}`)},
		{ID: 3, AggregateType: "order", AggregateID: "12", Type: "OrderPlaced", Payload: []byte(`{}`)},
	}}
	producer := &fakeProducer{failOn: "11"}
	relay := NewRelay(log, store, NewDispatcher(log, producer, "store.events"), "test-relay", WithBatchSize(10))

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Contains(t, store.failed, int64(2))
	assert.Equal(t, []string{"test-relay", "test-relay"}, store.markedBy)
	require.Len(t, producer.msgs, 2)
	assert.Equal(t, "store.events", producer.msgs[0].Topic)
	assert.Equal(t, []byte("10"), producer.msgs[0].Key)
}

func TestRelayRunOnceEmpty(t *testing.T) {
	log := discardLogger()
	store := &fakeStore{}
	relay := NewRelay(log, store, NewDispatcher(log, &fakeProducer{}, "store.events"), "test-relay")

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.sent)
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	log := discardLogger()
	store := &fakeStore{pending: []Event{{ID: 7, AggregateID: "1", Type: "OrderPlaced"}}}
	relay := NewRelay(log, store, NewDispatcher(log, &fakeProducer{}, "t"), "test-relay", WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestDispatchHeaders(t *testing.T) {
	producer := &fakeProducer{}
	d := NewDispatcher(discardLogger(), producer, "store.events")

	err := d.Dispatch(context.Background(), Event{
		ID:            1,
		AggregateType: "order",
		AggregateID:   "5",
		Type:          "OrderPaymentStatusChanged",
		Payload:       []byte(`{"order_id":5}`),
		Headers:       map[string]string{"source": "store-service"},
	})
	require.NoError(t, err)
	require.Len(t, producer.msgs, 1)

	got := map[string]string{}
	for _, h := range producer.msgs[0].Headers {
		got[h.Key] = string(h.Value)
	}
	assert.Equal(t, "store-service", got["source"])
	assert.Equal(t, "OrderPaymentStatusChanged", got["event_type"])
	assert.Equal(t, "order", got["aggregate_type"])
}
