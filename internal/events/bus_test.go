package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Handle(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBus_PublishDelivers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	rec := &recorder{}
	bus.Subscribe(rec)

	require.NoError(t, bus.Publish(TxSubmittedEvent{BaseEvent: NewBase(TxSubmitted), Signature: "sig"}))
	require.NoError(t, bus.Publish(TxConfirmedEvent{BaseEvent: NewBase(TxConfirmed), Signature: "sig"}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))
	assert.Equal(t, 2, rec.len())

	assert.ErrorIs(t, bus.Publish(TxFailedEvent{BaseEvent: NewBase(TxFailed)}), ErrBusClosed)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	rec := &recorder{}
	other := &recorder{}
	sub := bus.Subscribe(rec, TxExpired, TxFailed)
	bus.Subscribe(other, TxExpired)
	assert.Equal(t, map[EventType]int{TxExpired: 2, TxFailed: 1}, bus.Stats().HandlersPerType)

	sub.Unsubscribe()
	sub.Unsubscribe()

	require.NoError(t, bus.PublishSync(context.Background(), TxExpiredEvent{BaseEvent: NewBase(TxExpired)}))
	require.NoError(t, bus.PublishSync(context.Background(), TxFailedEvent{BaseEvent: NewBase(TxFailed)}))
	assert.Equal(t, 0, rec.len())
	assert.Equal(t, 1, other.len())
	assert.Equal(t, map[EventType]int{TxExpired: 1}, bus.Stats().HandlersPerType)
}

func TestBus_PublishSyncCombinesErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	errA, errB := errors.New("a"), errors.New("b")
	bus.Subscribe(HandlerFunc(func(context.Context, Event) error { return errA }), TxFailed)
	bus.Subscribe(HandlerFunc(func(context.Context, Event) error { return errB }), TxFailed)

	err := bus.PublishSync(context.Background(), TxFailedEvent{BaseEvent: NewBase(TxFailed)})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Handle(context.Background(), TxConfirmedEvent{
		BaseEvent:     NewBase(TxConfirmed),
		CorrelationID: "c-1",
		Signature:     "5sig",
		Status:        "finalized",
		Attempts:      2,
	}))
	require.NoError(t, sink.Handle(context.Background(), TxFailedEvent{
		BaseEvent:     NewBase(TxFailed),
		CorrelationID: "c-2",
		Error:         "attempts exhausted",
	}))

	require.Equal(t, 2, logs.Len())
	confirmed := logs.All()[0].ContextMap()
	assert.Equal(t, "tx.confirmed", confirmed["event_type"])
	assert.Equal(t, "c-1", confirmed["correlation_id"])
	assert.Equal(t, "5sig", confirmed["signature"])
	assert.Equal(t, "finalized", confirmed["status"])

	failed := logs.All()[1].ContextMap()
	assert.Equal(t, "c-2", failed["correlation_id"])
	assert.NotContains(t, failed, "signature")
	assert.Equal(t, "attempts exhausted", failed["error"])
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSink(t *testing.T) {
	ch := &fakeChannel{}
	sink, err := newAMQPSink(ch, "tx-events", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-events:topic"}, ch.declared)

	event := TxConfirmedEvent{BaseEvent: NewBase(TxConfirmed), Signature: "5sig", Status: "confirmed", Attempts: 2}
	require.NoError(t, sink.Handle(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "tx.confirmed", ch.keys[0])
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Contains(t, string(ch.published[0].Body), `"signature":"5sig"`)
	assert.Contains(t, string(ch.published[0].Body), `"type":"tx.confirmed"`)

	require.NoError(t, sink.Close())
	assert.True(t, ch.closed)
}
