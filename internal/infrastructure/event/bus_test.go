package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/calculation/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Calculation", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches to handlers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		matching := newTestHandler("CalculationCreated")
		other := newTestHandler("CalculationDeleted")
		bus.Subscribe(matching)
		bus.Subscribe(other)

		require.NoError(t, bus.Publish(ctx, newTestEvent("CalculationCreated"), newTestEvent("CalculationCreated")))
		assert.Equal(t, 2, matching.count())
		assert.Equal(t, 0, other.count())
	})

	t.Run("explicit event types override the handler ones", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("CalculationCreated")
		bus.Subscribe(h, "CalculationUpdated")

		require.NoError(t, bus.Publish(ctx, newTestEvent("CalculationCreated"), newTestEvent("CalculationUpdated")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("wildcard handlers receive every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler()
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, h.count())
	})

	t.Run("subscribing twice delivers once", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("A")
		bus.Subscribe(h)
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("failing and panicking handlers do not stop the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("A")
		failing.err = errors.New("handler error")
		panicking := newTestHandler("A")
		panicking.panics = true
		healthy := newTestHandler("A")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, int64(2), bus.Failures())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("A", "B")
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))

	assert.Equal(t, 1, h.count())
	assert.Empty(t, bus.byType)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.running.Load())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.running.Load())
}

func TestHandlerFunc(t *testing.T) {
	var got []string
	h := NewHandlerFunc(func(_ context.Context, e shared.DomainEvent) error {
		got = append(got, e.EventType())
		return nil
	}, "A")
	assert.Equal(t, []string{"A"}, h.EventTypes())

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"A"}, got)
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

func TestPublishPending(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler()
	bus.Subscribe(h)

	agg := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	agg.AddDomainEvent(newTestEvent("A"))
	agg.AddDomainEvent(newTestEvent("B"))

	require.NoError(t, PublishPending(context.Background(), bus, agg))
	assert.Equal(t, 2, h.count())
	assert.Empty(t, agg.GetDomainEvents())
}
