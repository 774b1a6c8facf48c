package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var resets, updates []Event
	bus.Subscribe(func(e Event) { resets = append(resets, e) }, DataReset)
	bus.Subscribe(func(e Event) { updates = append(updates, e) }, RecordUpdated)

	bus.Publish(RecordUpdated, "2026-10-14")

	require.Len(t, updates, 1)
	assert.Empty(t, resets)
	assert.Equal(t, "2026-10-14", updates[0].Day)
	assert.Equal(t, RecordUpdated, updates[0].Topic)
	assert.False(t, updates[0].OccurredAt.IsZero())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	unsubscribe := bus.Subscribe(func(Event) { calls++ }, DataReset, RecordUpdated)

	bus.Publish(DataReset, "")
	unsubscribe()
	bus.Publish(DataReset, "")
	bus.Publish(RecordUpdated, "")

	assert.Equal(t, 1, calls)
}

func TestBusRecoversPanickingHandler(t *testing.T) {
	bus := NewBus(nil)

	delivered := false
	bus.Subscribe(func(Event) { panic("boom") }, DataReset)
	bus.Subscribe(func(Event) { delivered = true }, DataReset)

	assert.NotPanics(t, func() { bus.Publish(DataReset, "") })
	assert.True(t, delivered)
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []int
	for i := 0; i < 5; i++ {
		bus.Subscribe(func(Event) { order = append(order, i) }, DataReset)
	}
	bus.Publish(DataReset, "")

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
