package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository/memory"
)

type failingResetter struct{}

func (failingResetter) Reset(context.Context) error { return errors.New("locked") }

func TestResetAllClearsDataAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.InsertHerd(ctx, models.Herd{ID: "h1", Name: "North", Cows: 1}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-01", Milk: 3}))

	bus := events.NewBus(nil)
	var got []events.Topic
	bus.Subscribe(func(evt events.Event) { got = append(got, evt.Topic) }, events.DataReset)

	require.NoError(t, NewService(store, bus, nil).ResetAll(ctx))

	herds, err := store.ListHerds(ctx)
	require.NoError(t, err)
	assert.Empty(t, herds)
	assert.Equal(t, []events.Topic{events.DataReset}, got)
}

func TestResetAllFailureDoesNotNotify(t *testing.T) {
	bus := events.NewBus(nil)
	notified := false
	bus.Subscribe(func(events.Event) { notified = true }, events.DataReset)

	err := NewService(failingResetter{}, bus, nil).ResetAll(context.Background())
	require.Error(t, err)
	assert.False(t, notified)
}
