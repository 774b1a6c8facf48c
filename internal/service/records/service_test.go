package records

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository/memory"
)

type countingPublisher struct {
	days []string
}

func (p *countingPublisher) Publish(_ events.Topic, day string) {
	p.days = append(p.days, day)
}

func newTestService(t *testing.T) (*Service, *memory.Store, *countingPublisher) {
	t.Helper()
	store := memory.New()
	pub := &countingPublisher{}
	svc := NewService(store, store, pub, nil)
	clock := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, store, pub
}

func TestSetProductReachesCompletion(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newTestService(t)
	require.NoError(t, store.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1}))

	r, err := svc.SetProduct(ctx, "2024-01-05", models.ProductMilk, 40)
	require.NoError(t, err)
	assert.False(t, r.IsCompleted)

	r, err = svc.SetProduct(ctx, "2024-01-05", models.ProductEggs, 15)
	require.NoError(t, err)
	assert.False(t, r.IsCompleted)

	r, err = svc.SetProduct(ctx, "2024-01-05", models.ProductWool, 1)
	require.NoError(t, err)
	assert.True(t, r.IsCompleted)

	stored, err := store.GetRecord(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, r, stored)
	assert.Equal(t, []string{"2024-01-05", "2024-01-05", "2024-01-05"}, pub.days)
}

func TestSetProductWithoutGoalIsNeverComplete(t *testing.T) {
	svc, _, _ := newTestService(t)

	r, err := svc.SetProduct(context.Background(), "2024-01-05", models.ProductMilk, 1000)
	require.NoError(t, err)
	assert.False(t, r.IsCompleted)
	assert.Equal(t, models.DailyRecord{Day: "2024-01-05", Milk: 1000, UpdatedAt: r.UpdatedAt}, r)
}

func TestSetProductIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first, err := svc.SetProduct(ctx, "2024-01-05", models.ProductEggs, 12.8)
	require.NoError(t, err)
	second, err := svc.SetProduct(ctx, "2024-01-05", models.ProductEggs, 12.8)
	require.NoError(t, err)

	assert.Equal(t, 12, second.Eggs)
	assert.Equal(t, first, second)
}

func TestSetProductRejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := svc.SetProduct(ctx, "2024-01-05", models.ProductMilk, v)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	_, err := svc.SetProduct(ctx, "2024-01-05", models.ProductEggs, 1e20)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = svc.SetProduct(ctx, "not-a-day", models.ProductMilk, 1)
	assert.ErrorIs(t, err, models.ErrInvalidDay)
	_, err = svc.SetProduct(ctx, "2024-01-05", models.ProductType("honey"), 1)
	assert.ErrorIs(t, err, models.ErrUnknownProduct)

	records, err := store.ListRecords(ctx, "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordForMissingDay(t *testing.T) {
	svc, _, _ := newTestService(t)
	r, err := svc.RecordFor(context.Background(), "2024-01-05")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestRefreshCompletionFollowsGoalChange(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	require.NoError(t, store.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-05", Milk: 1, Eggs: 1, Wool: 1}))
	for _, p := range models.Products {
		_, err := svc.SetProduct(ctx, "2024-01-05", p, 5)
		require.NoError(t, err)
	}

	require.NoError(t, store.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-05", Milk: 10, Eggs: 1, Wool: 1}))
	r, err := svc.RefreshCompletion(ctx, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.IsCompleted)

	stored, err := store.GetRecord(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)

	none, err := svc.RefreshCompletion(ctx, "2024-01-06")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSetProductAcceptsLargestEggCount(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	require.NoError(t, store.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-05", Milk: 1, Eggs: 1, Wool: 1}))

	r, err := svc.SetProduct(ctx, "2024-01-05", models.ProductEggs, models.MaxEggs)
	require.NoError(t, err)
	assert.Equal(t, models.MaxEggs, r.Eggs)
	assert.False(t, r.IsCompleted)
}
