package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository/memory"
	"github.com/mamadbah2/herdsync/internal/service/completion"
)

type fixedTotals models.HerdTotals

func (f fixedTotals) Totals() models.HerdTotals { return models.HerdTotals(f) }

type failingReconciler struct{ calls int }

func (f *failingReconciler) Reconcile(context.Context, models.Month) (completion.Result, error) {
	f.calls++
	return completion.Result{}, errors.New("store offline")
}

var anchor = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func seedJanuary(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	goal := func(day string) models.DailyGoal {
		return models.DailyGoal{Day: day, Milk: 40, Eggs: 15, Wool: 1}
	}
	require.NoError(t, store.UpsertGoal(ctx, goal("2024-01-03")))
	require.NoError(t, store.UpsertGoal(ctx, goal("2024-01-04")))
	// Stale flags: the 3rd is met but unflagged, the 4th is flagged but short.
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-03", Milk: 40, Eggs: 15, Wool: 1}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-04", Milk: 10, IsCompleted: true}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-09", Milk: 99, Eggs: 99, Wool: 99}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-02-01", Milk: 1, IsCompleted: true}))
}

func newTestAggregator(store *memory.Store, totals models.HerdTotals) *Aggregator {
	return NewAggregator(fixedTotals(totals), completion.NewReconciler(store, nil), store, time.UTC, nil)
}

func TestLoadMonthRepairsBeforeAggregating(t *testing.T) {
	store := memory.New()
	seedJanuary(t, store)
	a := newTestAggregator(store, models.HerdTotals{Cows: 2})

	stats, err := a.LoadMonth(context.Background(), anchor)
	require.NoError(t, err)

	want := MonthStats{
		SelectedDate: anchor,
		Month:        models.Month{Start: "2024-01-01", End: "2024-02-01"},
		HasHerds:     true,
		Records: []models.DailyRecord{
			{Day: "2024-01-09", Milk: 99, Eggs: 99, Wool: 99},
			{Day: "2024-01-04", Milk: 10},
			{Day: "2024-01-03", Milk: 40, Eggs: 15, Wool: 1, IsCompleted: true},
		},
		Completed: 1,
		Repaired:  2,
	}
	if diff := cmp.Diff(want, stats, cmpopts.IgnoreFields(MonthStats{}, "CompletionRate")); diff != "" {
		t.Fatalf("LoadMonth mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 100.0/3, stats.CompletionRate, 1e-9)
	assert.Equal(t, stats, a.Current())

	again, err := a.LoadMonth(context.Background(), anchor)
	require.NoError(t, err)
	assert.Zero(t, again.Repaired)
	assert.Equal(t, stats.Completed, again.Completed)
}

func TestLoadMonthWithoutProductiveHerds(t *testing.T) {
	store := memory.New()
	seedJanuary(t, store)
	rec := &failingReconciler{}
	a := NewAggregator(fixedTotals{Goats: 4}, rec, store, time.UTC, nil)

	stats, err := a.LoadMonth(context.Background(), anchor)
	require.NoError(t, err)
	assert.False(t, stats.HasHerds)
	assert.NotNil(t, stats.Records)
	assert.Empty(t, stats.Records)
	assert.Zero(t, rec.calls)
}

func TestLoadMonthEmptyBucket(t *testing.T) {
	a := newTestAggregator(memory.New(), models.HerdTotals{Sheep: 1})

	stats, err := a.LoadMonth(context.Background(), anchor)
	require.NoError(t, err)
	assert.True(t, stats.HasHerds)
	assert.Empty(t, stats.Records)
	assert.Zero(t, stats.CompletionRate)
}

func TestFailedLoadKeepsPreviousView(t *testing.T) {
	store := memory.New()
	seedJanuary(t, store)
	a := newTestAggregator(store, models.HerdTotals{Cows: 1})
	first, err := a.LoadMonth(context.Background(), anchor)
	require.NoError(t, err)

	a.reconciler = &failingReconciler{}
	_, err = a.LoadMonth(context.Background(), anchor)
	require.Error(t, err)
	assert.Equal(t, first, a.Current())
}

func TestComputeDoesNotChangeView(t *testing.T) {
	store := memory.New()
	seedJanuary(t, store)
	a := newTestAggregator(store, models.HerdTotals{Cows: 1})

	feb, err := a.Compute(context.Background(), time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, feb.Records, 1)
	assert.Equal(t, MonthStats{}, a.Current())
}

func TestUpdateSelectedDateAndRecordForDate(t *testing.T) {
	store := memory.New()
	seedJanuary(t, store)
	a := newTestAggregator(store, models.HerdTotals{Cows: 1})

	_, err := a.UpdateSelectedDate(context.Background(), anchor)
	require.NoError(t, err)
	assert.Equal(t, anchor, a.SelectedDate())

	r, ok := a.RecordForDate(time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.True(t, r.IsCompleted)

	_, ok = a.RecordForDate(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestCompletionRateIsMonotonic(t *testing.T) {
	assert.Zero(t, CompletionRate(0, 0))
	assert.Equal(t, 100.0, CompletionRate(4, 4))
	for total := 1; total <= 10; total++ {
		prev := -1.0
		for completed := 0; completed <= total; completed++ {
			rate := CompletionRate(completed, total)
			assert.Greater(t, rate, prev)
			assert.LessOrEqual(t, rate, 100.0)
			prev = rate
		}
	}
}

func TestSubscribeReloadsOnRecordUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	a := newTestAggregator(store, models.HerdTotals{Cows: 1})
	_, err := a.UpdateSelectedDate(ctx, anchor)
	require.NoError(t, err)
	require.Empty(t, a.Current().Records)

	bus := events.NewBus(nil)
	defer a.Subscribe(bus)()

	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-07", Milk: 3}))
	bus.Publish(events.RecordUpdated, "2024-01-07")

	require.Len(t, a.Current().Records, 1)
	assert.Equal(t, "2024-01-07", a.Current().Records[0].Day)
}
