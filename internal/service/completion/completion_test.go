package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository/memory"
)

func TestEvaluate(t *testing.T) {
	goal := &models.DailyGoal{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1}

	tests := []struct {
		name   string
		record models.DailyRecord
		goal   *models.DailyGoal
		want   bool
	}{
		{"all met", models.DailyRecord{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1}, goal, true},
		{"exceeded", models.DailyRecord{Day: "2024-01-05", Milk: 41, Eggs: 20, Wool: 3}, goal, true},
		{"milk short", models.DailyRecord{Day: "2024-01-05", Milk: 39.9, Eggs: 15, Wool: 1}, goal, false},
		{"eggs short", models.DailyRecord{Day: "2024-01-05", Milk: 40, Eggs: 14, Wool: 1}, goal, false},
		{"no goal", models.DailyRecord{Day: "2024-01-05", Milk: 99, Eggs: 99, Wool: 99}, nil, false},
		{"other day goal", models.DailyRecord{Day: "2024-01-06", Milk: 40, Eggs: 15, Wool: 1}, goal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.record, tt.goal))
		})
	}
}

func TestDiffReturnsOnlyStaleRecords(t *testing.T) {
	records := []models.DailyRecord{
		{Day: "2024-01-03", Milk: 40, Eggs: 15, Wool: 1, IsCompleted: false},
		{Day: "2024-01-02", Milk: 10, IsCompleted: true},
		{Day: "2024-01-01", Milk: 40, Eggs: 15, Wool: 1, IsCompleted: true},
	}
	goals := map[string]models.DailyGoal{
		"2024-01-03": {Day: "2024-01-03", Milk: 40, Eggs: 15, Wool: 1},
		"2024-01-01": {Day: "2024-01-01", Milk: 40, Eggs: 15, Wool: 1},
	}

	got := Diff(records, goals)
	want := []models.DailyRecord{
		{Day: "2024-01-03", Milk: 40, Eggs: 15, Wool: 1, IsCompleted: true},
		{Day: "2024-01-02", Milk: 10, IsCompleted: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Diff mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, records[0].IsCompleted, "input must not be modified")
}

func TestEvaluateStoredWithoutGoal(t *testing.T) {
	ok, err := EvaluateStored(context.Background(), memory.New(), models.DailyRecord{Day: "2024-01-01", Milk: 5})
	require.NoError(t, err)
	assert.False(t, ok)
}

type countingStore struct {
	*memory.Store
	saves int
	fail  error
}

func (c *countingStore) SaveCompletions(ctx context.Context, records []models.DailyRecord) error {
	c.saves++
	if c.fail != nil {
		return c.fail
	}
	return c.Store.SaveCompletions(ctx, records)
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-06", Milk: 40, IsCompleted: true}))
	require.NoError(t, store.UpsertRecord(ctx, models.DailyRecord{Day: "2024-02-01", Milk: 1, IsCompleted: true}))
}

func TestReconcileRepairsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.New()}
	seed(t, store.Store)
	month := models.Month{Start: "2024-01-01", End: "2024-02-01"}
	r := NewReconciler(store, nil)

	result, err := r.Reconcile(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, Result{Month: month, Examined: 2, Changed: 2}, result)
	assert.Equal(t, 1, store.saves)

	fifth, err := store.GetRecord(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.True(t, fifth.IsCompleted)
	sixth, err := store.GetRecord(ctx, "2024-01-06")
	require.NoError(t, err)
	assert.False(t, sixth.IsCompleted)

	outside, err := store.GetRecord(ctx, "2024-02-01")
	require.NoError(t, err)
	assert.True(t, outside.IsCompleted, "records outside the month are untouched")

	result, err = r.Reconcile(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Changed)
	assert.Equal(t, 1, store.saves, "second pass must not write")
}

func TestReconcileEmptyMonth(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	month := models.Month{Start: "2023-01-01", End: "2023-02-01"}

	result, err := NewReconciler(store, nil).Reconcile(context.Background(), month)
	require.NoError(t, err)
	assert.Equal(t, Result{Month: month}, result)
	assert.Zero(t, store.saves)
}

func TestReconcileSaveFailure(t *testing.T) {
	store := &countingStore{Store: memory.New(), fail: errors.New("disk full")}
	seed(t, store.Store)

	_, err := NewReconciler(store, nil).Reconcile(context.Background(), models.Month{Start: "2024-01-01", End: "2024-02-01"})
	require.Error(t, err)

	fifth, err := store.GetRecord(context.Background(), "2024-01-05")
	require.NoError(t, err)
	assert.False(t, fifth.IsCompleted)
}
