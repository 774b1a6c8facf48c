// Package repotest holds the behavioural suite every repository backend must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

// Factory returns an empty repository. Cleanup is registered on t.
type Factory func(t *testing.T) repository.Repository

// Run executes the contract suite against the backend produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Herds", func(t *testing.T) { testHerds(t, newRepo(t)) })
	t.Run("Goals", func(t *testing.T) { testGoals(t, newRepo(t)) })
	t.Run("Records", func(t *testing.T) { testRecords(t, newRepo(t)) })
	t.Run("SaveCompletionsIsAtomic", func(t *testing.T) { testSaveCompletionsAtomic(t, newRepo(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newRepo(t)) })
}

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func testHerds(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	herds, err := repo.ListHerds(ctx)
	require.NoError(t, err)
	assert.Empty(t, herds)

	second := models.Herd{ID: "h2", Name: "Hill", Sheep: 30, CreatedAt: base.Add(time.Hour)}
	first := models.Herd{ID: "h1", Name: "North", Cows: 2, Chickens: 3, CreatedAt: base}
	require.NoError(t, repo.InsertHerd(ctx, second))
	require.NoError(t, repo.InsertHerd(ctx, first))

	herds, err = repo.ListHerds(ctx)
	require.NoError(t, err)
	require.Len(t, herds, 2)
	assert.Equal(t, "h1", herds[0].ID)
	assert.Equal(t, "h2", herds[1].ID)
	assert.True(t, herds[0].CreatedAt.Equal(base))

	first.Name = "North pasture"
	first.Goats = 4
	require.NoError(t, repo.UpdateHerd(ctx, first))

	herds, err = repo.ListHerds(ctx)
	require.NoError(t, err)
	assert.Equal(t, "North pasture", herds[0].Name)
	assert.Equal(t, 4, herds[0].Goats)

	assert.ErrorIs(t, repo.UpdateHerd(ctx, models.Herd{ID: "missing", Name: "x"}), repository.ErrNotFound)

	require.NoError(t, repo.DeleteHerd(ctx, "h2"))
	assert.ErrorIs(t, repo.DeleteHerd(ctx, "h2"), repository.ErrNotFound)

	herds, err = repo.ListHerds(ctx)
	require.NoError(t, err)
	require.Len(t, herds, 1)
	assert.Equal(t, "h1", herds[0].ID)
}

func testGoals(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.GetGoal(ctx, "2024-01-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-02", Milk: 40, Eggs: 15, Wool: 1}))
	require.NoError(t, repo.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-02", Milk: 50, Eggs: 10, Wool: 2}))
	require.NoError(t, repo.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-01", Milk: 1, Eggs: 1, Wool: 1}))
	require.NoError(t, repo.UpsertGoal(ctx, models.DailyGoal{Day: "2024-02-01", Milk: 1, Eggs: 1, Wool: 1}))

	got, err := repo.GetGoal(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, models.DailyGoal{Day: "2024-01-02", Milk: 50, Eggs: 10, Wool: 2}, got)

	goals, err := repo.ListGoals(ctx, "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "2024-01-01", goals[0].Day)
	assert.Equal(t, "2024-01-02", goals[1].Day)
}

func testRecords(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	_, err := repo.GetRecord(ctx, "2024-01-05")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	for _, r := range []models.DailyRecord{
		{Day: "2024-01-03", Milk: 10, UpdatedAt: base},
		{Day: "2024-01-05", Milk: 40, Eggs: 15, Wool: 1, IsCompleted: true, UpdatedAt: base},
		{Day: "2024-01-31", Eggs: 3, UpdatedAt: base},
		{Day: "2024-02-01", Wool: 2, UpdatedAt: base},
	} {
		require.NoError(t, repo.UpsertRecord(ctx, r))
	}

	got, err := repo.GetRecord(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.Milk)
	assert.Equal(t, 15, got.Eggs)
	assert.True(t, got.IsCompleted)
	assert.True(t, got.UpdatedAt.Equal(base))

	require.NoError(t, repo.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-05", Milk: 41, UpdatedAt: base}))
	got, err = repo.GetRecord(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 41.0, got.Milk)
	assert.Zero(t, got.Eggs)
	assert.False(t, got.IsCompleted)

	records, err := repo.ListRecords(ctx, "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	days := make([]string, 0, len(records))
	for _, r := range records {
		days = append(days, r.Day)
	}
	assert.Equal(t, []string{"2024-01-31", "2024-01-05", "2024-01-03"}, days)

	empty, err := repo.ListRecords(ctx, "2023-01-01", "2023-02-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testSaveCompletionsAtomic(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.UpsertRecord(ctx, models.DailyRecord{Day: "2024-03-01", UpdatedAt: base}))
	require.NoError(t, repo.UpsertRecord(ctx, models.DailyRecord{Day: "2024-03-02", UpdatedAt: base}))

	err := repo.SaveCompletions(ctx, []models.DailyRecord{
		{Day: "2024-03-01", IsCompleted: true},
		{Day: "2024-03-09", IsCompleted: true},
	})
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetRecord(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.False(t, got.IsCompleted, "failed batch must not leave partial writes")

	require.NoError(t, repo.SaveCompletions(ctx, []models.DailyRecord{
		{Day: "2024-03-01", IsCompleted: true},
		{Day: "2024-03-02", IsCompleted: true},
	}))
	records, err := repo.ListRecords(ctx, "2024-03-01", "2024-04-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, r.IsCompleted, r.Day)
	}

	assert.NoError(t, repo.SaveCompletions(ctx, nil))
}

func testReset(t *testing.T, repo repository.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.InsertHerd(ctx, models.Herd{ID: "h1", Name: "North", Cows: 1, CreatedAt: base}))
	require.NoError(t, repo.UpsertGoal(ctx, models.DailyGoal{Day: "2024-01-01", Milk: 1, Eggs: 1, Wool: 1}))
	require.NoError(t, repo.UpsertRecord(ctx, models.DailyRecord{Day: "2024-01-01", Milk: 1, UpdatedAt: base}))

	require.NoError(t, repo.Reset(ctx))

	herds, err := repo.ListHerds(ctx)
	require.NoError(t, err)
	assert.Empty(t, herds)

	_, err = repo.GetGoal(ctx, "2024-01-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetRecord(ctx, "2024-01-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
