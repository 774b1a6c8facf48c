// Package completion decides whether a day's record satisfies the goal of the same day
// and repairs stored completion flags that no longer agree with their goals.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

// Evaluate reports whether every product of the record meets the goal. A missing goal,
// or a goal of another day, never completes the record.
func Evaluate(record models.DailyRecord, goal *models.DailyGoal) bool {
	if goal == nil || goal.Day != record.Day {
		return false
	}
	return record.Milk >= goal.Milk &&
		record.Eggs >= goal.Eggs &&
		record.Wool >= goal.Wool
}

// GoalLookup fetches the stored goal of a day.
type GoalLookup interface {
	GetGoal(ctx context.Context, day string) (models.DailyGoal, error)
}

// EvaluateStored evaluates the record against the stored goal of its day.
func EvaluateStored(ctx context.Context, goals GoalLookup, record models.DailyRecord) (bool, error) {
	goal, err := goals.GetGoal(ctx, record.Day)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load goal %s: %w", record.Day, err)
	}
	return Evaluate(record, &goal), nil
}

// Diff recomputes the flag of every record against goals keyed by day and returns the
// records whose stored flag is stale, carrying the corrected value. Input is not modified.
func Diff(records []models.DailyRecord, goals map[string]models.DailyGoal) []models.DailyRecord {
	var changed []models.DailyRecord
	for _, r := range records {
		var goal *models.DailyGoal
		if g, ok := goals[r.Day]; ok {
			goal = &g
		}
		if completed := Evaluate(r, goal); completed != r.IsCompleted {
			r.IsCompleted = completed
			changed = append(changed, r)
		}
	}
	return changed
}
