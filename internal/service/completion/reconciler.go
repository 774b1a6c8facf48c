package completion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

// Store is the storage needed by the reconciler.
type Store interface {
	ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	ListGoals(ctx context.Context, from, to string) ([]models.DailyGoal, error)
	SaveCompletions(ctx context.Context, records []models.DailyRecord) error
}

var _ Store = (repository.Repository)(nil)

// Result summarizes one reconciliation pass.
type Result struct {
	Month    models.Month `json:"month"`
	Examined int          `json:"examined"`
	Changed  int          `json:"changed"`
}

// Reconciler re-establishes the completion flags of a month bucket. Running it twice
// without intervening writes changes nothing the second time.
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler constructs a reconciler.
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile recomputes every record of the month and writes back only stale flags.
func (r *Reconciler) Reconcile(ctx context.Context, month models.Month) (Result, error) {
	result := Result{Month: month}

	records, err := r.store.ListRecords(ctx, month.Start, month.End)
	if err != nil {
		r.logger.Error("failed to list records for reconciliation", zap.String("month", month.Label()), zap.Error(err))
		return result, fmt.Errorf("list records: %w", err)
	}
	result.Examined = len(records)
	if len(records) == 0 {
		return result, nil
	}

	goals, err := r.store.ListGoals(ctx, month.Start, month.End)
	if err != nil {
		r.logger.Error("failed to list goals for reconciliation", zap.String("month", month.Label()), zap.Error(err))
		return result, fmt.Errorf("list goals: %w", err)
	}
	byDay := make(map[string]models.DailyGoal, len(goals))
	for _, g := range goals {
		byDay[g.Day] = g
	}

	changed := Diff(records, byDay)
	if len(changed) == 0 {
		return result, nil
	}

	if err := r.store.SaveCompletions(ctx, changed); err != nil {
		r.logger.Error("failed to persist repaired completion flags", zap.String("month", month.Label()), zap.Error(err))
		return result, fmt.Errorf("save completions: %w", err)
	}
	result.Changed = len(changed)

	r.logger.Info("completion flags repaired",
		zap.String("month", month.Label()),
		zap.Int("examined", result.Examined),
		zap.Int("changed", result.Changed))
	return result, nil
}
