package goals

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository"
)

const (
	milkPerCow     = 20
	eggsPerChicken = 5
	woolPerSheep   = 2

	// minimumGoal keeps every product goal above zero so a day with no animals of a
	// type is never trivially complete for that product.
	minimumGoal = 1.0
)

// HerdSource exposes the current herd composition.
type HerdSource interface {
	List() []models.Herd
}

// Service derives and stores daily production goals.
type Service struct {
	repo   repository.GoalRepository
	herds  HerdSource
	bus    events.Publisher
	logger *zap.Logger
}

// NewService wires a goal service.
func NewService(repo repository.GoalRepository, herds HerdSource, bus events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, herds: herds, bus: bus, logger: logger}
}

// DefaultGoalsFor computes the goal implied by the herd composition. The returned goal
// has no day set.
func DefaultGoalsFor(herds []models.Herd) models.DailyGoal {
	totals := models.Totals(herds)
	return models.DailyGoal{
		Milk: max(minimumGoal, float64(totals.Cows)*milkPerCow),
		Eggs: models.EggCount(max(minimumGoal, float64(totals.Chickens)*eggsPerChicken)),
		Wool: max(minimumGoal, float64(totals.Sheep)*woolPerSheep),
	}
}

// Defaults computes the default goal from the current herds.
func (s *Service) Defaults() models.DailyGoal {
	return DefaultGoalsFor(s.herds.List())
}

// GoalFor returns the stored goal of the day, or the computed default when none was
// saved. The default is not persisted. The boolean reports whether the goal is stored.
func (s *Service) GoalFor(ctx context.Context, day string) (models.DailyGoal, bool, error) {
	if err := models.ValidateDay(day); err != nil {
		return models.DailyGoal{}, false, err
	}

	goal, err := s.repo.GetGoal(ctx, day)
	switch {
	case err == nil:
		return goal, true, nil
	case errors.Is(err, repository.ErrNotFound):
		goal = s.Defaults()
		goal.Day = day
		return goal, false, nil
	default:
		s.logger.Error("failed to load goal", zap.String("day", day), zap.Error(err))
		return models.DailyGoal{}, false, fmt.Errorf("load goal %s: %w", day, err)
	}
}

// SaveGoals stores the goal of the day, creating it when absent. Each quantity is
// raised to at least 1 and eggs are truncated to a whole count no larger than
// models.MaxEggs.
func (s *Service) SaveGoals(ctx context.Context, day string, milk, eggs, wool float64) (models.DailyGoal, error) {
	if err := models.ValidateDay(day); err != nil {
		return models.DailyGoal{}, err
	}

	goal := models.DailyGoal{
		Day:  day,
		Milk: clamp(milk),
		Eggs: models.EggCount(clamp(eggs)),
		Wool: clamp(wool),
	}

	if err := s.repo.UpsertGoal(ctx, goal); err != nil {
		s.logger.Error("failed to save goals", zap.String("day", day), zap.Error(err))
		return models.DailyGoal{}, fmt.Errorf("save goals %s: %w", day, err)
	}

	s.logger.Info("goals saved",
		zap.String("day", day),
		zap.Float64("milk", goal.Milk),
		zap.Int("eggs", goal.Eggs),
		zap.Float64("wool", goal.Wool))

	if s.bus != nil {
		s.bus.Publish(events.RecordUpdated, day)
	}
	return goal, nil
}

// clamp also maps non-finite values to the minimum, since max(1, NaN) would keep NaN.
func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < minimumGoal {
		return minimumGoal
	}
	return v
}
