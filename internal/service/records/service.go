package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository"
	"github.com/mamadbah2/herdsync/internal/service/completion"
)

// ErrInvalidQuantity indicates a negative, non-finite or unrepresentable production value.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Service owns the daily production records.
type Service struct {
	records repository.RecordRepository
	goals   completion.GoalLookup
	bus     events.Publisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a record service.
func NewService(records repository.RecordRepository, goals completion.GoalLookup, bus events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records: records,
		goals:   goals,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

// RecordFor returns the record of the day, or nil when nothing was logged yet.
func (s *Service) RecordFor(ctx context.Context, day string) (*models.DailyRecord, error) {
	if err := models.ValidateDay(day); err != nil {
		return nil, err
	}

	record, err := s.records.GetRecord(ctx, day)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to load record", zap.String("day", day), zap.Error(err))
		return nil, fmt.Errorf("load record %s: %w", day, err)
	}
	return &record, nil
}

// SetProduct overwrites one product quantity of the day, creating the record when
// absent, and refreshes its completion flag against the stored goal of that day.
func (s *Service) SetProduct(ctx context.Context, day string, product models.ProductType, value float64) (models.DailyRecord, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return models.DailyRecord{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, value)
	}
	if product == models.ProductEggs && value > models.MaxEggs {
		return models.DailyRecord{}, fmt.Errorf("%w: %v eggs exceeds %d", ErrInvalidQuantity, value, models.MaxEggs)
	}

	existing, err := s.RecordFor(ctx, day)
	if err != nil {
		return models.DailyRecord{}, err
	}

	record := models.NewDailyRecord(day)
	if existing != nil {
		record = *existing
	}
	if err := record.Set(product, value); err != nil {
		return models.DailyRecord{}, err
	}

	completed, err := completion.EvaluateStored(ctx, s.goals, record)
	if err != nil {
		s.logger.Error("failed to evaluate completion", zap.String("day", day), zap.Error(err))
		return models.DailyRecord{}, err
	}
	record.IsCompleted = completed
	if existing == nil || record != *existing {
		record.UpdatedAt = s.now().UTC()
	}

	if err := s.records.UpsertRecord(ctx, record); err != nil {
		s.logger.Error("failed to save record",
			zap.String("day", day),
			zap.String("product", string(product)),
			zap.Error(err))
		return models.DailyRecord{}, fmt.Errorf("save record %s: %w", day, err)
	}

	s.logger.Info("production recorded",
		zap.String("day", day),
		zap.String("product", string(product)),
		zap.Float64("value", value),
		zap.Bool("completed", record.IsCompleted))

	if s.bus != nil {
		s.bus.Publish(events.RecordUpdated, day)
	}
	return record, nil
}

// RefreshCompletion re-evaluates the stored record of the day and persists the flag
// only when it changed. It returns nil when the day has no record.
func (s *Service) RefreshCompletion(ctx context.Context, day string) (*models.DailyRecord, error) {
	record, err := s.RecordFor(ctx, day)
	if err != nil || record == nil {
		return record, err
	}

	completed, err := completion.EvaluateStored(ctx, s.goals, *record)
	if err != nil {
		return nil, err
	}
	if completed == record.IsCompleted {
		return record, nil
	}

	record.IsCompleted = completed
	if err := s.records.SaveCompletions(ctx, []models.DailyRecord{*record}); err != nil {
		s.logger.Error("failed to refresh completion", zap.String("day", day), zap.Error(err))
		return nil, fmt.Errorf("refresh completion %s: %w", day, err)
	}
	return record, nil
}
