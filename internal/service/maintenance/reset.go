package maintenance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/events"
)

// Resetter deletes the whole data set.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Service performs data set wide operations.
type Service struct {
	store  Resetter
	bus    events.Publisher
	logger *zap.Logger
}

// NewService wires the maintenance service.
func NewService(store Resetter, bus events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, bus: bus, logger: logger}
}

// ResetAll removes every herd, goal and record and notifies observers.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		s.logger.Error("failed to reset data", zap.Error(err))
		return fmt.Errorf("reset data: %w", err)
	}

	s.logger.Warn("all herds, goals and records deleted")
	if s.bus != nil {
		s.bus.Publish(events.DataReset, "")
	}
	return nil
}
