package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/service/statistics"
)

// MonthComputer produces repaired statistics for a month without changing any view.
type MonthComputer interface {
	Compute(ctx context.Context, anchor time.Time) (statistics.MonthStats, error)
}

// MonthlySummary aggregates one month of production.
type MonthlySummary struct {
	Month          string    `json:"month"`
	Days           int       `json:"days"`
	CompletedDays  int       `json:"completed_days"`
	CompletionRate float64   `json:"completion_rate"`
	Milk           float64   `json:"milk"`
	Eggs           int       `json:"eggs"`
	Wool           float64   `json:"wool"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Row renders the summary as one spreadsheet row.
func (m MonthlySummary) Row() []interface{} {
	return []interface{}{m.Month, m.Days, m.CompletedDays, m.CompletionRate, m.Milk, m.Eggs, m.Wool}
}

// Text renders the summary as a short human readable message.
func (m MonthlySummary) Text() string {
	if m.Days == 0 {
		return fmt.Sprintf("Production summary %s: no records yet.", m.Month)
	}
	return fmt.Sprintf("Production summary %s: %d of %d days completed (%.2f%%). Milk %.1f L, eggs %d, wool %.1f kg.",
		m.Month, m.CompletedDays, m.Days, m.CompletionRate, m.Milk, m.Eggs, m.Wool)
}

// Service builds monthly production summaries.
type Service struct {
	stats  MonthComputer
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(stats MonthComputer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stats: stats, logger: logger, now: time.Now}
}

// MonthlySummary computes the summary of the month containing anchor.
func (s *Service) MonthlySummary(ctx context.Context, anchor time.Time) (MonthlySummary, error) {
	stats, err := s.stats.Compute(ctx, anchor)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("compute statistics: %w", err)
	}

	summary := MonthlySummary{
		Month:          stats.Month.Label(),
		Days:           len(stats.Records),
		CompletedDays:  stats.Completed,
		CompletionRate: math.Round(stats.CompletionRate*100) / 100,
		GeneratedAt:    s.now().UTC(),
	}
	for _, r := range stats.Records {
		summary.Milk += r.Milk
		summary.Eggs += r.Eggs
		summary.Wool += r.Wool
	}

	s.logger.Debug("monthly summary built",
		zap.String("month", summary.Month),
		zap.Int("days", summary.Days),
		zap.Float64("completion_rate", summary.CompletionRate))
	return summary, nil
}
