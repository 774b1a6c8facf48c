package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/service/completion"
)

// HerdSource exposes the current herd totals.
type HerdSource interface {
	Totals() models.HerdTotals
}

// Reconciler repairs stale completion flags of a month.
type Reconciler interface {
	Reconcile(ctx context.Context, month models.Month) (completion.Result, error)
}

// RecordLister reads the records of a day range, most recent first.
type RecordLister interface {
	ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error)
}

// MonthStats is the statistics view of one month bucket.
type MonthStats struct {
	SelectedDate   time.Time            `json:"selected_date"`
	Month          models.Month         `json:"month"`
	HasHerds       bool                 `json:"has_herds"`
	Records        []models.DailyRecord `json:"records"`
	Completed      int                  `json:"completed"`
	CompletionRate float64              `json:"completion_rate"`
	Repaired       int                  `json:"repaired"`
}

// Aggregator loads month statistics, repairing completion flags before aggregating.
// It caches the last successful view; a failed load keeps the previous one.
type Aggregator struct {
	herds      HerdSource
	reconciler Reconciler
	records    RecordLister
	loc        *time.Location
	logger     *zap.Logger

	mu       sync.RWMutex
	selected time.Time
	current  MonthStats
}

// NewAggregator constructs an aggregator anchored on now.
func NewAggregator(herds HerdSource, reconciler Reconciler, records RecordLister, loc *time.Location, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{
		herds:      herds,
		reconciler: reconciler,
		records:    records,
		loc:        loc,
		logger:     logger,
		selected:   time.Now().In(loc),
	}
}

// LoadMonth computes the statistics of the month containing anchor and caches them.
func (a *Aggregator) LoadMonth(ctx context.Context, anchor time.Time) (MonthStats, error) {
	stats, err := a.Compute(ctx, anchor)
	if err != nil {
		return MonthStats{}, err
	}
	a.store(stats)
	return stats, nil
}

// Compute runs the repair pass and aggregates the month containing anchor without
// touching the cached view.
func (a *Aggregator) Compute(ctx context.Context, anchor time.Time) (MonthStats, error) {
	month := models.MonthOf(anchor, a.loc)
	stats := MonthStats{
		SelectedDate: anchor,
		Month:        month,
		Records:      []models.DailyRecord{},
	}

	stats.HasHerds = a.herds.Totals().Productive()
	if !stats.HasHerds {
		return stats, nil
	}

	result, err := a.reconciler.Reconcile(ctx, month)
	if err != nil {
		return MonthStats{}, fmt.Errorf("reconcile %s: %w", month.Label(), err)
	}
	stats.Repaired = result.Changed

	records, err := a.records.ListRecords(ctx, month.Start, month.End)
	if err != nil {
		a.logger.Error("failed to reload records after repair", zap.String("month", month.Label()), zap.Error(err))
		return MonthStats{}, fmt.Errorf("list records %s: %w", month.Label(), err)
	}
	if records != nil {
		stats.Records = records
	}

	for _, r := range stats.Records {
		if r.IsCompleted {
			stats.Completed++
		}
	}
	stats.CompletionRate = CompletionRate(stats.Completed, len(stats.Records))

	a.logger.Debug("month statistics loaded",
		zap.String("month", month.Label()),
		zap.Int("records", len(stats.Records)),
		zap.Float64("completion_rate", stats.CompletionRate))
	return stats, nil
}

// UpdateSelectedDate moves the anchor and reloads its month.
func (a *Aggregator) UpdateSelectedDate(ctx context.Context, date time.Time) (MonthStats, error) {
	a.mu.Lock()
	a.selected = date
	a.mu.Unlock()
	return a.LoadMonth(ctx, date)
}

// Reload recomputes the month of the selected date.
func (a *Aggregator) Reload(ctx context.Context) (MonthStats, error) {
	return a.LoadMonth(ctx, a.SelectedDate())
}

// SelectedDate returns the current anchor.
func (a *Aggregator) SelectedDate() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selected
}

// Current returns the last loaded view.
func (a *Aggregator) Current() MonthStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// RecordForDate returns the loaded record of the calendar day of date.
func (a *Aggregator) RecordForDate(date time.Time) (models.DailyRecord, bool) {
	day := models.DayOf(date, a.loc)

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.current.Records {
		if r.Day == day {
			return r, true
		}
	}
	return models.DailyRecord{}, false
}

// Subscribe reloads the selected month on data resets and record updates.
func (a *Aggregator) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(func(evt events.Event) {
		if _, err := a.Reload(context.Background()); err != nil {
			a.logger.Warn("statistics reload failed", zap.String("topic", string(evt.Topic)), zap.Error(err))
		}
	}, events.DataReset, events.RecordUpdated)
}

func (a *Aggregator) store(stats MonthStats) {
	a.mu.Lock()
	a.current = stats
	a.mu.Unlock()
}

// CompletionRate is the completed share in percent, 0 for an empty bucket.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
