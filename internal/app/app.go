// Package app is the root context: it opens storage and constructs every service once
// per process.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/config"
	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository"
	"github.com/mamadbah2/herdsync/internal/repository/memory"
	"github.com/mamadbah2/herdsync/internal/repository/mongodb"
	"github.com/mamadbah2/herdsync/internal/repository/sqlite"
	commandsvc "github.com/mamadbah2/herdsync/internal/service/commands"
	"github.com/mamadbah2/herdsync/internal/service/completion"
	"github.com/mamadbah2/herdsync/internal/service/goals"
	"github.com/mamadbah2/herdsync/internal/service/herds"
	"github.com/mamadbah2/herdsync/internal/service/maintenance"
	"github.com/mamadbah2/herdsync/internal/service/plan"
	"github.com/mamadbah2/herdsync/internal/service/records"
	reportingsvc "github.com/mamadbah2/herdsync/internal/service/reporting"
	"github.com/mamadbah2/herdsync/internal/service/statistics"
)

// App holds the constructed services. Core operations are expected to run one at a
// time; callers serialize them through the Locker.
type App struct {
	Repo        repository.Repository
	Bus         *events.Bus
	Location    *time.Location
	Herds       *herds.Registry
	Goals       *goals.Service
	Records     *records.Service
	Plans       *plan.Planner
	Reconciler  *completion.Reconciler
	Statistics  *statistics.Aggregator
	Maintenance *maintenance.Service
	Reporting   *reportingsvc.Service
	Commands    *commandsvc.Service

	mu          sync.Mutex
	unsubscribe []func()
	logger      *zap.Logger
	now         func() time.Time
}

// OpenRepository opens the storage backend selected by the configuration.
func OpenRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Storage.SQLitePath, logger.Named("repo.sqlite"))
	case config.DriverMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// New opens storage and wires the services.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	a, err := Wire(ctx, repo, loc, logger)
	if err != nil {
		_ = repo.Close(ctx)
		return nil, err
	}
	return a, nil
}

// Wire constructs the services on an already opened repository.
func Wire(ctx context.Context, repo repository.Repository, loc *time.Location, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	bus := events.NewBus(logger.Named("events"))

	registry := herds.NewRegistry(repo, logger.Named("svc.herds"))
	if err := registry.Load(ctx); err != nil {
		return nil, err
	}

	goalSvc := goals.NewService(repo, registry, bus, logger.Named("svc.goals"))
	recordSvc := records.NewService(repo, repo, bus, logger.Named("svc.records"))
	reconciler := completion.NewReconciler(repo, logger.Named("svc.completion"))
	aggregator := statistics.NewAggregator(registry, reconciler, repo, loc, logger.Named("svc.statistics"))
	planner := plan.NewPlanner(goalSvc, recordSvc)

	a := &App{
		Repo:        repo,
		Bus:         bus,
		Location:    loc,
		Herds:       registry,
		Goals:       goalSvc,
		Records:     recordSvc,
		Plans:       planner,
		Reconciler:  reconciler,
		Statistics:  aggregator,
		Maintenance: maintenance.NewService(repo, bus, logger.Named("svc.maintenance")),
		Reporting:   reportingsvc.NewService(aggregator, logger.Named("svc.reporting")),
		Commands:    commandsvc.NewService(recordSvc, goalSvc, planner, aggregator, loc, logger.Named("svc.commands")),
		logger:      logger,
		now:         time.Now,
	}

	// Subscription order is delivery order: the registry reloads before the
	// aggregator recomputes on reset.
	a.unsubscribe = append(a.unsubscribe, registry.Subscribe(bus), aggregator.Subscribe(bus))

	if _, err := aggregator.Reload(ctx); err != nil {
		logger.Warn("initial statistics load failed", zap.Error(err))
	}
	return a, nil
}

// Now returns the current time in the configured calendar.
func (a *App) Now() time.Time {
	return a.now().In(a.Location)
}

// Today returns the current day key in the configured calendar.
func (a *App) Today() string {
	return a.Day(a.now())
}

// Day truncates t to its day key in the configured calendar.
func (a *App) Day(t time.Time) string {
	return models.DayOf(t, a.Location)
}

// Lock and Unlock serialize core operations across HTTP handlers and scheduled jobs.
func (a *App) Lock()   { a.mu.Lock() }
func (a *App) Unlock() { a.mu.Unlock() }

// Close detaches observers and releases storage.
func (a *App) Close(ctx context.Context) error {
	for _, fn := range a.unsubscribe {
		fn()
	}
	return a.Repo.Close(ctx)
}
