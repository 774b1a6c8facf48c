package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/config"
	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/service/completion"
	"github.com/mamadbah2/herdsync/internal/service/reporting"
	"github.com/mamadbah2/herdsync/pkg/clients/webhook"
)

// Reconciler repairs the completion flags of a month.
type Reconciler interface {
	Reconcile(ctx context.Context, month models.Month) (completion.Result, error)
}

// Summarizer builds the month-end summary.
type Summarizer interface {
	MonthlySummary(ctx context.Context, anchor time.Time) (reporting.MonthlySummary, error)
}

// RowAppender receives the summary row, typically a spreadsheet.
type RowAppender interface {
	AppendRow(ctx context.Context, values []interface{}) error
}

// Options groups the scheduler collaborators. Sheet and Webhook are optional.
type Options struct {
	Reconciler Reconciler
	Summarizer Summarizer
	Sheet      RowAppender
	Webhook    webhook.Client
	Lock       sync.Locker
	Location   *time.Location
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	cfg    config.SchedulerConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured calendar.
func NewScheduler(cfg config.SchedulerConfig, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Lock == nil {
		opts.Lock = &sync.Mutex{}
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(opts.Location)),
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reconcile_schedule", s.cfg.ReconcileSchedule),
		zap.String("report_schedule", s.cfg.ReportSchedule))

	if _, err := s.cron.AddFunc(s.cfg.ReconcileSchedule, s.reconcileCurrentMonth); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.ReportSchedule, s.reportMonthEnd); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reconcileCurrentMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.RunReconcile(ctx); err != nil {
		s.logger.Error("scheduled reconcile failed", zap.Error(err))
	}
}

func (s *Scheduler) reportMonthEnd() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := s.now().In(s.opts.Location)
	if now.AddDate(0, 0, 1).Day() != 1 {
		s.logger.Debug("not the last day of the month, skipping report")
		return
	}

	if err := s.RunReport(ctx, now); err != nil {
		s.logger.Error("month-end report failed", zap.Error(err))
	}
}

// RunReconcile repairs the month containing the current time.
func (s *Scheduler) RunReconcile(ctx context.Context) (completion.Result, error) {
	s.opts.Lock.Lock()
	defer s.opts.Lock.Unlock()

	month := models.MonthOf(s.now(), s.opts.Location)
	result, err := s.opts.Reconciler.Reconcile(ctx, month)
	if err != nil {
		return completion.Result{}, err
	}

	s.logger.Info("scheduled reconcile finished",
		zap.String("month", month.Label()),
		zap.Int("examined", result.Examined),
		zap.Int("changed", result.Changed))
	return result, nil
}

// RunReport builds the summary of anchor's month and publishes it to the
// configured sinks. Failures of individual sinks are joined.
func (s *Scheduler) RunReport(ctx context.Context, anchor time.Time) error {
	s.opts.Lock.Lock()
	summary, err := s.opts.Summarizer.MonthlySummary(ctx, anchor)
	s.opts.Lock.Unlock()
	if err != nil {
		return err
	}

	var errs []error
	if s.opts.Sheet != nil {
		if err := s.opts.Sheet.AppendRow(ctx, summary.Row()); err != nil {
			errs = append(errs, err)
		}
	}
	if s.opts.Webhook != nil {
		payload := webhook.Payload{Kind: "monthly_summary", Text: summary.Text(), Data: summary}
		if err := s.opts.Webhook.Post(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("month-end report published",
		zap.String("month", summary.Month),
		zap.Int("completed_days", summary.CompletedDays))
	return nil
}
