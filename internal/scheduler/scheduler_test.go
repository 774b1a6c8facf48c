package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/herdsync/internal/config"
	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/service/completion"
	"github.com/mamadbah2/herdsync/internal/service/reporting"
	"github.com/mamadbah2/herdsync/pkg/clients/webhook"
)

type fakeReconciler struct {
	months []models.Month
}

func (f *fakeReconciler) Reconcile(_ context.Context, month models.Month) (completion.Result, error) {
	f.months = append(f.months, month)
	return completion.Result{Month: month, Examined: 3, Changed: 1}, nil
}

type fakeSummarizer struct {
	anchors []time.Time
}

func (f *fakeSummarizer) MonthlySummary(_ context.Context, anchor time.Time) (reporting.MonthlySummary, error) {
	f.anchors = append(f.anchors, anchor)
	return reporting.MonthlySummary{Month: models.MonthOf(anchor, time.UTC).Label(), Days: 2, CompletedDays: 1}, nil
}

type fakeSheet struct {
	rows [][]interface{}
	err  error
}

func (f *fakeSheet) AppendRow(_ context.Context, values []interface{}) error {
	f.rows = append(f.rows, values)
	return f.err
}

type fakeWebhook struct {
	payloads []webhook.Payload
}

func (f *fakeWebhook) Post(_ context.Context, p webhook.Payload) error {
	f.payloads = append(f.payloads, p)
	return nil
}

type countingLock struct {
	sync.Mutex
	locks int
}

func (c *countingLock) Lock() {
	c.Mutex.Lock()
	c.locks++
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{ReconcileSchedule: "5 0 * * *", ReportSchedule: "0 21 * * *", Timezone: "UTC"}
}

func TestRunReconcileUsesCurrentMonthUnderLock(t *testing.T) {
	rec := &fakeReconciler{}
	lock := &countingLock{}
	s := NewScheduler(testConfig(), Options{Reconciler: rec, Lock: lock, Location: time.UTC}, nil)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 0, 5, 0, 0, time.UTC) }

	result, err := s.RunReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Changed)
	assert.Equal(t, []models.Month{{Start: "2024-03-01", End: "2024-04-01"}}, rec.months)
	assert.Equal(t, 1, lock.locks)
}

func TestReportMonthEndOnlyOnLastDay(t *testing.T) {
	sum := &fakeSummarizer{}
	sheet := &fakeSheet{}
	hook := &fakeWebhook{}
	s := NewScheduler(testConfig(), Options{Summarizer: sum, Sheet: sheet, Webhook: hook, Location: time.UTC}, nil)

	s.now = func() time.Time { return time.Date(2024, 2, 28, 21, 0, 0, 0, time.UTC) }
	s.reportMonthEnd()
	assert.Empty(t, sum.anchors, "2024 is a leap year")

	s.now = func() time.Time { return time.Date(2024, 2, 29, 21, 0, 0, 0, time.UTC) }
	s.reportMonthEnd()
	require.Len(t, sum.anchors, 1)
	require.Len(t, sheet.rows, 1)
	assert.Equal(t, "2024-02", sheet.rows[0][0])
	require.Len(t, hook.payloads, 1)
	assert.Equal(t, "monthly_summary", hook.payloads[0].Kind)
	assert.Equal(t, "Production summary 2024-02: 1 of 2 days completed (0.00%). Milk 0.0 L, eggs 0, wool 0.0 kg.", hook.payloads[0].Text)
}

func TestRunReportJoinsSinkErrors(t *testing.T) {
	hook := &fakeWebhook{}
	s := NewScheduler(testConfig(), Options{
		Summarizer: &fakeSummarizer{},
		Sheet:      &fakeSheet{err: errors.New("quota exceeded")},
		Webhook:    hook,
		Location:   time.UTC,
	}, nil)

	err := s.RunReport(context.Background(), time.Date(2024, 1, 31, 21, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Len(t, hook.payloads, 1, "webhook still receives the summary")
}

func TestRunReportWithoutSinks(t *testing.T) {
	s := NewScheduler(testConfig(), Options{Summarizer: &fakeSummarizer{}}, nil)
	assert.NoError(t, s.RunReport(context.Background(), time.Now()))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.ReportSchedule = "whenever"
	s := NewScheduler(cfg, Options{Reconciler: &fakeReconciler{}, Summarizer: &fakeSummarizer{}}, nil)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewScheduler(testConfig(), Options{Reconciler: &fakeReconciler{}, Summarizer: &fakeSummarizer{}}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
