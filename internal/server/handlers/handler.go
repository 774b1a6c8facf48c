package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
	commandsvc "github.com/mamadbah2/herdsync/internal/service/commands"
	"github.com/mamadbah2/herdsync/internal/service/completion"
	"github.com/mamadbah2/herdsync/internal/service/herds"
	"github.com/mamadbah2/herdsync/internal/service/plan"
	"github.com/mamadbah2/herdsync/internal/service/records"
	"github.com/mamadbah2/herdsync/internal/service/statistics"
)

// HerdService manages herd definitions.
type HerdService interface {
	List() []models.Herd
	Add(ctx context.Context, in herds.Input) (models.Herd, error)
	Update(ctx context.Context, id string, in herds.Input) (models.Herd, error)
	Delete(ctx context.Context, id string) error
}

// GoalService derives and saves daily goals.
type GoalService interface {
	Defaults() models.DailyGoal
	GoalFor(ctx context.Context, day string) (models.DailyGoal, bool, error)
	SaveGoals(ctx context.Context, day string, milk, eggs, wool float64) (models.DailyGoal, error)
}

// RecordService reads and writes daily records.
type RecordService interface {
	RecordFor(ctx context.Context, day string) (*models.DailyRecord, error)
	SetProduct(ctx context.Context, day string, product models.ProductType, value float64) (models.DailyRecord, error)
	RefreshCompletion(ctx context.Context, day string) (*models.DailyRecord, error)
}

// PlanService builds day plans.
type PlanService interface {
	PlanFor(ctx context.Context, day string) (plan.DayPlan, error)
}

// StatisticsService loads month statistics.
type StatisticsService interface {
	UpdateSelectedDate(ctx context.Context, date time.Time) (statistics.MonthStats, error)
	Reload(ctx context.Context) (statistics.MonthStats, error)
}

// ReconcileService repairs completion flags of a month.
type ReconcileService interface {
	Reconcile(ctx context.Context, month models.Month) (completion.Result, error)
}

// ResetService wipes the data set.
type ResetService interface {
	ResetAll(ctx context.Context) error
}

// Services groups the core collaborators used by the HTTP layer.
type Services struct {
	Herds      HerdService
	Goals      GoalService
	Records    RecordService
	Plans      PlanService
	Statistics StatisticsService
	Reconciler ReconcileService
	Reset      ResetService
	Commands   commandsvc.Dispatcher
}

// Handler adapts the core services to HTTP.
type Handler struct {
	svc    Services
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler constructs the HTTP handler adapter.
func NewHandler(svc Services, loc *time.Location, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{svc: svc, loc: loc, logger: logger, now: time.Now}
}

// resolveDay accepts "today" or a YYYY-MM-DD key.
func (h *Handler) resolveDay(value string) (string, error) {
	if value == "" || strings.EqualFold(value, "today") {
		return models.DayOf(h.now(), h.loc), nil
	}
	if err := models.ValidateDay(value); err != nil {
		return "", err
	}
	return value, nil
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	} else {
		h.logger.Warn(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, herds.ErrInvalidHerd),
		errors.Is(err, records.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidDay),
		errors.Is(err, models.ErrUnknownProduct),
		errors.Is(err, commandsvc.ErrInvalidArguments),
		errors.Is(err, commandsvc.ErrUnsupportedCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
