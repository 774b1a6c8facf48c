package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/service/plan"
	"github.com/mamadbah2/herdsync/internal/service/statistics"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const monthLayout = "2006-01"

// RecordWriter stores production quantities.
type RecordWriter interface {
	SetProduct(ctx context.Context, day string, product models.ProductType, value float64) (models.DailyRecord, error)
}

// GoalWriter stores daily goals.
type GoalWriter interface {
	SaveGoals(ctx context.Context, day string, milk, eggs, wool float64) (models.DailyGoal, error)
}

// PlanReader builds day plans.
type PlanReader interface {
	PlanFor(ctx context.Context, day string) (plan.DayPlan, error)
}

// StatisticsReader loads month statistics.
type StatisticsReader interface {
	UpdateSelectedDate(ctx context.Context, date time.Time) (statistics.MonthStats, error)
}

// Dispatcher executes parsed text commands against the core services.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	records RecordWriter
	goals   GoalWriter
	plans   PlanReader
	stats   StatisticsReader
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(records RecordWriter, goals GoalWriter, plans PlanReader, stats StatisticsReader, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		records: records,
		goals:   goals,
		plans:   plans,
		stats:   stats,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleCommand runs the command and returns the reply text.
//
//	/milk 40 [YYYY-MM-DD]      /eggs 15        /wool 1.5
//	/goals 40 15 1 [YYYY-MM-DD]
//	/plan [YYYY-MM-DD]         /stats [YYYY-MM]
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandMilk, models.CommandEggs, models.CommandWool:
		product, _ := cmd.Product()
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		value, err := parseQuantity(cmd.Args[0])
		if err != nil {
			return "", ErrInvalidArguments
		}
		day, err := s.dayArg(cmd.Args, 1)
		if err != nil {
			return "", err
		}
		record, err := s.records.SetProduct(ctx, day, product, value)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("%s recorded for %s: %s.", product, day, formatValue(record.Actual(product)))
		if record.IsCompleted {
			message += " All goals reached for the day."
		}
		return message, nil
	case models.CommandGoals:
		if len(cmd.Args) < 3 {
			return "", ErrInvalidArguments
		}
		var values [3]float64
		for i := range values {
			v, err := parseQuantity(cmd.Args[i])
			if err != nil {
				return "", ErrInvalidArguments
			}
			values[i] = v
		}
		day, err := s.dayArg(cmd.Args, 3)
		if err != nil {
			return "", err
		}
		goal, err := s.goals.SaveGoals(ctx, day, values[0], values[1], values[2])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Goals saved for %s: milk %s, eggs %d, wool %s.", day, formatValue(goal.Milk), goal.Eggs, formatValue(goal.Wool)), nil
	case models.CommandPlan:
		day, err := s.dayArg(cmd.Args, 0)
		if err != nil {
			return "", err
		}
		p, err := s.plans.PlanFor(ctx, day)
		if err != nil {
			return "", err
		}
		lines := []string{fmt.Sprintf("Plan for %s:", day)}
		for _, product := range p.Products {
			lines = append(lines, fmt.Sprintf("%s %s/%s (%.0f%%)", product.Type, formatValue(product.Actual), formatValue(product.Required), product.Progress()*100))
		}
		return strings.Join(lines, "\n"), nil
	case models.CommandStats:
		anchor := s.now().In(s.loc)
		if len(cmd.Args) > 0 {
			t, err := time.ParseInLocation(monthLayout, cmd.Args[0], s.loc)
			if err != nil {
				return "", ErrInvalidArguments
			}
			anchor = t
		}
		stats, err := s.stats.UpdateSelectedDate(ctx, anchor)
		if err != nil {
			return "", err
		}
		if !stats.HasHerds {
			return fmt.Sprintf("Statistics %s: no productive herds yet.", stats.Month.Label()), nil
		}
		return fmt.Sprintf("Statistics %s: %d of %d days completed (%.0f%%).", stats.Month.Label(), stats.Completed, len(stats.Records), stats.CompletionRate), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// dayArg reads an optional day at args[idx], defaulting to today.
func (s *Service) dayArg(args []string, idx int) (string, error) {
	if len(args) <= idx {
		return models.DayOf(s.now(), s.loc), nil
	}
	if err := models.ValidateDay(args[idx]); err != nil {
		return "", ErrInvalidArguments
	}
	return args[idx], nil
}

func parseQuantity(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
