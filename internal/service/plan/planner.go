package plan

import (
	"context"
	"fmt"

	"github.com/mamadbah2/herdsync/internal/domain/models"
)

// GoalSource resolves the goal of a day, stored or default.
type GoalSource interface {
	GoalFor(ctx context.Context, day string) (models.DailyGoal, bool, error)
}

// RecordSource loads the record of a day with a refreshed completion flag.
type RecordSource interface {
	RefreshCompletion(ctx context.Context, day string) (*models.DailyRecord, error)
}

// DayPlan is the progress view of one day.
type DayPlan struct {
	Day           string               `json:"day"`
	Goal          models.DailyGoal     `json:"goal"`
	GoalPersisted bool                 `json:"goal_persisted"`
	Products      []models.ProductPlan `json:"products"`
	Record        *models.DailyRecord  `json:"record,omitempty"`
}

// Completed reports the cached completion of the day's record.
func (p DayPlan) Completed() bool {
	return p.Record != nil && p.Record.IsCompleted
}

// Planner combines goals and records into day plans.
type Planner struct {
	goals   GoalSource
	records RecordSource
}

// NewPlanner constructs a planner.
func NewPlanner(goals GoalSource, records RecordSource) *Planner {
	return &Planner{goals: goals, records: records}
}

// PlanFor builds the milk, eggs and wool plan of the day. Missing records count as zero.
func (p *Planner) PlanFor(ctx context.Context, day string) (DayPlan, error) {
	goal, persisted, err := p.goals.GoalFor(ctx, day)
	if err != nil {
		return DayPlan{}, fmt.Errorf("plan %s: %w", day, err)
	}

	record, err := p.records.RefreshCompletion(ctx, day)
	if err != nil {
		return DayPlan{}, fmt.Errorf("plan %s: %w", day, err)
	}

	actual := models.NewDailyRecord(day)
	if record != nil {
		actual = *record
	}

	plan := DayPlan{
		Day:           day,
		Goal:          goal,
		GoalPersisted: persisted,
		Record:        record,
		Products:      make([]models.ProductPlan, 0, len(models.Products)),
	}
	for _, product := range models.Products {
		plan.Products = append(plan.Products, models.ProductPlan{
			Type:     product,
			Required: goal.Required(product),
			Actual:   actual.Actual(product),
		})
	}
	return plan, nil
}
