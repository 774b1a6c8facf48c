package sqlite

import (
	"context"
	"fmt"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

func (s *Store) GetGoal(ctx context.Context, day string) (models.DailyGoal, error) {
	g := models.DailyGoal{Day: day}
	err := s.db.QueryRowContext(ctx,
		`SELECT milk, eggs, wool FROM daily_goals WHERE day = ?`, day,
	).Scan(&g.Milk, &g.Eggs, &g.Wool)
	if notFound(err) {
		return models.DailyGoal{}, repository.ErrNotFound
	}
	if err != nil {
		return models.DailyGoal{}, fmt.Errorf("get goal %s: %w", day, err)
	}
	return g, nil
}

func (s *Store) UpsertGoal(ctx context.Context, g models.DailyGoal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_goals (day, milk, eggs, wool) VALUES (?, ?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET milk = excluded.milk, eggs = excluded.eggs, wool = excluded.wool`,
		g.Day, g.Milk, g.Eggs, g.Wool,
	)
	if err != nil {
		return fmt.Errorf("upsert goal %s: %w", g.Day, err)
	}
	return nil
}

func (s *Store) ListGoals(ctx context.Context, from, to string) ([]models.DailyGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, milk, eggs, wool FROM daily_goals WHERE day >= ? AND day < ? ORDER BY day`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.DailyGoal
	for rows.Next() {
		var g models.DailyGoal
		if err := rows.Scan(&g.Day, &g.Milk, &g.Eggs, &g.Wool); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
