package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

func (s *Store) GetRecord(ctx context.Context, day string) (models.DailyRecord, error) {
	r := models.DailyRecord{Day: day}
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT milk, eggs, wool, is_completed, updated_at FROM daily_records WHERE day = ?`, day,
	).Scan(&r.Milk, &r.Eggs, &r.Wool, &r.IsCompleted, &updatedAt)
	if notFound(err) {
		return models.DailyRecord{}, repository.ErrNotFound
	}
	if err != nil {
		return models.DailyRecord{}, fmt.Errorf("get record %s: %w", day, err)
	}
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func (s *Store) UpsertRecord(ctx context.Context, r models.DailyRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_records (day, milk, eggs, wool, is_completed, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET milk = excluded.milk, eggs = excluded.eggs, wool = excluded.wool,
		   is_completed = excluded.is_completed, updated_at = excluded.updated_at`,
		r.Day, r.Milk, r.Eggs, r.Wool, r.IsCompleted, formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", r.Day, err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, milk, eggs, wool, is_completed, updated_at
		 FROM daily_records WHERE day >= ? AND day < ? ORDER BY day DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var r models.DailyRecord
		var updatedAt string
		if err := rows.Scan(&r.Day, &r.Milk, &r.Eggs, &r.Wool, &r.IsCompleted, &updatedAt); err != nil {
			return nil, err
		}
		r.UpdatedAt = parseTime(updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) SaveCompletions(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save completions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE daily_records SET is_completed = ? WHERE day = ?`)
	if err != nil {
		return fmt.Errorf("prepare save completions: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		res, err := stmt.ExecContext(ctx, r.IsCompleted, r.Day)
		if err != nil {
			return fmt.Errorf("save completion %s: %w", r.Day, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("save completion %s: %w", r.Day, repository.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save completions: %w", err)
	}
	s.logger.Debug("completion flags saved", zap.Int("records", len(records)))
	return nil
}
