package sqlite

import (
	"context"
	"fmt"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

func (s *Store) ListHerds(ctx context.Context) ([]models.Herd, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, cows, chickens, sheep, goats, created_at
		 FROM herds ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list herds: %w", err)
	}
	defer rows.Close()

	var herds []models.Herd
	for rows.Next() {
		var h models.Herd
		var createdAt string
		if err := rows.Scan(&h.ID, &h.Name, &h.Cows, &h.Chickens, &h.Sheep, &h.Goats, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = parseTime(createdAt)
		herds = append(herds, h)
	}
	return herds, rows.Err()
}

func (s *Store) InsertHerd(ctx context.Context, h models.Herd) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO herds (id, name, cows, chickens, sheep, goats, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Cows, h.Chickens, h.Sheep, h.Goats, formatTime(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert herd: %w", err)
	}
	return nil
}

func (s *Store) UpdateHerd(ctx context.Context, h models.Herd) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE herds SET name = ?, cows = ?, chickens = ?, sheep = ?, goats = ? WHERE id = ?`,
		h.Name, h.Cows, h.Chickens, h.Sheep, h.Goats, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update herd %s: %w", h.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update herd %s: %w", h.ID, repository.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteHerd(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM herds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete herd %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete herd %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
