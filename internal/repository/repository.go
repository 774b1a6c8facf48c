// Package repository defines the persistence contract shared by the storage backends.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/herdsync/internal/domain/models"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// HerdRepository persists herd definitions.
type HerdRepository interface {
	ListHerds(ctx context.Context) ([]models.Herd, error)
	InsertHerd(ctx context.Context, herd models.Herd) error
	UpdateHerd(ctx context.Context, herd models.Herd) error
	DeleteHerd(ctx context.Context, id string) error
}

// GoalRepository persists daily goals keyed by day.
type GoalRepository interface {
	GetGoal(ctx context.Context, day string) (models.DailyGoal, error)
	UpsertGoal(ctx context.Context, goal models.DailyGoal) error
	// ListGoals returns goals with from <= day < to in ascending day order.
	ListGoals(ctx context.Context, from, to string) ([]models.DailyGoal, error)
}

// RecordRepository persists daily production records keyed by day.
type RecordRepository interface {
	GetRecord(ctx context.Context, day string) (models.DailyRecord, error)
	UpsertRecord(ctx context.Context, record models.DailyRecord) error
	// ListRecords returns records with from <= day < to, most recent first.
	ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	// SaveCompletions writes the IsCompleted flag of every given record in one
	// unit: either all flags are stored or none are.
	SaveCompletions(ctx context.Context, records []models.DailyRecord) error
}

// Repository is the full storage surface used by the application.
type Repository interface {
	HerdRepository
	GoalRepository
	RecordRepository
	// Reset deletes every herd, goal and record.
	Reset(ctx context.Context) error
	Close(ctx context.Context) error
}
