// Package memory is an in-process implementation of the repository contract. It backs
// the "memory" storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/repository"
)

// Store keeps every entity in maps guarded by a single mutex.
type Store struct {
	mu      sync.RWMutex
	herds   map[string]models.Herd
	goals   map[string]models.DailyGoal
	records map[string]models.DailyRecord
}

var _ repository.Repository = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		herds:   make(map[string]models.Herd),
		goals:   make(map[string]models.DailyGoal),
		records: make(map[string]models.DailyRecord),
	}
}

func (s *Store) ListHerds(_ context.Context) ([]models.Herd, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	herds := make([]models.Herd, 0, len(s.herds))
	for _, h := range s.herds {
		herds = append(herds, h)
	}
	sort.Slice(herds, func(i, j int) bool {
		if herds[i].CreatedAt.Equal(herds[j].CreatedAt) {
			return herds[i].ID < herds[j].ID
		}
		return herds[i].CreatedAt.Before(herds[j].CreatedAt)
	})
	return herds, nil
}

func (s *Store) InsertHerd(_ context.Context, herd models.Herd) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.herds[herd.ID]; exists {
		return fmt.Errorf("insert herd %s: duplicate id", herd.ID)
	}
	s.herds[herd.ID] = herd
	return nil
}

func (s *Store) UpdateHerd(_ context.Context, herd models.Herd) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.herds[herd.ID]
	if !ok {
		return fmt.Errorf("update herd %s: %w", herd.ID, repository.ErrNotFound)
	}
	herd.CreatedAt = existing.CreatedAt
	s.herds[herd.ID] = herd
	return nil
}

func (s *Store) DeleteHerd(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.herds[id]; !ok {
		return fmt.Errorf("delete herd %s: %w", id, repository.ErrNotFound)
	}
	delete(s.herds, id)
	return nil
}

func (s *Store) GetGoal(_ context.Context, day string) (models.DailyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goal, ok := s.goals[day]
	if !ok {
		return models.DailyGoal{}, repository.ErrNotFound
	}
	return goal, nil
}

func (s *Store) UpsertGoal(_ context.Context, goal models.DailyGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[goal.Day] = goal
	return nil
}

func (s *Store) ListGoals(_ context.Context, from, to string) ([]models.DailyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	span := models.Month{Start: from, End: to}
	var goals []models.DailyGoal
	for day, g := range s.goals {
		if span.Contains(day) {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Day < goals[j].Day })
	return goals, nil
}

func (s *Store) GetRecord(_ context.Context, day string) (models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[day]
	if !ok {
		return models.DailyRecord{}, repository.ErrNotFound
	}
	return record, nil
}

func (s *Store) UpsertRecord(_ context.Context, record models.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Day] = record
	return nil
}

func (s *Store) ListRecords(_ context.Context, from, to string) ([]models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	span := models.Month{Start: from, End: to}
	var records []models.DailyRecord
	for day, r := range s.records {
		if span.Contains(day) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Day > records[j].Day })
	return records, nil
}

func (s *Store) SaveCompletions(_ context.Context, records []models.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, ok := s.records[r.Day]; !ok {
			return fmt.Errorf("save completion %s: %w", r.Day, repository.ErrNotFound)
		}
	}
	for _, r := range records {
		stored := s.records[r.Day]
		stored.IsCompleted = r.IsCompleted
		s.records[r.Day] = stored
	}
	return nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.herds = make(map[string]models.Herd)
	s.goals = make(map[string]models.DailyGoal)
	s.records = make(map[string]models.DailyRecord)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
