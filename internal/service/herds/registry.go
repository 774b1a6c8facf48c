package herds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/internal/repository"
)

// ErrInvalidHerd indicates herd input failed validation.
var ErrInvalidHerd = errors.New("invalid herd")

// Input carries the user editable fields of a herd.
type Input struct {
	Name     string `json:"name" yaml:"name"`
	Cows     int    `json:"cows" yaml:"cows"`
	Chickens int    `json:"chickens" yaml:"chickens"`
	Sheep    int    `json:"sheep" yaml:"sheep"`
	Goats    int    `json:"goats" yaml:"goats"`
}

// Validate checks the name is present and every count is non-negative. Upper bounds
// are left to the caller.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name must be provided", ErrInvalidHerd)
	}
	switch {
	case in.Cows < 0:
		return fmt.Errorf("%w: cows must not be negative", ErrInvalidHerd)
	case in.Chickens < 0:
		return fmt.Errorf("%w: chickens must not be negative", ErrInvalidHerd)
	case in.Sheep < 0:
		return fmt.Errorf("%w: sheep must not be negative", ErrInvalidHerd)
	case in.Goats < 0:
		return fmt.Errorf("%w: goats must not be negative", ErrInvalidHerd)
	}
	return nil
}

func (in Input) apply(h *models.Herd) {
	h.Name = strings.TrimSpace(in.Name)
	h.Cows = in.Cows
	h.Chickens = in.Chickens
	h.Sheep = in.Sheep
	h.Goats = in.Goats
}

// Registry owns the herd collection and keeps an in-memory copy for readers.
// A failed write leaves the cached list untouched.
type Registry struct {
	repo   repository.HerdRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu    sync.RWMutex
	herds []models.Herd
}

// NewRegistry constructs a registry. Call Load to fill the cache.
func NewRegistry(repo repository.HerdRepository, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load replaces the cached list with the persisted herds.
func (r *Registry) Load(ctx context.Context) error {
	herds, err := r.repo.ListHerds(ctx)
	if err != nil {
		r.logger.Error("failed to load herds", zap.Error(err))
		return fmt.Errorf("load herds: %w", err)
	}

	r.mu.Lock()
	r.herds = herds
	r.mu.Unlock()
	return nil
}

// List returns a copy of the cached herds.
func (r *Registry) List() []models.Herd {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Herd, len(r.herds))
	copy(out, r.herds)
	return out
}

// Totals sums animal counts over the cached herds.
func (r *Registry) Totals() models.HerdTotals {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.Totals(r.herds)
}

// Add persists a new herd.
func (r *Registry) Add(ctx context.Context, in Input) (models.Herd, error) {
	if err := in.Validate(); err != nil {
		return models.Herd{}, err
	}

	herd := models.Herd{ID: r.newID(), CreatedAt: r.now().UTC()}
	in.apply(&herd)

	if err := r.repo.InsertHerd(ctx, herd); err != nil {
		r.logger.Error("failed to add herd", zap.String("name", herd.Name), zap.Error(err))
		return models.Herd{}, err
	}

	r.reload(ctx, func(herds []models.Herd) []models.Herd {
		return append(herds, herd)
	})
	r.logger.Info("herd added", zap.String("id", herd.ID), zap.String("name", herd.Name))
	return herd, nil
}

// Update overwrites the editable fields of an existing herd.
func (r *Registry) Update(ctx context.Context, id string, in Input) (models.Herd, error) {
	if err := in.Validate(); err != nil {
		return models.Herd{}, err
	}

	herd, ok := r.find(id)
	if !ok {
		herd = models.Herd{ID: id}
	}
	in.apply(&herd)

	if err := r.repo.UpdateHerd(ctx, herd); err != nil {
		r.logger.Error("failed to update herd", zap.String("id", id), zap.Error(err))
		return models.Herd{}, err
	}

	r.reload(ctx, func(herds []models.Herd) []models.Herd {
		for i := range herds {
			if herds[i].ID == id {
				herds[i] = herd
			}
		}
		return herds
	})
	return herd, nil
}

// Delete removes a herd.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.DeleteHerd(ctx, id); err != nil {
		r.logger.Error("failed to delete herd", zap.String("id", id), zap.Error(err))
		return err
	}

	r.reload(ctx, func(herds []models.Herd) []models.Herd {
		out := herds[:0]
		for _, h := range herds {
			if h.ID != id {
				out = append(out, h)
			}
		}
		return out
	})
	return nil
}

// Import adds every herd of the manifest in order and stops at the first failure.
func (r *Registry) Import(ctx context.Context, inputs []Input) (int, error) {
	for i, in := range inputs {
		if _, err := r.Add(ctx, in); err != nil {
			return i, fmt.Errorf("import herd %d (%s): %w", i+1, in.Name, err)
		}
	}
	return len(inputs), nil
}

// Subscribe reloads the cache whenever the data set is reset.
func (r *Registry) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(func(events.Event) {
		if err := r.Load(context.Background()); err != nil {
			r.logger.Warn("herd reload after reset failed", zap.Error(err))
		}
	}, events.DataReset)
}

func (r *Registry) find(id string) (models.Herd, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.herds {
		if h.ID == id {
			return h, true
		}
	}
	return models.Herd{}, false
}

// reload refreshes the cache after a committed write. When the read back fails the
// committed change is patched into the cache instead.
func (r *Registry) reload(ctx context.Context, patch func([]models.Herd) []models.Herd) {
	if err := r.Load(ctx); err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	herds := make([]models.Herd, len(r.herds))
	copy(herds, r.herds)
	r.herds = patch(herds)
}
