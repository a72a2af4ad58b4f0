// ABOUTME: Tracker service: the single write path for foods, meals, schedules and dashboards.
// ABOUTME: Every item mutation goes through nutrition.Recompute before it is persisted.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/logging"
	"github.com/harperreed/nutrition/internal/lookup"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
)

// ErrNoItems is returned when a meal is created without any items.
var ErrNoItems = errors.New("meal needs at least one item")

// ErrInvalidInput wraps validation failures of caller-supplied values.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoProvider is returned by LookupFood when no lookup provider is configured.
var ErrNoProvider = errors.New("no lookup provider configured")

// Service coordinates storage, lookups and the aggregation engine.
type Service struct {
	repo     storage.Repository
	provider lookup.Provider
	log      *log.Logger
	now      func() time.Time
}

// New creates a Service. provider may be nil, which disables LookupFood.
// A nil logger discards output.
func New(repo storage.Repository, provider lookup.Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		repo:     repo,
		provider: provider,
		log:      logger,
		now:      time.Now,
	}
}

// WithClock replaces the wall clock. Tests use it to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Repo returns the underlying repository.
func (s *Service) Repo() storage.Repository {
	return s.repo
}

// Today returns the current calendar day according to the service clock.
func (s *Service) Today() time.Time {
	return models.Day(s.now())
}

// foodResolver resolves foods from the repository, memoizing within one
// recompute. Only ErrNotFound degrades an item; any other storage error is
// kept in err and aborts the recompute.
type foodResolver struct {
	repo  storage.Repository
	cache map[uuid.UUID]*models.Food
	err   error
}

func (r *foodResolver) lookup(id uuid.UUID) (*models.Food, bool) {
	if r.err != nil {
		return nil, false
	}
	if f, ok := r.cache[id]; ok {
		return f, f != nil
	}
	f, err := r.repo.GetFood(id.String())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.err = fmt.Errorf("resolve food %s: %w", id, err)
			return nil, false
		}
		r.cache[id] = nil
		return nil, false
	}
	r.cache[id] = f
	return f, true
}

// recompute derives totals for m and logs every degraded item. m is left
// untouched when a food cannot be read from storage.
func (s *Service) recompute(m *models.Meal) ([]nutrition.Warning, error) {
	r := &foodResolver{repo: s.repo, cache: make(map[uuid.UUID]*models.Food)}
	out, warnings, err := nutrition.Recompute(*m, r.lookup)
	if err != nil {
		return nil, err
	}
	if r.err != nil {
		s.log.Error("recompute aborted", "meal", m.ID.String()[:8], "err", r.err)
		return nil, r.err
	}
	*m = out
	for _, w := range warnings {
		s.log.Warn("degraded meal computation",
			"meal", m.ID.String()[:8],
			"food", w.FoodName,
			"food_id", w.FoodID,
			"reason", string(w.Reason))
	}
	return warnings, nil
}
