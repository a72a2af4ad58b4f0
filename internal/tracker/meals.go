// ABOUTME: Meal operations of the tracker service.
// ABOUTME: Creation, item add/resize/remove, field edits and completion toggling.
package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
)

// ItemInput references a catalog food by ID or prefix plus a gram quantity.
type ItemInput struct {
	FoodID string  `json:"food_id"`
	Grams  float64 `json:"grams"`
}

// MealInput describes a new meal. An empty Date means today.
type MealInput struct {
	Date  string      `json:"date,omitempty"`
	Type  string      `json:"type"`
	Notes string      `json:"notes,omitempty"`
	Items []ItemInput `json:"items"`
}

// MealPatch edits meal fields that do not affect nutrient totals.
type MealPatch struct {
	Date  *string `json:"date,omitempty"`
	Type  *string `json:"type,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// MealResult is a persisted meal plus the degraded items found while
// computing its totals.
type MealResult struct {
	Meal     *models.Meal        `json:"meal"`
	Warnings []nutrition.Warning `json:"warnings,omitempty"`
}

// parseDate resolves an optional YYYY-MM-DD string, defaulting to today.
func (s *Service) parseDate(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return s.Today(), nil
	}
	d, err := models.ParseDay(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return d, nil
}

// newItem validates an item input against the catalog.
func (s *Service) newItem(in ItemInput) (models.MealItem, error) {
	if err := nutrition.ValidateGrams(in.Grams); err != nil {
		return models.MealItem{}, err
	}
	food, err := s.repo.GetFood(strings.TrimSpace(in.FoodID))
	if err != nil {
		return models.MealItem{}, fmt.Errorf("food %s: %w", in.FoodID, err)
	}
	return models.NewMealItem(food, in.Grams), nil
}

// CreateMeal validates the input, derives totals and stores the meal.
func (s *Service) CreateMeal(in MealInput) (*MealResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	mealType, err := models.ParseMealType(in.Type)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	m := models.NewMeal(date, mealType).WithNotes(strings.TrimSpace(in.Notes))
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	for _, it := range in.Items {
		item, err := s.newItem(it)
		if err != nil {
			return nil, err
		}
		m.WithItems(item)
	}

	warnings, err := s.recompute(m)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMeal(m); err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	s.log.Info("meal created", "id", m.ID.String()[:8], "date", m.DateString(), "type", m.Type, "kcal", m.Totals.Calories)
	return &MealResult{Meal: m, Warnings: warnings}, nil
}

// GetMeal fetches a meal by ID or prefix.
func (s *Service) GetMeal(idOrPrefix string) (*models.Meal, error) {
	return s.repo.GetMeal(idOrPrefix)
}

// ListMeals returns meals matching filter in date order.
func (s *Service) ListMeals(filter storage.MealFilter) ([]*models.Meal, error) {
	return s.repo.ListMeals(filter)
}

// mutateItems loads a meal, applies fn to it, recomputes and persists.
func (s *Service) mutateItems(idOrPrefix string, fn func(m *models.Meal) error) (*MealResult, error) {
	m, err := s.repo.GetMeal(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}

	warnings, err := s.recompute(m)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()
	if err := s.repo.UpdateMeal(m); err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return &MealResult{Meal: m, Warnings: warnings}, nil
}

// AddItem appends an item to a meal.
func (s *Service) AddItem(mealID string, in ItemInput) (*MealResult, error) {
	return s.mutateItems(mealID, func(m *models.Meal) error {
		item, err := s.newItem(in)
		if err != nil {
			return err
		}
		m.WithItems(item)
		return nil
	})
}

// ResizeItem changes the gram quantity of one item.
func (s *Service) ResizeItem(mealID, itemID string, grams float64) (*MealResult, error) {
	if err := nutrition.ValidateGrams(grams); err != nil {
		return nil, err
	}
	return s.mutateItems(mealID, func(m *models.Meal) error {
		i := m.ItemIndex(itemID)
		if i < 0 {
			return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
		}
		m.Items[i].Grams = grams
		return nil
	})
}

// RemoveItem drops one item from a meal. The last item may be removed; the
// meal then aggregates to zero.
func (s *Service) RemoveItem(mealID, itemID string) (*MealResult, error) {
	return s.mutateItems(mealID, func(m *models.Meal) error {
		i := m.ItemIndex(itemID)
		if i < 0 {
			return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
		}
		m.Items = append(m.Items[:i], m.Items[i+1:]...)
		return nil
	})
}

// UpdateMeal edits date, type or notes. Totals are left as they are.
func (s *Service) UpdateMeal(idOrPrefix string, patch MealPatch) (*models.Meal, error) {
	m, err := s.repo.GetMeal(idOrPrefix)
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		// An explicit empty date is a mistake, not a request for today.
		if strings.TrimSpace(*patch.Date) == "" {
			return nil, fmt.Errorf("%w: date must not be empty", ErrInvalidInput)
		}
		d, err := s.parseDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		m.Date = d
	}
	if patch.Type != nil {
		mt, err := models.ParseMealType(*patch.Type)
		if err != nil {
			return nil, err
		}
		m.Type = mt
	}
	if patch.Notes != nil {
		m.Notes = nil
		m.WithNotes(strings.TrimSpace(*patch.Notes))
	}

	m.UpdatedAt = s.now()
	if err := s.repo.UpdateMeal(m); err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return m, nil
}

// SetCompleted marks a meal eaten or reopens it.
func (s *Service) SetCompleted(idOrPrefix string, completed bool) (*models.Meal, error) {
	m, err := s.repo.GetMeal(idOrPrefix)
	if err != nil {
		return nil, err
	}
	m.SetCompleted(completed, s.now())
	if err := s.repo.UpdateMeal(m); err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return m, nil
}

// DeleteMeal removes a meal and returns what was deleted.
func (s *Service) DeleteMeal(idOrPrefix string) (*models.Meal, error) {
	m, err := s.repo.GetMeal(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteMeal(m.ID.String()); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteAllMeals removes every meal.
func (s *Service) DeleteAllMeals() (int, error) {
	return s.repo.DeleteAllMeals()
}
