// ABOUTME: Repository interface for nutrition data storage.
// ABOUTME: Defines the contract for food catalog and meal CRUD operations.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/models"
)

// ErrNotFound is returned when no record matches an ID, prefix or barcode.
var ErrNotFound = errors.New("not found")

// ErrAmbiguousPrefix is returned when an ID prefix matches several records.
var ErrAmbiguousPrefix = errors.New("ambiguous prefix")

// Repository defines the storage interface for nutrition data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Food operations
	CreateFood(f *models.Food) error
	GetFood(idOrPrefix string) (*models.Food, error)
	FindFoodByBarcode(barcode string) (*models.Food, error)
	SearchFoods(query string, limit int) ([]*models.Food, error)
	ListFoods(category *string, limit int) ([]*models.Food, error)
	UpdateFood(f *models.Food) error
	DeleteFood(idOrPrefix string) error
	DeleteAllFoods() (int, error)

	// Meal operations
	CreateMeal(m *models.Meal) error
	GetMeal(idOrPrefix string) (*models.Meal, error)
	ListMeals(filter MealFilter) ([]*models.Meal, error)
	UpdateMeal(m *models.Meal) error
	DeleteMeal(idOrPrefix string) error
	DeleteAllMeals() (int, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

// MealFilter narrows ListMeals. Zero values mean "no constraint". From and
// To are inclusive calendar days.
type MealFilter struct {
	From  *time.Time
	To    *time.Time
	Type  *models.MealType
	Limit int
}

// DayFilter returns a filter matching a single calendar day.
func DayFilter(day time.Time) MealFilter {
	d := models.Day(day)
	return MealFilter{From: &d, To: &d}
}

// RangeFilter returns a filter matching the inclusive range [from, to].
func RangeFilter(from, to time.Time) MealFilter {
	f, t := models.Day(from), models.Day(to)
	return MealFilter{From: &f, To: &t}
}

// Matches reports whether a meal satisfies the date and type constraints.
func (f MealFilter) Matches(m *models.Meal) bool {
	d := models.Day(m.Date)
	if f.From != nil && d.Before(models.Day(*f.From)) {
		return false
	}
	if f.To != nil && d.After(models.Day(*f.To)) {
		return false
	}
	if f.Type != nil && m.Type != *f.Type {
		return false
	}
	return true
}

// isFullUUID reports whether s has the shape of a complete UUID.
func isFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func ambiguous(prefix string) error {
	return fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, prefix)
}

// lessMeal orders meals by date, then by slot within the day, then creation.
func lessMeal(a, b *models.Meal) bool {
	da, db := models.Day(a.Date), models.Day(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	if a.Type.Order() != b.Type.Order() {
		return a.Type.Order() < b.Type.Order()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
