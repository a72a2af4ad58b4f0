// ABOUTME: Meal and MealItem models plus the MealType enum.
// ABOUTME: Meal totals are derived state maintained by nutrition.Recompute.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultUserID is the placeholder owner of every meal.
const DefaultUserID = "user-1"

// DateFormat is the wire and storage format of a calendar day.
const DateFormat = "2006-01-02"

// ErrInvalidMealType is returned when a meal type string is not recognized.
var ErrInvalidMealType = errors.New("invalid meal type")

// MealType is one of the four fixed meal slots of a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// AllMealTypes returns all valid meal types in day order.
var AllMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// IsValidMealType checks if a string is a valid meal type.
func IsValidMealType(s string) bool {
	for _, mt := range AllMealTypes {
		if string(mt) == s {
			return true
		}
	}
	return false
}

// ParseMealType converts a string into a MealType, ignoring case.
func ParseMealType(s string) (MealType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !IsValidMealType(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMealType, s)
	}
	return MealType(s), nil
}

// Order returns the position of the meal type within a day.
func (t MealType) Order() int {
	for i, mt := range AllMealTypes {
		if mt == t {
			return i
		}
	}
	return len(AllMealTypes)
}

// Day normalizes a timestamp to its calendar day at UTC midnight, keeping
// the year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}

// MealItem is one food-plus-quantity line within a meal.
type MealItem struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	FoodID   uuid.UUID `json:"foodId" yaml:"food_id"`
	FoodName string    `json:"foodName" yaml:"food_name"`
	Grams    float64   `json:"grams" yaml:"grams"`
	// Nutrients caches Food.Per100g scaled to Grams. Always re-derivable.
	Nutrients *NutrientProfile `json:"calculatedNutrients,omitempty" yaml:"calculated_nutrients,omitempty"`
}

// NewMealItem creates a MealItem referencing food. Grams are validated by
// the caller before the item enters aggregation.
func NewMealItem(food *Food, grams float64) MealItem {
	return MealItem{
		ID:       uuid.New(),
		FoodID:   food.ID,
		FoodName: food.Name,
		Grams:    grams,
	}
}

// Meal is a dated, typed collection of items.
type Meal struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	UserID      string     `json:"userId" yaml:"user_id"`
	Date        time.Time  `json:"date" yaml:"date"`
	Type        MealType   `json:"type" yaml:"type"`
	Items       []MealItem `json:"items" yaml:"items"`
	Completed   bool       `json:"completed" yaml:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
	Notes       *string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	// Totals always equals the sum of the items' scaled nutrients.
	Totals    NutrientProfile `json:"totals" yaml:"totals"`
	CreatedAt time.Time       `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updated_at"`
}

// NewMeal creates an empty, not yet completed Meal on the given day.
func NewMeal(date time.Time, mealType MealType) *Meal {
	now := time.Now()
	return &Meal{
		ID:        uuid.New(),
		UserID:    DefaultUserID,
		Date:      Day(date),
		Type:      mealType,
		Items:     []MealItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithNotes sets notes on the meal.
func (m *Meal) WithNotes(notes string) *Meal {
	if notes != "" {
		m.Notes = &notes
	}
	return m
}

// WithItems appends items to the meal. Totals must be recomputed afterwards.
func (m *Meal) WithItems(items ...MealItem) *Meal {
	m.Items = append(m.Items, items...)
	return m
}

// SetCompleted toggles completion. CompletedAt is set when completing and
// cleared when reopening; nutrient totals are untouched.
func (m *Meal) SetCompleted(completed bool, now time.Time) {
	m.Completed = completed
	if completed {
		t := now
		m.CompletedAt = &t
	} else {
		m.CompletedAt = nil
	}
	m.UpdatedAt = now
}

// ItemIndex returns the index of the item with the given ID or ID prefix,
// or -1 when no single item matches.
func (m *Meal) ItemIndex(idOrPrefix string) int {
	found := -1
	for i, it := range m.Items {
		if it.ID.String() == idOrPrefix {
			return i
		}
		if strings.HasPrefix(it.ID.String(), idOrPrefix) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

// DateString returns the meal date as YYYY-MM-DD.
func (m *Meal) DateString() string {
	return m.Date.Format(DateFormat)
}
