// ABOUTME: Meal aggregation: sums scaled item nutrients into meal totals.
// ABOUTME: Unresolved foods contribute zero and are reported as warnings.
package nutrition

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

// FoodLookup resolves a food ID. It returns false when the food is unknown.
type FoodLookup func(id uuid.UUID) (*models.Food, bool)

// FoodsByID builds a FoodLookup over an in-memory slice of foods.
func FoodsByID(foods []*models.Food) FoodLookup {
	index := make(map[uuid.UUID]*models.Food, len(foods))
	for _, f := range foods {
		if f != nil {
			index[f.ID] = f
		}
	}
	return func(id uuid.UUID) (*models.Food, bool) {
		f, ok := index[id]
		return f, ok
	}
}

// Reason describes why an item was aggregated as zero.
type Reason string

const (
	ReasonFoodNotFound      Reason = "food not found"
	ReasonIncompleteProfile Reason = "incomplete nutrient profile"
)

// Warning records a degraded computation for one meal item.
type Warning struct {
	ItemID   uuid.UUID `json:"itemId"`
	FoodID   uuid.UUID `json:"foodId"`
	FoodName string    `json:"foodName"`
	Reason   Reason    `json:"reason"`
	Detail   string    `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", w.FoodName, w.Reason, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.FoodName, w.Reason)
}

// Aggregate is the unrounded result of aggregating a list of items.
type Aggregate struct {
	Totals models.NutrientProfile
	// Items holds each item's scaled profile, index-aligned with the input.
	Items    []models.NutrientProfile
	Warnings []Warning
}

// AggregateItems sums the scaled nutrients of items. The only error is an
// invalid gram quantity; unresolved foods degrade to zero with a warning.
func AggregateItems(items []models.MealItem, lookup FoodLookup) (Aggregate, error) {
	agg := Aggregate{Items: make([]models.NutrientProfile, len(items))}

	for i, item := range items {
		if err := ValidateGrams(item.Grams); err != nil {
			return Aggregate{}, fmt.Errorf("item %d (%s): %w", i, item.FoodName, err)
		}

		scaled, warn := scaleItem(item, lookup)
		if warn != nil {
			agg.Warnings = append(agg.Warnings, *warn)
			continue
		}
		agg.Items[i] = scaled
		agg.Totals = agg.Totals.Add(scaled)
	}

	return agg, nil
}

func scaleItem(item models.MealItem, lookup FoodLookup) (models.NutrientProfile, *Warning) {
	warn := &Warning{ItemID: item.ID, FoodID: item.FoodID, FoodName: item.FoodName}

	var food *models.Food
	var ok bool
	if lookup != nil {
		food, ok = lookup(item.FoodID)
	}
	if !ok || food == nil {
		warn.Reason = ReasonFoodNotFound
		return models.NutrientProfile{}, warn
	}
	if err := food.Per100g.Validate(); err != nil {
		warn.Reason = ReasonIncompleteProfile
		warn.Detail = err.Error()
		return models.NutrientProfile{}, warn
	}

	return Scale(food.Per100g, item.Grams), nil
}

// Recompute returns a copy of meal whose item caches and totals are derived
// from its items. Totals are rounded here because the result is what gets
// persisted. The input meal is not modified.
func Recompute(meal models.Meal, lookup FoodLookup) (models.Meal, []Warning, error) {
	agg, err := AggregateItems(meal.Items, lookup)
	if err != nil {
		return meal, nil, err
	}

	out := meal
	out.Items = make([]models.MealItem, len(meal.Items))
	for i, item := range meal.Items {
		scaled := agg.Items[i].Rounded()
		item.Nutrients = &scaled
		if food, ok := resolve(lookup, item.FoodID); ok && food.Name != "" {
			item.FoodName = food.Name
		}
		out.Items[i] = item
	}
	out.Totals = agg.Totals.Rounded()

	return out, agg.Warnings, nil
}

func resolve(lookup FoodLookup, id uuid.UUID) (*models.Food, bool) {
	if lookup == nil {
		return nil, false
	}
	f, ok := lookup(id)
	return f, ok && f != nil
}

// Consistent reports whether a meal's persisted totals match its items.
func Consistent(meal models.Meal, lookup FoodLookup) bool {
	again, _, err := Recompute(meal, lookup)
	if err != nil {
		return false
	}
	return again.Totals == meal.Totals
}
