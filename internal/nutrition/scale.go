// ABOUTME: Nutrient scaling from per-100g profiles to arbitrary gram quantities.
// ABOUTME: Also owns the gram-quantity boundary check shared by all callers.
package nutrition

import (
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/nutrition/internal/models"
)

// ErrInvalidQuantity is returned for negative or non-finite gram values.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ValidateGrams rejects quantities that must never reach Scale.
func ValidateGrams(grams float64) error {
	if math.IsNaN(grams) || math.IsInf(grams, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrInvalidQuantity, grams)
	}
	if grams < 0 {
		return fmt.Errorf("%w: %v grams is negative", ErrInvalidQuantity, grams)
	}
	return nil
}

// Scale converts a per-100g profile into the amounts contained in grams of
// the food. No rounding is applied.
func Scale(per100g models.NutrientProfile, grams float64) models.NutrientProfile {
	if grams == 0 {
		return models.NutrientProfile{}
	}
	return per100g.Scaled(grams / 100)
}
