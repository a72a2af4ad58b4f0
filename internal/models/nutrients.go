// ABOUTME: NutrientProfile model holding the eleven tracked nutrient fields.
// ABOUTME: Provides field-wise arithmetic, validation, and display rounding.
package models

import (
	"fmt"
	"math"
)

// Kilocalories per gram of each macronutrient.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// NutrientProfile is a fixed set of nutrient amounts. Stored on a Food it is
// expressed per 100 grams; on a MealItem or Meal it is an absolute amount.
type NutrientProfile struct {
	Calories  float64 `json:"calories" yaml:"calories"`     // kcal
	Protein   float64 `json:"protein" yaml:"protein"`       // g
	Carbs     float64 `json:"carbs" yaml:"carbs"`           // g
	Fat       float64 `json:"fat" yaml:"fat"`               // g
	Fiber     float64 `json:"fiber" yaml:"fiber"`           // g
	Sodium    float64 `json:"sodium" yaml:"sodium"`         // mg
	Potassium float64 `json:"potassium" yaml:"potassium"`   // mg
	Calcium   float64 `json:"calcium" yaml:"calcium"`       // mg
	Iron      float64 `json:"iron" yaml:"iron"`             // mg
	VitaminC  float64 `json:"vitaminC" yaml:"vitamin_c"`    // mg
	VitaminD  float64 `json:"vitaminD" yaml:"vitamin_d"`    // µg
}

// NutrientUnits maps nutrient field names to their display units.
var NutrientUnits = map[string]string{
	"calories":  "kcal",
	"protein":   "g",
	"carbs":     "g",
	"fat":       "g",
	"fiber":     "g",
	"sodium":    "mg",
	"potassium": "mg",
	"calcium":   "mg",
	"iron":      "mg",
	"vitaminC":  "mg",
	"vitaminD":  "µg",
}

// NutrientNames lists the nutrient fields in display order.
var NutrientNames = []string{
	"calories", "protein", "carbs", "fat", "fiber",
	"sodium", "potassium", "calcium", "iron", "vitaminC", "vitaminD",
}

// Fields returns the profile values keyed by nutrient name.
func (p NutrientProfile) Fields() map[string]float64 {
	return map[string]float64{
		"calories":  p.Calories,
		"protein":   p.Protein,
		"carbs":     p.Carbs,
		"fat":       p.Fat,
		"fiber":     p.Fiber,
		"sodium":    p.Sodium,
		"potassium": p.Potassium,
		"calcium":   p.Calcium,
		"iron":      p.Iron,
		"vitaminC":  p.VitaminC,
		"vitaminD":  p.VitaminD,
	}
}

// Add returns the field-wise sum of p and o.
func (p NutrientProfile) Add(o NutrientProfile) NutrientProfile {
	return NutrientProfile{
		Calories:  p.Calories + o.Calories,
		Protein:   p.Protein + o.Protein,
		Carbs:     p.Carbs + o.Carbs,
		Fat:       p.Fat + o.Fat,
		Fiber:     p.Fiber + o.Fiber,
		Sodium:    p.Sodium + o.Sodium,
		Potassium: p.Potassium + o.Potassium,
		Calcium:   p.Calcium + o.Calcium,
		Iron:      p.Iron + o.Iron,
		VitaminC:  p.VitaminC + o.VitaminC,
		VitaminD:  p.VitaminD + o.VitaminD,
	}
}

// Scaled multiplies every field by factor.
func (p NutrientProfile) Scaled(factor float64) NutrientProfile {
	return NutrientProfile{
		Calories:  p.Calories * factor,
		Protein:   p.Protein * factor,
		Carbs:     p.Carbs * factor,
		Fat:       p.Fat * factor,
		Fiber:     p.Fiber * factor,
		Sodium:    p.Sodium * factor,
		Potassium: p.Potassium * factor,
		Calcium:   p.Calcium * factor,
		Iron:      p.Iron * factor,
		VitaminC:  p.VitaminC * factor,
		VitaminD:  p.VitaminD * factor,
	}
}

// DividedBy divides every field by d. Dividing by zero yields the zero profile.
func (p NutrientProfile) DividedBy(d float64) NutrientProfile {
	if d == 0 {
		return NutrientProfile{}
	}
	return NutrientProfile{
		Calories:  p.Calories / d,
		Protein:   p.Protein / d,
		Carbs:     p.Carbs / d,
		Fat:       p.Fat / d,
		Fiber:     p.Fiber / d,
		Sodium:    p.Sodium / d,
		Potassium: p.Potassium / d,
		Calcium:   p.Calcium / d,
		Iron:      p.Iron / d,
		VitaminC:  p.VitaminC / d,
		VitaminD:  p.VitaminD / d,
	}
}

// IsZero reports whether every field is zero.
func (p NutrientProfile) IsZero() bool {
	return p == NutrientProfile{}
}

// Validate checks that every field is a finite, non-negative number.
func (p NutrientProfile) Validate() error {
	fields := p.Fields()
	for _, name := range NutrientNames {
		v := fields[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number", name)
		}
		if v < 0 {
			return fmt.Errorf("%s must not be negative: %g", name, v)
		}
	}
	return nil
}

// Rounded applies the display/persistence rounding policy: energy to the
// nearest integer, everything else to one decimal place.
func (p NutrientProfile) Rounded() NutrientProfile {
	return NutrientProfile{
		Calories:  math.Round(p.Calories),
		Protein:   round1(p.Protein),
		Carbs:     round1(p.Carbs),
		Fat:       round1(p.Fat),
		Fiber:     round1(p.Fiber),
		Sodium:    round1(p.Sodium),
		Potassium: round1(p.Potassium),
		Calcium:   round1(p.Calcium),
		Iron:      round1(p.Iron),
		VitaminC:  round1(p.VitaminC),
		VitaminD:  round1(p.VitaminD),
	}
}

// MacroCalories returns the energy contributed by protein, carbs and fat.
func (p NutrientProfile) MacroCalories() (protein, carbs, fat float64) {
	return p.Protein * KcalPerGramProtein, p.Carbs * KcalPerGramCarbs, p.Fat * KcalPerGramFat
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
