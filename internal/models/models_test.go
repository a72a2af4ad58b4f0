// ABOUTME: Tests for Food, Meal, MealItem and NutrientProfile models.
// ABOUTME: Validates constructors, builders, rounding and meal type parsing.
package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewFood(t *testing.T) {
	f := NewFood("  Oats ", "", NutrientProfile{Calories: 389, Protein: 16.9})

	if f.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if f.Name != "Oats" {
		t.Errorf("Name = %q, want Oats", f.Name)
	}
	if f.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", f.Category, DefaultCategory)
	}
	if f.Tags == nil {
		t.Error("expected Tags to be non-nil")
	}
	if f.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestFoodBuilders(t *testing.T) {
	f := NewFood("Yogurt", "dairy", NutrientProfile{}).
		WithBrand("Fage").
		WithBarcode("5201054017708").
		WithTags("Greek", " greek ", "", "high-protein")

	if f.Brand == nil || *f.Brand != "Fage" {
		t.Errorf("Brand = %v, want Fage", f.Brand)
	}
	if f.Barcode == nil || *f.Barcode != "5201054017708" {
		t.Errorf("Barcode = %v, want 5201054017708", f.Barcode)
	}
	if len(f.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 distinct tags", f.Tags)
	}
	if f.DisplayName() != "Yogurt (Fage)" {
		t.Errorf("DisplayName = %q", f.DisplayName())
	}
	if f.NeedsReview() {
		t.Error("expected NeedsReview to be false")
	}
	f.WithTags(TagNeedsReview)
	if !f.NeedsReview() {
		t.Error("expected NeedsReview to be true")
	}
}

func TestEmptyBrandIgnored(t *testing.T) {
	f := NewFood("Water", "drinks", NutrientProfile{}).WithBrand("").WithBarcode("")
	if f.Brand != nil || f.Barcode != nil {
		t.Error("expected empty brand and barcode to stay nil")
	}
	if f.DisplayName() != "Water" {
		t.Errorf("DisplayName = %q, want Water", f.DisplayName())
	}
}

func TestParseMealType(t *testing.T) {
	tests := []struct {
		input   string
		want    MealType
		wantErr bool
	}{
		{"breakfast", MealBreakfast, false},
		{"LUNCH", MealLunch, false},
		{" dinner ", MealDinner, false},
		{"snack", MealSnack, false},
		{"brunch", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMealType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMealType) {
					t.Errorf("ParseMealType(%q) error = %v, want ErrInvalidMealType", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMealType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMealType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestMealTypeOrder(t *testing.T) {
	if MealBreakfast.Order() >= MealLunch.Order() || MealDinner.Order() >= MealSnack.Order() {
		t.Error("expected breakfast < lunch < dinner < snack")
	}
	if MealType("brunch").Order() != len(AllMealTypes) {
		t.Error("expected unknown type to sort last")
	}
}

func TestNewMealNormalizesDate(t *testing.T) {
	at := time.Date(2024, 3, 9, 22, 45, 0, 0, time.FixedZone("X", 5*3600))
	m := NewMeal(at, MealDinner)

	if m.UserID != DefaultUserID {
		t.Errorf("UserID = %s, want %s", m.UserID, DefaultUserID)
	}
	if m.DateString() != "2024-03-09" {
		t.Errorf("DateString = %s, want 2024-03-09", m.DateString())
	}
	if m.Date.Hour() != 0 || m.Date.Location() != time.UTC {
		t.Errorf("Date = %v, want UTC midnight", m.Date)
	}
	if m.Completed || m.CompletedAt != nil {
		t.Error("expected new meal to be incomplete")
	}
}

func TestMealSetCompleted(t *testing.T) {
	m := NewMeal(time.Now(), MealLunch)
	m.Totals = NutrientProfile{Calories: 500}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	m.SetCompleted(true, now)
	if !m.Completed || m.CompletedAt == nil || !m.CompletedAt.Equal(now) {
		t.Errorf("expected completed at %v, got %v", now, m.CompletedAt)
	}
	if m.Totals.Calories != 500 {
		t.Error("completion must not change totals")
	}

	m.SetCompleted(false, now)
	if m.Completed || m.CompletedAt != nil {
		t.Error("expected completion to be cleared")
	}
}

func TestMealItemIndex(t *testing.T) {
	food := NewFood("Rice", "grains", NutrientProfile{})
	a := NewMealItem(food, 100)
	b := NewMealItem(food, 50)
	m := NewMeal(time.Now(), MealLunch).WithItems(a, b)

	if got := m.ItemIndex(b.ID.String()); got != 1 {
		t.Errorf("ItemIndex(full) = %d, want 1", got)
	}
	if got := m.ItemIndex(a.ID.String()[:8]); got != 0 {
		t.Errorf("ItemIndex(prefix) = %d, want 0", got)
	}
	if got := m.ItemIndex("zzzz"); got != -1 {
		t.Errorf("ItemIndex(missing) = %d, want -1", got)
	}
	if got := m.ItemIndex(""); got != -1 {
		t.Errorf("ItemIndex(empty) = %d, want -1 for ambiguous match", got)
	}
}

func TestNutrientProfileArithmetic(t *testing.T) {
	a := NutrientProfile{Calories: 100, Protein: 10, VitaminD: 1}
	b := NutrientProfile{Calories: 50, Fat: 2, VitaminD: 0.5}

	sum := a.Add(b)
	if sum.Calories != 150 || sum.Protein != 10 || sum.Fat != 2 || sum.VitaminD != 1.5 {
		t.Errorf("Add = %+v", sum)
	}

	half := a.Scaled(0.5)
	if half.Calories != 50 || half.Protein != 5 || half.VitaminD != 0.5 {
		t.Errorf("Scaled = %+v", half)
	}

	if !(NutrientProfile{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestNutrientProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       NutrientProfile
		wantErr bool
	}{
		{"zero", NutrientProfile{}, false},
		{"typical", NutrientProfile{Calories: 52, Carbs: 14, Fiber: 2.4}, false},
		{"negative", NutrientProfile{Sodium: -1}, true},
		{"nan", NutrientProfile{Iron: math.NaN()}, true},
		{"inf", NutrientProfile{Calories: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNutrientProfileRounded(t *testing.T) {
	p := NutrientProfile{Calories: 399.5, Protein: 17.04, Fat: 3.25, VitaminD: 0.149}
	r := p.Rounded()

	if r.Calories != 400 {
		t.Errorf("Calories = %v, want 400", r.Calories)
	}
	if r.Protein != 17 {
		t.Errorf("Protein = %v, want 17", r.Protein)
	}
	if r.Fat != 3.3 {
		t.Errorf("Fat = %v, want 3.3", r.Fat)
	}
	if r.VitaminD != 0.1 {
		t.Errorf("VitaminD = %v, want 0.1", r.VitaminD)
	}
}

func TestMacroCalories(t *testing.T) {
	p := NutrientProfile{Protein: 10, Carbs: 20, Fat: 5}
	protein, carbs, fat := p.MacroCalories()
	if protein != 40 || carbs != 80 || fat != 45 {
		t.Errorf("MacroCalories = %v, %v, %v", protein, carbs, fat)
	}
}

func TestAllNutrientsHaveUnits(t *testing.T) {
	fields := NutrientProfile{}.Fields()
	for _, name := range NutrientNames {
		if _, ok := NutrientUnits[name]; !ok {
			t.Errorf("nutrient %s has no unit", name)
		}
		if _, ok := fields[name]; !ok {
			t.Errorf("nutrient %s missing from Fields()", name)
		}
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-01-07")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if d.Weekday() != time.Sunday {
		t.Errorf("2024-01-07 weekday = %s, want Sunday", d.Weekday())
	}
	if _, err := ParseDay("07/01/2024"); err == nil {
		t.Error("expected error for invalid format")
	}
}
