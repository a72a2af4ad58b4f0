// ABOUTME: Food model for the food catalog.
// ABOUTME: A Food carries a per-100g NutrientProfile plus descriptive metadata.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TagNeedsReview marks a food whose nutrient profile could not be resolved
// and was stored as zeros for manual correction.
const TagNeedsReview = "needs-review"

// DefaultCategory is used when a food is created without a category.
const DefaultCategory = "uncategorized"

// Food is a catalog entry. Its Per100g profile is read-only input to the
// aggregation engine.
type Food struct {
	ID        uuid.UUID       `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Brand     *string         `json:"brand,omitempty" yaml:"brand,omitempty"`
	Category  string          `json:"category" yaml:"category"`
	Barcode   *string         `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	Per100g   NutrientProfile `json:"per100g" yaml:"per100g"`
	Tags      []string        `json:"tags" yaml:"tags"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}

// NewFood creates a new Food with generated UUID and current timestamp.
func NewFood(name, category string, per100g NutrientProfile) *Food {
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}
	return &Food{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Category:  category,
		Per100g:   per100g,
		Tags:      []string{},
		CreatedAt: time.Now(),
	}
}

// WithBrand sets the brand of the food.
func (f *Food) WithBrand(brand string) *Food {
	if brand != "" {
		f.Brand = &brand
	}
	return f
}

// WithBarcode sets the barcode of the food.
func (f *Food) WithBarcode(barcode string) *Food {
	if barcode != "" {
		f.Barcode = &barcode
	}
	return f
}

// WithTags adds tags to the food, skipping blanks and duplicates.
func (f *Food) WithTags(tags ...string) *Food {
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || f.HasTag(t) {
			continue
		}
		f.Tags = append(f.Tags, t)
	}
	return f
}

// HasTag reports whether the food carries the given tag.
func (f *Food) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NeedsReview reports whether the food's profile is a placeholder.
func (f *Food) NeedsReview() bool {
	return f.HasTag(TagNeedsReview)
}

// DisplayName returns the name with the brand appended when present.
func (f *Food) DisplayName() string {
	if f.Brand != nil && *f.Brand != "" {
		return f.Name + " (" + *f.Brand + ")"
	}
	return f.Name
}
