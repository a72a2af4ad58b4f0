// ABOUTME: Nutrition lookup providers: resolve a barcode or name to a per-100g profile.
// ABOUTME: Defines Provider, the Chain combinator and conversion of results into Foods.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/nutrition/internal/models"
)

// Result is a resolved nutrition record from a provider.
type Result struct {
	Name     string                 `json:"name"`
	Brand    string                 `json:"brand,omitempty"`
	Barcode  string                 `json:"barcode,omitempty"`
	Category string                 `json:"category,omitempty"`
	Per100g  models.NutrientProfile `json:"per100g"`
	Source   string                 `json:"source"`

	// NoEnergy is set when the source reported no energy value, so
	// Per100g.Calories is a placeholder rather than a measurement.
	NoEnergy bool `json:"no_energy,omitempty"`

	// Food is set when the result came from the local catalog.
	Food *models.Food `json:"-"`
}

// Provider resolves nutrition data. A miss is reported as (nil, false, nil);
// errors are reserved for transport or decoding failures.
type Provider interface {
	Name() string
	ByBarcode(ctx context.Context, barcode string) (*Result, bool, error)
	ByName(ctx context.Context, name string) (*Result, bool, error)
}

// Chain tries providers in order and returns the first hit. A provider error
// does not stop the chain; errors are only returned when nobody hit.
type Chain []Provider

// Name returns the provider names joined with "+".
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

// ByBarcode implements Provider.
func (c Chain) ByBarcode(ctx context.Context, barcode string) (*Result, bool, error) {
	return c.first(func(p Provider) (*Result, bool, error) { return p.ByBarcode(ctx, barcode) })
}

// ByName implements Provider.
func (c Chain) ByName(ctx context.Context, name string) (*Result, bool, error) {
	return c.first(func(p Provider) (*Result, bool, error) { return p.ByName(ctx, name) })
}

func (c Chain) first(call func(Provider) (*Result, bool, error)) (*Result, bool, error) {
	var errs []error
	for _, p := range c {
		res, ok, err := call(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if ok {
			return res, true, nil
		}
	}
	return nil, false, errors.Join(errs...)
}

// ToFood builds a catalog Food. On a miss it returns a zero-profile placeholder
// named fallbackName and tagged needs-review, so totals stay computable. A hit
// without usable nutrients is tagged needs-review as well.
func ToFood(res *Result, ok bool, fallbackName, barcode string) *models.Food {
	if !ok || res == nil {
		name := strings.TrimSpace(fallbackName)
		if name == "" {
			name = "Unknown food"
			if barcode != "" {
				name = "Unknown product " + barcode
			}
		}
		return models.NewFood(name, models.DefaultCategory, models.NutrientProfile{}).
			WithBarcode(barcode).
			WithTags(models.TagNeedsReview)
	}

	name := res.Name
	if name == "" {
		name = fallbackName
	}
	code := res.Barcode
	if code == "" {
		code = barcode
	}
	f := models.NewFood(name, res.Category, res.Per100g).
		WithBrand(res.Brand).
		WithBarcode(code)
	if res.Source != "" {
		f.WithTags(res.Source)
	}
	if res.NoEnergy || res.Per100g.IsZero() {
		f.WithTags(models.TagNeedsReview)
	}
	return f
}
