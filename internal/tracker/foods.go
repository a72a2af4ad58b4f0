// ABOUTME: Food catalog operations of the tracker service.
// ABOUTME: Manual entry, external lookup with zero-profile fallback, metadata edits and deletion.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/nutrition/internal/lookup"
	"github.com/harperreed/nutrition/internal/models"
)

// FoodInput describes a food entered by hand.
type FoodInput struct {
	Name     string                 `json:"name"`
	Brand    string                 `json:"brand,omitempty"`
	Category string                 `json:"category,omitempty"`
	Barcode  string                 `json:"barcode,omitempty"`
	Per100g  models.NutrientProfile `json:"per100g"`
	Tags     []string               `json:"tags,omitempty"`
}

// FoodPatch changes descriptive metadata. Nil fields are left alone; the
// nutrient profile is never edited in place.
type FoodPatch struct {
	Name     *string  `json:"name,omitempty"`
	Brand    *string  `json:"brand,omitempty"`
	Category *string  `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// AddFood validates and stores a new catalog entry.
func (s *Service) AddFood(in FoodInput) (*models.Food, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}
	if err := in.Per100g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: per100g %v", ErrInvalidInput, err)
	}

	f := models.NewFood(in.Name, in.Category, in.Per100g).
		WithBrand(strings.TrimSpace(in.Brand)).
		WithBarcode(strings.TrimSpace(in.Barcode)).
		WithTags(in.Tags...)
	f.CreatedAt = s.now()

	if err := s.repo.CreateFood(f); err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	s.log.Debug("food added", "id", f.ID.String()[:8], "name", f.Name)
	return f, nil
}

// GetFood fetches a food by ID or prefix.
func (s *Service) GetFood(idOrPrefix string) (*models.Food, error) {
	return s.repo.GetFood(idOrPrefix)
}

// ListFoods searches by name when query is set, otherwise lists by category.
func (s *Service) ListFoods(query, category string, limit int) ([]*models.Food, error) {
	if query != "" {
		foods, err := s.repo.SearchFoods(query, limit)
		if err != nil {
			return nil, err
		}
		if category == "" {
			return foods, nil
		}
		var out []*models.Food
		for _, f := range foods {
			if strings.EqualFold(f.Category, category) {
				out = append(out, f)
			}
		}
		return out, nil
	}

	var cat *string
	if category != "" {
		cat = &category
	}
	return s.repo.ListFoods(cat, limit)
}

// UpdateFood applies a metadata patch.
func (s *Service) UpdateFood(idOrPrefix string, patch FoodPatch) (*models.Food, error) {
	f, err := s.repo.GetFood(idOrPrefix)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: food name is required", ErrInvalidInput)
		}
		f.Name = name
	}
	if patch.Brand != nil {
		f.Brand = nil
		f.WithBrand(strings.TrimSpace(*patch.Brand))
	}
	if patch.Category != nil {
		f.Category = strings.TrimSpace(*patch.Category)
		if f.Category == "" {
			f.Category = models.DefaultCategory
		}
	}
	if patch.Tags != nil {
		f.Tags = []string{}
		f.WithTags(patch.Tags...)
	}

	if err := s.repo.UpdateFood(f); err != nil {
		return nil, fmt.Errorf("update food: %w", err)
	}
	return f, nil
}

// DeleteFood removes a food. Meals that reference it keep the item's
// display name and aggregate it as zero from then on.
func (s *Service) DeleteFood(idOrPrefix string) (*models.Food, error) {
	f, err := s.repo.GetFood(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteFood(f.ID.String()); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteAllFoods empties the catalog.
func (s *Service) DeleteAllFoods() (int, error) {
	return s.repo.DeleteAllFoods()
}

// LookupQuery selects a barcode or free-text name search.
type LookupQuery struct {
	Barcode string `json:"barcode,omitempty"`
	Name    string `json:"name,omitempty"`
	// Save stores the resolved food (or its placeholder) in the catalog.
	Save bool `json:"save,omitempty"`
}

// LookupResult is the outcome of LookupFood. Found is false when no provider
// had a match; Food is then a zero-profile placeholder tagged needs-review.
type LookupResult struct {
	Food   *models.Food `json:"food"`
	Found  bool         `json:"found"`
	Source string       `json:"source,omitempty"`
	Saved  bool         `json:"saved"`
}

// LookupFood resolves a barcode or name through the configured provider.
// A miss is a normal outcome, not an error. Provider errors are logged and
// treated as a miss so the caller always gets a usable food.
func (s *Service) LookupFood(ctx context.Context, q LookupQuery) (*LookupResult, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	barcode := strings.TrimSpace(q.Barcode)
	name := strings.TrimSpace(q.Name)
	if barcode == "" && name == "" {
		return nil, fmt.Errorf("%w: barcode or name is required", ErrInvalidInput)
	}

	var (
		res *lookup.Result
		ok  bool
		err error
	)
	if barcode != "" {
		res, ok, err = s.provider.ByBarcode(ctx, barcode)
	} else {
		res, ok, err = s.provider.ByName(ctx, name)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Warn("lookup failed", "provider", s.provider.Name(), "barcode", barcode, "name", name, "err", err)
	}

	out := &LookupResult{Found: ok}
	if ok && res.Food != nil {
		out.Food = res.Food
		out.Source = res.Source
		return out, nil
	}

	out.Food = lookup.ToFood(res, ok, name, barcode)
	out.Food.CreatedAt = s.now()
	if ok {
		out.Source = res.Source
	} else {
		s.log.Warn("no nutrition match, using placeholder", "barcode", barcode, "name", name)
	}

	if q.Save {
		if err := s.repo.CreateFood(out.Food); err != nil {
			return nil, fmt.Errorf("save looked up food: %w", err)
		}
		out.Saved = true
	}
	return out, nil
}
