// ABOUTME: Provider backed by the local food catalog.
// ABOUTME: Lets lookups reuse foods that were already saved before going to the network.
package lookup

import (
	"context"
	"errors"

	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/storage"
)

// SourceCatalog marks results served from the local catalog.
const SourceCatalog = "catalog"

// Catalog resolves lookups against a storage.Repository.
type Catalog struct {
	repo storage.Repository
}

// NewCatalog returns a Provider over repo.
func NewCatalog(repo storage.Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Name implements Provider.
func (c *Catalog) Name() string {
	return SourceCatalog
}

// ByBarcode implements Provider.
func (c *Catalog) ByBarcode(_ context.Context, barcode string) (*Result, bool, error) {
	f, err := c.repo.FindFoodByBarcode(barcode)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return fromFood(f), true, nil
}

// ByName implements Provider. Placeholder foods awaiting review are skipped
// so that a real provider gets a chance to fill them in.
func (c *Catalog) ByName(_ context.Context, name string) (*Result, bool, error) {
	foods, err := c.repo.SearchFoods(name, 0)
	if err != nil {
		return nil, false, err
	}
	for _, f := range foods {
		if !f.NeedsReview() {
			return fromFood(f), true, nil
		}
	}
	return nil, false, nil
}

func fromFood(f *models.Food) *Result {
	r := &Result{
		Name:     f.Name,
		Category: f.Category,
		Per100g:  f.Per100g,
		Source:   SourceCatalog,
		Food:     f,
	}
	if f.Brand != nil {
		r.Brand = *f.Brand
	}
	if f.Barcode != nil {
		r.Barcode = *f.Barcode
	}
	return r
}
