// ABOUTME: Data migration between nutrition storage backends.
// ABOUTME: Copies foods and meals (with their items) from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Foods int
	Meals int
	Items int
}

// MigrateData copies all data from src to dst storage.
// Foods are copied first so that meal items resolve in the destination.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	foods, err := src.ListFoods(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list source foods: %w", err)
	}
	for _, f := range foods {
		if err := dst.CreateFood(f); err != nil {
			return nil, fmt.Errorf("create food %s: %w", f.ID, err)
		}
		summary.Foods++
	}

	meals, err := src.ListMeals(MealFilter{})
	if err != nil {
		return nil, fmt.Errorf("list source meals: %w", err)
	}
	for _, m := range meals {
		if err := dst.CreateMeal(m); err != nil {
			return nil, fmt.Errorf("create meal %s: %w", m.ID, err)
		}
		summary.Meals++
		summary.Items += len(m.Items)
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
