// ABOUTME: Export and import functionality for nutrition data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the version of the export document format.
const ExportVersion = "1.0"

// ExportData represents the full export format for nutrition data.
type ExportData struct {
	Version    string         `json:"version" yaml:"version"`
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Tool       string         `json:"tool" yaml:"tool"`
	Foods      []*models.Food `json:"foods" yaml:"foods"`
	Meals      []*models.Meal `json:"meals" yaml:"meals"`
}

// collectAll builds an ExportData document from a repository's listings.
func collectAll(r Repository) (*ExportData, error) {
	foods, err := r.ListFoods(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	meals, err := r.ListMeals(MealFilter{})
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	if foods == nil {
		foods = []*models.Food{}
	}
	if meals == nil {
		meals = []*models.Meal{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "nutrition",
		Foods:      foods,
		Meals:      meals,
	}, nil
}

// importAll writes every food and meal of data into r.
func importAll(r Repository, data *ExportData) error {
	for _, f := range data.Foods {
		if err := r.CreateFood(f); err != nil {
			return fmt.Errorf("import food: %w", err)
		}
	}
	for _, m := range data.Meals {
		if err := r.CreateMeal(m); err != nil {
			return fmt.Errorf("import meal: %w", err)
		}
	}
	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return collectAll(d)
}

// ImportData imports data from an export file.
func (d *DB) ImportData(data *ExportData) error {
	return importAll(d, data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML, with foods grouped by category and
// meals grouped by day.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                `yaml:"version"`
		ExportedAt string                `yaml:"exported_at"`
		Tool       string                `yaml:"tool"`
		Foods      map[string][]yamlFood `yaml:"foods"`
		Days       []yamlDay             `yaml:"days"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Foods:      make(map[string][]yamlFood),
		Days:       make([]yamlDay, 0),
	}

	// Group foods by category
	for _, f := range data.Foods {
		yf := yamlFood{
			ID:      f.ID.String()[:8],
			Name:    f.Name,
			Per100g: f.Per100g,
			Tags:    f.Tags,
		}
		if f.Brand != nil {
			yf.Brand = *f.Brand
		}
		if f.Barcode != nil {
			yf.Barcode = *f.Barcode
		}
		yamlData.Foods[f.Category] = append(yamlData.Foods[f.Category], yf)
	}

	// Meals arrive in date order, so consecutive grouping is enough
	for _, m := range data.Meals {
		date := m.DateString()
		if n := len(yamlData.Days); n == 0 || yamlData.Days[n-1].Date != date {
			yamlData.Days = append(yamlData.Days, yamlDay{Date: date})
		}
		day := &yamlData.Days[len(yamlData.Days)-1]

		ym := yamlMeal{
			ID:        m.ID.String()[:8],
			Type:      string(m.Type),
			Completed: m.Completed,
			Totals:    m.Totals,
		}
		if m.Notes != nil {
			ym.Notes = *m.Notes
		}
		for _, it := range m.Items {
			ym.Items = append(ym.Items, yamlItem{Food: it.FoodName, Grams: it.Grams})
		}
		day.Meals = append(day.Meals, ym)
		day.Totals = day.Totals.Add(m.Totals)
	}

	return yaml.Marshal(yamlData)
}

type yamlFood struct {
	ID      string                 `yaml:"id"`
	Name    string                 `yaml:"name"`
	Brand   string                 `yaml:"brand,omitempty"`
	Barcode string                 `yaml:"barcode,omitempty"`
	Per100g models.NutrientProfile `yaml:"per_100g"`
	Tags    []string               `yaml:"tags,omitempty"`
}

type yamlDay struct {
	Date   string                 `yaml:"date"`
	Totals models.NutrientProfile `yaml:"totals"`
	Meals  []yamlMeal             `yaml:"meals"`
}

type yamlMeal struct {
	ID        string                 `yaml:"id"`
	Type      string                 `yaml:"type"`
	Completed bool                   `yaml:"completed"`
	Notes     string                 `yaml:"notes,omitempty"`
	Totals    models.NutrientProfile `yaml:"totals"`
	Items     []yamlItem             `yaml:"items,omitempty"`
}

type yamlItem struct {
	Food  string  `yaml:"food"`
	Grams float64 `yaml:"grams"`
}

// ExportMarkdown exports meals in [from, to] (either bound optional) as a
// Markdown report: one section per day with a table of meals and day totals,
// followed by the food catalog.
func ExportMarkdown(r Repository, from, to *time.Time) (string, error) {
	meals, err := r.ListMeals(MealFilter{From: from, To: to})
	if err != nil {
		return "", err
	}
	foods, err := r.ListFoods(nil, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Nutrition Export - %s\n\n", now.Format(models.DateFormat)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	var current string
	var dayTotals models.NutrientProfile
	flush := func() {
		if current == "" {
			return
		}
		sb.WriteString(fmt.Sprintf("\n**Day total:** %s\n\n", formatProfile(dayTotals.Rounded())))
	}

	for _, m := range meals {
		date := m.DateString()
		if date != current {
			flush()
			current = date
			dayTotals = models.NutrientProfile{}
			sb.WriteString(fmt.Sprintf("## %s\n\n", date))
			sb.WriteString("| Meal | Items | kcal | Protein | Carbs | Fat | Done |\n")
			sb.WriteString("|------|-------|------|---------|-------|-----|------|\n")
		}
		names := make([]string, 0, len(m.Items))
		for _, it := range m.Items {
			names = append(names, fmt.Sprintf("%s %gg", it.FoodName, it.Grams))
		}
		done := ""
		if m.Completed {
			done = "✓"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | %.1f | %.1f | %.1f | %s |\n",
			m.Type, strings.Join(names, ", "),
			m.Totals.Calories, m.Totals.Protein, m.Totals.Carbs, m.Totals.Fat, done))
		dayTotals = dayTotals.Add(m.Totals)
	}
	flush()

	if len(foods) > 0 {
		sb.WriteString("## Foods\n\n")
		sb.WriteString("| Name | Category | kcal/100g | Protein | Carbs | Fat |\n")
		sb.WriteString("|------|----------|-----------|---------|-------|-----|\n")
		for _, f := range foods {
			p := f.Per100g
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | %.1f | %.1f | %.1f |\n",
				f.DisplayName(), f.Category, p.Calories, p.Protein, p.Carbs, p.Fat))
		}
	}

	return sb.String(), nil
}

func formatProfile(p models.NutrientProfile) string {
	return fmt.Sprintf("%.0f kcal, %.1fg protein, %.1fg carbs, %.1fg fat, %.1fg fiber",
		p.Calories, p.Protein, p.Carbs, p.Fat, p.Fiber)
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(r Repository, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return r.ImportData(&exportData)
}
