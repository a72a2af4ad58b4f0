// ABOUTME: MarkdownStore: file-based nutrition storage using YAML-frontmatter markdown files.
// ABOUTME: Foods live under foods/, meals under meals/YYYY/MM/, notes in the file body.

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

// MarkdownStore provides file-based storage for nutrition data using markdown files.
type MarkdownStore struct {
	dataDir string
}

// Compile-time check that MarkdownStore implements Repository.
var _ Repository = (*MarkdownStore)(nil)

// NewMarkdownStore creates a new markdown-backed store rooted at dataDir.
func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &MarkdownStore{dataDir: dataDir}, nil
}

// Close releases resources. For MarkdownStore this is a no-op.
func (s *MarkdownStore) Close() error {
	return nil
}

// foodsDir returns the path to the foods directory.
func (s *MarkdownStore) foodsDir() string {
	return filepath.Join(s.dataDir, "foods")
}

// mealsDir returns the path to the meals directory.
func (s *MarkdownStore) mealsDir() string {
	return filepath.Join(s.dataDir, "meals")
}

// foodFilePath returns the path for a food file.
// Format: foods/<slug>-<id_prefix>.md.
func (s *MarkdownStore) foodFilePath(f *models.Food) string {
	return filepath.Join(s.foodsDir(), fmt.Sprintf("%s-%s.md", slugify(f.Name), f.ID.String()[:8]))
}

// mealFilePath returns the path for a meal file based on date and type.
// Format: meals/YYYY/MM/YYYY-MM-DD-<type>-<id_prefix>.md.
func (s *MarkdownStore) mealFilePath(m *models.Meal) string {
	date := models.Day(m.Date)
	return filepath.Join(s.mealsDir(), date.Format("2006"), date.Format("01"),
		fmt.Sprintf("%s-%s-%s.md", date.Format(models.DateFormat), string(m.Type), m.ID.String()[:8]))
}

// foodFrontmatter holds the YAML frontmatter of a food file.
type foodFrontmatter struct {
	ID        string                 `yaml:"id"`
	Name      string                 `yaml:"name"`
	Brand     string                 `yaml:"brand,omitempty"`
	Category  string                 `yaml:"category"`
	Barcode   string                 `yaml:"barcode,omitempty"`
	Per100g   models.NutrientProfile `yaml:"per_100g"`
	Tags      []string               `yaml:"tags,omitempty"`
	CreatedAt string                 `yaml:"created_at"`
}

// mealFrontmatter holds the YAML frontmatter of a meal file.
type mealFrontmatter struct {
	ID          string                 `yaml:"id"`
	UserID      string                 `yaml:"user_id"`
	Date        string                 `yaml:"date"`
	Type        string                 `yaml:"type"`
	Completed   bool                   `yaml:"completed"`
	CompletedAt string                 `yaml:"completed_at,omitempty"`
	Totals      models.NutrientProfile `yaml:"totals"`
	Items       []itemFrontmatter      `yaml:"items,omitempty"`
	CreatedAt   string                 `yaml:"created_at"`
	UpdatedAt   string                 `yaml:"updated_at"`
}

// itemFrontmatter holds meal item data in frontmatter.
type itemFrontmatter struct {
	ID        string                  `yaml:"id"`
	FoodID    string                  `yaml:"food_id"`
	FoodName  string                  `yaml:"food_name"`
	Grams     float64                 `yaml:"grams"`
	Nutrients *models.NutrientProfile `yaml:"nutrients,omitempty"`
}

func foodToFrontmatter(f *models.Food) foodFrontmatter {
	fm := foodFrontmatter{
		ID:        f.ID.String(),
		Name:      f.Name,
		Category:  f.Category,
		Per100g:   f.Per100g,
		Tags:      f.Tags,
		CreatedAt: formatTime(f.CreatedAt),
	}
	if f.Brand != nil {
		fm.Brand = *f.Brand
	}
	if f.Barcode != nil {
		fm.Barcode = *f.Barcode
	}
	return fm
}

func foodFromFrontmatter(fm *foodFrontmatter) (*models.Food, error) {
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse food ID %q: %w", fm.ID, err)
	}
	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", fm.CreatedAt, err)
	}

	f := &models.Food{
		ID:        id,
		Name:      fm.Name,
		Category:  fm.Category,
		Per100g:   fm.Per100g,
		Tags:      fm.Tags,
		CreatedAt: createdAt,
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if fm.Brand != "" {
		f.WithBrand(fm.Brand)
	}
	if fm.Barcode != "" {
		f.WithBarcode(fm.Barcode)
	}
	return f, nil
}

func mealToFrontmatter(m *models.Meal) mealFrontmatter {
	fm := mealFrontmatter{
		ID:        m.ID.String(),
		UserID:    m.UserID,
		Date:      m.DateString(),
		Type:      string(m.Type),
		Completed: m.Completed,
		Totals:    m.Totals,
		CreatedAt: formatTime(m.CreatedAt),
		UpdatedAt: formatTime(m.UpdatedAt),
	}
	if fm.UserID == "" {
		fm.UserID = models.DefaultUserID
	}
	if m.CompletedAt != nil {
		fm.CompletedAt = formatTime(*m.CompletedAt)
	}
	for _, it := range m.Items {
		fm.Items = append(fm.Items, itemFrontmatter{
			ID:        it.ID.String(),
			FoodID:    it.FoodID.String(),
			FoodName:  it.FoodName,
			Grams:     it.Grams,
			Nutrients: it.Nutrients,
		})
	}
	return fm
}

func mealFromFrontmatter(fm *mealFrontmatter, notes string) (*models.Meal, error) {
	id, err := uuid.Parse(fm.ID)
	if err != nil {
		return nil, fmt.Errorf("parse meal ID %q: %w", fm.ID, err)
	}
	date, err := models.ParseDay(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", fm.CreatedAt, err)
	}
	updatedAt, err := parseTime(fm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", fm.UpdatedAt, err)
	}

	m := &models.Meal{
		ID:        id,
		UserID:    fm.UserID,
		Date:      date,
		Type:      models.MealType(fm.Type),
		Completed: fm.Completed,
		Totals:    fm.Totals,
		Items:     []models.MealItem{},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if fm.CompletedAt != "" {
		t, err := parseTime(fm.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at %q: %w", fm.CompletedAt, err)
		}
		m.CompletedAt = &t
	}
	if notes != "" {
		m.Notes = &notes
	}

	for _, itf := range fm.Items {
		itemID, err := uuid.Parse(itf.ID)
		if err != nil {
			continue
		}
		foodID, _ := uuid.Parse(itf.FoodID)
		m.Items = append(m.Items, models.MealItem{
			ID:        itemID,
			FoodID:    foodID,
			FoodName:  itf.FoodName,
			Grams:     itf.Grams,
			Nutrients: itf.Nutrients,
		})
	}
	return m, nil
}

// readFrontmatterFile reads path and decodes its frontmatter into fm,
// returning the trimmed body.
func readFrontmatterFile(path string, fm any) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	body, err := decodeFrontmatter(data, fm)
	if err != nil {
		return "", fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return strings.TrimSpace(body), nil
}

func readFoodFile(path string) (*models.Food, error) {
	var fm foodFrontmatter
	if _, err := readFrontmatterFile(path, &fm); err != nil {
		return nil, err
	}
	return foodFromFrontmatter(&fm)
}

func readMealFile(path string) (*models.Meal, error) {
	var fm mealFrontmatter
	notes, err := readFrontmatterFile(path, &fm)
	if err != nil {
		return nil, err
	}
	return mealFromFrontmatter(&fm, notes)
}

// writeFoodFile writes a food to its markdown file.
func (s *MarkdownStore) writeFoodFile(f *models.Food) error {
	fm := foodToFrontmatter(f)
	body := fmt.Sprintf("\n# %s\n", f.DisplayName())

	content, err := renderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render food file: %w", err)
	}
	return atomicWrite(s.foodFilePath(f), []byte(content))
}

// writeMealFile writes a meal (with its items) to its markdown file.
func (s *MarkdownStore) writeMealFile(m *models.Meal) error {
	fm := mealToFrontmatter(m)

	body := ""
	if m.Notes != nil && *m.Notes != "" {
		body = "\n" + *m.Notes + "\n"
	}

	content, err := renderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render meal file: %w", err)
	}
	return atomicWrite(s.mealFilePath(m), []byte(content))
}

// walkMarkdown calls fn for every .md file under dir. A missing dir is empty.
func walkMarkdown(dir string, fn func(path string) error) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		return fn(path)
	})
}

// walkFoodFiles walks all food markdown files and calls fn for each.
func (s *MarkdownStore) walkFoodFiles(fn func(path string, f *models.Food) error) error {
	return walkMarkdown(s.foodsDir(), func(path string) error {
		f, err := readFoodFile(path)
		if err != nil {
			return fmt.Errorf("read food file %s: %w", path, err)
		}
		return fn(path, f)
	})
}

// walkMealFiles walks all meal markdown files and calls fn for each.
func (s *MarkdownStore) walkMealFiles(fn func(path string, m *models.Meal) error) error {
	return walkMarkdown(s.mealsDir(), func(path string) error {
		m, err := readMealFile(path)
		if err != nil {
			return fmt.Errorf("read meal file %s: %w", path, err)
		}
		return fn(path, m)
	})
}

// matchID applies the ID/prefix rules over a walk and returns the single
// matching record and its path.
func matchID[T any](idOrPrefix string, walk func(func(path string, v T) error) error, idOf func(T) uuid.UUID) (string, T, error) {
	full := isFullUUID(idOrPrefix)

	var foundPath string
	var found T
	matchCount := 0

	err := walk(func(path string, v T) error {
		idStr := idOf(v).String()
		if full {
			if idStr == idOrPrefix {
				foundPath, found, matchCount = path, v, 1
				return filepath.SkipAll
			}
			return nil
		}
		if strings.HasPrefix(idStr, idOrPrefix) {
			foundPath, found = path, v
			matchCount++
		}
		return nil
	})

	var zero T
	if err != nil {
		return "", zero, err
	}
	if matchCount == 0 {
		return "", zero, notFound(idOrPrefix)
	}
	if matchCount > 1 {
		return "", zero, ambiguous(idOrPrefix)
	}
	return foundPath, found, nil
}

// findFoodFile finds the file path for a food by ID or prefix.
func (s *MarkdownStore) findFoodFile(idOrPrefix string) (string, *models.Food, error) {
	return matchID(idOrPrefix, s.walkFoodFiles, func(f *models.Food) uuid.UUID { return f.ID })
}

// findMealFile finds the file path for a meal by ID or prefix.
func (s *MarkdownStore) findMealFile(idOrPrefix string) (string, *models.Meal, error) {
	return matchID(idOrPrefix, s.walkMealFiles, func(m *models.Meal) uuid.UUID { return m.ID })
}

// --- Repository interface methods ---

// CreateFood stores a new food as a markdown file.
func (s *MarkdownStore) CreateFood(f *models.Food) error {
	if f.Tags == nil {
		f.Tags = []string{}
	}
	return s.writeFoodFile(f)
}

// GetFood retrieves a food by ID or ID prefix.
func (s *MarkdownStore) GetFood(idOrPrefix string) (*models.Food, error) {
	_, f, err := s.findFoodFile(idOrPrefix)
	return f, err
}

// FindFoodByBarcode returns the oldest food carrying the given barcode.
func (s *MarkdownStore) FindFoodByBarcode(barcode string) (*models.Food, error) {
	var found *models.Food
	err := s.walkFoodFiles(func(_ string, f *models.Food) error {
		if f.Barcode != nil && *f.Barcode == barcode {
			if found == nil || f.CreatedAt.Before(found.CreatedAt) {
				found = f
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound("barcode " + barcode)
	}
	return found, nil
}

// SearchFoods finds foods whose name or brand contains query, ignoring case.
func (s *MarkdownStore) SearchFoods(query string, limit int) ([]*models.Food, error) {
	q := strings.ToLower(query)
	return s.collectFoods(limit, func(f *models.Food) bool {
		if strings.Contains(strings.ToLower(f.Name), q) {
			return true
		}
		return f.Brand != nil && strings.Contains(strings.ToLower(*f.Brand), q)
	})
}

// ListFoods retrieves foods with optional filtering by category.
// Results are sorted by name.
func (s *MarkdownStore) ListFoods(category *string, limit int) ([]*models.Food, error) {
	return s.collectFoods(limit, func(f *models.Food) bool {
		return category == nil || strings.EqualFold(f.Category, *category)
	})
}

func (s *MarkdownStore) collectFoods(limit int, keep func(*models.Food) bool) ([]*models.Food, error) {
	var foods []*models.Food
	err := s.walkFoodFiles(func(_ string, f *models.Food) error {
		if keep(f) {
			foods = append(foods, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(foods, func(i, j int) bool {
		return strings.ToLower(foods[i].Name) < strings.ToLower(foods[j].Name)
	})
	if limit > 0 && len(foods) > limit {
		foods = foods[:limit]
	}
	return foods, nil
}

// UpdateFood overwrites a stored food. A renamed food moves to a new file.
func (s *MarkdownStore) UpdateFood(f *models.Food) error {
	path, _, err := s.findFoodFile(f.ID.String())
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	if err := s.writeFoodFile(f); err != nil {
		return err
	}
	if newPath := s.foodFilePath(f); newPath != path {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old food file: %w", err)
		}
	}
	return nil
}

// DeleteFood removes a food by ID or prefix.
func (s *MarkdownStore) DeleteFood(idOrPrefix string) error {
	path, _, err := s.findFoodFile(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	return os.Remove(path)
}

// DeleteAllFoods removes every food file and returns how many were removed.
func (s *MarkdownStore) DeleteAllFoods() (int, error) {
	count := 0
	err := walkMarkdown(s.foodsDir(), func(path string) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("delete all foods: %w", err)
	}
	return count, nil
}

// CreateMeal stores a new meal (with its items) as a markdown file.
func (s *MarkdownStore) CreateMeal(m *models.Meal) error {
	if m.UserID == "" {
		m.UserID = models.DefaultUserID
	}
	return s.writeMealFile(m)
}

// GetMeal retrieves a meal by ID or ID prefix.
func (s *MarkdownStore) GetMeal(idOrPrefix string) (*models.Meal, error) {
	_, m, err := s.findMealFile(idOrPrefix)
	return m, err
}

// ListMeals retrieves meals matching filter, ordered by date and meal slot.
func (s *MarkdownStore) ListMeals(filter MealFilter) ([]*models.Meal, error) {
	var meals []*models.Meal
	err := s.walkMealFiles(func(_ string, m *models.Meal) error {
		if filter.Matches(m) {
			meals = append(meals, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(meals, func(i, j int) bool { return lessMeal(meals[i], meals[j]) })
	if filter.Limit > 0 && len(meals) > filter.Limit {
		meals = meals[:filter.Limit]
	}
	return meals, nil
}

// UpdateMeal overwrites a stored meal. A meal whose date or type changed
// moves to a new file.
func (s *MarkdownStore) UpdateMeal(m *models.Meal) error {
	path, _, err := s.findMealFile(m.ID.String())
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	if err := s.writeMealFile(m); err != nil {
		return err
	}
	if newPath := s.mealFilePath(m); newPath != path {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old meal file: %w", err)
		}
	}
	return nil
}

// DeleteMeal removes a meal and all its items.
func (s *MarkdownStore) DeleteMeal(idOrPrefix string) error {
	path, _, err := s.findMealFile(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return os.Remove(path)
}

// DeleteAllMeals removes every meal file and returns how many were removed.
func (s *MarkdownStore) DeleteAllMeals() (int, error) {
	count := 0
	err := walkMarkdown(s.mealsDir(), func(path string) error {
		if err := os.Remove(path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("delete all meals: %w", err)
	}
	return count, nil
}

// GetAllData retrieves all data for export.
func (s *MarkdownStore) GetAllData() (*ExportData, error) {
	return collectAll(s)
}

// ImportData imports data from an export format.
func (s *MarkdownStore) ImportData(data *ExportData) error {
	return importAll(s, data)
}
