// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Runs the same food and meal CRUD checks against SQLite and markdown backends.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

// setupTestDB creates a SQLite database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "nutrition-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "nutrition.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// backends returns one fresh repository per storage implementation.
func backends(t *testing.T) map[string]Repository {
	t.Helper()
	return map[string]Repository{
		"sqlite":   setupTestDB(t),
		"markdown": setupTestMarkdownStore(t),
	}
}

func testFood(name, category string, kcal float64) *models.Food {
	return models.NewFood(name, category, models.NutrientProfile{Calories: kcal, Protein: kcal / 20})
}

func testMeal(t *testing.T, date string, mt models.MealType, foods ...*models.Food) *models.Meal {
	t.Helper()
	d, err := models.ParseDay(date)
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	m := models.NewMeal(d, mt)
	for _, f := range foods {
		item := models.NewMealItem(f, 100)
		p := f.Per100g
		item.Nutrients = &p
		m.Items = append(m.Items, item)
		m.Totals = m.Totals.Add(f.Per100g)
	}
	return m
}

func TestCreateAndGetFood(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Greek Yogurt", "dairy", 97).WithBrand("Fage").WithBarcode("5200435000027").WithTags("Protein")
			f.Per100g.Calcium = 110
			f.Per100g.VitaminD = 0.1

			if err := repo.CreateFood(f); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}

			got, err := repo.GetFood(f.ID.String())
			if err != nil {
				t.Fatalf("GetFood failed: %v", err)
			}
			if got.ID != f.ID || got.Name != "Greek Yogurt" || got.Category != "dairy" {
				t.Errorf("food mismatch: got %+v", got)
			}
			if got.Brand == nil || *got.Brand != "Fage" {
				t.Errorf("Brand mismatch: got %v", got.Brand)
			}
			if got.Barcode == nil || *got.Barcode != "5200435000027" {
				t.Errorf("Barcode mismatch: got %v", got.Barcode)
			}
			if got.Per100g != f.Per100g {
				t.Errorf("Per100g mismatch: got %+v, want %+v", got.Per100g, f.Per100g)
			}
			if len(got.Tags) != 1 || got.Tags[0] != "protein" {
				t.Errorf("Tags mismatch: got %v", got.Tags)
			}
		})
	}
}

func TestGetFoodByPrefix(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Banana", "fruit", 89)
			if err := repo.CreateFood(f); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}

			got, err := repo.GetFood(f.ID.String()[:8])
			if err != nil {
				t.Fatalf("GetFood by prefix failed: %v", err)
			}
			if got.ID != f.ID {
				t.Errorf("ID mismatch: got %v, want %v", got.ID, f.ID)
			}
		})
	}
}

func TestGetFoodNotFound(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetFood(uuid.New().String())
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for full ID, got %v", err)
			}
			_, err = repo.GetFood("ffffffff")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for prefix, got %v", err)
			}
		})
	}
}

func TestAmbiguousPrefix(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := testFood("A", "x", 1)
			b := testFood("B", "x", 1)
			a.ID = uuid.MustParse("abcd0000-0000-4000-8000-000000000001")
			b.ID = uuid.MustParse("abcd0000-0000-4000-8000-000000000002")
			for _, f := range []*models.Food{a, b} {
				if err := repo.CreateFood(f); err != nil {
					t.Fatalf("CreateFood failed: %v", err)
				}
			}

			_, err := repo.GetFood("abcd")
			if !errors.Is(err, ErrAmbiguousPrefix) {
				t.Errorf("expected ErrAmbiguousPrefix, got %v", err)
			}
			if _, err := repo.GetFood("abcd0000-0000-4000-8000-000000000002"); err != nil {
				t.Errorf("full ID should still resolve: %v", err)
			}
		})
	}
}

func TestFindFoodByBarcode(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Oat Milk", "drinks", 46).WithBarcode("7394376616037")
			if err := repo.CreateFood(f); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}
			if err := repo.CreateFood(testFood("Water", "drinks", 0)); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}

			got, err := repo.FindFoodByBarcode("7394376616037")
			if err != nil {
				t.Fatalf("FindFoodByBarcode failed: %v", err)
			}
			if got.ID != f.ID {
				t.Errorf("ID mismatch: got %v, want %v", got.ID, f.ID)
			}

			if _, err := repo.FindFoodByBarcode("000"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestSearchAndListFoods(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			foods := []*models.Food{
				testFood("Rolled Oats", "grains", 379),
				testFood("brown rice", "grains", 370),
				testFood("Apple", "fruit", 52),
				testFood("Oatcake", "snacks", 441).WithBrand("Nairn's"),
				testFood("Crispbread", "snacks", 380).WithBrand("Ryvita Oat"),
			}
			for _, f := range foods {
				if err := repo.CreateFood(f); err != nil {
					t.Fatalf("CreateFood failed: %v", err)
				}
			}

			found, err := repo.SearchFoods("oat", 0)
			if err != nil {
				t.Fatalf("SearchFoods failed: %v", err)
			}
			if len(found) != 3 {
				t.Errorf("expected 3 matches for 'oat' (name or brand), got %d", len(found))
			}

			limited, err := repo.SearchFoods("oat", 1)
			if err != nil {
				t.Fatalf("SearchFoods failed: %v", err)
			}
			if len(limited) != 1 {
				t.Errorf("expected limit to apply, got %d", len(limited))
			}

			all, err := repo.ListFoods(nil, 0)
			if err != nil {
				t.Fatalf("ListFoods failed: %v", err)
			}
			if len(all) != 5 {
				t.Fatalf("expected 5 foods, got %d", len(all))
			}
			if all[0].Name != "Apple" || all[1].Name != "brown rice" {
				t.Errorf("expected case-insensitive name order, got %s, %s", all[0].Name, all[1].Name)
			}

			grains := "GRAINS"
			byCat, err := repo.ListFoods(&grains, 0)
			if err != nil {
				t.Fatalf("ListFoods failed: %v", err)
			}
			if len(byCat) != 2 {
				t.Errorf("expected 2 grains, got %d", len(byCat))
			}
		})
	}
}

func TestUpdateFood(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Chedar", "dairy", 403)
			if err := repo.CreateFood(f); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}

			f.Name = "Cheddar"
			f.WithTags("aged")
			if err := repo.UpdateFood(f); err != nil {
				t.Fatalf("UpdateFood failed: %v", err)
			}

			got, err := repo.GetFood(f.ID.String())
			if err != nil {
				t.Fatalf("GetFood failed: %v", err)
			}
			if got.Name != "Cheddar" || !got.HasTag("aged") {
				t.Errorf("update not persisted: %+v", got)
			}

			all, _ := repo.ListFoods(nil, 0)
			if len(all) != 1 {
				t.Errorf("expected exactly one food after rename, got %d", len(all))
			}

			ghost := testFood("Ghost", "x", 0)
			if err := repo.UpdateFood(ghost); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound updating missing food, got %v", err)
			}
		})
	}
}

func TestDeleteFoods(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, b, c := testFood("A", "x", 1), testFood("B", "x", 2), testFood("C", "x", 3)
			for _, f := range []*models.Food{a, b, c} {
				if err := repo.CreateFood(f); err != nil {
					t.Fatalf("CreateFood failed: %v", err)
				}
			}

			if err := repo.DeleteFood(a.ID.String()[:8]); err != nil {
				t.Fatalf("DeleteFood failed: %v", err)
			}
			if _, err := repo.GetFood(a.ID.String()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected deleted food to be gone, got %v", err)
			}
			if err := repo.DeleteFood(a.ID.String()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound deleting twice, got %v", err)
			}

			n, err := repo.DeleteAllFoods()
			if err != nil {
				t.Fatalf("DeleteAllFoods failed: %v", err)
			}
			if n != 2 {
				t.Errorf("expected 2 foods deleted, got %d", n)
			}
			left, _ := repo.ListFoods(nil, 0)
			if len(left) != 0 {
				t.Errorf("expected empty catalog, got %d foods", len(left))
			}
		})
	}
}

func TestCreateAndGetMeal(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			oats := testFood("Oats", "grains", 389)
			milk := testFood("Milk", "dairy", 42)
			m := testMeal(t, "2024-03-15", models.MealBreakfast, oats, milk).WithNotes("before the run")
			now := time.Now().UTC().Truncate(time.Second)
			m.SetCompleted(true, now)

			if err := repo.CreateMeal(m); err != nil {
				t.Fatalf("CreateMeal failed: %v", err)
			}

			got, err := repo.GetMeal(m.ID.String()[:8])
			if err != nil {
				t.Fatalf("GetMeal failed: %v", err)
			}
			if got.ID != m.ID || got.Type != models.MealBreakfast || got.DateString() != "2024-03-15" {
				t.Errorf("meal mismatch: got %+v", got)
			}
			if got.UserID != models.DefaultUserID {
				t.Errorf("UserID = %q, want %q", got.UserID, models.DefaultUserID)
			}
			if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
				t.Errorf("completion mismatch: %v %v", got.Completed, got.CompletedAt)
			}
			if got.Notes == nil || *got.Notes != "before the run" {
				t.Errorf("Notes mismatch: got %v", got.Notes)
			}
			if got.Totals != m.Totals {
				t.Errorf("Totals mismatch: got %+v, want %+v", got.Totals, m.Totals)
			}
			if len(got.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(got.Items))
			}
			if got.Items[0].FoodName != "Oats" || got.Items[1].FoodName != "Milk" {
				t.Errorf("item order not preserved: %s, %s", got.Items[0].FoodName, got.Items[1].FoodName)
			}
			if got.Items[1].FoodID != milk.ID || got.Items[1].Grams != 100 {
				t.Errorf("item mismatch: %+v", got.Items[1])
			}
			if got.Items[0].Nutrients == nil || *got.Items[0].Nutrients != oats.Per100g {
				t.Errorf("item nutrients mismatch: %+v", got.Items[0].Nutrients)
			}
		})
	}
}

func TestListMealsFilterAndOrder(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Bread", "grains", 250)
			meals := []*models.Meal{
				testMeal(t, "2024-03-16", models.MealBreakfast, f),
				testMeal(t, "2024-03-15", models.MealSnack, f),
				testMeal(t, "2024-03-15", models.MealBreakfast, f),
				testMeal(t, "2024-03-15", models.MealDinner, f),
				testMeal(t, "2024-03-10", models.MealLunch, f),
			}
			for _, m := range meals {
				if err := repo.CreateMeal(m); err != nil {
					t.Fatalf("CreateMeal failed: %v", err)
				}
			}

			all, err := repo.ListMeals(MealFilter{})
			if err != nil {
				t.Fatalf("ListMeals failed: %v", err)
			}
			want := []string{
				"2024-03-10 lunch",
				"2024-03-15 breakfast",
				"2024-03-15 dinner",
				"2024-03-15 snack",
				"2024-03-16 breakfast",
			}
			if len(all) != len(want) {
				t.Fatalf("expected %d meals, got %d", len(want), len(all))
			}
			for i, m := range all {
				if got := m.DateString() + " " + string(m.Type); got != want[i] {
					t.Errorf("meal %d = %s, want %s", i, got, want[i])
				}
			}

			day, _ := models.ParseDay("2024-03-15")
			onDay, err := repo.ListMeals(DayFilter(day))
			if err != nil {
				t.Fatalf("ListMeals failed: %v", err)
			}
			if len(onDay) != 3 {
				t.Errorf("expected 3 meals on 2024-03-15, got %d", len(onDay))
			}

			from, _ := models.ParseDay("2024-03-11")
			to, _ := models.ParseDay("2024-03-16")
			ranged, err := repo.ListMeals(RangeFilter(from, to))
			if err != nil {
				t.Fatalf("ListMeals failed: %v", err)
			}
			if len(ranged) != 4 {
				t.Errorf("expected 4 meals in range, got %d", len(ranged))
			}

			breakfast := models.MealBreakfast
			typed, err := repo.ListMeals(MealFilter{Type: &breakfast, Limit: 1})
			if err != nil {
				t.Fatalf("ListMeals failed: %v", err)
			}
			if len(typed) != 1 || typed[0].DateString() != "2024-03-15" {
				t.Errorf("expected earliest breakfast only, got %v", typed)
			}
		})
	}
}

func TestUpdateMeal(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := testFood("Rice", "grains", 130)
			b := testFood("Beans", "legumes", 127)
			m := testMeal(t, "2024-03-15", models.MealLunch, a)
			if err := repo.CreateMeal(m); err != nil {
				t.Fatalf("CreateMeal failed: %v", err)
			}

			next, _ := models.ParseDay("2024-03-16")
			m.Date = next
			m.Type = models.MealDinner
			item := models.NewMealItem(b, 100)
			m.Items = append(m.Items, item)
			m.Totals = m.Totals.Add(b.Per100g)
			m.UpdatedAt = time.Now()
			if err := repo.UpdateMeal(m); err != nil {
				t.Fatalf("UpdateMeal failed: %v", err)
			}

			got, err := repo.GetMeal(m.ID.String())
			if err != nil {
				t.Fatalf("GetMeal failed: %v", err)
			}
			if got.DateString() != "2024-03-16" || got.Type != models.MealDinner {
				t.Errorf("date/type not updated: %s %s", got.DateString(), got.Type)
			}
			if len(got.Items) != 2 || got.Items[1].ID != item.ID {
				t.Errorf("items not replaced: %+v", got.Items)
			}
			if got.Totals.Calories != 257 {
				t.Errorf("Totals.Calories = %v, want 257", got.Totals.Calories)
			}

			all, _ := repo.ListMeals(MealFilter{})
			if len(all) != 1 {
				t.Errorf("expected the meal to move, not duplicate; got %d meals", len(all))
			}

			m.Items = m.Items[:1]
			if err := repo.UpdateMeal(m); err != nil {
				t.Fatalf("UpdateMeal failed: %v", err)
			}
			got, _ = repo.GetMeal(m.ID.String())
			if len(got.Items) != 1 {
				t.Errorf("expected removed item to be gone, got %d items", len(got.Items))
			}

			ghost := testMeal(t, "2024-03-15", models.MealSnack)
			if err := repo.UpdateMeal(ghost); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound updating missing meal, got %v", err)
			}
		})
	}
}

func TestDeleteMeals(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Soup", "prepared", 40)
			m1 := testMeal(t, "2024-03-15", models.MealLunch, f)
			m2 := testMeal(t, "2024-03-16", models.MealLunch, f)
			for _, m := range []*models.Meal{m1, m2} {
				if err := repo.CreateMeal(m); err != nil {
					t.Fatalf("CreateMeal failed: %v", err)
				}
			}

			if err := repo.DeleteMeal(m1.ID.String()); err != nil {
				t.Fatalf("DeleteMeal failed: %v", err)
			}
			if _, err := repo.GetMeal(m1.ID.String()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			n, err := repo.DeleteAllMeals()
			if err != nil {
				t.Fatalf("DeleteAllMeals failed: %v", err)
			}
			if n != 1 {
				t.Errorf("expected 1 meal deleted, got %d", n)
			}
		})
	}
}

func TestDeletingFoodKeepsMealItems(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f := testFood("Pie", "dessert", 300)
			if err := repo.CreateFood(f); err != nil {
				t.Fatalf("CreateFood failed: %v", err)
			}
			m := testMeal(t, "2024-03-15", models.MealDinner, f)
			if err := repo.CreateMeal(m); err != nil {
				t.Fatalf("CreateMeal failed: %v", err)
			}

			if err := repo.DeleteFood(f.ID.String()); err != nil {
				t.Fatalf("DeleteFood failed: %v", err)
			}

			got, err := repo.GetMeal(m.ID.String())
			if err != nil {
				t.Fatalf("GetMeal failed: %v", err)
			}
			if len(got.Items) != 1 || got.Items[0].FoodID != f.ID {
				t.Errorf("expected item referencing deleted food to remain, got %+v", got.Items)
			}
		})
	}
}

func TestSQLiteCascadeDeletesItems(t *testing.T) {
	db := setupTestDB(t)

	f := testFood("Toast", "grains", 260)
	m := testMeal(t, "2024-03-15", models.MealBreakfast, f, f)
	if err := db.CreateMeal(m); err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}
	if err := db.DeleteMeal(m.ID.String()); err != nil {
		t.Fatalf("DeleteMeal failed: %v", err)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM meal_items").Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade delete of items, %d remain", count)
	}
}

func TestMealFilterMatches(t *testing.T) {
	m := testMeal(t, "2024-03-15", models.MealLunch)
	from, _ := models.ParseDay("2024-03-15")
	to, _ := models.ParseDay("2024-03-15")
	lunch, dinner := models.MealLunch, models.MealDinner

	tests := []struct {
		name   string
		filter MealFilter
		want   bool
	}{
		{"empty", MealFilter{}, true},
		{"inclusive bounds", MealFilter{From: &from, To: &to}, true},
		{"type match", MealFilter{Type: &lunch}, true},
		{"type mismatch", MealFilter{Type: &dinner}, false},
		{"after range", func() MealFilter {
			d, _ := models.ParseDay("2024-03-16")
			return MealFilter{From: &d}
		}(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(m); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataDirAndDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DataDir(); got != "/tmp/xdg-data/nutrition" {
		t.Errorf("DataDir = %s", got)
	}
	if got := DefaultDBPath(); got != "/tmp/xdg-data/nutrition/nutrition.db" {
		t.Errorf("DefaultDBPath = %s", got)
	}
}

func TestSchemaVersionRecorded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), DBFile)

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	v, err := db.schemaVersion()
	if err != nil {
		t.Fatalf("schemaVersion failed: %v", err)
	}
	if v != SchemaVersion() {
		t.Errorf("user_version = %d, want %d", v, SchemaVersion())
	}
	if err := db.CreateFood(testFood("Oats", "grains", 389)); err != nil {
		t.Fatalf("CreateFood failed: %v", err)
	}
	db.Close()

	// Reopening an up-to-date file keeps the data.
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()
	foods, err := db.ListFoods(nil, 0)
	if err != nil || len(foods) != 1 {
		t.Fatalf("Expected 1 food after reopen, got %d (%v)", len(foods), err)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), DBFile)

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := db.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion()+1)); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	db.Close()

	if _, err := Open(dbPath); err == nil {
		t.Error("Expected error opening a database from a newer version")
	}
}
