// ABOUTME: Tests for MarkdownStore file layout and frontmatter helpers.
// ABOUTME: Verifies paths, file contents, and tolerance of stray files.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/nutrition/internal/models"
)

// setupTestMarkdownStore creates a MarkdownStore in a temp directory.
func setupTestMarkdownStore(t *testing.T) *MarkdownStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "nutrition-md-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	store, err := NewMarkdownStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create MarkdownStore: %v", err)
	}

	return store
}

func TestMarkdownStoreFoodFileLayout(t *testing.T) {
	store := setupTestMarkdownStore(t)

	f := testFood("Peanut Butter (Smooth)", "spreads", 588)
	if err := store.CreateFood(f); err != nil {
		t.Fatalf("CreateFood failed: %v", err)
	}

	want := filepath.Join(store.dataDir, "foods", "peanut-butter-smooth-"+f.ID.String()[:8]+".md")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("expected food file at %s: %v", want, err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Error("expected file to start with frontmatter delimiter")
	}
	for _, s := range []string{"name: Peanut Butter (Smooth)", "category: spreads", "per_100g:", "calories: 588"} {
		if !strings.Contains(content, s) {
			t.Errorf("expected %q in food file:\n%s", s, content)
		}
	}
}

func TestMarkdownStoreMealFileLayout(t *testing.T) {
	store := setupTestMarkdownStore(t)

	m := testMeal(t, "2024-03-05", models.MealDinner, testFood("Salmon", "fish", 208)).WithNotes("grilled, lemon")
	if err := store.CreateMeal(m); err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}

	want := filepath.Join(store.dataDir, "meals", "2024", "03", "2024-03-05-dinner-"+m.ID.String()[:8]+".md")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("expected meal file at %s: %v", want, err)
	}

	content := string(data)
	if !strings.Contains(content, "food_name: Salmon") {
		t.Errorf("expected items in frontmatter:\n%s", content)
	}
	if !strings.HasSuffix(strings.TrimSpace(content), "grilled, lemon") {
		t.Errorf("expected notes in body:\n%s", content)
	}
}

func TestMarkdownStoreIgnoresNonMarkdownFiles(t *testing.T) {
	store := setupTestMarkdownStore(t)

	if err := store.CreateFood(testFood("Kiwi", "fruit", 61)); err != nil {
		t.Fatalf("CreateFood failed: %v", err)
	}
	stray := filepath.Join(store.foodsDir(), "notes.txt")
	if err := os.WriteFile(stray, []byte("not a food"), 0600); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	foods, err := store.ListFoods(nil, 0)
	if err != nil {
		t.Fatalf("ListFoods failed: %v", err)
	}
	if len(foods) != 1 {
		t.Errorf("expected 1 food, got %d", len(foods))
	}
}

func TestMarkdownStoreEmpty(t *testing.T) {
	store := setupTestMarkdownStore(t)

	foods, err := store.ListFoods(nil, 0)
	if err != nil || len(foods) != 0 {
		t.Errorf("expected no foods and no error, got %d, %v", len(foods), err)
	}
	meals, err := store.ListMeals(MealFilter{})
	if err != nil || len(meals) != 0 {
		t.Errorf("expected no meals and no error, got %d, %v", len(meals), err)
	}
	n, err := store.DeleteAllMeals()
	if err != nil || n != 0 {
		t.Errorf("expected nothing deleted, got %d, %v", n, err)
	}
}

func TestMarkdownStoreRejectsCorruptFile(t *testing.T) {
	store := setupTestMarkdownStore(t)

	path := filepath.Join(store.foodsDir(), "broken.md")
	if err := atomicWrite(path, []byte("no frontmatter here")); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}

	if _, err := store.ListFoods(nil, 0); err == nil {
		t.Error("expected error reading a file without frontmatter")
	}
}

func TestDecodeFrontmatter(t *testing.T) {
	type doc struct {
		ID string `yaml:"id"`
	}
	tests := []struct {
		name     string
		input    string
		wantID   string
		wantBody string
		wantErr  bool
	}{
		{"with body", "---\nid: one\n---\nhello\n", "one", "hello", false},
		{"blank line before body", "---\nid: two\n---\n\nhello\n", "two", "hello", false},
		{"no body", "---\nid: three\n---\n", "three", "", false},
		{"no frontmatter", "# title\n", "", "", true},
		{"bad yaml", "---\nid: [unclosed\n---\n", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d doc
			body, err := decodeFrontmatter([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got body %q", body)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeFrontmatter failed: %v", err)
			}
			if d.ID != tt.wantID {
				t.Errorf("id = %q, want %q", d.ID, tt.wantID)
			}
			if strings.TrimSpace(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}

	var d doc
	if _, err := decodeFrontmatter([]byte("plain text"), &d); !errors.Is(err, errNoFrontmatter) {
		t.Errorf("missing frontmatter error = %v, want errNoFrontmatter", err)
	}
}

func TestRenderFrontmatterRoundTrip(t *testing.T) {
	type doc struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	}
	in := doc{"abc", "Tofu"}

	content, err := renderFrontmatter(&in, "\nbody text\n")
	if err != nil {
		t.Fatalf("renderFrontmatter failed: %v", err)
	}
	if !strings.HasPrefix(content, "---\nid: abc\nname: Tofu\n---\n") {
		t.Errorf("rendered = %q", content)
	}

	var out doc
	body, err := decodeFrontmatter([]byte(content), &out)
	if err != nil {
		t.Fatalf("decodeFrontmatter failed: %v", err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
	if strings.TrimSpace(body) != "body text" {
		t.Errorf("body = %q", body)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Peanut Butter":        "peanut-butter",
		"  Crème fraîche  ":    "crème-fraîche",
		"50% Dark Chocolate!!": "50-dark-chocolate",
		"***":                  "untitled",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAtomicWritePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.md")

	if err := atomicWrite(path, []byte("data")); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected temp file to be renamed away, found %d entries", len(entries))
	}
}
