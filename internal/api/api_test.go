// ABOUTME: Tests for the HTTP API using httptest against a temp SQLite store.
// ABOUTME: Covers CRUD routes, item mutations, error mapping, dashboard and metrics.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(filepath.Join(t.TempDir(), "nutrition.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	svc := tracker.New(db, nil, nil).WithClock(func() time.Time { return now })
	return NewServer(svc, nil, nil)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createFood(t *testing.T, s *Server, name string, p models.NutrientProfile) models.Food {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/v1/foods", tracker.FoodInput{Name: name, Category: "test", Per100g: p})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Food](t, w)
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestFoodRoutes(t *testing.T) {
	s := setupServer(t)
	f := createFood(t, s, "Banana", models.NutrientProfile{Calories: 89, Potassium: 358})

	w := do(t, s, http.MethodGet, "/api/v1/foods/"+f.ID.String()[:8], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Banana", decode[models.Food](t, w).Name)

	w = do(t, s, http.MethodGet, "/api/v1/foods?q=ban", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Food](t, w), 1)

	w = do(t, s, http.MethodPatch, "/api/v1/foods/"+f.ID.String(), map[string]any{"brand": "Chiquita"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Food](t, w)
	require.NotNil(t, updated.Brand)
	assert.Equal(t, "Chiquita", *updated.Brand)
	assert.Equal(t, f.Per100g, updated.Per100g)

	w = do(t, s, http.MethodDelete, "/api/v1/foods/"+f.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/foods/"+f.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestCreateFoodValidation(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/foods", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/foods", map[string]any{"name": "x", "per100g": map[string]any{"protein": -3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/foods", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMealLifecycle(t *testing.T) {
	s := setupServer(t)
	a := createFood(t, s, "Food A", models.NutrientProfile{Calories: 200, Protein: 10})
	b := createFood(t, s, "Food B", models.NutrientProfile{Calories: 50, Protein: 1})

	w := do(t, s, http.MethodPost, "/api/v1/meals", tracker.MealInput{
		Date: "2024-01-10",
		Type: "dinner",
		Items: []tracker.ItemInput{
			{FoodID: a.ID.String(), Grams: 150},
			{FoodID: b.ID.String(), Grams: 200},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[tracker.MealResult](t, w)
	m := created.Meal
	assert.Equal(t, 400.0, m.Totals.Calories)
	assert.Equal(t, 17.0, m.Totals.Protein)

	base := "/api/v1/meals/" + m.ID.String()

	w = do(t, s, http.MethodPatch, base+"/items/"+m.Items[1].ID.String(), map[string]any{"grams": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 350.0, decode[tracker.MealResult](t, w).Meal.Totals.Calories)

	w = do(t, s, http.MethodPatch, base+"/items/"+m.Items[1].ID.String(), map[string]any{"grams": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPatch, base+"/items/"+m.Items[1].ID.String(), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, base+"/items/"+m.Items[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50.0, decode[tracker.MealResult](t, w).Meal.Totals.Calories)

	w = do(t, s, http.MethodPost, base+"/items", tracker.ItemInput{FoodID: a.ID.String(), Grams: 50})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 150.0, decode[tracker.MealResult](t, w).Meal.Totals.Calories)

	w = do(t, s, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	completed := decode[models.Meal](t, w)
	assert.True(t, completed.Completed)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 150.0, completed.Totals.Calories)

	w = do(t, s, http.MethodPatch, base, map[string]any{"notes": "late", "completed": false})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[models.Meal](t, w)
	assert.False(t, patched.Completed)
	require.NotNil(t, patched.Notes)
	assert.Equal(t, "late", *patched.Notes)

	w = do(t, s, http.MethodGet, "/api/v1/meals?date=2024-01-10&type=dinner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Meal](t, w), 1)

	w = do(t, s, http.MethodGet, "/api/v1/meals?date=2024-01-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Meal](t, w))

	w = do(t, s, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMealErrors(t *testing.T) {
	s := setupServer(t)
	a := createFood(t, s, "Rice", models.NutrientProfile{Calories: 130})

	tests := []struct {
		name string
		body tracker.MealInput
		want int
	}{
		{"no items", tracker.MealInput{Type: "lunch"}, http.StatusBadRequest},
		{"bad type", tracker.MealInput{Type: "brunch", Items: []tracker.ItemInput{{FoodID: a.ID.String(), Grams: 10}}}, http.StatusBadRequest},
		{"negative grams", tracker.MealInput{Type: "lunch", Items: []tracker.ItemInput{{FoodID: a.ID.String(), Grams: -10}}}, http.StatusBadRequest},
		{"unknown food", tracker.MealInput{Type: "lunch", Items: []tracker.ItemInput{{FoodID: "00000000-0000-0000-0000-000000000000", Grams: 10}}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/meals", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestScheduleAndDashboard(t *testing.T) {
	s := setupServer(t)
	a := createFood(t, s, "Toast", models.NutrientProfile{Calories: 100, Protein: 5, Carbs: 15, Fat: 1})

	w := do(t, s, http.MethodPost, "/api/v1/meals", tracker.MealInput{Date: "2024-01-01", Type: "breakfast",
		Items: []tracker.ItemInput{{FoodID: a.ID.String(), Grams: 100}}})
	require.Equal(t, http.StatusCreated, w.Code)
	tmpl := decode[tracker.MealResult](t, w).Meal

	w = do(t, s, http.MethodPost, "/api/v1/schedule", tracker.ScheduleInput{
		TemplateID: tmpl.ID.String(),
		Start:      "2024-01-08",
		End:        "2024-01-10",
		Rule:       "daily",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sched := decode[tracker.ScheduleResult](t, w)
	assert.Len(t, sched.Meals, 3)

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?window=week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sum struct {
		MealCount    int                    `json:"mealCount"`
		Totals       models.NutrientProfile `json:"totals"`
		DailyAverage models.NutrientProfile `json:"dailyAverage"`
		Series       []struct {
			Date time.Time `json:"date"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 3, sum.MealCount)
	assert.Equal(t, 300.0, sum.Totals.Calories)
	assert.Equal(t, 100.0, sum.DailyAverage.Calories)
	require.Len(t, sum.Series, 7)
	for i := 1; i < len(sum.Series); i++ {
		assert.True(t, sum.Series[i-1].Date.Before(sum.Series[i].Date))
	}

	w = do(t, s, http.MethodGet, "/api/v1/dashboard?window=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/schedule", map[string]any{"template_id": tmpl.ID.String(), "rule": "hourly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, day := range []int{9, -1} {
		w = do(t, s, http.MethodPost, "/api/v1/schedule", map[string]any{
			"template_id": tmpl.ID.String(), "rule": "custom", "weekdays": []int{day},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "weekday %d", day)
	}
}

func TestLookupWithoutProvider(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodGet, "/api/v1/lookup?name=apple", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)
	do(t, s, http.MethodGet, "/api/v1/foods", nil)

	w := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `nutrition_http_requests_total{method="GET",route="/api/v1/foods",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrAmbiguousPrefix, http.StatusConflict},
		{tracker.ErrNoItems, http.StatusBadRequest},
		{models.ErrInvalidMealType, http.StatusBadRequest},
		{nutrition.ErrInvalidWeekday, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
