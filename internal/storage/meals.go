// ABOUTME: Meal and MealItem CRUD operations for SQLite storage.
// ABOUTME: Items are rewritten inside a transaction whenever their meal is saved.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

const mealColumns = `id, user_id, meal_date, meal_type, completed, completed_at, notes, totals, created_at, updated_at`

// mealOrder sorts by day, then breakfast/lunch/dinner/snack, then creation.
const mealOrder = `
	ORDER BY meal_date,
		CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 3 END,
		created_at`

// CreateMeal stores a new meal and its items in the database.
func (d *DB) CreateMeal(m *models.Meal) error {
	totals, err := json.Marshal(m.Totals)
	if err != nil {
		return fmt.Errorf("create meal: encode totals: %w", err)
	}
	if m.UserID == "" {
		m.UserID = models.DefaultUserID
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO meals (` + mealColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		m.ID.String(),
		m.UserID,
		m.DateString(),
		string(m.Type),
		m.Completed,
		formatOptionalTime(m.CompletedAt),
		m.Notes,
		string(totals),
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create meal: %w", err)
	}

	if err := insertItems(tx, m); err != nil {
		return fmt.Errorf("create meal: %w", err)
	}

	return tx.Commit()
}

// GetMeal retrieves a meal and its items by ID or ID prefix.
func (d *DB) GetMeal(idOrPrefix string) (*models.Meal, error) {
	id, err := d.resolveID("meals", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = ?`
	m, err := scanMeal(d.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(idOrPrefix)
	}
	if err != nil {
		return nil, err
	}

	if m.Items, err = d.listItems(m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMeals retrieves meals matching filter, ordered by date and meal slot.
func (d *DB) ListMeals(filter MealFilter) ([]*models.Meal, error) {
	var where []string
	var args []any

	if filter.From != nil {
		where = append(where, "meal_date >= ?")
		args = append(args, models.Day(*filter.From).Format(models.DateFormat))
	}
	if filter.To != nil {
		where = append(where, "meal_date <= ?")
		args = append(args, models.Day(*filter.To).Format(models.DateFormat))
	}
	if filter.Type != nil {
		where = append(where, "meal_type = ?")
		args = append(args, string(*filter.Type))
	}

	query := `SELECT ` + mealColumns + ` FROM meals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += mealOrder
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	meals, err := d.queryMeals(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	for _, m := range meals {
		if m.Items, err = d.listItems(m.ID); err != nil {
			return nil, err
		}
	}
	return meals, nil
}

// UpdateMeal overwrites a stored meal, matched by its full ID, replacing
// all of its items.
func (d *DB) UpdateMeal(m *models.Meal) error {
	totals, err := json.Marshal(m.Totals)
	if err != nil {
		return fmt.Errorf("update meal: encode totals: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE meals
		SET meal_date = ?, meal_type = ?, completed = ?, completed_at = ?, notes = ?, totals = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query,
		m.DateString(),
		string(m.Type),
		m.Completed,
		formatOptionalTime(m.CompletedAt),
		m.Notes,
		string(totals),
		m.UpdatedAt.Format(time.RFC3339),
		m.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	if affected == 0 {
		return notFound(m.ID.String())
	}

	if _, err := tx.Exec("DELETE FROM meal_items WHERE meal_id = ?", m.ID.String()); err != nil {
		return fmt.Errorf("update meal: clear items: %w", err)
	}
	if err := insertItems(tx, m); err != nil {
		return fmt.Errorf("update meal: %w", err)
	}

	return tx.Commit()
}

// DeleteMeal removes a meal and all its items (cascade delete).
func (d *DB) DeleteMeal(idOrPrefix string) error {
	id, err := d.resolveID("meals", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}

	// CASCADE is enabled, so deleting the meal deletes its items
	result, err := d.db.Exec("DELETE FROM meals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	if affected == 0 {
		return notFound(idOrPrefix)
	}

	return nil
}

// DeleteAllMeals removes every meal and returns how many were deleted.
func (d *DB) DeleteAllMeals() (int, error) {
	result, err := d.db.Exec("DELETE FROM meals")
	if err != nil {
		return 0, fmt.Errorf("delete all meals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all meals: %w", err)
	}
	return int(affected), nil
}

// queryMeals runs query and scans every row, closing the cursor before
// returning so callers can issue follow-up queries on the single connection.
func (d *DB) queryMeals(query string, args ...any) ([]*models.Meal, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []*models.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// listItems returns a meal's items in their stored order.
func (d *DB) listItems(mealID uuid.UUID) ([]models.MealItem, error) {
	query := `
		SELECT id, food_id, food_name, grams, nutrients
		FROM meal_items
		WHERE meal_id = ?
		ORDER BY position
	`
	rows, err := d.db.Query(query, mealID.String())
	if err != nil {
		return nil, fmt.Errorf("list meal items: %w", err)
	}
	defer rows.Close()

	items := []models.MealItem{}
	for rows.Next() {
		var it models.MealItem
		var idStr, foodID string
		var nutrients sql.NullString

		if err := rows.Scan(&idStr, &foodID, &it.FoodName, &it.Grams, &nutrients); err != nil {
			return nil, fmt.Errorf("scan meal item: %w", err)
		}
		it.ID, _ = uuid.Parse(idStr)
		it.FoodID, _ = uuid.Parse(foodID)
		if nutrients.Valid && nutrients.String != "" {
			var p models.NutrientProfile
			if err := json.Unmarshal([]byte(nutrients.String), &p); err == nil {
				it.Nutrients = &p
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertItems(tx *sql.Tx, m *models.Meal) error {
	query := `
		INSERT INTO meal_items (id, meal_id, position, food_id, food_name, grams, nutrients)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, it := range m.Items {
		var nutrients *string
		if it.Nutrients != nil {
			b, err := json.Marshal(it.Nutrients)
			if err != nil {
				return fmt.Errorf("encode item nutrients: %w", err)
			}
			s := string(b)
			nutrients = &s
		}
		if _, err := tx.Exec(query,
			it.ID.String(),
			m.ID.String(),
			i,
			it.FoodID.String(),
			it.FoodName,
			it.Grams,
			nutrients,
		); err != nil {
			return fmt.Errorf("insert meal item: %w", err)
		}
	}
	return nil
}

// scanMeal scans a single row into a Meal struct without its items.
func scanMeal(row rowScanner) (*models.Meal, error) {
	var m models.Meal
	var idStr, date, mealType, totals, createdAt, updatedAt string
	var completedAt, notes sql.NullString

	err := row.Scan(&idStr, &m.UserID, &date, &mealType, &m.Completed, &completedAt, &notes, &totals, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan meal: %w", err)
	}

	m.ID, _ = uuid.Parse(idStr)
	m.Type = models.MealType(mealType)
	m.Date, err = models.ParseDay(date)
	if err != nil {
		return nil, fmt.Errorf("scan meal %s: %w", idStr, err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if completedAt.Valid {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			m.CompletedAt = &t
		}
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	if err := json.Unmarshal([]byte(totals), &m.Totals); err != nil {
		return nil, fmt.Errorf("decode totals for %s: %w", idStr, err)
	}
	m.Items = []models.MealItem{}

	return &m, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
