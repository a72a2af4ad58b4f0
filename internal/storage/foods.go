// ABOUTME: Food catalog CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for foods, with prefix and barcode lookup.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

const foodColumns = `id, name, brand, category, barcode, per_100g, tags, created_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateFood stores a new food in the database.
func (d *DB) CreateFood(f *models.Food) error {
	profile, tags, err := encodeFood(f)
	if err != nil {
		return fmt.Errorf("create food: %w", err)
	}

	query := `
		INSERT INTO foods (id, name, brand, category, barcode, per_100g, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.Exec(query,
		f.ID.String(),
		f.Name,
		f.Brand,
		f.Category,
		f.Barcode,
		profile,
		tags,
		f.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create food: %w", err)
	}
	return nil
}

// GetFood retrieves a food by ID or ID prefix.
func (d *DB) GetFood(idOrPrefix string) (*models.Food, error) {
	id, err := d.resolveID("foods", idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + foodColumns + ` FROM foods WHERE id = ?`
	f, err := scanFood(d.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(idOrPrefix)
	}
	return f, err
}

// FindFoodByBarcode returns the food carrying the given barcode.
func (d *DB) FindFoodByBarcode(barcode string) (*models.Food, error) {
	query := `SELECT ` + foodColumns + ` FROM foods WHERE barcode = ? ORDER BY created_at LIMIT 1`
	f, err := scanFood(d.db.QueryRow(query, barcode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("barcode " + barcode)
	}
	return f, err
}

// SearchFoods finds foods whose name or brand contains query, ignoring case.
func (d *DB) SearchFoods(query string, limit int) ([]*models.Food, error) {
	q := `
		SELECT ` + foodColumns + `
		FROM foods
		WHERE name LIKE '%' || ? || '%' OR brand LIKE '%' || ? || '%'
		ORDER BY name COLLATE NOCASE
	`
	args := []any{query, query}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}
	defer rows.Close()

	return scanFoods(rows)
}

// ListFoods retrieves foods with optional filtering by category.
// Results are sorted by name.
func (d *DB) ListFoods(category *string, limit int) ([]*models.Food, error) {
	var query string
	var args []any

	if category != nil {
		query = `
			SELECT ` + foodColumns + `
			FROM foods
			WHERE LOWER(category) = LOWER(?)
			ORDER BY name COLLATE NOCASE
		`
		args = append(args, *category)
	} else {
		query = `
			SELECT ` + foodColumns + `
			FROM foods
			ORDER BY name COLLATE NOCASE
		`
	}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	return scanFoods(rows)
}

// UpdateFood overwrites a stored food, matched by its full ID.
func (d *DB) UpdateFood(f *models.Food) error {
	profile, tags, err := encodeFood(f)
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}

	query := `
		UPDATE foods
		SET name = ?, brand = ?, category = ?, barcode = ?, per_100g = ?, tags = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query, f.Name, f.Brand, f.Category, f.Barcode, profile, tags, f.ID.String())
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	if affected == 0 {
		return notFound(f.ID.String())
	}
	return nil
}

// DeleteFood removes a food by ID or prefix. Meal items that reference it
// are left untouched.
func (d *DB) DeleteFood(idOrPrefix string) error {
	id, err := d.resolveID("foods", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM foods WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	if affected == 0 {
		return notFound(idOrPrefix)
	}

	return nil
}

// DeleteAllFoods empties the catalog and returns how many foods were removed.
func (d *DB) DeleteAllFoods() (int, error) {
	result, err := d.db.Exec("DELETE FROM foods")
	if err != nil {
		return 0, fmt.Errorf("delete all foods: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all foods: %w", err)
	}
	return int(affected), nil
}

// resolveID finds the full ID in table from an ID or unique prefix.
func (d *DB) resolveID(table, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}

	// table is always a package constant, never user input
	query := `SELECT id FROM ` + table + ` WHERE id LIKE ? || '%' LIMIT 2`
	rows, err := d.db.Query(query, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", table, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan %s ID: %w", table, err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve %s ID: %w", table, err)
	}

	if len(matches) == 0 {
		return "", notFound(idOrPrefix)
	}
	if len(matches) > 1 {
		return "", ambiguous(idOrPrefix)
	}

	return matches[0], nil
}

func encodeFood(f *models.Food) (profile, tags string, err error) {
	p, err := json.Marshal(f.Per100g)
	if err != nil {
		return "", "", fmt.Errorf("encode nutrient profile: %w", err)
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	t, err := json.Marshal(f.Tags)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	return string(p), string(t), nil
}

// scanFood scans a single row into a Food struct.
func scanFood(row rowScanner) (*models.Food, error) {
	var f models.Food
	var idStr, profile, tags, createdAt string
	var brand, barcode sql.NullString

	err := row.Scan(&idStr, &f.Name, &brand, &f.Category, &barcode, &profile, &tags, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan food: %w", err)
	}

	f.ID, _ = uuid.Parse(idStr)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if brand.Valid {
		f.Brand = &brand.String
	}
	if barcode.Valid {
		f.Barcode = &barcode.String
	}
	if err := json.Unmarshal([]byte(profile), &f.Per100g); err != nil {
		return nil, fmt.Errorf("decode nutrient profile for %s: %w", idStr, err)
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil || f.Tags == nil {
		f.Tags = []string{}
	}

	return &f, nil
}

// scanFoods scans multiple rows into a slice of Foods.
func scanFoods(rows *sql.Rows) ([]*models.Food, error) {
	var foods []*models.Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}
