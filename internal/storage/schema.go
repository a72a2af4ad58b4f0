// ABOUTME: SQLite schema for foods, meals and meal_items.
// ABOUTME: Migrations run in order and PRAGMA user_version counts the applied ones.
package storage

import "fmt"

// migrations must only ever be appended to.
var migrations = []string{
	// 1: initial tables. meal_items.food_id has no foreign key so items
	// outlive a deleted food and degrade to a warning instead.
	`
	CREATE TABLE IF NOT EXISTS foods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		category TEXT NOT NULL,
		barcode TEXT,
		per_100g TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS meals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		meal_date TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		notes TEXT,
		totals TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS meal_items (
		id TEXT PRIMARY KEY,
		meal_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		food_id TEXT NOT NULL,
		food_name TEXT NOT NULL,
		grams REAL NOT NULL,
		nutrients TEXT,
		FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_foods_category ON foods(category);
	CREATE INDEX IF NOT EXISTS idx_foods_barcode ON foods(barcode);
	CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(meal_date);
	CREATE INDEX IF NOT EXISTS idx_meals_date_type ON meals(meal_date, meal_type);
	CREATE INDEX IF NOT EXISTS idx_meal_items_meal ON meal_items(meal_id, position);
	`,
}

// SchemaVersion is the user_version of a fully migrated database.
func SchemaVersion() int {
	return len(migrations)
}

func (d *DB) schemaVersion() (int, error) {
	var v int
	err := d.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// initSchema applies every migration newer than the file's user_version.
func (d *DB) initSchema() error {
	version, err := d.schemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := d.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: set version: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", i+1, err)
		}
	}
	return nil
}
