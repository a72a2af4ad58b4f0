// ABOUTME: SQLite store for foods and meals on modernc.org/sqlite (pure Go).
// ABOUTME: Connection pragmas travel in the DSN so every pooled connection gets them.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBFile is the SQLite file name inside the data directory.
const DBFile = "nutrition.db"

// connPragmas are applied by the driver to each new connection.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// DB is the SQLite Repository.
type DB struct {
	db *sql.DB
}

var _ Repository = (*DB)(nil)

// Open opens or creates the database at dbPath and brings its schema up to
// date.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	sqlDB, err := sql.Open("sqlite", dbPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Meal rewrites delete and reinsert items; one writer keeps them serialized.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: sqlDB}
	if err := d.initSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	// The file exists once the schema has been written.
	if err := os.Chmod(dbPath, 0600); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}
	return d, nil
}

// DataDir is $XDG_DATA_HOME/nutrition, or ~/.local/share/nutrition.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "nutrition")
}

// DefaultDBPath is DBFile inside DataDir.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), DBFile)
}

func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}
