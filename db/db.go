package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Initialize creates the necessary tables if they don't exist
func (db *DB) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			provider_account_id TEXT PRIMARY KEY,
			display_name TEXT,
			iban TEXT,
			currency TEXT,
			status TEXT DEFAULT 'active',
			balance_value TEXT,
			balance_currency TEXT,
			balance_updated_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			reference_id TEXT PRIMARY KEY,
			account_id TEXT,
			amount_value TEXT,
			amount_currency TEXT,
			booking_date TEXT,
			value_date TEXT,
			description TEXT,
			status TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rate_limits (
			account_id TEXT,
			scope TEXT,
			day TEXT,
			limit_per_day INTEGER,
			remaining_calls INTEGER,
			reset_time TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (account_id, scope, day)
		)`,
		`CREATE TABLE IF NOT EXISTS sync_logs (
			id TEXT PRIMARY KEY,
			sync_type TEXT,
			scheduled_time TEXT,
			executed_at TIMESTAMP,
			total_accounts INTEGER,
			successful_accounts INTEGER,
			failed_accounts INTEGER,
			results TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}
