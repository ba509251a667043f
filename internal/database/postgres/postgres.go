package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"onboarding-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		_, err = defaultDB.Exec(createQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the account and admin tables. The UNIQUE constraint on
// email is the source of truth for duplicate prevention: the service-level
// existence check is only a fast path with a friendlier error, and two
// concurrent registrations for the same email are settled here.
func EnsureSchema(db *sqlx.DB) error {
	accountTable := `
		CREATE TABLE IF NOT EXISTS %s (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			email             TEXT NOT NULL UNIQUE,
			phone             TEXT NOT NULL,
			address           TEXT NOT NULL DEFAULT '',
			pincode           TEXT NOT NULL DEFAULT '',
			block             TEXT,
			is_active         BOOLEAN NOT NULL DEFAULT FALSE,
			is_paid           BOOLEAN NOT NULL DEFAULT FALSE,
			order_id          TEXT NOT NULL DEFAULT '',
			qr_code_image_url TEXT NOT NULL DEFAULT '',
			customer_id       TEXT NOT NULL DEFAULT '',
			assigned_target   INTEGER NOT NULL DEFAULT 0,
			target_date       TIMESTAMPTZ,
			owner_email       TEXT NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	for _, table := range []string{"field_executives", "employees"} {
		if _, err := db.Exec(fmt.Sprintf(accountTable, table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	adminTable := `
		CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := db.Exec(adminTable); err != nil {
		return fmt.Errorf("failed to create table admins: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_employees_owner_created ON employees (owner_email, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_field_executives_order ON field_executives (order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_order ON employees (order_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// RetryConnectOnFailed blocks until the database is reachable, retrying at the
// given interval. The returned handle is never nil, so callers can hand it to
// repositories without a nil check.
func RetryConnectOnFailed(wait time.Duration, cfg config.PostgresConfig) *sqlx.DB {
	return retryConnect(wait, func() (*sqlx.DB, error) {
		return ConnectAndCreateDB(cfg)
	})
}

func retryConnect(wait time.Duration, connect func() (*sqlx.DB, error)) *sqlx.DB {
	for {
		db, err := connect()
		if err == nil {
			log.Printf("database retry connection successfully")
			return db
		}
		log.Printf("failed to retry connect database: %s, next retry in %v", err, wait)
		time.Sleep(wait)
	}
}
