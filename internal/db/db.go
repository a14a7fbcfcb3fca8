// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/redwoodtel/callwave-backend/internal/config"
)

var DB *sql.DB

func Init(cfg config.Config) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("failed to ping DB: %v", err)
	}

	if err = Migrate(DB); err != nil {
		log.Fatalf("failed to run schema setup: %v", err)
	}

	log.Println("✅ Connected to database")
}

// Migrate creates the schema if it does not exist yet. Each statement is
// idempotent so it is safe to run on every startup.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS broadcasts (
			id SERIAL PRIMARY KEY,
			broadcast_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			total_numbers INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			in_progress INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS call_history (
			id SERIAL PRIMARY KEY,
			call_id TEXT UNIQUE NOT NULL,
			phone_number TEXT NOT NULL,
			direction TEXT NOT NULL,
			status TEXT NOT NULL,
			audio_file TEXT,
			caller_id TEXT,
			group_name TEXT,
			broadcast_id TEXT,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			duration INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS contact_groups (
			id SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			caller_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			id SERIAL PRIMARY KEY,
			group_id INTEGER NOT NULL REFERENCES contact_groups(id) ON DELETE CASCADE,
			phone_number TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
