// Package database implements the durable booking store on sqlite.
// All mutating booking operations run inside a single transaction with
// their invariant checks, so concurrent requests cannot observe or
// commit partial state.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"venuebook/internal/apperr"
	"venuebook/internal/lifecycle"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// Store-level sentinel errors.
var (
	ErrNotFound               = apperr.New(apperr.NotFound, "record not found")
	ErrOverlap                = apperr.New(apperr.Conflict, "the specified time overlaps with an existing booking")
	ErrConcurrentModification = apperr.New(apperr.Conflict, "record was modified concurrently")
)

// DB represents the database connection.
type DB struct {
	*sql.DB
	machine *lifecycle.Machine
	loc     *time.Location
	logger  *zerolog.Logger
}

// NewDB opens the database at path, applies migrations and wires the
// lifecycle machine that guards every status write.
func NewDB(path string, machine *lifecycle.Machine, loc *time.Location, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode plus a busy timeout keeps concurrent writers serialized
	// instead of failing immediately.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	instance := &DB{DB: db, machine: machine, loc: loc, logger: logger}

	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT,
			address TEXT,
			user_type TEXT NOT NULL DEFAULT 'customer',
			api_token TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_type TEXT NOT NULL,
			service_name TEXT UNIQUE NOT NULL,
			description TEXT,
			price_per_hour TEXT NOT NULL,
			availability_status TEXT NOT NULL DEFAULT 'Available',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS galleries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			image_url TEXT NOT NULL,
			caption TEXT,
			service_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (service_id) REFERENCES services(id)
		)`,

		// Times are zero-padded HH:MM text so SQL comparisons match
		// the half-open interval semantics used in Go.
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			booking_date DATETIME NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			total_unit_price TEXT NOT NULL,
			booking_status TEXT NOT NULL DEFAULT 'confirmed',
			reminder_sent BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (service_id) REFERENCES services(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS feedbacks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT,
			message TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			edited_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			booking_id INTEGER NOT NULL,
			payment_date DATETIME NOT NULL,
			amount TEXT NOT NULL,
			payment_method TEXT,
			payment_status TEXT NOT NULL DEFAULT 'Pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (booking_id) REFERENCES bookings(id)
		)`,

		// The overlap scan reads by service and date.
		`CREATE INDEX IF NOT EXISTS idx_bookings_service_date ON bookings(service_id, booking_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(booking_status)`,
		`CREATE INDEX IF NOT EXISTS idx_galleries_service ON galleries(service_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_participants ON messages(sender_id, recipient_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
