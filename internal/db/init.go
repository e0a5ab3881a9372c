// Package db opens the relational store and applies the schema.
//
// PostgreSQL is the production backend. SQLite (in-memory or file) serves
// local development and end-to-end tests; every query in the repository
// package is written to run unchanged on both.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const sqlitePrefix = "sqlite://"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    hashed_password TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    role TEXT NOT NULL DEFAULT 'user'
);

ALTER TABLE users ADD COLUMN IF NOT EXISTS phone_number TEXT;

CREATE TABLE IF NOT EXISTS todos (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority INTEGER NOT NULL CHECK (priority BETWEEN 1 AND 5),
    complete BOOLEAN NOT NULL DEFAULT FALSE,
    owner_id BIGINT NOT NULL REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS todos_owner_id_idx ON todos (owner_id);

CREATE TABLE IF NOT EXISTS books (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    hashed_password TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    role TEXT NOT NULL DEFAULT 'user',
    phone_number TEXT
);

CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority INTEGER NOT NULL CHECK (priority BETWEEN 1 AND 5),
    complete BOOLEAN NOT NULL DEFAULT FALSE,
    owner_id INTEGER NOT NULL REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS todos_owner_id_idx ON todos (owner_id);

CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
);
`

// seedBooks is the initial public catalog.
const seedBooks = `
INSERT INTO books (id, title, author, description, rating) VALUES
    (1, 'Computer Science Pro', 'codingwithroby', 'A very nice book!', 5),
    (2, 'Title Two', 'Author Two', 'Description Two', 3),
    (3, 'Title Three', 'Author Three', 'Description Three', 5),
    (4, 'Title Four', 'Author Four', 'Description Four', 2),
    (5, 'Title Five', 'Author Five', 'Description Five', 1),
    (6, 'Title Six', 'Author Two', 'Description Six', 4)
ON CONFLICT (id) DO NOTHING;
`

// Open connects to the store named by dsn and applies the schema.
// A dsn starting with "sqlite://" selects SQLite; anything else is handed to lib/pq.
func Open(dsn string) (*sql.DB, string, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		db, err := InitSQLite(strings.TrimPrefix(dsn, sqlitePrefix))
		return db, DriverSQLite, err
	}
	db, err := InitPostgres(dsn)
	return db, DriverPostgres, err
}

// InitPostgres opens a PostgreSQL pool, checks connectivity and applies the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := applySchema(db, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// InitSQLite opens a SQLite database at path (":memory:" for a private
// in-memory store) and applies the schema.
func InitSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// one connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := applySchema(db, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(db *sql.DB, schema string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, seedBooks); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	return nil
}
