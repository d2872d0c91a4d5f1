package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// Store keeps the provider fetch audit log. Computed series are never
// written here.
type Store struct {
	db *sql.DB

	// writeMu serialises audit writes; the historical sampler completes
	// many runs concurrently and SQLite allows a single writer.
	writeMu sync.Mutex
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyPragmas(db)

	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// applyPragmas tunes the connection. A failed pragma leaves SQLite defaults
// in place and is only logged.
func applyPragmas(db *sql.DB) {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			log.Printf("store: %s failed: %v", p, err)
		}
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
