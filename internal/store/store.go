package store

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("store: username already exists")
	ErrInvalidCredentials = errors.New("store: invalid credentials")
	ErrNotFound           = errors.New("store: not found")
)

// Fixed namespaces, matching the browser localStorage keys the data
// model was designed around.
const (
	usersKey       = "todo_users"
	currentUserKey = "current_user"
	todoPrefix     = "todo_items_"
)

// Store is durable key-value storage: string keys, JSON-encoded string
// values. One slot holds the users list, one the current session, and
// one per user id the todo collection. Every mutating call persists the
// whole updated slot back; last writer wins.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: nil db")
	}
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("init kv table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *Store) remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// ClearAllData drops every slot the store owns: users, session, and all
// per-user todo collections.
func (s *Store) ClearAllData() error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ? OR key = ? OR key LIKE ?`,
		usersKey, currentUserKey, todoPrefix+"%")
	if err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
