package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lingua-todo-backend/internal/model"
)

// HashPassword returns the SHA-256 hex digest of a password. The digest
// is deterministic so Authenticate can recompute and compare it.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Store) users() ([]model.User, error) {
	raw, ok, err := s.get(usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *Store) saveUsers(users []model.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return s.set(usersKey, string(raw))
}

// CreateUser registers a new account. The username match is exact and
// case-sensitive; a taken name fails with ErrDuplicateUsername.
func (s *Store) CreateUser(username, password string) (model.User, error) {
	if username == "" {
		return model.User{}, model.ErrEmptyUsername
	}
	if password == "" {
		return model.User{}, model.ErrEmptyPassword
	}

	users, err := s.users()
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return model.User{}, ErrDuplicateUsername
		}
	}

	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: HashPassword(password),
		CreatedAt:    time.Now().UTC(),
	}
	users = append(users, user)
	if err := s.saveUsers(users); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Authenticate recomputes the password digest and compares. Any
// mismatch, including an unknown username, fails with
// ErrInvalidCredentials so callers cannot enumerate usernames.
func (s *Store) Authenticate(username, password string) (model.User, error) {
	users, err := s.users()
	if err != nil {
		return model.User{}, err
	}
	digest := HashPassword(password)
	for _, u := range users {
		if u.Username == username && u.PasswordHash == digest {
			return u, nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}
