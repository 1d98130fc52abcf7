package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyUsername = errors.New("model: username is required")
	ErrEmptyPassword = errors.New("model: password is required")
	ErrEmptyTitle    = errors.New("model: todo title is required")
)

// User is a registered account. PasswordHash is a SHA-256 hex digest,
// never the plaintext.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CurrentUser is the advisory session marker kept in the store while a
// session is active. It is not a security boundary.
type CurrentUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// Translation is a stored alternate-language pair for a todo, keyed in
// Todo.Translations by the lower-cased language name.
type Translation struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Subtask struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
	OrderIndex int    `json:"orderIndex"`
}

// Todo is the aggregate root. OriginalTitle, OriginalDescription and
// OriginalLanguage are fixed at creation; Title/Description always
// mirror the variant selected by CurrentLanguage.
type Todo struct {
	ID                  string                 `json:"id"`
	UserID              string                 `json:"userId"`
	Title               string                 `json:"title"`
	Description         string                 `json:"description,omitempty"`
	Completed           bool                   `json:"completed"`
	OriginalLanguage    string                 `json:"originalLanguage"`
	OriginalTitle       string                 `json:"originalTitle"`
	OriginalDescription string                 `json:"originalDescription,omitempty"`
	CurrentLanguage     string                 `json:"currentLanguage"`
	Translations        map[string]Translation `json:"translations"`
	Subtasks            []Subtask              `json:"subtasks"`
	CreatedAt           time.Time              `json:"createdAt"`
	UpdatedAt           time.Time              `json:"updatedAt"`
}

func (t Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: todo id is required")
	}
	if strings.TrimSpace(t.UserID) == "" {
		return errors.New("model: todo user id is required")
	}
	if t.CurrentLanguage != t.OriginalLanguage {
		if _, ok := t.Translations[t.CurrentLanguage]; !ok {
			return errors.New("model: current language has no translation")
		}
	}
	return nil
}

// Translation returns the stored pair for a language, if any.
// Language names are matched case-insensitively.
func (t Todo) Translation(language string) (Translation, bool) {
	tr, ok := t.Translations[strings.ToLower(language)]
	return tr, ok
}

// NextOrderIndex is the index the next appended subtask receives.
// Indices are assigned sequentially and never renumbered.
func (t Todo) NextOrderIndex() int {
	return len(t.Subtasks)
}
