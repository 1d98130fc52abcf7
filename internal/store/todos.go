package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lingua-todo-backend/internal/model"
)

func todosKey(userID string) string {
	return todoPrefix + userID
}

// GetTodos reads and deserializes a user's collection. Legacy records
// are upgraded transparently on every read; the upgrade is idempotent.
func (s *Store) GetTodos(userID string) ([]model.Todo, error) {
	raw, ok, err := s.get(todosKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.Todo{}, nil
	}
	todos, err := decodeTodos([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode todos for %s: %w", userID, err)
	}
	return todos, nil
}

// SaveTodos persists the entire collection back to the user's slot.
func (s *Store) SaveTodos(userID string, todos []model.Todo) error {
	raw, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("encode todos for %s: %w", userID, err)
	}
	return s.set(todosKey(userID), string(raw))
}

// AddTodo assigns id, owner and timestamps, then appends the todo to
// the user's collection.
func (s *Store) AddTodo(userID string, todo model.Todo) (model.Todo, error) {
	todos, err := s.GetTodos(userID)
	if err != nil {
		return model.Todo{}, err
	}

	now := time.Now().UTC()
	todo.ID = uuid.NewString()
	todo.UserID = userID
	todo.CreatedAt = now
	todo.UpdatedAt = now
	if todo.Translations == nil {
		todo.Translations = map[string]model.Translation{}
	}
	if todo.Subtasks == nil {
		todo.Subtasks = []model.Subtask{}
	}
	if err := todo.Validate(); err != nil {
		return model.Todo{}, err
	}

	todos = append(todos, todo)
	if err := s.SaveTodos(userID, todos); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo applies a partial mutation to one todo and refreshes its
// updatedAt. The whole collection is written back in one call, so the
// caller never observes a partially applied patch.
func (s *Store) UpdateTodo(userID, todoID string, mutate func(*model.Todo)) (model.Todo, error) {
	todos, err := s.GetTodos(userID)
	if err != nil {
		return model.Todo{}, err
	}

	for i := range todos {
		if todos[i].ID != todoID {
			continue
		}
		mutate(&todos[i])
		todos[i].ID = todoID
		todos[i].UserID = userID
		todos[i].UpdatedAt = time.Now().UTC()
		if err := s.SaveTodos(userID, todos); err != nil {
			return model.Todo{}, err
		}
		return todos[i], nil
	}
	return model.Todo{}, ErrNotFound
}

// DeleteTodo removes a todo and, with it, all of its subtasks.
func (s *Store) DeleteTodo(userID, todoID string) error {
	todos, err := s.GetTodos(userID)
	if err != nil {
		return err
	}

	kept := todos[:0]
	for _, t := range todos {
		if t.ID != todoID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(todos) {
		return ErrNotFound
	}
	return s.SaveTodos(userID, kept)
}

// SaveTranslation stores an alternate-language pair under the
// lower-cased language name. Existing entries are overwritten, never
// pruned.
func (s *Store) SaveTranslation(userID, todoID, language, title, description string) error {
	_, err := s.UpdateTodo(userID, todoID, func(t *model.Todo) {
		if t.Translations == nil {
			t.Translations = map[string]model.Translation{}
		}
		t.Translations[strings.ToLower(language)] = model.Translation{
			Title:       title,
			Description: description,
		}
	})
	return err
}

func (s *Store) GetTranslation(userID, todoID, language string) (model.Translation, bool, error) {
	todos, err := s.GetTodos(userID)
	if err != nil {
		return model.Translation{}, false, err
	}
	for _, t := range todos {
		if t.ID == todoID {
			tr, ok := t.Translation(language)
			return tr, ok, nil
		}
	}
	return model.Translation{}, false, nil
}

// NewSubtasks builds a batch of subtasks appended after the given
// tail index, preserving the order of titles.
func NewSubtasks(titles []string, startIndex int) []model.Subtask {
	out := make([]model.Subtask, 0, len(titles))
	for i, title := range titles {
		out = append(out, model.Subtask{
			ID:         uuid.NewString(),
			Title:      title,
			Completed:  false,
			OrderIndex: startIndex + i,
		})
	}
	return out
}

type exportEnvelope struct {
	User       *model.CurrentUser `json:"user,omitempty"`
	Todos      []model.Todo       `json:"todos"`
	ExportedAt time.Time          `json:"exportedAt"`
}

// ExportUserData serializes the session marker and the user's todos
// into a single JSON document.
func (s *Store) ExportUserData(userID string) (string, error) {
	todos, err := s.GetTodos(userID)
	if err != nil {
		return "", err
	}
	env := exportEnvelope{Todos: todos, ExportedAt: time.Now().UTC()}
	if cu, ok, err := s.CurrentUser(); err == nil && ok {
		env.User = &cu
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(raw), nil
}

// ImportUserData replaces the user's collection with the todos of an
// exported document. Records pass through the same legacy upgrade as a
// normal read.
func (s *Store) ImportUserData(userID, jsonData string) error {
	var env struct {
		Todos json.RawMessage `json:"todos"`
	}
	if err := json.Unmarshal([]byte(jsonData), &env); err != nil {
		return fmt.Errorf("decode import: %w", err)
	}
	if len(env.Todos) == 0 {
		return fmt.Errorf("import: missing todos array")
	}
	todos, err := decodeTodos(env.Todos)
	if err != nil {
		return fmt.Errorf("decode import todos: %w", err)
	}
	return s.SaveTodos(userID, todos)
}
