package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lingua-todo-backend/internal/ai"
	"lingua-todo-backend/internal/model"
	"lingua-todo-backend/internal/store"
)

var (
	ErrNotAuthenticated   = errors.New("todos: no authenticated user")
	ErrTranslationMissing = errors.New("todos: no stored translation for language")
)

// Gateway is the completion boundary the AI-assisted operations call.
type Gateway interface {
	Translate(ctx context.Context, text, targetLanguage, apiKey string) (string, error)
	GenerateSubtasks(ctx context.Context, title, description, apiKey, targetLanguage string) ([]string, error)
}

// Service applies the task aggregate operations: in-memory mutation
// rules enforced here, durability mirrored through the store on every
// call.
type Service struct {
	store  *store.Store
	gw     Gateway
	apiKey string
}

// NewService wires the aggregate operations. An empty apiKey puts the
// AI-assisted operations in demo mode.
func NewService(st *store.Store, gw Gateway, apiKey string) *Service {
	return &Service{store: st, gw: gw, apiKey: apiKey}
}

func (s *Service) List(userID string) ([]model.Todo, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.store.GetTodos(userID)
}

func (s *Service) get(userID, todoID string) (model.Todo, error) {
	todos, err := s.store.GetTodos(userID)
	if err != nil {
		return model.Todo{}, err
	}
	for _, t := range todos {
		if t.ID == todoID {
			return t, nil
		}
	}
	return model.Todo{}, store.ErrNotFound
}

// Add creates a todo. The original* fields anchor to the given text
// and are never overwritten afterward.
func (s *Service) Add(userID, title, description string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	if strings.TrimSpace(title) == "" {
		return model.Todo{}, model.ErrEmptyTitle
	}

	return s.store.AddTodo(userID, model.Todo{
		Title:               title,
		Description:         description,
		Completed:           false,
		OriginalLanguage:    "en",
		OriginalTitle:       title,
		OriginalDescription: description,
		CurrentLanguage:     "en",
		Translations:        map[string]model.Translation{},
		Subtasks:            []model.Subtask{},
	})
}

// Patch is a partial update of the mutable display fields.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (s *Service) Update(userID, todoID string, patch Patch) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
	})
}

func (s *Service) Delete(userID, todoID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	return s.store.DeleteTodo(userID, todoID)
}

func (s *Service) ToggleComplete(userID, todoID string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		t.Completed = !t.Completed
	})
}

// AddSubtasks appends a batch after the existing subtasks; it never
// replaces. Order indices continue from the current tail.
func (s *Service) AddSubtasks(userID, todoID string, titles []string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	if len(titles) == 0 {
		return model.Todo{}, fmt.Errorf("todos: no subtask titles given")
	}
	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		t.Subtasks = append(t.Subtasks, store.NewSubtasks(titles, t.NextOrderIndex())...)
	})
}

func (s *Service) ToggleSubtask(userID, todoID, subtaskID string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}

	todo, err := s.get(userID, todoID)
	if err != nil {
		return model.Todo{}, err
	}
	found := false
	for _, st := range todo.Subtasks {
		if st.ID == subtaskID {
			found = true
			break
		}
	}
	if !found {
		return model.Todo{}, store.ErrNotFound
	}

	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			}
		}
	})
}

func (s *Service) ClearSubtasks(userID, todoID string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		t.Subtasks = []model.Subtask{}
	})
}

// AddTranslation stores a translated pair under the lower-cased
// language name. It must precede SwitchToLanguage for that language.
func (s *Service) AddTranslation(userID, todoID, language, title, description string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	if strings.TrimSpace(language) == "" || strings.TrimSpace(title) == "" {
		return model.Todo{}, fmt.Errorf("todos: language and translated title required")
	}
	if err := s.store.SaveTranslation(userID, todoID, language, title, description); err != nil {
		return model.Todo{}, err
	}
	return s.get(userID, todoID)
}

// SwitchToLanguage points the display fields at a stored translation.
// A language with no stored translation is an explicit error, not a
// silent no-op.
func (s *Service) SwitchToLanguage(userID, todoID, language string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}

	todo, err := s.get(userID, todoID)
	if err != nil {
		return model.Todo{}, err
	}
	tr, ok := todo.Translation(language)
	if !ok {
		return model.Todo{}, fmt.Errorf("%w: %s", ErrTranslationMissing, strings.ToLower(language))
	}

	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		t.Title = tr.Title
		t.Description = tr.Description
		t.CurrentLanguage = strings.ToLower(language)
	})
}

// SwitchToOriginal restores the display fields from the original*
// anchors, unconditionally.
func (s *Service) SwitchToOriginal(userID, todoID string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	return s.store.UpdateTodo(userID, todoID, func(t *model.Todo) {
		t.Title = t.OriginalTitle
		t.Description = t.OriginalDescription
		t.CurrentLanguage = t.OriginalLanguage
	})
}

// Translate runs the gateway over the todo's current title and
// description, stores the result as a translation, and returns the
// updated todo. It does not switch the display language.
func (s *Service) Translate(ctx context.Context, userID, todoID, language string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}
	if strings.TrimSpace(language) == "" {
		return model.Todo{}, fmt.Errorf("todos: target language required")
	}

	todo, err := s.get(userID, todoID)
	if err != nil {
		return model.Todo{}, err
	}

	display := ai.DisplayLanguage(language)
	title, err := s.gw.Translate(ctx, todo.Title, display, s.apiKey)
	if err != nil {
		return model.Todo{}, err
	}
	description := ""
	if todo.Description != "" {
		description, err = s.gw.Translate(ctx, todo.Description, display, s.apiKey)
		if err != nil {
			return model.Todo{}, err
		}
	}

	return s.AddTranslation(userID, todoID, language, title, description)
}

// GenerateSubtasks asks the gateway for subtasks in the todo's current
// language, parses the answer, and appends the batch.
func (s *Service) GenerateSubtasks(ctx context.Context, userID, todoID string) (model.Todo, error) {
	if userID == "" {
		return model.Todo{}, ErrNotAuthenticated
	}

	todo, err := s.get(userID, todoID)
	if err != nil {
		return model.Todo{}, err
	}

	titles, err := s.gw.GenerateSubtasks(ctx, todo.Title, todo.Description,
		s.apiKey, ai.DisplayLanguage(todo.CurrentLanguage))
	if err != nil {
		return model.Todo{}, err
	}
	return s.AddSubtasks(userID, todoID, titles)
}

// Export serializes the user's collection together with the session
// marker.
func (s *Service) Export(userID string) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	return s.store.ExportUserData(userID)
}

// Import replaces the user's collection with an exported document.
func (s *Service) Import(userID, jsonData string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	return s.store.ImportUserData(userID, jsonData)
}
