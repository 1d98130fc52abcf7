package store

import (
	"encoding/json"
	"time"

	"lingua-todo-backend/internal/model"
)

// Records written before translations became {title, description}
// pairs stored each translation as a bare string, and records written
// before language switching existed carry no original* fields at all.
// decodeTodos upgrades both shapes to the current one; upgraded data
// passes through unchanged, so the upgrade can run on every read.

type diskTodo struct {
	ID                  string                     `json:"id"`
	UserID              string                     `json:"userId"`
	Title               string                     `json:"title"`
	Description         string                     `json:"description"`
	Completed           bool                       `json:"completed"`
	OriginalLanguage    string                     `json:"originalLanguage"`
	OriginalTitle       string                     `json:"originalTitle"`
	OriginalDescription string                     `json:"originalDescription"`
	CurrentLanguage     string                     `json:"currentLanguage"`
	Translations        map[string]json.RawMessage `json:"translations"`
	Subtasks            []model.Subtask            `json:"subtasks"`
	CreatedAt           time.Time                  `json:"createdAt"`
	UpdatedAt           time.Time                  `json:"updatedAt"`
}

func decodeTodos(raw []byte) ([]model.Todo, error) {
	var disk []diskTodo
	if err := json.Unmarshal(raw, &disk); err != nil {
		return nil, err
	}
	out := make([]model.Todo, 0, len(disk))
	for _, d := range disk {
		out = append(out, upgradeTodo(d))
	}
	return out, nil
}

func upgradeTodo(d diskTodo) model.Todo {
	t := model.Todo{
		ID:                  d.ID,
		UserID:              d.UserID,
		Title:               d.Title,
		Description:         d.Description,
		Completed:           d.Completed,
		OriginalLanguage:    d.OriginalLanguage,
		OriginalTitle:       d.OriginalTitle,
		OriginalDescription: d.OriginalDescription,
		CurrentLanguage:     d.CurrentLanguage,
		Translations:        upgradeTranslations(d.Translations),
		Subtasks:            d.Subtasks,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}

	if t.OriginalTitle == "" {
		// Legacy record: anchor the original* fields to whatever the
		// record currently displays.
		t.OriginalTitle = t.Title
		t.OriginalDescription = t.Description
		if t.OriginalLanguage == "" {
			t.OriginalLanguage = "en"
		}
		t.CurrentLanguage = t.OriginalLanguage
	}
	return t
}

func upgradeTranslations(raw map[string]json.RawMessage) map[string]model.Translation {
	out := make(map[string]model.Translation, len(raw))
	for lang, entry := range raw {
		var asString string
		if err := json.Unmarshal(entry, &asString); err == nil {
			out[lang] = model.Translation{Title: asString}
			continue
		}
		var tr model.Translation
		if err := json.Unmarshal(entry, &tr); err == nil {
			out[lang] = tr
		}
	}
	return out
}
