package todos

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"lingua-todo-backend/internal/ai"
	"lingua-todo-backend/internal/auth"
	"lingua-todo-backend/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service failures onto HTTP statuses. Gateway
// statuses pass through so the client can distinguish a bad key from a
// rate limit.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrTranslationMissing):
		http.Error(w, "translation not stored for that language", http.StatusConflict)
	case errors.Is(err, ai.ErrInvalidAPIKey):
		http.Error(w, "invalid OpenAI API key", http.StatusUnauthorized)
	case errors.Is(err, ai.ErrRateLimited):
		http.Error(w, "rate limit exceeded, try again later", http.StatusTooManyRequests)
	case errors.Is(err, ai.ErrQuotaExceeded):
		http.Error(w, "OpenAI quota exceeded", http.StatusPaymentRequired)
	case errors.Is(err, ai.ErrGatewayFailure), errors.Is(err, ai.ErrUnparsableResponse):
		log.Println("gateway failure:", err)
		http.Error(w, "completion request failed", http.StatusBadGateway)
	default:
		log.Println("todos error:", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func userID(r *http.Request) string {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// ListHandler serves GET /todos.
func ListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todos, err := svc.List(userID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todos)
	}
}

// CreateHandler serves POST /todos.
func CreateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		todo, err := svc.Add(userID(r), body.Title, body.Description)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, todo)
	}
}

// UpdateHandler serves PATCH /todos/{id}.
func UpdateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		todo, err := svc.Update(userID(r), r.PathValue("id"), patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// DeleteHandler serves DELETE /todos/{id}.
func DeleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(userID(r), r.PathValue("id")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// ToggleHandler serves POST /todos/{id}/toggle.
func ToggleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todo, err := svc.ToggleComplete(userID(r), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// AddSubtasksHandler serves POST /todos/{id}/subtasks. With "generate"
// set, the titles come from the completion gateway; otherwise the
// given titles are appended as-is.
func AddSubtasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Titles   []string `json:"titles"`
			Generate bool     `json:"generate"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		var err error
		var todo any
		if body.Generate {
			todo, err = svc.GenerateSubtasks(r.Context(), userID(r), r.PathValue("id"))
		} else {
			todo, err = svc.AddSubtasks(userID(r), r.PathValue("id"), body.Titles)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// ToggleSubtaskHandler serves POST /todos/{id}/subtasks/{subtaskID}/toggle.
func ToggleSubtaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todo, err := svc.ToggleSubtask(userID(r), r.PathValue("id"), r.PathValue("subtaskID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// ClearSubtasksHandler serves DELETE /todos/{id}/subtasks.
func ClearSubtasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todo, err := svc.ClearSubtasks(userID(r), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// TranslateHandler serves POST /todos/{id}/translate.
func TranslateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Language string `json:"language"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		todo, err := svc.Translate(r.Context(), userID(r), r.PathValue("id"), body.Language)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// SwitchLanguageHandler serves POST /todos/{id}/language.
func SwitchLanguageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Language string `json:"language"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		todo, err := svc.SwitchToLanguage(userID(r), r.PathValue("id"), body.Language)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// SwitchOriginalHandler serves POST /todos/{id}/language/original.
func SwitchOriginalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		todo, err := svc.SwitchToOriginal(userID(r), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

// ExportHandler serves GET /todos/export.
func ExportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Export(userID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(data))
	}
}

// ImportHandler serves POST /todos/import.
func ImportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body failed", http.StatusBadRequest)
			return
		}
		if err := svc.Import(userID(r), string(raw)); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
