package ai

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// HTTP handlers for the intermediary endpoints. They always use the
// direct completion path with the key supplied in the request body; a
// proxy that called itself through the proxied path would loop.

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// allowMethod handles the OPTIONS preflight and rejects everything but
// POST. Returns false when the request was already answered.
func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return false
	case http.MethodPost:
		return true
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
}

func gatewayStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func gatewayMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return "Invalid OpenAI API key. Please check your API key and try again."
	case errors.Is(err, ErrRateLimited):
		return "OpenAI API rate limit exceeded. Please try again later."
	case errors.Is(err, ErrQuotaExceeded):
		return "OpenAI API quota exceeded. Please check your OpenAI account."
	default:
		return fallback
	}
}

// TranslateHandler serves POST /translate.
func TranslateHandler(c *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}

		var body translateRequest
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.Text == "" || body.TargetLanguage == "" || body.OpenAIKey == "" {
			writeError(w, http.StatusBadRequest,
				"Missing required fields: text, targetLanguage, and openaiKey are required")
			return
		}
		if !ValidateAPIKey(body.OpenAIKey) {
			writeError(w, http.StatusBadRequest, "Invalid OpenAI API key format")
			return
		}

		translated, err := c.translateDirect(r.Context(), body.Text, body.TargetLanguage, body.OpenAIKey)
		if err != nil {
			log.Println("translate failed:", err)
			writeError(w, gatewayStatus(err),
				gatewayMessage(err, "Translation failed. Please try again."))
			return
		}

		writeJSON(w, http.StatusOK, translateResponse{TranslatedText: translated})
	}
}

// GenerateSubtasksHandler serves POST /generate-subtasks.
func GenerateSubtasksHandler(c *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}

		var body subtaskRequest
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.TodoTitle == "" || body.OpenAIKey == "" {
			writeError(w, http.StatusBadRequest,
				"Missing required fields: todoTitle and openaiKey are required")
			return
		}
		if !ValidateAPIKey(body.OpenAIKey) {
			writeError(w, http.StatusBadRequest, "Invalid OpenAI API key format")
			return
		}

		targetLanguage := body.TargetLanguage
		if targetLanguage == "" {
			targetLanguage = "English"
		}

		titles, err := c.generateSubtasksDirect(r.Context(), body.TodoTitle, body.TodoDescription, body.OpenAIKey, targetLanguage)
		if err != nil {
			log.Println("generate subtasks failed:", err)
			writeError(w, gatewayStatus(err),
				gatewayMessage(err, "Subtask generation failed. Please try again."))
			return
		}

		writeJSON(w, http.StatusOK, subtaskResponse{Subtasks: titles})
	}
}
