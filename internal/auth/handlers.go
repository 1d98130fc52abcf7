package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lingua-todo-backend/internal/model"
	"lingua-todo-backend/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sessionResponse(token string, user model.User) map[string]any {
	return map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
		},
	}
}

// RegisterHandler serves POST /auth/register.
func RegisterHandler(st *store.Store, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username == "" || body.Password == "" {
			http.Error(w, "username & password required", http.StatusBadRequest)
			return
		}

		user, err := st.CreateUser(body.Username, body.Password)
		if errors.Is(err, store.ErrDuplicateUsername) {
			http.Error(w, "username already exists", http.StatusConflict)
			return
		}
		if err != nil {
			log.Println("register failed:", err)
			http.Error(w, "registration failed", http.StatusInternalServerError)
			return
		}

		if err := st.SetCurrentUser(model.CurrentUser{
			ID:         user.ID,
			Username:   user.Username,
			IsLoggedIn: true,
		}); err != nil {
			log.Println("set current user failed:", err)
		}

		token, err := GenerateToken(secret, user.ID)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse(token, user))
	}
}

// LoginHandler serves POST /auth/login.
func LoginHandler(st *store.Store, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username == "" || body.Password == "" {
			http.Error(w, "username & password required", http.StatusBadRequest)
			return
		}

		user, err := st.Authenticate(body.Username, body.Password)
		if errors.Is(err, store.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Println("login failed:", err)
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}

		if err := st.SetCurrentUser(model.CurrentUser{
			ID:         user.ID,
			Username:   user.Username,
			IsLoggedIn: true,
		}); err != nil {
			log.Println("set current user failed:", err)
		}

		token, err := GenerateToken(secret, user.ID)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse(token, user))
	}
}

// LogoutHandler serves POST /auth/logout. Tokens are stateless; the
// server only clears the session slot.
func LogoutHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.ClearCurrentUser(); err != nil {
			log.Println("clear current user failed:", err)
			http.Error(w, "logout failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// MeHandler serves GET /auth/me.
func MeHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		cu, found, err := st.CurrentUser()
		if err != nil {
			log.Println("read current user failed:", err)
			http.Error(w, "session lookup failed", http.StatusInternalServerError)
			return
		}
		if !found || cu.ID != uid {
			// Token still valid but the session slot was cleared or
			// taken over by another login.
			writeJSON(w, http.StatusOK, map[string]any{
				"id":         uid,
				"isLoggedIn": false,
			})
			return
		}
		writeJSON(w, http.StatusOK, cu)
	}
}
