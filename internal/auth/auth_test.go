package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"lingua-todo-backend/internal/db"
	"lingua-todo-backend/internal/model"
	"lingua-todo-backend/internal/store"
)

var testSecret = []byte("test-secret")

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	st, err := store.New(conn)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return st
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	uid, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != "u1" {
		t.Fatalf("uid = %q, want u1", uid)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken([]byte("other-secret"), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := ParseToken(testSecret, "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: expected ErrInvalidToken, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	mw := New(testSecret)
	var gotUID string
	handler := mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// No Authorization header.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", rec.Code)
	}

	// Malformed token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}

	// Valid token reaches the handler with the user id in context.
	token, err := GenerateToken(testSecret, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
	if gotUID != "u1" {
		t.Fatalf("context uid = %q, want u1", gotUID)
	}
}

func postCredentials(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return body.Token, body.User.ID
}

func TestRegisterHandler(t *testing.T) {
	st := newTestStore(t)
	h := RegisterHandler(st, testSecret)

	rec := postCredentials(h, `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	token, uid := decodeSession(t, rec)
	if token == "" || uid == "" {
		t.Fatal("session response missing token or user id")
	}
	if parsed, err := ParseToken(testSecret, token); err != nil || parsed != uid {
		t.Fatalf("token does not carry the user id: %v", err)
	}

	// Registration logs the user in.
	cu, ok, err := st.CurrentUser()
	if err != nil || !ok || !cu.IsLoggedIn || cu.ID != uid {
		t.Fatalf("session slot not set: %+v ok=%v err=%v", cu, ok, err)
	}

	if rec := postCredentials(h, `{"username":"alice","password":"other"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", rec.Code)
	}
	if rec := postCredentials(h, `{"username":"bob"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status = %d, want 400", rec.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.CreateUser("alice", "secret1"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	h := LoginHandler(st, testSecret)

	rec := postCredentials(h, `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeSession(t, rec)
	if token == "" {
		t.Fatal("missing token")
	}

	if rec := postCredentials(h, `{"username":"alice","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", rec.Code)
	}
	if rec := postCredentials(h, `{"username":"nobody","password":"secret1"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d, want 401", rec.Code)
	}
}

func TestLogoutHandler(t *testing.T) {
	st := newTestStore(t)
	if err := st.SetCurrentUser(model.CurrentUser{ID: "u1", IsLoggedIn: true}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	rec := httptest.NewRecorder()
	LogoutHandler(st)(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok, _ := st.CurrentUser(); ok {
		t.Fatal("session slot should be cleared")
	}
}

func TestMeHandler(t *testing.T) {
	st := newTestStore(t)
	mw := New(testSecret)
	h := mw.Wrap(MeHandler(st))

	token, err := GenerateToken(testSecret, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	authed := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h(rec, req)
		return rec
	}

	// Valid token but no session slot: logged out.
	rec := authed()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var loggedOut struct {
		IsLoggedIn bool `json:"isLoggedIn"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&loggedOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loggedOut.IsLoggedIn {
		t.Fatal("cleared session must report isLoggedIn=false")
	}

	// With a matching session slot the marker comes back.
	if err := st.SetCurrentUser(model.CurrentUser{ID: "u1", Username: "alice", IsLoggedIn: true}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	rec = authed()
	var cu model.CurrentUser
	if err := json.NewDecoder(rec.Body).Decode(&cu); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cu.IsLoggedIn || cu.Username != "alice" {
		t.Fatalf("unexpected session %+v", cu)
	}

	// A slot owned by a different user also reports logged out.
	if err := st.SetCurrentUser(model.CurrentUser{ID: "u2", Username: "bob", IsLoggedIn: true}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	rec = authed()
	if err := json.NewDecoder(rec.Body).Decode(&loggedOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loggedOut.IsLoggedIn {
		t.Fatal("foreign session must report isLoggedIn=false")
	}
}
