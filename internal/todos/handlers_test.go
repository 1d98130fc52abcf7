package todos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lingua-todo-backend/internal/auth"
	"lingua-todo-backend/internal/model"
)

var testSecret = []byte("test-secret")

// serve runs one request through the auth middleware with a token for
// userID, the way the router wires the todo handlers.
func serve(t *testing.T, h http.HandlerFunc, userID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+routePattern(target), auth.New(testSecret).Wrap(h))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// routePattern rebuilds the mux pattern for a concrete request target
// so PathValue works in tests. Only the shapes the handlers use are
// covered.
func routePattern(target string) string {
	parts := strings.Split(strings.TrimPrefix(target, "/"), "/")
	switch {
	case len(parts) >= 2 && parts[0] == "todos" && parts[1] != "export" && parts[1] != "import":
		parts[1] = "{id}"
		if len(parts) >= 4 && parts[2] == "subtasks" && parts[3] != "" {
			parts[3] = "{subtaskID}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) model.Todo {
	t.Helper()
	var todo model.Todo
	if err := json.NewDecoder(rec.Body).Decode(&todo); err != nil {
		t.Fatalf("decode todo: %v (body %s)", err, rec.Body.String())
	}
	return todo
}

func TestCreateAndListHandlers(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{}, "")

	rec := serve(t, CreateHandler(svc), "u1", http.MethodPost, "/todos",
		`{"title":"Buy milk","description":"Whole milk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeTodo(t, rec)
	if created.Title != "Buy milk" || created.UserID != "u1" {
		t.Fatalf("unexpected todo %+v", created)
	}

	rec = serve(t, ListHandler(svc), "u1", http.MethodGet, "/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var todos []model.Todo
	if err := json.NewDecoder(rec.Body).Decode(&todos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", todos)
	}

	// Another user sees an empty collection.
	rec = serve(t, ListHandler(svc), "u2", http.MethodGet, "/todos", "")
	_ = json.NewDecoder(rec.Body).Decode(&todos)
	if len(todos) != 0 {
		t.Fatalf("collections must be per user, got %+v", todos)
	}
}

func TestCreateHandlerEmptyTitle(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{}, "")
	rec := serve(t, CreateHandler(svc), "u1", http.MethodPost, "/todos", `{"title":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateHandler(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{}, "")
	todo := mustAdd(t, svc, "u1", "Buy milk", "")

	rec := serve(t, UpdateHandler(svc), "u1", http.MethodPatch, "/todos/"+todo.ID,
		`{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if updated := decodeTodo(t, rec); !updated.Completed {
		t.Fatalf("patch not applied: %+v", updated)
	}

	rec = serve(t, UpdateHandler(svc), "u1", http.MethodPatch, "/todos/"+todo.ID, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d, want 400", rec.Code)
	}

	rec = serve(t, UpdateHandler(svc), "u1", http.MethodPatch, "/todos/missing-id", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing todo status = %d, want 404", rec.Code)
	}
}

func TestDeleteHandler(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{}, "")
	todo := mustAdd(t, svc, "u1", "Buy milk", "")

	rec := serve(t, DeleteHandler(svc), "u1", http.MethodDelete, "/todos/"+todo.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = serve(t, DeleteHandler(svc), "u1", http.MethodDelete, "/todos/"+todo.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSubtaskHandlers(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{subtasks: []string{"Gen A", "Gen B"}}, "sk-test")
	todo := mustAdd(t, svc, "u1", "Buy milk", "")

	rec := serve(t, AddSubtasksHandler(svc), "u1", http.MethodPost, "/todos/"+todo.ID+"/subtasks",
		`{"titles":["Manual A"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("manual add status = %d, body %s", rec.Code, rec.Body.String())
	}
	withManual := decodeTodo(t, rec)
	if len(withManual.Subtasks) != 1 || withManual.Subtasks[0].Title != "Manual A" {
		t.Fatalf("unexpected subtasks %+v", withManual.Subtasks)
	}

	rec = serve(t, AddSubtasksHandler(svc), "u1", http.MethodPost, "/todos/"+todo.ID+"/subtasks",
		`{"generate":true}`)
	generated := decodeTodo(t, rec)
	if len(generated.Subtasks) != 3 {
		t.Fatalf("generated batch must append, got %+v", generated.Subtasks)
	}

	subID := generated.Subtasks[0].ID
	rec = serve(t, ToggleSubtaskHandler(svc), "u1", http.MethodPost,
		"/todos/"+todo.ID+"/subtasks/"+subID+"/toggle", "")
	toggled := decodeTodo(t, rec)
	if !toggled.Subtasks[0].Completed {
		t.Fatalf("subtask not toggled: %+v", toggled.Subtasks)
	}

	rec = serve(t, ClearSubtasksHandler(svc), "u1", http.MethodDelete, "/todos/"+todo.ID+"/subtasks", "")
	if cleared := decodeTodo(t, rec); len(cleared.Subtasks) != 0 {
		t.Fatalf("subtasks remain: %+v", cleared.Subtasks)
	}
}

func TestLanguageHandlers(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{translations: map[string]string{
		"Buy milk": "Comprar leche",
	}}, "sk-test")
	todo := mustAdd(t, svc, "u1", "Buy milk", "")

	rec := serve(t, TranslateHandler(svc), "u1", http.MethodPost, "/todos/"+todo.ID+"/translate",
		`{"language":"spanish"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("translate status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, SwitchLanguageHandler(svc), "u1", http.MethodPost, "/todos/"+todo.ID+"/language",
		`{"language":"spanish"}`)
	switched := decodeTodo(t, rec)
	if switched.Title != "Comprar leche" || switched.CurrentLanguage != "spanish" {
		t.Fatalf("switch failed: %+v", switched)
	}

	// Switching to a language nobody translated is a conflict.
	rec = serve(t, SwitchLanguageHandler(svc), "u1", http.MethodPost, "/todos/"+todo.ID+"/language",
		`{"language":"german"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("missing translation status = %d, want 409", rec.Code)
	}

	rec = serve(t, SwitchOriginalHandler(svc), "u1", http.MethodPost,
		"/todos/"+todo.ID+"/language/original", "")
	restored := decodeTodo(t, rec)
	if restored.Title != "Buy milk" || restored.CurrentLanguage != "en" {
		t.Fatalf("restore failed: %+v", restored)
	}
}

func TestExportImportHandlers(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{}, "")
	todo := mustAdd(t, svc, "u1", "Buy milk", "")

	rec := serve(t, ExportHandler(svc), "u1", http.MethodGet, "/todos/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	doc := rec.Body.String()

	if err := svc.Delete("u1", todo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rec = serve(t, ImportHandler(svc), "u1", http.MethodPost, "/todos/import", doc)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}

	todos, err := svc.List("u1")
	if err != nil || len(todos) != 1 {
		t.Fatalf("import did not restore: %+v err=%v", todos, err)
	}
}
