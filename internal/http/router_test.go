package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/render"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDeps(t *testing.T, api *apiclient.Client) taskhttp.Deps {
	t.Helper()
	ctx := context.Background()
	logger := discardLogger()

	repo := service.NewTaskRepository(ctx, repository.NewMemoryStore(), service.WithLogger(logger))
	tree := render.NewHTMLTree()
	r := render.NewRenderer(repo, tree, render.WithActions(handler.Actions))
	repo.SetOnChange(func(ctx context.Context) { _ = r.Render(ctx) })
	if err := r.Render(ctx); err != nil {
		t.Fatalf("initial render: %v", err)
	}

	return taskhttp.Deps{
		Tasks:      repo,
		View:       tree,
		API:        api,
		Retry:      apiclient.RetryPolicy{MaxAttempts: 1},
		APITimeout: time.Second,
		Logger:     logger,
	}
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := taskhttp.NewRouter(newTestDeps(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", result["status"])
	}
}

func TestRouter_TaskFlow(t *testing.T) {
	d := newTestDeps(t, nil)
	router := taskhttp.NewRouter(d)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("POST %s: expected 303, got %d", path, w.Code)
		}
		return w
	}

	post("/tasks", url.Values{"text": {"pay rent"}, "priority": {"high"}})
	post("/tasks", url.Values{"text": {"book flights"}})
	post("/tasks/1/toggle", nil)
	post("/tasks/2/edit", url.Values{"text": {"book trains"}})
	post("/filter", url.Values{"mode": {"active"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "book trains") || strings.Contains(body, "pay rent") {
		t.Errorf("active board shows wrong rows: %s", body)
	}

	post("/tasks/clear-completed", nil)
	if stats := d.Tasks.Stats(); stats.Total != 1 {
		t.Errorf("expected 1 task after clearing, got %+v", stats)
	}

	req := httptest.NewRequest(http.MethodDelete, "/tasks/2", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
}

func TestRouter_UsersRoutesNeedClient(t *testing.T) {
	router := taskhttp.NewRouter(newTestDeps(t, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without an API client, got %d", w.Code)
	}
}

func TestRouter_UsersEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Clementine"}})
	}))
	defer upstream.Close()

	router := taskhttp.NewRouter(newTestDeps(t, apiclient.New(upstream.URL)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Clementine") {
		t.Error("expected the user card on the page")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := taskhttp.NewRouter(newTestDeps(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRouter_WrongMethod(t *testing.T) {
	router := taskhttp.NewRouter(newTestDeps(t, nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/1/toggle", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}
