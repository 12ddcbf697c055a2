package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/model"
)

var sampleUsers = []model.User{
	{ID: 1, Name: "Leanne Graham", Email: "leanne@example.com", Company: model.Company{Name: "Romaguera"}, Address: model.Address{City: "Gwenborough"}},
	{ID: 2, Name: "Ervin Howell", Email: "ervin@example.com", Company: model.Company{Name: "Deckow"}, Address: model.Address{City: "Wisokyburgh"}},
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newUsersHandler(t *testing.T, upstream http.Handler, attempts int, timeout time.Duration) *handler.UsersHandler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL, apiclient.WithLogger(discardLogger()))
	policy := apiclient.RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Sleep: noSleep}
	return handler.NewUsersHandler(client, policy, timeout, discardLogger())
}

func TestUsersHandler_Page(t *testing.T) {
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		handler.WriteJSON(w, http.StatusOK, sampleUsers)
	}), 1, time.Second)

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if n := strings.Count(body, `class="user-card"`); n != 2 {
		t.Errorf("expected 2 user cards, got %d", n)
	}
	for _, want := range []string{"Leanne Graham", "ervin@example.com", "Gwenborough"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestUsersHandler_PageRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			handler.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "try later")
			return
		}
		handler.WriteJSON(w, http.StatusOK, sampleUsers[:1])
	}), 3, time.Second)

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 upstream calls, got %d", got)
	}
}

func TestUsersHandler_PageUpstreamError(t *testing.T) {
	var calls atomic.Int32
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}), 2, time.Second)

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Failed to load users") || !strings.Contains(body, `href="/users"`) {
		t.Errorf("expected error panel with retry link: %s", body)
	}
	if !strings.Contains(body, "failed after 2 attempts") {
		t.Errorf("expected attempt count in message: %s", body)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestUsersHandler_PageTimeout(t *testing.T) {
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}), 1, 20*time.Millisecond)

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status 504, got %d", w.Code)
	}
}

func TestUsersHandler_List(t *testing.T) {
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("_page") != "2" || q.Get("_limit") != "2" {
			t.Errorf("unexpected upstream query %s", r.URL.RawQuery)
		}
		handler.WriteJSON(w, http.StatusOK, sampleUsers)
	}), 1, time.Second)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/users?page=2&limit=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	var page apiclient.Page[model.User]
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Page != 2 || page.Limit != 2 || !page.HasMore || len(page.Items) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestUsersHandler_ListDefaults(t *testing.T) {
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("_page") != "1" || q.Get("_limit") != "10" {
			t.Errorf("unexpected upstream query %s", r.URL.RawQuery)
		}
		handler.WriteJSON(w, http.StatusOK, sampleUsers)
	}), 1, time.Second)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	var page apiclient.Page[model.User]
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.HasMore {
		t.Error("a short page should not report more")
	}
}

func TestUsersHandler_ListInvalidQuery(t *testing.T) {
	tests := []struct {
		query    string
		wantCode string
	}{
		{"page=0", "INVALID_PAGE"},
		{"page=abc", "INVALID_PAGE"},
		{"limit=-5", "INVALID_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("upstream should not be called")
			}), 1, time.Second)

			w := httptest.NewRecorder()
			h.List(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/users?%s", tt.query), nil))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			var result handler.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if result.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, result.Error.Code)
			}
		})
	}
}

func TestUsersHandler_ListUpstreamError(t *testing.T) {
	h := newUsersHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such collection")
	}), 1, time.Second)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
}
