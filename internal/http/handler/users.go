package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/render"
)

const defaultPageLimit = 10

// UsersHandler shows users fetched from the remote REST API. Every upstream
// call is bounded by a timeout and retried with backoff.
type UsersHandler struct {
	client  *apiclient.Client
	policy  apiclient.RetryPolicy
	timeout time.Duration
	logger  *slog.Logger
}

func NewUsersHandler(client *apiclient.Client, policy apiclient.RetryPolicy, timeout time.Duration, logger *slog.Logger) *UsersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &UsersHandler{client: client, policy: policy, timeout: timeout, logger: logger}
}

func fetch[T any](ctx context.Context, h *UsersHandler, op func(context.Context) (T, error)) (T, error) {
	return apiclient.WithRetry(ctx, h.policy, func(ctx context.Context) (T, error) {
		return apiclient.WithTimeout(ctx, h.timeout, op)
	})
}

// upstreamStatus maps a fetch failure to the status we answer with.
func upstreamStatus(err error) int {
	if errors.Is(err, apiclient.ErrTimedOut) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// Page renders the user cards, or an error panel with a retry link.
func (h *UsersHandler) Page(w http.ResponseWriter, r *http.Request) {
	users, err := fetch(r.Context(), h, func(ctx context.Context) ([]model.User, error) {
		return apiclient.GetJSON[[]model.User](ctx, h.client, "/users", nil)
	})

	status := http.StatusOK
	body := render.UserCards(users)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load users", "error", err)
		status = upstreamStatus(err)
		body = render.UserCardsError(err, "/users")
	}

	WriteHTML(w, r, status, render.Page("Users",
		render.NodeComponent(render.El("h1", render.Attrs{"textContent": "Users"})),
		render.NodeComponent(body),
	))
}

// List returns one page of users as JSON. Query parameters page and limit
// default to 1 and 10.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
		return
	}

	result, err := fetch(r.Context(), h, func(ctx context.Context) (apiclient.Page[model.User], error) {
		return apiclient.FetchPaginated[model.User](ctx, h.client, "/users", page, limit)
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list users", "error", err)
		WriteError(w, upstreamStatus(err), "UPSTREAM_ERROR", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
