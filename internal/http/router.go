package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/render"
	"github.com/jaekwang-park/taskboard/internal/service"
)

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Tasks *service.TaskRepository
	View  *render.HTMLTree
	Store handler.Pinger

	API        *apiclient.Client
	Retry      apiclient.RetryPolicy
	APITimeout time.Duration

	Logger *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", handler.NewHealthHandler(d.Store, d.Logger))

	tasks := handler.NewTaskHandler(d.Tasks, d.View, d.Logger)
	mux.HandleFunc("GET /{$}", tasks.Board)
	mux.HandleFunc("POST /tasks", tasks.Create)
	mux.HandleFunc("POST /tasks/clear-completed", tasks.ClearCompleted)
	mux.HandleFunc("POST /tasks/{id}/toggle", tasks.Toggle)
	mux.HandleFunc("POST /tasks/{id}/edit", tasks.Edit)
	mux.HandleFunc("POST /tasks/{id}/delete", tasks.Delete)
	mux.HandleFunc("DELETE /tasks/{id}", tasks.DeleteAPI)
	mux.HandleFunc("POST /filter", tasks.SetFilter)
	mux.HandleFunc("GET /api/tasks", tasks.List)

	if d.API != nil {
		users := handler.NewUsersHandler(d.API, d.Retry, d.APITimeout, d.Logger)
		mux.HandleFunc("GET /users", users.Page)
		mux.HandleFunc("GET /api/users", users.List)
	}

	return mux
}
