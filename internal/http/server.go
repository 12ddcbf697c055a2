package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	"github.com/jaekwang-park/taskboard/internal/middleware"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(port string, logger *slog.Logger, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger
	}
	router := NewRouter(d)

	chain := middleware.RequestID(middleware.Recovery(logger)(middleware.Logging(logger)(router)))

	// Upstream calls on /users may retry, so the write timeout covers
	// every attempt plus the backoff between them.
	writeTimeout := 10 * time.Second
	if budget := addSat(retryBudget(d.Retry, d.APITimeout), 5*time.Second); budget > writeTimeout {
		writeTimeout = budget
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      chain,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// retryBudget is the longest a retried upstream call can take, saturating
// at apiclient.MaxBackoff.
func retryBudget(p apiclient.RetryPolicy, timeout time.Duration) time.Duration {
	attempts := max(p.MaxAttempts, 1)
	total := time.Duration(0)
	for i := range attempts {
		total = addSat(total, timeout)
		if i < attempts-1 {
			total = addSat(total, p.Backoff(i))
		}
	}
	return total
}

func addSat(a, b time.Duration) time.Duration {
	if b > apiclient.MaxBackoff-a {
		return apiclient.MaxBackoff
	}
	return a + b
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
