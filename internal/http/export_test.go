package http

import "time"

var RetryBudget = retryBudget

func (s *Server) WriteTimeout() time.Duration {
	return s.httpServer.WriteTimeout
}
