package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())

	// Pastes.
	mux.Handle("POST /new", s.withToken(http.HandlerFunc(s.handleNew)))
	mux.Handle("DELETE /delete", s.withToken(http.HandlerFunc(s.handleDelete)))
	mux.Handle("GET /paste/", http.StripPrefix("/paste", s.blobs.Handler()))

	return withMetrics(s.withRequestLogging(mux))
}
