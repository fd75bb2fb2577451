// Package server contains the HTTP API server for the publishing engine.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"postflow/internal/server/handlers"
	"postflow/internal/server/middleware"
)

// Server is the HTTP server for the public API.
type Server struct {
	httpServer *http.Server
}

// New creates a new API server.
func New(addr string, store handlers.StoreFactory, log *slog.Logger, metricsHandler http.Handler) *Server {
	h := handlers.New(store)
	authMW := middleware.AuthMiddleware(store)
	rateMW := middleware.RateLimitMiddleware()

	authed := func(fn http.HandlerFunc) http.Handler {
		return authMW(rateMW(fn))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	mux.HandleFunc("POST /tenants", h.CreateTenant)

	// Public authenticated apis
	mux.Handle("POST /contents", authed(h.CreateContent))
	mux.Handle("GET /contents/{id}", authed(h.GetContent))
	mux.Handle("POST /posts", authed(h.CreatePost))
	mux.Handle("GET /posts", authed(h.ListPosts))
	mux.Handle("GET /posts/{id}", authed(h.GetPost))
	mux.Handle("POST /posts/{id}/cancel", authed(h.CancelPost))
	mux.Handle("POST /posts/{id}/reschedule", authed(h.ReschedulePost))
	mux.Handle("POST /posts/{id}/approve", authed(h.ApprovePost))
	mux.Handle("POST /posts/{id}/preview", authed(h.PreviewPost))
	mux.Handle("POST /posts/{id}/retry", authed(h.RetryPost))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      middleware.RequestID(log)(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
