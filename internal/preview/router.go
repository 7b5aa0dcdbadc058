// Package preview serves the generated book over HTTP with live-reload events.
package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a chi router serving bookDir at "/", the health checks and,
// when events is non-nil, the SSE stream at GET /events.
func NewRouter(bookDir string, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Handle("/*", http.FileServer(http.Dir(bookDir)))
	})

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
