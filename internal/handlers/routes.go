package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Pages
	r.Get("/", h.handleIndex)
	r.Get("/list", h.handleList)
	r.Get("/playground", h.handlePlayground)

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)

		// Polls
		r.Get("/polls", h.handleListPolls)
		r.Post("/polls", h.handleCreatePoll)
		r.Get("/polls/{id}", h.handleGetPoll)
		r.Get("/polls/{id}/results", h.handleGetResults)
		r.Post("/polls/{id}/end", h.handleEndPoll)
		r.Get("/polls/{id}/qr", h.handlePollQR)

		// Widgets
		r.Post("/widgets", h.handleMountWidget)
		r.Get("/widgets/{id}", h.handleRenderWidget)
		r.Post("/widgets/{id}/vote", h.handleVote)
		r.Delete("/widgets/{id}", h.handleUnmountWidget)

		// Settings
		r.Get("/settings", h.handleGetSettings)
		r.Get("/settings/data-source", h.handleGetDataSource)
		r.Put("/settings/data-source", h.handleSetDataSource)
		r.Put("/settings/base-url", h.handleSetBaseURL)
		r.Get("/settings/playground", h.handleGetPlayground)
		r.Put("/settings/playground", h.handleUpdatePlayground)
		r.Post("/settings/playground/reset", h.handleResetPlayground)
		r.Get("/settings/playground/code", h.handlePlaygroundCode)
	})

	return r
}
