// Package handlers exposes the engine operations over a JSON HTTP API.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teedon/cooperative-manager-sub000/internal/auth"
	"github.com/teedon/cooperative-manager-sub000/internal/esusu"
	"github.com/teedon/cooperative-manager-sub000/internal/httputil"
	"github.com/teedon/cooperative-manager-sub000/internal/middleware"
)

// RouterConfig holds the collaborators the router wires together.
type RouterConfig struct {
	Engine        *esusu.Engine
	Authenticator *auth.PasswordAuthenticator
	JWTManager    *auth.JWTManager

	// AuthRateLimit/AuthRateWindow throttle the credential endpoints.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	authHandler := &AuthHandler{Authenticator: cfg.Authenticator, JWTManager: cfg.JWTManager}
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow))
		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
	})

	circleHandler := &CircleHandler{Engine: cfg.Engine}
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTManager))

		r.Post("/v1/circles", circleHandler.Create)
		r.Get("/v1/circles/{circleID}", circleHandler.Get)
		r.Post("/v1/circles/{circleID}/invitations", circleHandler.Invite)
		r.Post("/v1/circles/{circleID}/responses", circleHandler.Respond)
		r.Post("/v1/circles/{circleID}/order", circleHandler.AssignOrder)
		r.Post("/v1/circles/{circleID}/contributions", circleHandler.RecordContribution)
		r.Get("/v1/circles/{circleID}/cycle", circleHandler.CycleStatus)
		r.Post("/v1/circles/{circleID}/collections", circleHandler.ProcessCollection)
		r.Get("/v1/circles/{circleID}/collections", circleHandler.ListCollections)
		r.Post("/v1/circles/{circleID}/cancel", circleHandler.Cancel)
	})

	return r
}
