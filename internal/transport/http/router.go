// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services so transport concerns stay isolated from policy.
package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"

	"aegis/internal/platform/middleware"
)

// RouterConfig carries everything the router needs to wire routes.
type RouterConfig struct {
	Auth      *AuthHandler
	Resources *ResourceHandler
	Guard     *middleware.Auth

	// LoginRateLimit caps login attempts per client IP per minute.
	// Zero disables the limiter.
	LoginRateLimit int
}

// NewRouter wires all public endpoints. The login route carries its own
// per-IP rate limit since it is the only unauthenticated mutation.
func NewRouter(cfg RouterConfig) http.Handler {
	secureHeaders := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(secureHeaders.Handler)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.LoginRateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.LoginRateLimit, time.Minute))
			}
			r.Post("/login", cfg.Auth.handleLogin)
		})
		r.Post("/refresh", cfg.Auth.handleRefresh)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Guard.RequireAuth)
			r.Get("/me", cfg.Auth.handleMe)
		})
	})

	r.Route("/resources", func(r chi.Router) {
		r.Use(cfg.Guard.RequireAuth)
		r.Get("/{id}", cfg.Resources.handleGet)
		r.Put("/{id}", cfg.Resources.handleUpdate)
		r.Delete("/{id}", cfg.Resources.handleDelete)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
