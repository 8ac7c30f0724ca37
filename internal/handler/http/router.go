package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/addressbook/pkg/health"
	"github.com/utafrali/addressbook/pkg/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	ServiceName string

	Auth     Authenticator
	Book     AddressBook
	Searches RecentSearches
	Verify   middleware.TokenVerifier

	// CredentialLimiter throttles sign-up and sign-in per client. Nil
	// disables throttling.
	CredentialLimiter *middleware.RateLimiter

	Health   *health.Handler
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	EnablePprof bool

	Logger *slog.Logger
}

// NewRouter creates a chi router with all address book routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.EnablePprof {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)
	}

	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	addressHandler := NewAddressHandler(cfg.Book, cfg.Logger)
	recentHandler := NewRecentHandler(cfg.Searches, cfg.Logger)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Get("/categories", addressHandler.Categories)

		r.Group(func(r chi.Router) {
			if cfg.CredentialLimiter != nil {
				r.Use(cfg.CredentialLimiter.Middleware)
			}
			r.Use(ContentTypeJSON)

			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
		})

		// The bearer check runs before any body check so an anonymous call is
		// always UNAUTHENTICATED.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Verify, cfg.Logger))
			r.Use(ContentTypeJSON)

			r.Post("/address", addressHandler.Add)
			r.Get("/addresses", addressHandler.List)

			r.Get("/recent", recentHandler.List)
			r.Post("/recent", recentHandler.Record)
			r.Delete("/recent", recentHandler.Clear)
		})
	})

	return r
}
