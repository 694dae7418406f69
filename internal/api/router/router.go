package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/leadcapture-api/internal/auth"
	httpmiddleware "github.com/wolfman30/leadcapture-api/internal/http/middleware"
	"github.com/wolfman30/leadcapture-api/internal/leads"
	"github.com/wolfman30/leadcapture-api/internal/observability/metrics"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	LeadsHandler *leads.Handler
	AuthHandler  *auth.Handler

	// AdminAuthSecret verifies tokens on the admin lead routes. Empty means
	// every admin request is rejected.
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// RateLimiter guards the public submission routes (optional).
	RateLimiter    httpmiddleware.Limiter
	Metrics        *metrics.LeadMetrics
	MetricsHandler http.Handler

	// HealthCheck reports store readiness (optional).
	HealthCheck func(r *http.Request) error
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.Recoverer(cfg.Logger))
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	})

	// Public endpoints
	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/leads", func(leadRoutes chi.Router) {
			leadRoutes.Group(func(public chi.Router) {
				if cfg.RateLimiter != nil {
					public.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
				}
				public.Post("/", cfg.LeadsHandler.CreateContactLead)
				public.Post("/cart", cfg.LeadsHandler.CreateCartLead)
			})

			// Admin routes (protected by JWT)
			leadRoutes.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
				admin.Get("/", cfg.LeadsHandler.ListLeads)
				admin.Delete("/", cfg.LeadsHandler.ClearLeads)
			})
		})

		if cfg.AuthHandler != nil {
			api.Route("/auth", func(authRoutes chi.Router) {
				if cfg.RateLimiter != nil {
					authRoutes.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
				}
				authRoutes.Post("/login", cfg.AuthHandler.Login)
			})
		}
	})

	return r
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
