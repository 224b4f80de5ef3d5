package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/nadia/mockdeck/internal/api/handlers"
	"github.com/nadia/mockdeck/internal/api/middleware"
	"github.com/nadia/mockdeck/internal/auth"
	"github.com/nadia/mockdeck/internal/mockups"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AsynqClient    *asynq.Client
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	mockupService := mockups.NewService(cfg.DB, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	mockupHandler := handlers.NewMockupHandler(mockupService, cfg.AsynqClient)
	shareHandler := handlers.NewShareHandler(mockupService)
	versionHandler := handlers.NewVersionHandler(mockupService)
	projectHandler := handlers.NewProjectHandler(cfg.DB)
	apiKeyHandler := handlers.NewApiKeyHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Anonymous read of published mockups
		r.Get("/public/mockups/{id}", mockupHandler.GetPublic)

		// Reads that resolve permissions per requester; anonymous visitors
		// still reach public mockups here.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.DB))
			r.Use(middleware.OptionalAuth(cfg.JWTService))

			r.Get("/mockups/{id}", mockupHandler.Get)
			r.Get("/mockups/{id}/export", mockupHandler.Export)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.DB))
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			// Mockups endpoints
			r.Route("/mockups", func(r chi.Router) {
				r.Get("/", mockupHandler.List)
				r.Post("/", mockupHandler.Create)
				r.Post("/import", mockupHandler.Import)
				r.Put("/{id}", mockupHandler.Update)
				r.Delete("/{id}", mockupHandler.Delete)
				r.Post("/{id}/import", mockupHandler.ImportInto)

				// Shares endpoints
				r.Route("/{id}/shares", func(r chi.Router) {
					r.Get("/", shareHandler.List)
					r.Post("/", shareHandler.Create)
					r.Put("/{shareID}", shareHandler.Update)
					r.Delete("/{shareID}", shareHandler.Delete)
				})

				// Versions endpoints
				r.Route("/{id}/versions", func(r chi.Router) {
					r.Get("/", versionHandler.List)
					r.Post("/", versionHandler.Create)
					r.Get("/{versionID}", versionHandler.Get)
					r.Post("/{versionID}/restore", versionHandler.Restore)
					r.Delete("/{versionID}", versionHandler.Delete)
				})
			})

			// Projects endpoints
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
			})

			// API key endpoints
			r.Route("/apikeys", func(r chi.Router) {
				r.Get("/", apiKeyHandler.List)
				r.Post("/", apiKeyHandler.Create)
				r.Delete("/{id}", apiKeyHandler.Delete)
			})
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
