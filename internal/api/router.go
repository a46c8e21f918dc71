package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/alumni-hub/internal/alumni"
	"github.com/hugh/alumni-hub/internal/api/handlers"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database/models"
	"github.com/hugh/alumni-hub/internal/events"
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
	AlumniService  *alumni.Service
	EventService   *events.Service
	Production     bool
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger, cfg.Production))
	r.Use(middleware.Logging(cfg.Logger))

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.AlumniService)
	eventHandler := handlers.NewEventHandler(cfg.EventService)
	alumniHandler := handlers.NewAlumniHandler(cfg.AlumniService)
	taxonomyHandler := handlers.NewTaxonomyHandler(cfg.DB)
	userHandler := handlers.NewUserHandler(cfg.DB)

	// One limiter shared by the credential-sensitive endpoints only.
	rateLimit := middleware.RateLimit(cfg.RateLimitReqs, time.Duration(cfg.RateLimitSecs)*time.Second)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints get the strict limiter
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Other public auth endpoints
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/resend-verification", authHandler.ResendVerification)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Public reference data and alumni directory
		r.Get("/faculties", taxonomyHandler.ListFaculties)
		r.Get("/majors", taxonomyHandler.ListMajors)
		r.Get("/batches", taxonomyHandler.ListBatches)
		r.Get("/alumni", alumniHandler.Directory)

		// Public event listings; a valid token annotates the caller's own
		// registration status
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWTService))
			r.Get("/events", eventHandler.List)
			r.Get("/events/{id}", eventHandler.Get)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", authHandler.Me)
			r.Post("/auth/complete-profile", authHandler.CompleteProfile)
			r.Put("/alumni/me", alumniHandler.UpdateProfile)
			r.Put("/alumni/me/privacy", alumniHandler.UpdatePrivacy)

			r.Get("/events/my-registrations", eventHandler.MyRegistrations)
			r.Post("/events/{id}/register", eventHandler.Register)
			r.Post("/events/{id}/cancel", eventHandler.Cancel)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Post("/events", eventHandler.Create)
				r.Put("/events/{id}", eventHandler.Update)
				r.Delete("/events/{id}", eventHandler.Delete)
				r.Get("/events/{id}/registrations", eventHandler.Registrations)
				r.Post("/events/{id}/registrations/{userID}/attend", eventHandler.MarkAttended)

				r.Post("/faculties", taxonomyHandler.CreateFaculty)
				r.Put("/faculties/{id}", taxonomyHandler.UpdateFaculty)
				r.Delete("/faculties/{id}", taxonomyHandler.DeleteFaculty)
				r.Post("/majors", taxonomyHandler.CreateMajor)
				r.Delete("/majors/{id}", taxonomyHandler.DeleteMajor)
				r.Post("/batches", taxonomyHandler.CreateBatch)
				r.Delete("/batches/{id}", taxonomyHandler.DeleteBatch)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", userHandler.List)
					r.Get("/{id}", userHandler.Get)
					r.Put("/{id}/role", userHandler.UpdateRole)
					r.Put("/{id}/status", userHandler.UpdateStatus)
				})
			})
		})
	})

	return &Router{r}
}

var _ http.Handler = (*Router)(nil)
