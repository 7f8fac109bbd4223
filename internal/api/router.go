package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dom/videotube-backend/internal/api/handlers"
	"github.com/dom/videotube-backend/internal/api/middleware"
	"github.com/dom/videotube-backend/internal/config"
	"github.com/dom/videotube-backend/internal/repository"
	"github.com/dom/videotube-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route. ctx bounds the rate limiter's sweeper.
func NewRouter(ctx context.Context, services *service.Services, repos *repository.Repositories, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	healthHandler := handlers.NewHealthHandler(repos.Health)
	userHandler := handlers.NewUserHandler(services.Auth, services.Account, cfg)
	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			// Credential endpoints are public and rate limited
			r.Group(func(r chi.Router) {
				r.Use(limiter.Handler)
				r.Post("/register", userHandler.Register)
				r.Post("/login", userHandler.Login)
				r.Post("/refresh-token", userHandler.RefreshToken)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Post("/logout", userHandler.Logout)
				r.Post("/change-password", userHandler.ChangePassword)
				r.Get("/current-user", userHandler.CurrentUser)
				r.Patch("/avatar", userHandler.UpdateAvatar)
				r.Patch("/cover-image", userHandler.UpdateCoverImage)
				r.Get("/c/{username}", userHandler.ChannelProfile)
				r.Get("/history", userHandler.WatchHistory)
			})
		})
	})

	return r
}
