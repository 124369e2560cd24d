package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/handlers"
	"github.com/inkpost/inkpost/internal/middleware"
)

// RegisterRoutes registers all application routes under /api
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(rateLimitConfig))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/{userID}/verify-email/{token}", authHandler.VerifyEmail)
			r.Get("/reset-password/{email}", authHandler.RequestPasswordReset)
			r.Put("/{userID}/reset-password/{token}", authHandler.ResetPassword)
		})

		api.Route("/users", func(r chi.Router) {
			// Public profile reads
			r.Get("/profile", userHandler.ListProfiles)
			r.Get("/count", userHandler.CountUsers)
			r.Get("/profile/{id}", userHandler.GetProfile)

			// Owner/admin gated writes
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(tokenManager))

				r.Put("/profile/{id}", userHandler.UpdateProfile)
				r.Delete("/profile/{id}", userHandler.DeleteProfile)
				r.Post("/profile/upload-photo", userHandler.UploadProfilePhoto)
			})
		})
	})
}
