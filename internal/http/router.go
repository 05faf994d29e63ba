package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/moodlog/moodlog/internal/config"
	"github.com/moodlog/moodlog/internal/httputil"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/mood"
	"github.com/moodlog/moodlog/internal/token"
	"github.com/moodlog/moodlog/internal/user"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	userHandler *user.Handler,
	tokenHandler *token.Handler,
	moodHandler *mood.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI is a development convenience, never exposed in production.
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger ui enabled", "path", "/swagger/")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/user", func(r chi.Router) {
		r.Post("/create", userHandler.Create)
		r.Post("/delete", userHandler.Delete)
		r.Get("/verify", userHandler.VerifyEmail)
		r.Post("/update/pwd", userHandler.ChangePassword)
		r.Post("/update/email", userHandler.ChangeEmail)
	})

	r.Route("/token", func(r chi.Router) {
		r.Post("/create", tokenHandler.Create)
		r.Post("/delete", tokenHandler.Delete)
	})
	r.Get("/tokens/get", tokenHandler.List)

	r.Route("/mood", func(r chi.Router) {
		r.Post("/create", moodHandler.Create)
		r.Post("/delete", moodHandler.Delete)
		r.Get("/get", moodHandler.GetActive)
	})
	r.Get("/moods/get", moodHandler.GetHistory)

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
