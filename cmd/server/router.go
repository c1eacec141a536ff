package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rfoster/tasklist-api/internal/api"
	apimiddleware "github.com/rfoster/tasklist-api/internal/api/middleware"
	"github.com/rfoster/tasklist-api/internal/api/shared"
	"github.com/rfoster/tasklist-api/internal/service"
	"github.com/rfoster/tasklist-api/internal/service/auth"
	"github.com/rfoster/tasklist-api/internal/store"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func setupRouter(
	authService *auth.Service,
	taskService *service.TaskService,
	userStore store.UserStore,
	tokenService auth.TokenService,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// RealIP runs before anything that reads RemoteAddr so the login
	// throttle keys on the real client address behind a trusted proxy.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(authService)
	taskHandler := api.NewTaskHandler(taskService, userStore)
	authMiddleware := apimiddleware.NewAuthMiddleware(tokenService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"Hello": "World"})
		})

		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
