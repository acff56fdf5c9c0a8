package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ibartley/employee-api/app"
	"github.com/ibartley/employee-api/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/healthz", handlers.HealthCheck(deps))

	// Employee endpoints, each guarded by its own scope
	entraCfg := &deps.Config.Entra
	r.Route("/employees", func(r chi.Router) {
		r.With(deps.AuthMiddleware.Require(entraCfg.ReadScope())).
			Get("/", handlers.ListEmployeesHandler(deps))
		r.With(deps.AuthMiddleware.Require(entraCfg.WriteScope())).
			Post("/", handlers.CreateEmployeeHandler(deps))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})

	return r
}
