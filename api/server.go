/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestLogger: structured request logging (httplog over slog)
  2. Recoverer:     panic recovery (500 instead of crash)
  3. RequestID:     unique ID per request for tracing
  4. CORS:          cross-origin requests for frontend

ROUTE GROUPS:
  /api/people/*                       Directory and per-person accounting views
  /api/contracts/{id}/rate-changes/*  Rate changes on one contract
  /api/free-days                      Public-holiday lookup for a date range

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Directory
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.CreatePerson)
			r.Get("/{id}", h.GetPerson)

			r.Get("/{id}/contracts", h.ListContracts)
			r.Post("/{id}/contracts", h.CreateContract)
			r.Get("/{id}/holiday-requests", h.ListHolidayRequests)
			r.Post("/{id}/holiday-requests", h.CreateHolidayRequest)
			r.Get("/{id}/tasks", h.ListTasks)
			r.Post("/{id}/tasks", h.CreateTask)

			// Accounting views, all accepting an explicit reference date
			r.Get("/{id}/employment-window", h.GetEmploymentWindow)
			r.Get("/{id}/working-time", h.GetWorkingTime)
			r.Get("/{id}/holiday-balance", h.GetHolidayBalance)
			r.Get("/{id}/rate", h.GetRateOnDay)
			r.Post("/{id}/carryover", h.RunCarryover)
		})

		// Rate changes hang off the contract, not the person
		r.Route("/contracts/{id}/rate-changes", func(r chi.Router) {
			r.Get("/", h.ListRateChanges)
			r.Post("/", h.CreateRateChange)
		})

		// Calendar
		r.Get("/free-days", h.ListFreeDays)
	})

	return r
}
