package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, echoRequestID)
	r.Use(s.accessLog)
	r.Use(s.recoverPanics)
	r.Use(s.cors)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.Get("/health", s.handleHealth)

	// Push channel
	r.Get(s.wsCfg.Path, s.handleEvents)

	r.Route("/api/mock", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)
			r.Get("/{id}", s.handleGetDevice)
			r.Delete("/{id}", s.handleDeleteDevice)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Delete("/{id}", s.handleDeleteUser)
			r.Delete("/delete/{id}", s.handleDeleteUser)
		})

		r.Get("/doors", s.handleListDoors)

		r.Get("/logs", s.handleListLogs)
		r.Get("/logs/{id}", s.handleGetLog)

		r.Post("/manual-access", s.handleManualAccess)

		r.Post("/events", s.handleInjectEvent)
		r.Post("/events/random", s.handleRandomEvent)
	})

	return r
}
