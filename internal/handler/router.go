package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	locationHandler "github.com/emmalund/plantwatch/backend/internal/handler/location"
	sessionHandler "github.com/emmalund/plantwatch/backend/internal/handler/session"
	middlewarePkg "github.com/emmalund/plantwatch/backend/internal/middleware"
	locationModel "github.com/emmalund/plantwatch/backend/internal/model/location"
	sessionService "github.com/emmalund/plantwatch/backend/internal/service/session"
)

// NewRouter wires HTTP routes to the session coordinator.
func NewRouter(registry *locationModel.Registry, coordinator *sessionService.Coordinator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		locationHandler.New(registry).RegisterRoutes(api)
		sessionHandler.New(coordinator).RegisterRoutes(api)
	})

	return r
}
