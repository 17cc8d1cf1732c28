package location

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/pkg/utils"
)

// Handler serves the location selector payload.
type Handler struct {
	registry *location.Registry
}

func New(registry *location.Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/locations", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"locations": h.registry.Names(),
		"default":   h.registry.DefaultName(),
	})
}
