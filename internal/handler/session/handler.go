package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionservice "github.com/emmalund/plantwatch/backend/internal/service/session"
	"github.com/emmalund/plantwatch/backend/pkg/utils"
)

// maxImageBytes bounds upload request bodies.
const maxImageBytes = 10 << 20

// Handler exposes the session coordinator over HTTP. Every route is a thin
// wrapper: validate the request shape, invoke one transition, render the
// resulting state.
type Handler struct {
	coordinator *sessionservice.Coordinator
}

// New creates the session handler.
func New(coordinator *sessionservice.Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleStartSession)
	r.Get("/session/{sessionID}", h.handleGetState)
	r.Post("/session/{sessionID}/location", h.handleChangeLocation)
	r.Post("/session/{sessionID}/messages", h.handleSendMessage)
	r.Post("/session/{sessionID}/image", h.handleUploadImage)
	r.Get("/session/{sessionID}/watch", h.handleWatch)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	state := h.coordinator.StartSession(r.Context())
	utils.RespondJSON(w, http.StatusCreated, state)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.coordinator.State(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondTransitionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleChangeLocation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.coordinator.ChangeLocation(r.Context(), chi.URLParam(r, "sessionID"), payload.Location)
	if err != nil {
		respondTransitionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.coordinator.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		respondTransitionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "image form field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read image data")
		return
	}

	state, err := h.coordinator.UploadImage(r.Context(), chi.URLParam(r, "sessionID"), data, header.Filename)
	if err != nil {
		respondTransitionError(w, err)
		return
	}
	// Upload failure is data, not an HTTP error: the state carries the flag.
	utils.RespondJSON(w, http.StatusOK, state)
}

// respondTransitionError maps coordinator errors onto HTTP statuses:
// unknown session is 404, every validation error is 400.
func respondTransitionError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, sessionservice.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	utils.RespondError(w, status, err.Error())
}
