package session

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	sessionservice "github.com/emmalund/plantwatch/backend/internal/service/session"
	"github.com/emmalund/plantwatch/backend/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWatch upgrades to a websocket and pushes the session state after
// every completed transition, so the dashboard can re-render without polling.
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	states, cancel, err := h.coordinator.Watch(sessionID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[watch] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current state immediately so a fresh watcher is not blank.
	if state, err := h.coordinator.State(sessionID); err == nil {
		if err := conn.WriteJSON(state); err != nil {
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				log.Printf("[watch] write failed for session=%s: %v", sessionID, err)
				return
			}
		}
	}
}
