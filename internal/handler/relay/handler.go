package relay

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/axchisan/AxIA/internal/middleware"
	relaymodel "github.com/axchisan/AxIA/internal/model/relay"
	relayService "github.com/axchisan/AxIA/internal/service/relay"
	"github.com/axchisan/AxIA/pkg/utils"
)

// Handler serves the request/response relay path, the message history and
// the out-of-band delivery endpoint.
type Handler struct {
	relaySvc *relayService.Service
}

// New creates the relay HTTP handler.
func New(relaySvc *relayService.Service) *Handler {
	return &Handler{relaySvc: relaySvc}
}

// RegisterRoutes mounts the authenticated relay routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleSendMessage)
	r.Get("/messages/{sessionID}", h.handleHistory)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload relaymodel.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.relaySvc.RelayOnce(r.Context(), user, payload)
	if err != nil {
		log.Printf("[relay] forwarding failed user=%s: %v", user, err)
		utils.RespondError(w, http.StatusInternalServerError, "error processing message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleHistory returns the caller's whole message log. The session id in
// the path is accepted for client compatibility but does not filter.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.relaySvc.History(user))
}

// HandleNotify accepts pushes from the workflow sink outside a normal
// request/reply turn. Trusted-caller endpoint: it is mounted outside the
// bearer-token surface and must not be exposed publicly.
func (h *Handler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	var payload relaymodel.PushPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Username == "" {
		utils.RespondError(w, http.StatusBadRequest, "username is required")
		return
	}

	result := h.relaySvc.Deliver(payload.Username, payload)
	utils.RespondJSON(w, http.StatusOK, result)
}
