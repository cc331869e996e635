package presence

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/axchisan/AxIA/internal/middleware"
	"github.com/axchisan/AxIA/internal/service/store"
	"github.com/axchisan/AxIA/pkg/utils"
)

// Handler serves the presence status, scoped to the authenticated user.
type Handler struct {
	store *store.Store
}

// New creates the presence handler.
func New(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes mounts the presence routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/presence", h.handleGet)
	r.Put("/presence", h.handleSet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	presence, err := h.store.GetPresence(user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load presence")
		return
	}
	utils.RespondJSON(w, http.StatusOK, presence)
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Status == "" {
		utils.RespondError(w, http.StatusBadRequest, "status is required")
		return
	}

	presence, err := h.store.SetPresence(user, payload.Status)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save presence")
		return
	}
	utils.RespondJSON(w, http.StatusOK, presence)
}
