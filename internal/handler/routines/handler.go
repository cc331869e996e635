package routines

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/axchisan/AxIA/internal/middleware"
	"github.com/axchisan/AxIA/internal/model/record"
	"github.com/axchisan/AxIA/internal/service/store"
	"github.com/axchisan/AxIA/pkg/utils"
)

// Handler serves the routines CRUD surface, scoped to the authenticated user.
type Handler struct {
	store *store.Store
}

// New creates the routines handler.
func New(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes mounts the routines routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/routines", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{routineID}", h.handleGet)
		r.Put("/{routineID}", h.handleUpdate)
		r.Delete("/{routineID}", h.handleDelete)
	})
}

type routinePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Enabled     *bool  `json:"enabled"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	routines, err := h.store.ListRoutines(user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list routines")
		return
	}
	utils.RespondJSON(w, http.StatusOK, routines)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var payload routinePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" || payload.Schedule == "" {
		utils.RespondError(w, http.StatusBadRequest, "title and schedule are required")
		return
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}

	routine, err := h.store.CreateRoutine(user, record.Routine{
		Title:       payload.Title,
		Description: payload.Description,
		Schedule:    payload.Schedule,
		Enabled:     enabled,
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create routine")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, routine)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	routine, err := h.store.GetRoutine(user, chi.URLParam(r, "routineID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, routine)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var payload routinePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}

	routine, err := h.store.UpdateRoutine(user, record.Routine{
		ID:          chi.URLParam(r, "routineID"),
		Title:       payload.Title,
		Description: payload.Description,
		Schedule:    payload.Schedule,
		Enabled:     enabled,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, routine)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.store.DeleteRoutine(user, chi.URLParam(r, "routineID")); err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "routine not found")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, "storage error")
}
