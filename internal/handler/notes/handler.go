package notes

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

// Handler serves the notes CRUD surface, scoped to the authenticated user.
type Handler struct {
	store *store.Store
}

// New creates the notes handler.
func New(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes mounts the notes routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{noteID}", h.handleGet)
		r.Put("/{noteID}", h.handleUpdate)
		r.Delete("/{noteID}", h.handleDelete)
	})
}

type notePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	notes, err := h.store.ListNotes(user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	utils.RespondJSON(w, http.StatusOK, notes)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var payload notePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	note, err := h.store.CreateNote(user, record.Note{Title: payload.Title, Content: payload.Content})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create note")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	note, err := h.store.GetNote(user, chi.URLParam(r, "noteID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, note)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var payload notePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.store.UpdateNote(user, record.Note{
		ID:      chi.URLParam(r, "noteID"),
		Title:   payload.Title,
		Content: payload.Content,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, note)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.store.DeleteNote(user, chi.URLParam(r, "noteID")); err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "note not found")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, "storage error")
}
