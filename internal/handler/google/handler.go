package google

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	googleService "github.com/axchisan/AxIA/internal/service/google"
	"github.com/axchisan/AxIA/pkg/utils"
)

// Handler proxies Google Calendar and Tasks, flattening the API types into
// the shapes the mobile client already consumes.
type Handler struct {
	googleSvc *googleService.Service
}

// New creates the Google proxy handler.
func New(googleSvc *googleService.Service) *Handler {
	return &Handler{googleSvc: googleSvc}
}

// RegisterRoutes mounts the calendar and task routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/calendar/events", h.handleListEvents)
	r.Post("/calendar/events", h.handleCreateEvent)
	r.Get("/tasks", h.handleListTasks)
	r.Post("/tasks", h.handleCreateTask)
	r.Post("/tasks/{taskID}/complete", h.handleCompleteTask)
}

type eventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

func toEventResponse(event *calendar.Event) eventResponse {
	resp := eventResponse{
		ID:          event.Id,
		Title:       event.Summary,
		Description: event.Description,
		Location:    event.Location,
	}
	if event.Start != nil {
		resp.StartTime = event.Start.DateTime
		if resp.StartTime == "" {
			resp.StartTime = event.Start.Date
		}
	}
	if event.End != nil {
		resp.EndTime = event.End.DateTime
		if resp.EndTime == "" {
			resp.EndTime = event.End.Date
		}
	}
	return resp
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var timeMin, timeMax time.Time
	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		timeMin = parsed
	}
	if to := r.URL.Query().Get("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		timeMax = parsed
	}

	events, err := h.googleSvc.ListEvents(r.Context(), timeMin, timeMax, 100)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "calendar unavailable")
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
		Description string `json:"description"`
		Location    string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	start, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid start_time")
		return
	}
	end, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid end_time")
		return
	}

	event, err := h.googleSvc.CreateEvent(r.Context(), payload.Title, payload.Description, payload.Location, start, end)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "calendar unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, toEventResponse(event))
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"due_date,omitempty"`
}

func toTaskResponse(task *tasks.Task) taskResponse {
	return taskResponse{
		ID:          task.Id,
		Title:       task.Title,
		Description: task.Notes,
		Completed:   task.Status == "completed",
		DueDate:     task.Due,
	}
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.googleSvc.ListTasks(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "tasks unavailable")
		return
	}

	resp := make([]taskResponse, 0, len(items))
	for _, task := range items {
		resp = append(resp, toTaskResponse(task))
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	var due time.Time
	if payload.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, payload.DueDate)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid due_date")
			return
		}
		due = parsed
	}

	task, err := h.googleSvc.CreateTask(r.Context(), payload.Title, payload.Description, due)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "tasks unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.googleSvc.CompleteTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "tasks unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toTaskResponse(task))
}
