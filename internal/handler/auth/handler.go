package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/axchisan/AxIA/internal/model/record"
	authService "github.com/axchisan/AxIA/internal/service/auth"
	"github.com/axchisan/AxIA/internal/service/store"
	"github.com/axchisan/AxIA/pkg/utils"
)

var validate = validator.New()

// Handler serves login and registration.
type Handler struct {
	authSvc *authService.Service
}

// New creates the auth handler.
func New(authSvc *authService.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/token", h.handleLogin)
	r.Post("/auth/register", h.handleRegister)
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name"`
}

type userResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user record.User) userResponse {
	return userResponse{
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid registration data")
		return
	}

	user, err := h.authSvc.Register(payload.Username, payload.Email, payload.Password, payload.FullName)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			utils.RespondError(w, http.StatusConflict, "username already taken")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Username == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.authSvc.Login(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authSvc.TokenTTL().Seconds()),
	})
}
