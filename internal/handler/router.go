package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/axchisan/AxIA/internal/handler/auth"
	googleHandler "github.com/axchisan/AxIA/internal/handler/google"
	notesHandler "github.com/axchisan/AxIA/internal/handler/notes"
	presenceHandler "github.com/axchisan/AxIA/internal/handler/presence"
	relayHandler "github.com/axchisan/AxIA/internal/handler/relay"
	routinesHandler "github.com/axchisan/AxIA/internal/handler/routines"
	middlewarePkg "github.com/axchisan/AxIA/internal/middleware"
	authService "github.com/axchisan/AxIA/internal/service/auth"
	googleService "github.com/axchisan/AxIA/internal/service/google"
	relayService "github.com/axchisan/AxIA/internal/service/relay"
	"github.com/axchisan/AxIA/internal/service/store"
	"github.com/axchisan/AxIA/pkg/utils"
)

// NewRouter wires HTTP routes to core services. googleSvc may be nil when
// the Google credentials are not configured.
func NewRouter(authSvc *authService.Service, relaySvc *relayService.Service, records *store.Store, googleSvc *googleService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	relayH := relayHandler.New(relaySvc)
	wsH := relayHandler.NewWebSocketHandler(relaySvc, authSvc)

	// Public surface: login/registration, health, the duplex endpoint (which
	// gates on its own token parameter) and the sink's out-of-band callback.
	authHandler.New(authSvc).RegisterRoutes(r)
	wsH.RegisterRoutes(r)
	r.Post("/notify", relayH.HandleNotify)
	r.Get("/health", handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.RequireAuth(authSvc))

		relayH.RegisterRoutes(api)
		notesHandler.New(records).RegisterRoutes(api)
		routinesHandler.New(records).RegisterRoutes(api)
		presenceHandler.New(records).RegisterRoutes(api)

		if googleSvc != nil {
			googleHandler.New(googleSvc).RegisterRoutes(api)
		} else {
			api.HandleFunc("/calendar/*", handleGoogleUnavailable)
			api.HandleFunc("/tasks", handleGoogleUnavailable)
			api.HandleFunc("/tasks/*", handleGoogleUnavailable)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func handleGoogleUnavailable(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusServiceUnavailable, "google integration not configured")
}
