package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/axchisan/AxIA/internal/config"
	"github.com/axchisan/AxIA/internal/handler"
	authservice "github.com/axchisan/AxIA/internal/service/auth"
	googleservice "github.com/axchisan/AxIA/internal/service/google"
	relayservice "github.com/axchisan/AxIA/internal/service/relay"
	"github.com/axchisan/AxIA/internal/service/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	records, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	defer records.Close()

	authSvc := authservice.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL, records)

	gateway := relayservice.NewWebhookGateway(relayservice.GatewayConfig{
		WebhookURL:  cfg.Workflow.WebhookURL,
		Event:       cfg.Workflow.Event,
		Instance:    cfg.Workflow.Instance,
		Channel:     cfg.Workflow.Channel,
		RemoteJID:   cfg.Workflow.RemoteJID,
		Sender:      cfg.Workflow.Sender,
		Destination: cfg.Workflow.Destination,
		Timeout:     cfg.Workflow.Timeout,
	})
	relaySvc := relayservice.NewService(gateway, relayservice.NewRegistry())

	// The Google pass-through is optional; the API answers 503 on its routes
	// when the credentials are absent.
	var googleSvc *googleservice.Service
	if cfg.Google.Enabled() {
		googleSvc, err = googleservice.NewService(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RefreshToken)
		if err != nil {
			log.Printf("warning: failed to initialize Google services: %v", err)
			log.Println("continuing without calendar/tasks integration")
			googleSvc = nil
		} else {
			log.Println("Google calendar/tasks integration initialized")
		}
	} else {
		log.Println("Google credentials not configured, skipping calendar/tasks integration")
	}

	router := handler.NewRouter(authSvc, relaySvc, records, googleSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("AxIA backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
