package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every section the service needs at startup.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Workflow WorkflowConfig
	Store    StoreConfig
	Google   GoogleConfig
}

// Load reads the whole configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	workflow, err := loadWorkflowConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Auth:     auth,
		Workflow: workflow,
		Store:    loadStoreConfig(),
		Google:   loadGoogleConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8077"
	}

	if strings.Contains(port, ":") {
		// Accept ":8077" or "127.0.0.1:8077" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig holds the token signing secret and lifetime.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("SECRET_KEY is required")
	}

	ttlMinutes := 43200 // 30 days
	if override, err := parseOptionalIntEnv("TOKEN_TTL_MINUTES"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
		}
		ttlMinutes = *override
	}

	return AuthConfig{
		Secret:   secret,
		TokenTTL: time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

// WorkflowConfig describes the external workflow sink: the webhook endpoint
// and the fixed addressing metadata its wire format requires.
type WorkflowConfig struct {
	WebhookURL  string
	Event       string
	Instance    string
	Channel     string
	RemoteJID   string
	Sender      string
	Destination string
	Timeout     time.Duration
}

func loadWorkflowConfig() (WorkflowConfig, error) {
	webhookURL := strings.TrimSpace(os.Getenv("N8N_WEBHOOK_URL"))
	if webhookURL == "" {
		return WorkflowConfig{}, fmt.Errorf("N8N_WEBHOOK_URL is required")
	}

	timeoutSeconds := 20
	if override, err := parseOptionalIntEnv("WORKFLOW_TIMEOUT_SECONDS"); err != nil {
		return WorkflowConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return WorkflowConfig{}, fmt.Errorf("WORKFLOW_TIMEOUT_SECONDS must be positive")
		}
		timeoutSeconds = *override
	}

	return WorkflowConfig{
		WebhookURL:  webhookURL,
		Event:       getEnvOrDefault("WORKFLOW_EVENT", "messages.upsert"),
		Instance:    getEnvOrDefault("WORKFLOW_INSTANCE", "axia"),
		Channel:     strings.TrimSpace(os.Getenv("WORKFLOW_CHANNEL")),
		RemoteJID:   getEnvOrDefault("WORKFLOW_REMOTE_JID", "axia@s.whatsapp.net"),
		Sender:      getEnvOrDefault("WORKFLOW_SENDER", "axia"),
		Destination: strings.TrimSpace(os.Getenv("WORKFLOW_DESTINATION")),
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// StoreConfig locates the record database.
type StoreConfig struct {
	Path string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Path: getEnvOrDefault("BADGER_PATH", "./data/axia"),
	}
}

// GoogleConfig carries the OAuth client for the Calendar/Tasks pass-through.
// The section is optional; Enabled reports whether all pieces are present.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func loadGoogleConfig() GoogleConfig {
	return GoogleConfig{
		ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		RefreshToken: strings.TrimSpace(os.Getenv("GOOGLE_REFRESH_TOKEN")),
	}
}

// Enabled reports whether the Google credentials are fully configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
