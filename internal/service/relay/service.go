package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	relaymodel "github.com/axchisan/AxIA/internal/model/relay"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Service orchestrates the relay: it mints session ids, drives the gateway
// call, keeps the per-user message log and fans out-of-band replies over the
// registry. Constructed once at process start.
type Service struct {
	gateway  Gateway
	registry *Registry

	mu       sync.RWMutex
	messages map[string][]relaymodel.LogEntry
}

// NewService wires the relay core together.
func NewService(gateway Gateway, registry *Registry) *Service {
	return &Service{
		gateway:  gateway,
		registry: registry,
		messages: make(map[string][]relaymodel.LogEntry),
	}
}

// Registry exposes the connection registry for the duplex handler.
func (s *Service) Registry() *Registry {
	return s.registry
}

func newSessionID() string {
	return uuid.NewString()
}

// buildEnvelope normalizes a request into an outbound envelope. Text takes
// precedence when both payloads are supplied; neither payload means a text
// envelope with an empty body.
func buildEnvelope(sessionID, user string, req relaymodel.MessageRequest) relaymodel.Envelope {
	env := relaymodel.Envelope{
		SessionID: sessionID,
		User:      user,
		Timestamp: time.Now().UTC(),
		Kind:      req.Type,
	}
	if env.Kind == "" {
		env.Kind = relaymodel.KindText
	}

	switch {
	case req.Text != "":
		env.Text = req.Text
		if env.Kind == relaymodel.KindAudio {
			env.Kind = relaymodel.KindText
		}
	case req.AudioBase64 != "":
		env.AudioBase64 = req.AudioBase64
		env.Kind = relaymodel.KindAudio
	default:
		env.Kind = relaymodel.KindText
	}

	return env
}

// RelayOnce handles the request/response path: one message in, one reply out.
// Any gateway failure fails the whole call; nothing beyond the user's own
// message is appended to the log in that case.
func (s *Service) RelayOnce(ctx context.Context, user string, req relaymodel.MessageRequest) (relaymodel.MessageResponse, error) {
	env := buildEnvelope(newSessionID(), user, req)

	content := env.Text
	if env.Kind == relaymodel.KindAudio {
		content = "[Audio]"
	}
	s.appendLog(user, relaymodel.LogEntry{
		SessionID: env.SessionID,
		Role:      roleUser,
		Content:   content,
		Type:      env.Kind,
		Timestamp: env.Timestamp,
	})

	reply, err := s.gateway.Send(ctx, env)
	if err != nil {
		return relaymodel.MessageResponse{}, err
	}

	s.appendLog(user, relaymodel.LogEntry{
		SessionID: env.SessionID,
		Role:      roleAssistant,
		Content:   reply.Output,
		Type:      reply.Type,
		Timestamp: reply.Timestamp,
	})

	return relaymodel.MessageResponse{
		SessionID:    env.SessionID,
		Output:       reply.Output,
		Type:         reply.Type,
		DebeSerAudio: reply.DebeSerAudio,
		AudioURL:     reply.AudioURL,
		Timestamp:    reply.Timestamp.Format(time.RFC3339),
	}, nil
}

// HandleFrame handles one duplex frame: the session id comes from the frame's
// embedded key when present, otherwise it is minted fresh. The returned
// session id is valid even on error so the caller can correlate the failure.
func (s *Service) HandleFrame(ctx context.Context, user string, frame relaymodel.InboundFrame) (relaymodel.OutboundFrame, string, error) {
	sessionID := frame.Data.Key.ID
	if sessionID == "" {
		sessionID = newSessionID()
	}

	req := relaymodel.MessageRequest{
		Text:        frame.Data.Message.Conversation,
		AudioBase64: frame.Data.Message.Base64,
		Type:        relaymodel.KindText,
	}
	if frame.Data.MessageType == "audioMessage" || (req.Text == "" && req.AudioBase64 != "") {
		req.Type = relaymodel.KindAudio
	}

	env := buildEnvelope(sessionID, user, req)

	content := env.Text
	if env.Kind == relaymodel.KindAudio {
		content = "[Audio]"
	}
	s.appendLog(user, relaymodel.LogEntry{
		SessionID: sessionID,
		Role:      roleUser,
		Content:   content,
		Type:      env.Kind,
		Timestamp: env.Timestamp,
	})

	reply, err := s.gateway.Send(ctx, env)
	if err != nil {
		return relaymodel.OutboundFrame{}, sessionID, err
	}

	s.appendLog(user, relaymodel.LogEntry{
		SessionID: sessionID,
		Role:      roleAssistant,
		Content:   reply.Output,
		Type:      reply.Type,
		Timestamp: reply.Timestamp,
	})

	return relaymodel.OutboundFrame{
		SessionID:    sessionID,
		Output:       reply.Output,
		Type:         reply.Type,
		DebeSerAudio: reply.DebeSerAudio,
		AudioURL:     reply.AudioURL,
		Timestamp:    reply.Timestamp.Format(time.RFC3339),
	}, sessionID, nil
}

// Deliver pushes an out-of-band reply from the workflow sink to every live
// connection for user. No listener is a normal, reportable outcome.
func (s *Service) Deliver(user string, payload relaymodel.PushPayload) relaymodel.DeliverResult {
	if !s.registry.HasConnections(user) {
		return relaymodel.DeliverResult{Status: relaymodel.StatusNoConnections}
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}
	kind := payload.Type
	if kind == "" {
		kind = relaymodel.KindText
	}
	if payload.DebeSerAudio {
		kind = relaymodel.KindAudio
	}

	frame := relaymodel.OutboundFrame{
		SessionID:    sessionID,
		Output:       payload.Output,
		Type:         kind,
		DebeSerAudio: payload.DebeSerAudio,
		AudioURL:     payload.AudioURL,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	notified := s.registry.Broadcast(user, frame)
	if notified == 0 {
		// Every connection died between the check and the broadcast.
		return relaymodel.DeliverResult{Status: relaymodel.StatusNoConnections}
	}

	return relaymodel.DeliverResult{Status: relaymodel.StatusDelivered, Connections: notified}
}

// History returns a copy of the caller's append-only message log.
func (s *Service) History(user string) []relaymodel.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.messages[user]
	copied := make([]relaymodel.LogEntry, len(entries))
	copy(copied, entries)
	return copied
}

func (s *Service) appendLog(user string, entry relaymodel.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[user] = append(s.messages[user], entry)
}
