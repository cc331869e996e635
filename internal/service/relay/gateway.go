package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	relaymodel "github.com/axchisan/AxIA/internal/model/relay"
)

// GatewayErrorKind discriminates delivery failures toward the workflow sink.
type GatewayErrorKind int

const (
	// ErrKindUnreachable covers network or transport failures, including the
	// call timing out.
	ErrKindUnreachable GatewayErrorKind = iota + 1
	// ErrKindUpstreamRejected covers non-success HTTP statuses from the sink.
	ErrKindUpstreamRejected
)

// GatewayError is returned by Gateway.Send so callers can handle each
// failure kind explicitly instead of matching on error strings.
type GatewayError struct {
	Kind   GatewayErrorKind
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case ErrKindUpstreamRejected:
		return fmt.Sprintf("workflow sink rejected request: status %d", e.Status)
	default:
		return fmt.Sprintf("workflow sink unreachable: %v", e.Err)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway translates envelopes into the sink's wire shape and back.
type Gateway interface {
	Send(ctx context.Context, env relaymodel.Envelope) (relaymodel.Reply, error)
}

// GatewayConfig carries the sink-specific addressing metadata. RemoteJID and
// Sender are fixed by configuration, never derived per-message.
type GatewayConfig struct {
	WebhookURL  string
	Event       string
	Instance    string
	Channel     string
	RemoteJID   string
	Sender      string
	Destination string
	Timeout     time.Duration
}

// WebhookGateway sends envelopes to the workflow engine's webhook endpoint.
type WebhookGateway struct {
	cfg    GatewayConfig
	client *http.Client
}

// NewWebhookGateway builds a gateway with a bounded call timeout.
func NewWebhookGateway(cfg GatewayConfig) *WebhookGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &WebhookGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Wire shapes fixed by the sink's contract. Exactly one of conversation and
// base64 is present per message; the absent one stays off the wire entirely.
type wirePayload struct {
	Event       string   `json:"event"`
	Instance    string   `json:"instance"`
	Channel     string   `json:"channel,omitempty"`
	Data        wireData `json:"data"`
	Destination string   `json:"destination"`
	DateTime    string   `json:"date_time"`
	Sender      string   `json:"sender"`
}

type wireData struct {
	Key              wireKey     `json:"key"`
	PushName         string      `json:"pushName"`
	Message          wireMessage `json:"message"`
	MessageType      string      `json:"messageType"`
	MessageTimestamp int64       `json:"messageTimestamp"`
}

type wireKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type wireMessage struct {
	Conversation string `json:"conversation,omitempty"`
	Base64       string `json:"base64,omitempty"`
}

// sinkReply is the shape the sink usually answers with. The sink is not fully
// under our control, so every field is decoded defensively.
type sinkReply struct {
	Output       string `json:"output"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	DebeSerAudio bool   `json:"debe_ser_audio"`
	AudioURL     string `json:"audio_url"`
}

// Send posts the envelope to the webhook and normalizes the answer. A success
// status with a body that is not reply-shaped JSON is a degraded success: the
// raw body is surfaced as a text reply rather than failing the whole call.
func (g *WebhookGateway) Send(ctx context.Context, env relaymodel.Envelope) (relaymodel.Reply, error) {
	payload := g.encode(env)

	body, err := json.Marshal(payload)
	if err != nil {
		return relaymodel.Reply{}, &GatewayError{Kind: ErrKindUnreachable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return relaymodel.Reply{}, &GatewayError{Kind: ErrKindUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return relaymodel.Reply{}, &GatewayError{Kind: ErrKindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return relaymodel.Reply{}, &GatewayError{Kind: ErrKindUnreachable, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return relaymodel.Reply{}, &GatewayError{Kind: ErrKindUpstreamRejected, Status: resp.StatusCode}
	}

	return decodeReply(env.SessionID, raw), nil
}

func (g *WebhookGateway) encode(env relaymodel.Envelope) wirePayload {
	msg := wireMessage{}
	messageType := "conversation"
	if env.Kind == relaymodel.KindAudio {
		msg.Base64 = env.AudioBase64
		messageType = "audioMessage"
	} else {
		msg.Conversation = env.Text
	}

	ts := env.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return wirePayload{
		Event:    g.cfg.Event,
		Instance: g.cfg.Instance,
		Channel:  g.cfg.Channel,
		Data: wireData{
			Key: wireKey{
				RemoteJID: g.cfg.RemoteJID,
				FromMe:    false,
				ID:        env.SessionID,
			},
			PushName:         env.User,
			Message:          msg,
			MessageType:      messageType,
			MessageTimestamp: ts.Unix(),
		},
		Destination: g.cfg.Destination,
		DateTime:    ts.UTC().Format(time.RFC3339),
		Sender:      g.cfg.Sender,
	}
}

// decodeReply maps the sink's answer onto a Reply, trying known field names
// in priority order and falling back to a synthesized text reply when the
// body is not struct-shaped JSON.
func decodeReply(sessionID string, raw []byte) relaymodel.Reply {
	reply := relaymodel.Reply{
		SessionID: sessionID,
		Type:      relaymodel.KindText,
		Timestamp: time.Now().UTC(),
	}

	var decoded sinkReply
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("[gateway] reply body not reply-shaped, echoing raw text session=%s: %v", sessionID, err)
		reply.Output = string(raw)
		return reply
	}

	reply.Output = decoded.Output
	if reply.Output == "" {
		reply.Output = decoded.Message
	}
	if decoded.Type != "" {
		reply.Type = decoded.Type
	}
	reply.DebeSerAudio = decoded.DebeSerAudio
	reply.AudioURL = decoded.AudioURL

	// The audio flag wins over whatever kind the sink reported.
	if reply.DebeSerAudio {
		reply.Type = relaymodel.KindAudio
	}

	return reply
}
