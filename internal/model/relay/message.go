package relay

// Content kinds accepted from clients and reported back to them.
const (
	KindText    = "text"
	KindAudio   = "audio"
	KindCommand = "command"
)

// MessageRequest is the request/response path inbound body. Exactly one of
// Text/AudioBase64 is expected; when both are present text wins.
type MessageRequest struct {
	Text        string `json:"text,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Type        string `json:"type"`
}

// MessageResponse is returned to the caller once the workflow sink replied.
type MessageResponse struct {
	SessionID    string `json:"session_id"`
	Output       string `json:"output"`
	Type         string `json:"type"`
	DebeSerAudio bool   `json:"debe_ser_audio"`
	AudioURL     string `json:"audio_url,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// InboundFrame is one logical message on the duplex channel. It is a superset
// of MessageRequest: clients may forward sink-shaped events with their own
// correlation key and instance metadata.
type InboundFrame struct {
	Event      string    `json:"event,omitempty"`
	Instance   string    `json:"instance,omitempty"`
	InstanceID string    `json:"instanceId,omitempty"`
	Data       FrameData `json:"data"`
}

// FrameData discriminates plain conversation text from the audio variant.
type FrameData struct {
	Key         FrameKey     `json:"key"`
	Message     FrameMessage `json:"message"`
	MessageType string       `json:"messageType"`
}

// FrameKey carries an optional caller-supplied correlation id.
type FrameKey struct {
	ID string `json:"id,omitempty"`
}

// FrameMessage holds the payload; absent fields stay off the wire.
type FrameMessage struct {
	Conversation string `json:"conversation,omitempty"`
	Base64       string `json:"base64,omitempty"`
}

// OutboundFrame is pushed back over the duplex channel; same shape as
// MessageResponse so clients handle both paths uniformly.
type OutboundFrame struct {
	SessionID    string `json:"session_id"`
	Output       string `json:"output"`
	Type         string `json:"type"`
	DebeSerAudio bool   `json:"debe_ser_audio"`
	AudioURL     string `json:"audio_url,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// ErrorFrame reports a per-frame failure in-band without closing the channel.
type ErrorFrame struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id"`
	Details   string `json:"details,omitempty"`
}

// PushPayload is what the workflow sink posts to the out-of-band notify
// endpoint when it produces a reply outside a request/reply turn.
type PushPayload struct {
	Username     string `json:"username"`
	SessionID    string `json:"session_id,omitempty"`
	Output       string `json:"output,omitempty"`
	Type         string `json:"type,omitempty"`
	DebeSerAudio bool   `json:"debe_ser_audio,omitempty"`
	AudioURL     string `json:"audio_url,omitempty"`
	AudioBase64  string `json:"audio_base64,omitempty"`
}

// DeliverResult reports the outcome of an out-of-band push. A user with no
// live connections is a normal outcome, not an error.
type DeliverResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections,omitempty"`
}

const (
	StatusDelivered     = "delivered"
	StatusNoConnections = "no_active_connections"
)
