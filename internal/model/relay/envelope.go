package relay

import "time"

// Envelope is the normalized outbound message before sink-specific encoding.
// Ephemeral: minted at send time, never persisted.
type Envelope struct {
	SessionID   string
	User        string
	Timestamp   time.Time
	Kind        string
	Text        string
	AudioBase64 string
}

// Reply is the normalized workflow response after defensive decoding.
type Reply struct {
	SessionID    string
	Output       string
	Type         string
	DebeSerAudio bool
	AudioURL     string
	Timestamp    time.Time
}

// LogEntry records one turn in the per-user message log served by the
// history endpoint.
type LogEntry struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
