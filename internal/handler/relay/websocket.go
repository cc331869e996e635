package relay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	relaymodel "github.com/axchisan/AxIA/internal/model/relay"
	authService "github.com/axchisan/AxIA/internal/service/auth"
	relayService "github.com/axchisan/AxIA/internal/service/relay"
)

const (
	readWait  = 60 * time.Second
	pingEvery = 54 * time.Second
	writeWait = 10 * time.Second
)

// WebSocketHandler owns the duplex relay path.
type WebSocketHandler struct {
	relaySvc *relayService.Service
	authSvc  *authService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the duplex handler.
func NewWebSocketHandler(relaySvc *relayService.Service, authSvc *authService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		relaySvc: relaySvc,
		authSvc:  authSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{username}", h.handleWebSocket)
}

// wsConn serializes writes: the read loop and registry broadcasts may write
// concurrently, and gorilla permits only one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) writeControl(messageType int, data []byte) error {
	return c.conn.WriteControl(messageType, data, time.Now().Add(writeWait))
}

// handleWebSocket runs one connection: token gate, registration, then a
// frame-at-a-time relay loop. Per-frame failures are reported in-band and
// never terminate the loop; only transport errors do.
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	// The token arrives as a connection parameter; a websocket close code is
	// the only rejection channel once the upgrade happened.
	token := r.URL.Query().Get("token")
	if _, err := h.authSvc.VerifyToken(token); err != nil {
		log.Printf("[websocket] rejected connection user=%s: %v", username, err)
		_ = conn.writeControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
		return
	}

	log.Printf("[websocket] new connection user=%s", username)

	registry := h.relaySvc.Registry()
	registry.Register(username, conn)
	defer registry.Unregister(username, conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	raw.SetReadDeadline(time.Now().Add(readWait))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error user=%s: %v", username, err)
			}
			return
		}
		raw.SetReadDeadline(time.Now().Add(readWait))

		h.handleFrame(ctx, conn, username, data)
	}
}

// handleFrame relays one inbound frame and writes either the resolved reply
// or an error frame carrying the session id back on the same connection.
func (h *WebSocketHandler) handleFrame(ctx context.Context, conn *wsConn, username string, data []byte) {
	var frame relaymodel.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.sendError(conn, relaymodel.ErrorFrame{
			Error:     "invalid message format",
			SessionID: "",
			Details:   err.Error(),
		})
		return
	}

	out, sessionID, err := h.relaySvc.HandleFrame(ctx, username, frame)
	if err != nil {
		log.Printf("[websocket] relay failed user=%s session=%s: %v", username, sessionID, err)
		h.sendError(conn, relaymodel.ErrorFrame{
			Error:     "error processing message",
			SessionID: sessionID,
		})
		return
	}

	if err := conn.WriteJSON(out); err != nil {
		// The client vanished mid-call; the read loop will notice and exit.
		log.Printf("[websocket] write failed user=%s session=%s: %v", username, sessionID, err)
	}
}

func (h *WebSocketHandler) sendError(conn *wsConn, frame relaymodel.ErrorFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[websocket] write error frame failed: %v", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.writeControl(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
