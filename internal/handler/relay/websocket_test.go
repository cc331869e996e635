package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	relaymodel "github.com/axchisan/AxIA/internal/model/relay"
	authService "github.com/axchisan/AxIA/internal/service/auth"
	relayService "github.com/axchisan/AxIA/internal/service/relay"
)

// seqGateway replies (or fails) per call, in order, repeating the last step.
type seqGateway struct {
	steps []func() (relaymodel.Reply, error)
	calls int
}

func (g *seqGateway) Send(_ context.Context, env relaymodel.Envelope) (relaymodel.Reply, error) {
	step := g.steps[g.calls]
	if g.calls < len(g.steps)-1 {
		g.calls++
	}
	reply, err := step()
	reply.SessionID = env.SessionID
	if reply.Timestamp.IsZero() {
		reply.Timestamp = time.Now().UTC()
	}
	return reply, err
}

func replyWith(output string) func() (relaymodel.Reply, error) {
	return func() (relaymodel.Reply, error) {
		return relaymodel.Reply{Output: output, Type: relaymodel.KindText}, nil
	}
}

func failWith(err error) func() (relaymodel.Reply, error) {
	return func() (relaymodel.Reply, error) {
		return relaymodel.Reply{}, err
	}
}

func setupWSServer(t *testing.T, gw relayService.Gateway) (*httptest.Server, *authService.Service, *relayService.Service) {
	t.Helper()

	authSvc := authService.NewService("test-secret", time.Hour, nil)
	relaySvc := relayService.NewService(gw, relayService.NewRegistry())

	r := chi.NewRouter()
	NewWebSocketHandler(relaySvc, authSvc).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, authSvc, relaySvc
}

func dialWS(t *testing.T, srv *httptest.Server, user, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + user
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	srv, _, _ := setupWSServer(t, &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("unused")}})

	conn := dialWS(t, srv, "alice", "not-a-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	srv, _, _ := setupWSServer(t, &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("unused")}})

	conn := dialWS(t, srv, "alice", "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestWebSocketRelayRoundTrip(t *testing.T) {
	gw := &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("hello back")}}
	srv, authSvc, relaySvc := setupWSServer(t, gw)

	token, err := authSvc.GenerateToken("alice")
	if err != nil {
		t.Fatalf("GenerateToken err: %v", err)
	}
	conn := dialWS(t, srv, "alice", token)

	frame := `{"data":{"message":{"conversation":"hi"},"messageType":"conversation"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write err: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out relaymodel.OutboundFrame
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read err: %v", err)
	}

	if out.Output != "hello back" {
		t.Fatalf("unexpected output: %q", out.Output)
	}
	if out.Type != relaymodel.KindText {
		t.Fatalf("unexpected type: %q", out.Type)
	}
	if out.DebeSerAudio {
		t.Fatal("expected debe_ser_audio false")
	}
	if out.SessionID == "" {
		t.Fatal("expected a session id")
	}

	// The connection counts as live until it is closed.
	if !relaySvc.Registry().HasConnections("alice") {
		t.Fatal("expected alice to be registered")
	}
}

func TestWebSocketErrorFrameKeepsConnectionOpen(t *testing.T) {
	gw := &seqGateway{steps: []func() (relaymodel.Reply, error){
		replyWith("first"),
		failWith(&relayService.GatewayError{Kind: relayService.ErrKindUpstreamRejected, Status: 503}),
		replyWith("third"),
	}}
	srv, authSvc, _ := setupWSServer(t, gw)

	token, _ := authSvc.GenerateToken("alice")
	conn := dialWS(t, srv, "alice", token)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frame := `{"data":{"message":{"conversation":"hi"},"messageType":"conversation"}}`

	// Frame 1: normal reply.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write err: %v", err)
	}
	var first relaymodel.OutboundFrame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if first.Output != "first" {
		t.Fatalf("unexpected output: %q", first.Output)
	}

	// Frame 2: gateway failure surfaces as an error frame in-band.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write err: %v", err)
	}
	var errFrame relaymodel.ErrorFrame
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if errFrame.Error == "" {
		t.Fatal("expected an error frame")
	}
	if errFrame.SessionID == "" {
		t.Fatal("error frame must carry the session id")
	}

	// Frame 3: the loop survived the error.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write err: %v", err)
	}
	var third relaymodel.OutboundFrame
	if err := conn.ReadJSON(&third); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if third.Output != "third" {
		t.Fatalf("unexpected output: %q", third.Output)
	}
}

func TestWebSocketMalformedFrameReportsParseError(t *testing.T) {
	gw := &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("ok")}}
	srv, authSvc, _ := setupWSServer(t, gw)

	token, _ := authSvc.GenerateToken("alice")
	conn := dialWS(t, srv, "alice", token)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var errFrame relaymodel.ErrorFrame
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if errFrame.Error == "" {
		t.Fatal("expected an error frame for the malformed payload")
	}

	// Loop still alive afterwards.
	frame := `{"data":{"message":{"conversation":"hi"},"messageType":"conversation"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write err: %v", err)
	}
	var out relaymodel.OutboundFrame
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if out.Output != "ok" {
		t.Fatalf("unexpected output: %q", out.Output)
	}
}

func TestWebSocketUnregistersOnDisconnect(t *testing.T) {
	gw := &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("ok")}}
	srv, authSvc, relaySvc := setupWSServer(t, gw)

	token, _ := authSvc.GenerateToken("alice")
	conn := dialWS(t, srv, "alice", token)

	// Wait until the handler registered the connection.
	waitFor(t, func() bool { return relaySvc.Registry().HasConnections("alice") })

	conn.Close()
	waitFor(t, func() bool { return !relaySvc.Registry().HasConnections("alice") })
}

func TestWebSocketDeliverReachesLiveConnection(t *testing.T) {
	gw := &seqGateway{steps: []func() (relaymodel.Reply, error){replyWith("ok")}}
	srv, authSvc, relaySvc := setupWSServer(t, gw)

	token, _ := authSvc.GenerateToken("alice")
	conn := dialWS(t, srv, "alice", token)
	waitFor(t, func() bool { return relaySvc.Registry().HasConnections("alice") })

	result := relaySvc.Deliver("alice", relaymodel.PushPayload{Username: "alice", Output: "delayed answer"})
	if result.Status != relaymodel.StatusDelivered || result.Connections != 1 {
		t.Fatalf("unexpected deliver result: %+v", result)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out relaymodel.OutboundFrame
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if out.Output != "delayed answer" {
		t.Fatalf("unexpected output: %q", out.Output)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
