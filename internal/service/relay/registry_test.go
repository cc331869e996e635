package relay

import (
	"errors"
	"testing"
)

// fakeConn records written payloads and optionally fails every write.
type fakeConn struct {
	writes []any
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.writes = append(c.writes, v)
	return nil
}

func TestRegistryBroadcastNoConnections(t *testing.T) {
	registry := NewRegistry()

	if registry.HasConnections("alice") {
		t.Fatal("expected no connections for alice")
	}
	if n := registry.Broadcast("alice", "msg"); n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
}

func TestRegistryRegisterUnregister(t *testing.T) {
	registry := NewRegistry()
	a := &fakeConn{}
	b := &fakeConn{}

	registry.Register("alice", a)
	registry.Register("alice", b)

	if !registry.HasConnections("alice") {
		t.Fatal("expected connections for alice")
	}

	registry.Unregister("alice", a)
	// Removing an absent connection is a no-op.
	registry.Unregister("alice", a)
	registry.Unregister("alice", &fakeConn{})

	if n := registry.Broadcast("alice", "msg"); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if len(b.writes) != 1 {
		t.Fatalf("expected b to receive 1 message, got %d", len(b.writes))
	}

	registry.Unregister("alice", b)
	if registry.HasConnections("alice") {
		t.Fatal("expected no connections after unregistering all")
	}
}

func TestRegistryBroadcastRemovesFailedConnections(t *testing.T) {
	registry := NewRegistry()
	good1 := &fakeConn{}
	bad := &fakeConn{fail: true}
	good2 := &fakeConn{}

	registry.Register("alice", good1)
	registry.Register("alice", bad)
	registry.Register("alice", good2)

	if n := registry.Broadcast("alice", "msg"); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if len(good1.writes) != 1 || len(good2.writes) != 1 {
		t.Fatal("expected both healthy connections to receive the message")
	}

	// The failed connection must be gone immediately after the call.
	if n := registry.Broadcast("alice", "again"); n != 2 {
		t.Fatalf("expected 2 deliveries after removal, got %d", n)
	}
	if len(good1.writes) != 2 || len(good2.writes) != 2 {
		t.Fatal("expected healthy connections to receive the second message")
	}
}

func TestRegistryBroadcastOrder(t *testing.T) {
	registry := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	registry.Register("alice", first)
	registry.Register("alice", second)
	registry.Broadcast("alice", "one")

	if len(first.writes) != 1 || len(second.writes) != 1 {
		t.Fatal("expected both connections to receive the broadcast")
	}
}

func TestRegistryUsersAreIndependent(t *testing.T) {
	registry := NewRegistry()
	alice := &fakeConn{}
	bob := &fakeConn{}

	registry.Register("alice", alice)
	registry.Register("bob", bob)

	registry.Broadcast("alice", "hi")

	if len(bob.writes) != 0 {
		t.Fatal("broadcast to alice must not reach bob")
	}
}
