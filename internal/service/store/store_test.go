package store

import (
	"errors"
	"testing"

	"github.com/axchisan/AxIA/internal/model/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserCreateAndGet(t *testing.T) {
	s := openTestStore(t)

	err := s.CreateUser(record.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "hashed",
	})
	if err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}

	user, err := s.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser err: %v", err)
	}
	if user.Email != "alice@example.com" || !user.IsActive {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserDuplicate(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateUser(record.User{Username: "alice"}); err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}
	if err := s.CreateUser(record.User{Username: "alice"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetUser("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNoteCRUD(t *testing.T) {
	s := openTestStore(t)

	created, err := s.CreateNote("alice", record.Note{Title: "groceries", Content: "milk"})
	if err != nil {
		t.Fatalf("CreateNote err: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an id")
	}

	got, err := s.GetNote("alice", created.ID)
	if err != nil {
		t.Fatalf("GetNote err: %v", err)
	}
	if got.Title != "groceries" {
		t.Fatalf("unexpected note: %+v", got)
	}

	updated, err := s.UpdateNote("alice", record.Note{ID: created.ID, Title: "groceries", Content: "milk, eggs"})
	if err != nil {
		t.Fatalf("UpdateNote err: %v", err)
	}
	if updated.Content != "milk, eggs" {
		t.Fatalf("unexpected content: %q", updated.Content)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("update must not change CreatedAt")
	}

	if err := s.DeleteNote("alice", created.ID); err != nil {
		t.Fatalf("DeleteNote err: %v", err)
	}
	if _, err := s.GetNote("alice", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNotesAreScopedPerUser(t *testing.T) {
	s := openTestStore(t)

	note, err := s.CreateNote("alice", record.Note{Title: "private"})
	if err != nil {
		t.Fatalf("CreateNote err: %v", err)
	}

	if _, err := s.GetNote("bob", note.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob must not see alice's note, got %v", err)
	}

	notes, err := s.ListNotes("bob")
	if err != nil {
		t.Fatalf("ListNotes err: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("expected no notes for bob, got %d", len(notes))
	}
}

func TestListNotesCreationOrder(t *testing.T) {
	s := openTestStore(t)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.CreateNote("alice", record.Note{Title: title}); err != nil {
			t.Fatalf("CreateNote err: %v", err)
		}
	}

	notes, err := s.ListNotes("alice")
	if err != nil {
		t.Fatalf("ListNotes err: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	for i, title := range []string{"first", "second", "third"} {
		if notes[i].Title != title {
			t.Fatalf("unexpected order: %v", notes)
		}
	}
}

func TestRoutineCRUD(t *testing.T) {
	s := openTestStore(t)

	created, err := s.CreateRoutine("alice", record.Routine{
		Title:    "morning briefing",
		Schedule: "0 7 * * *",
		Enabled:  true,
	})
	if err != nil {
		t.Fatalf("CreateRoutine err: %v", err)
	}

	created.Enabled = false
	updated, err := s.UpdateRoutine("alice", created)
	if err != nil {
		t.Fatalf("UpdateRoutine err: %v", err)
	}
	if updated.Enabled {
		t.Fatal("expected routine to be disabled")
	}

	if err := s.DeleteRoutine("alice", created.ID); err != nil {
		t.Fatalf("DeleteRoutine err: %v", err)
	}
	if err := s.DeleteRoutine("alice", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestPresenceDefaultsToOffline(t *testing.T) {
	s := openTestStore(t)

	presence, err := s.GetPresence("alice")
	if err != nil {
		t.Fatalf("GetPresence err: %v", err)
	}
	if presence.Status != "offline" {
		t.Fatalf("expected offline default, got %q", presence.Status)
	}
}

func TestPresenceSetAndGet(t *testing.T) {
	s := openTestStore(t)

	set, err := s.SetPresence("alice", "available")
	if err != nil {
		t.Fatalf("SetPresence err: %v", err)
	}
	if set.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be set")
	}

	got, err := s.GetPresence("alice")
	if err != nil {
		t.Fatalf("GetPresence err: %v", err)
	}
	if got.Status != "available" {
		t.Fatalf("unexpected status: %q", got.Status)
	}
}
