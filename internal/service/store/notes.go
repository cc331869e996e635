package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/axchisan/AxIA/internal/model/record"
)

func noteKey(user, id string) []byte {
	return []byte(fmt.Sprintf("note:%s:%s", user, id))
}

func notePrefix(user string) []byte {
	return []byte(fmt.Sprintf("note:%s:", user))
}

// CreateNote assigns an id and persists the note under user.
func (s *Store) CreateNote(user string, note record.Note) (record.Note, error) {
	now := time.Now().UTC()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now
	if err := s.put(noteKey(user, note.ID), note); err != nil {
		return record.Note{}, err
	}
	return note, nil
}

// GetNote loads one of user's notes.
func (s *Store) GetNote(user, id string) (record.Note, error) {
	var note record.Note
	if err := s.get(noteKey(user, id), &note); err != nil {
		return record.Note{}, err
	}
	return note, nil
}

// ListNotes returns all of user's notes in creation order.
func (s *Store) ListNotes(user string) ([]record.Note, error) {
	notes := []record.Note{}
	err := s.listPrefix(notePrefix(user), func(v []byte) error {
		var note record.Note
		if err := json.Unmarshal(v, &note); err != nil {
			return err
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}

// UpdateNote replaces title/content of an existing note.
func (s *Store) UpdateNote(user string, note record.Note) (record.Note, error) {
	existing, err := s.GetNote(user, note.ID)
	if err != nil {
		return record.Note{}, err
	}

	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = time.Now().UTC()
	if err := s.put(noteKey(user, existing.ID), existing); err != nil {
		return record.Note{}, err
	}
	return existing, nil
}

// DeleteNote removes one of user's notes.
func (s *Store) DeleteNote(user, id string) error {
	return s.delete(noteKey(user, id))
}
