package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/axchisan/AxIA/internal/model/record"
)

func presenceKey(user string) []byte {
	return []byte(fmt.Sprintf("presence:%s", user))
}

// GetPresence returns the user's last reported status, defaulting to
// "offline" when none was ever set.
func (s *Store) GetPresence(user string) (record.Presence, error) {
	var presence record.Presence
	err := s.get(presenceKey(user), &presence)
	if errors.Is(err, ErrNotFound) {
		return record.Presence{Status: "offline"}, nil
	}
	if err != nil {
		return record.Presence{}, err
	}
	return presence, nil
}

// SetPresence stores the user's status with the current timestamp.
func (s *Store) SetPresence(user, status string) (record.Presence, error) {
	presence := record.Presence{
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.put(presenceKey(user), presence); err != nil {
		return record.Presence{}, err
	}
	return presence, nil
}
