package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/axchisan/AxIA/internal/model/record"
)

func userKey(username string) []byte {
	return []byte(fmt.Sprintf("user:%s", username))
}

// CreateUser stores a new account record. Usernames are unique.
func (s *Store) CreateUser(user record.User) error {
	if _, err := s.GetUser(user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.put(userKey(user.Username), user)
}

// GetUser loads an account record by username.
func (s *Store) GetUser(username string) (record.User, error) {
	var user record.User
	if err := s.get(userKey(username), &user); err != nil {
		return record.User{}, err
	}
	return user, nil
}
