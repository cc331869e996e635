// Package auth issues and verifies access tokens and manages account
// credentials. Tokens are HS256 JWTs with the username in the subject claim.
package auth

import (
	"errors"
	"time"

	"github.com/axchisan/AxIA/internal/model/record"
	"github.com/axchisan/AxIA/internal/service/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service owns the signing secret and the account store.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
	users    *store.Store
}

// NewService builds the auth service. tokenTTL bounds how long issued tokens
// stay valid.
func NewService(secret string, tokenTTL time.Duration, users *store.Store) *Service {
	return &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		users:    users,
	}
}

// TokenTTL reports the configured token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates an account with a hashed password.
func (s *Service) Register(username, email, password, fullName string) (record.User, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return record.User{}, err
	}

	user := record.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		FullName:       fullName,
	}
	if err := s.users.CreateUser(user); err != nil {
		return record.User{}, err
	}
	return s.users.GetUser(username)
}

// Login checks the credentials and mints an access token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.users.GetUser(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	match, err := comparePassword(password, user.HashedPassword)
	if err != nil || !match {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(username)
}
