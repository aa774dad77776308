// Package session manages authentication tokens issued by the server.
//
// A Session holds the bearer token and refresh token pair returned by the
// authenticate endpoints. Both tokens are JWTs; expiry and identity claims
// are read from the token without signature verification, since the client
// never holds the server's signing key.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	gamelink "github.com/cory-johannsen/gamelink"
)

// Session is a live authentication session. It is safe for concurrent use;
// token refresh swaps both tokens atomically.
type Session struct {
	mu sync.RWMutex

	authToken    string
	refreshToken string

	expireAt        time.Time
	refreshExpireAt time.Time

	userID   string
	username string
	vars     map[string]string

	created bool
}

type claims struct {
	UserID   string            `json:"uid"`
	Username string            `json:"usn"`
	Vars     map[string]string `json:"vrs"`
	jwt.RegisteredClaims
}

// New builds a Session from a token pair. The refresh token may be empty for
// servers that do not issue one.
//
// Precondition: authToken must be a well-formed JWT.
// Postcondition: Identity claims and expiry times are populated from the tokens.
func New(authToken, refreshToken string, created bool) (*Session, error) {
	s := &Session{created: created}
	if err := s.replaceLocked(authToken, refreshToken); err != nil {
		return nil, err
	}
	return s, nil
}

func parseClaims(token string) (*claims, error) {
	var c claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return nil, gamelink.NewError(gamelink.KindDecode, fmt.Sprintf("parsing session token: %v", err), err)
	}
	return &c, nil
}

func (s *Session) replaceLocked(authToken, refreshToken string) error {
	c, err := parseClaims(authToken)
	if err != nil {
		return err
	}
	s.authToken = authToken
	s.userID = c.UserID
	s.username = c.Username
	s.vars = c.Vars
	if c.ExpiresAt != nil {
		s.expireAt = c.ExpiresAt.Time
	}
	s.refreshToken = refreshToken
	s.refreshExpireAt = time.Time{}
	if refreshToken != "" {
		rc, err := parseClaims(refreshToken)
		if err != nil {
			return err
		}
		if rc.ExpiresAt != nil {
			s.refreshExpireAt = rc.ExpiresAt.Time
		}
	}
	return nil
}

// Replace swaps in a fresh token pair, typically after a session refresh.
func (s *Session) Replace(authToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(authToken, refreshToken)
}

// AuthToken returns the current bearer token.
func (s *Session) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authToken
}

// RefreshToken returns the current refresh token, or "" if none was issued.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// UserID returns the user id claim of the bearer token.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Username returns the username claim of the bearer token.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Vars returns a copy of the session variables embedded in the token.
func (s *Session) Vars() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// Created reports whether the account was created by the authenticate call
// that produced this session.
func (s *Session) Created() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created
}

// ExpireTime returns when the bearer token expires. Zero if the token
// carries no expiry.
func (s *Session) ExpireTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expireAt
}

// RefreshExpireTime returns when the refresh token expires.
func (s *Session) RefreshExpireTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshExpireAt
}

// Expired reports whether the bearer token has expired at the given instant.
func (s *Session) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expireAt.IsZero() && !now.Before(s.expireAt)
}

// WillExpire reports whether the bearer token will have expired by the given
// instant. Callers use this to refresh ahead of the deadline.
func (s *Session) WillExpire(at time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expireAt.IsZero() && !at.Before(s.expireAt)
}

// RefreshExpired reports whether the refresh token has expired, in which
// case the user must re-authenticate.
func (s *Session) RefreshExpired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.refreshExpireAt.IsZero() && !now.Before(s.refreshExpireAt)
}
