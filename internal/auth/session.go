// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package auth manages the access-token session used to authenticate
// backend calls. The session hands out the current bearer token, refreshes
// it transparently when it has expired, and signs the user out when a
// refresh fails. Token signatures are not verified here; the backend is the
// authority. Only the embedded expiry claim is inspected.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
)

// RefreshFunc exchanges the current session for a fresh access token.
type RefreshFunc func(ctx context.Context) (string, error)

// Session supplies the bearer token for backend requests.
type Session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	refresh   RefreshFunc
	onSignOut func()
	signedOut bool
	log       *logger.Logger
	now       func() time.Time
}

// NewSession creates a session holding the given access token. refresh may
// be nil, in which case an expired token is a hard failure.
func NewSession(token string, refresh RefreshFunc, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		refresh: refresh,
		log:     log.Named("auth"),
		now:     time.Now,
	}
	s.setToken(token)
	return s
}

// OnSignOut registers a callback invoked once when the session terminates.
func (s *Session) OnSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSignOut = fn
}

// Token returns a currently valid access token, refreshing it if the
// embedded expiry has passed. Token absence or a failed refresh terminates
// the session and returns an unauthorized error.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()

	if s.signedOut {
		s.mu.Unlock()
		return "", errors.Unauthorized("session terminated")
	}
	if s.token == "" {
		fn := s.signOutLocked()
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
		return "", errors.Unauthorized("no access token")
	}
	if s.expiresAt.IsZero() || s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}

	refresh := s.refresh
	if refresh == nil {
		fn := s.signOutLocked()
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
		return "", errors.Unauthorized("access token expired")
	}
	s.mu.Unlock()

	fresh, err := refresh(ctx)
	if err != nil {
		s.SignOut()
		return "", errors.Wrap(err, errors.CodeUnauthorized, "token refresh failed").
			WithHTTPStatus(401)
	}

	s.mu.Lock()
	s.setToken(fresh)
	token := s.token
	s.mu.Unlock()

	s.log.Debug("access token refreshed")
	return token, nil
}

// SetToken replaces the session's access token, e.g. after sign-in.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setToken(token)
	s.signedOut = false
}

// SignOut terminates the session and fires the sign-out callback once.
func (s *Session) SignOut() {
	s.mu.Lock()
	fn := s.signOutLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SignedOut reports whether the session has been terminated.
func (s *Session) SignedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedOut
}

// signOutLocked marks the session terminated and returns the callback to
// fire, if it has not fired yet. Caller holds mu.
func (s *Session) signOutLocked() func() {
	if s.signedOut {
		return nil
	}
	s.signedOut = true
	s.token = ""
	s.log.Info("session terminated")
	return s.onSignOut
}

// setToken stores the token and extracts its expiry claim. Caller holds mu
// (or is the constructor).
func (s *Session) setToken(token string) {
	s.token = token
	s.expiresAt = time.Time{}
	if token == "" {
		return
	}

	exp, err := tokenExpiry(token)
	if err != nil {
		s.log.Debug("token expiry not readable", "error", err)
		return
	}
	s.expiresAt = exp
}

// tokenExpiry reads the exp claim of a JWT without verifying the signature.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}
	return exp.Time, nil
}
