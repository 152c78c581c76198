// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ushiradineth/koano/internal/pkg/errors"
)

type contextKey string

// Context keys for auth middleware.
const (
	// UserContextKey is the context key for user claims.
	UserContextKey contextKey = "user"

	// TokenContextKey is the context key for the raw JWT token.
	TokenContextKey contextKey = "token"
)

// HTTP headers for auth.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// UserClaims contains the claims extracted from a JWT token.
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth returns an authentication middleware that validates JWT bearer
// tokens. Tokens are only accepted from the Authorization header; query
// parameter tokens leak into logs and Referer headers.
func Auth(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("auth middleware: secret is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AuthorizationHeader)
			if header == "" || !strings.HasPrefix(header, BearerPrefix) {
				writeAuthError(w, "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(header, BearerPrefix)

			claims := &UserClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.Unauthorized("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			ctx = context.WithValue(ctx, TokenContextKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated user's claims.
func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*UserClaims)
	return claims, ok
}

// TokenFromContext returns the raw bearer token of the request.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenContextKey).(string)
	return token, ok
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":   http.StatusUnauthorized,
		"status": "fail",
		"error":  message,
	})
}
