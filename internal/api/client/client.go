// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package client implements the remote event backend over its REST API.
// Every request carries a bearer token from the token source; timestamps
// are serialized as UTC ISO-8601 regardless of the event's display
// timezone. Responses arrive in a {code, status, data|error} envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/models"
	"github.com/ushiradineth/koano/internal/pkg/errors"
	"github.com/ushiradineth/koano/internal/pkg/logger"
)

// Wire formats.
const (
	timeFormat = "2006-01-02T15:04:05Z"
	dayFormat  = "2006-01-02"
)

// Envelope statuses.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config configures the client.
type Config struct {
	// BaseURL is the backend root, e.g. https://api.example.com
	BaseURL string
	// Timeout bounds a single request (default 10s)
	Timeout time.Duration
}

// Client is the event backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logger.Logger
}

// New creates an event backend client.
func New(cfg Config, tokens TokenSource, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		log:        log.Named("backend"),
	}
}

// envelope is the backend's response wrapper.
type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// wireEvent is the event representation on the wire.
type wireEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Timezone  string    `json:"timezone"`
	Repeated  string    `json:"repeated"`
	CreatedAt string    `json:"created_at,omitempty"`
}

// eventPayload is the request body for create and update.
type eventPayload struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
	Repeated  string `json:"repeated"`
}

// List fetches the events whose dates fall within [startDay, endDay].
func (c *Client) List(ctx context.Context, startDay, endDay time.Time) ([]*models.Event, error) {
	query := url.Values{
		"start_day": []string{startDay.Format(dayFormat)},
		"end_day":   []string{endDay.Format(dayFormat)},
	}

	var wire []wireEvent
	if err := c.do(ctx, http.MethodGet, "/events?"+query.Encode(), nil, &wire); err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(wire))
	for _, w := range wire {
		event, err := w.toModel()
		if err != nil {
			c.log.Warn("skipping malformed event from backend", "id", w.ID, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Create persists a new event and returns the server entity.
func (c *Client) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	var wire wireEvent
	if err := c.do(ctx, http.MethodPost, "/events", payloadFor(event), &wire); err != nil {
		return nil, err
	}
	return wire.toModel()
}

// Update persists changes to an existing event and returns the server
// entity.
func (c *Client) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	var wire wireEvent
	if err := c.do(ctx, http.MethodPut, "/events/"+event.ID.String(), payloadFor(event), &wire); err != nil {
		return nil, err
	}
	return wire.toModel()
}

// Delete removes an event.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id.String(), nil, nil)
}

// do executes a request against the backend and decodes the enveloped
// response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Backend(err, fmt.Sprintf("%s %s", method, path), 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return errors.Backend(err, "read response", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.Unauthorized("backend rejected access token")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Backend(err, "decode response envelope", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status != statusSuccess {
		message := string(env.Error)
		if message == "" {
			message = resp.Status
		}
		return errors.Backend(nil, message, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Backend(err, "decode response data", resp.StatusCode)
		}
	}
	return nil
}

// payloadFor serializes an event for the wire, timestamps in UTC.
func payloadFor(event *models.Event) eventPayload {
	return eventPayload{
		Title:     event.Title,
		StartTime: event.StartTime.UTC().Format(timeFormat),
		EndTime:   event.EndTime.UTC().Format(timeFormat),
		Timezone:  event.Timezone,
		Repeated:  string(event.Repeated),
	}
}

// toModel parses a wire event into the domain model.
func (w wireEvent) toModel() (*models.Event, error) {
	start, err := time.Parse(time.RFC3339, w.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time %q: %w", w.StartTime, err)
	}
	end, err := time.Parse(time.RFC3339, w.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end_time %q: %w", w.EndTime, err)
	}

	event := &models.Event{
		ID:        w.ID,
		UserID:    w.UserID,
		Title:     w.Title,
		StartTime: start,
		EndTime:   end,
		Timezone:  w.Timezone,
		Repeated:  models.Repeat(w.Repeated),
	}
	if w.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, w.CreatedAt); err == nil {
			event.CreatedAt = created
		}
	}
	return event, nil
}
