// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ushiradineth/koano/internal/drag"
	"github.com/ushiradineth/koano/internal/interaction"
	"github.com/ushiradineth/koano/internal/models"
	"github.com/ushiradineth/koano/internal/store"
	"github.com/ushiradineth/koano/internal/view"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeBackend struct{}

func (f *fakeBackend) List(ctx context.Context, startDay, endDay time.Time) ([]*models.Event, error) {
	return nil, nil
}

func (f *fakeBackend) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	return event.Clone(), nil
}

func (f *fakeBackend) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	return event.Clone(), nil
}

func (f *fakeBackend) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func signToken(t *testing.T) string {
	t.Helper()
	claims := &UserClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s := store.New(&fakeBackend{}, nil)
	dc := drag.New(s, nil)
	ctrl := interaction.New(s, dc, nil)

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	pager, err := view.NewPager(view.PagerConfig{
		ColumnWidth:   240,
		ViewportWidth: 7 * 240,
		VisibleDays:   7,
		Location:      time.UTC,
		Now:           func() time.Time { return now },
	}, nil)
	if err != nil {
		t.Fatalf("new pager: %v", err)
	}

	srv := New(Config{JWTSecret: testSecret}, s, ctrl, pager, nil)
	return srv, s
}

type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "success" {
		t.Errorf("status = %q", env.Status)
	}
}

func TestGridRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/v1/grid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "fail" {
		t.Errorf("status = %q, want fail", env.Status)
	}
}

func TestGridRejectsWrongSecret(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &UserClaims{UserID: "x"}).
		SignedString([]byte("another-secret-another-secret-32b"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/grid", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+forged)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
}

func TestGridSnapshot(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if _, err := s.Add(context.Background(), &models.Event{
		ID:        uuid.New(),
		Title:     "standup",
		StartTime: day.Add(9 * time.Hour),
		EndTime:   day.Add(10 * time.Hour),
		Timezone:  "UTC",
		Repeated:  models.RepeatNever,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/grid", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+signToken(t))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var grid gridPayload
	if err := json.Unmarshal(env.Data, &grid); err != nil {
		t.Fatalf("decode grid: %v", err)
	}

	if len(grid.Columns) != 121 {
		t.Fatalf("expected 121 columns, got %d", len(grid.Columns))
	}
	if grid.MonthLabel != "March 2026" {
		t.Errorf("month label = %q", grid.MonthLabel)
	}

	var found bool
	for _, col := range grid.Columns {
		if col.Day != "2026-03-10" {
			continue
		}
		if len(col.Events) != 1 {
			t.Fatalf("expected 1 event on 2026-03-10, got %d", len(col.Events))
		}
		e := col.Events[0]
		if e.Top != 540 || e.Height != 60 {
			t.Errorf("event rect = {%d, %d}, want {540, 60}", e.Top, e.Height)
		}
		if e.StartLabel != "9:00AM" {
			t.Errorf("start label = %q", e.StartLabel)
		}
		found = true
	}
	if !found {
		t.Error("event's column missing from snapshot")
	}
}

func TestGridScrollValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/grid/scroll",
		strings.NewReader(`{"x": -5}`))
	req.Header.Set(AuthorizationHeader, BearerPrefix+signToken(t))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestExportICS(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	if _, err := s.Add(context.Background(), &models.Event{
		ID:        uuid.New(),
		Title:     "standup",
		StartTime: day.Add(9 * time.Hour),
		EndTime:   day.Add(10 * time.Hour),
		Timezone:  "UTC",
		Repeated:  models.RepeatNever,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/export", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+signToken(t))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(string(body), "BEGIN:VCALENDAR") {
		t.Error("export is not an iCalendar payload")
	}
	if !strings.Contains(string(body), "SUMMARY:standup") {
		t.Error("event missing from export")
	}
}

func TestGridSocketGesture(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	header := http.Header{}
	header.Set(AuthorizationHeader, BearerPrefix+signToken(t))

	conn, res, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer res.Body.Close()

	send := func(frame ClientFrame) ServerFrame {
		t.Helper()
		if err := conn.WriteJSON(frame); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply ServerFrame
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		return reply
	}

	down := send(ClientFrame{Type: FramePointer, Pointer: &PointerFrame{
		Kind: "down", Day: "2026-03-10", Y: 540, Region: "grid",
	}})
	if down.Mode != "selecting" {
		t.Errorf("mode after down = %q", down.Mode)
	}

	move := send(ClientFrame{Type: FramePointer, Pointer: &PointerFrame{
		Kind: "move", Day: "2026-03-10", Y: 620, Region: "grid",
	}})
	if move.Preview == nil {
		t.Fatal("expected a preview after move")
	}
	if move.Preview.Top != 540 || move.Preview.Height != 90 {
		t.Errorf("preview = {%d, %d}, want {540, 90}", move.Preview.Top, move.Preview.Height)
	}

	up := send(ClientFrame{Type: FramePointer, Pointer: &PointerFrame{
		Kind: "up", Day: "2026-03-10", Y: 620, Region: "grid",
	}})
	if up.Mode != "idle" {
		t.Errorf("mode after up = %q", up.Mode)
	}

	events := s.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 committed event, got %d", len(events))
	}
	if events[0].Title != interaction.DefaultTitle {
		t.Errorf("title = %q", events[0].Title)
	}

	// Escape with no gesture armed is inert.
	esc := send(ClientFrame{Type: FrameKey, Key: KeyEscape})
	if esc.Mode != "idle" {
		t.Errorf("mode after escape = %q", esc.Mode)
	}
}

func TestCreateEventValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	// Title below the minimum length.
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/events", strings.NewReader(
		`{"title":"x","start_time":"2026-03-10T09:00:00Z","end_time":"2026-03-10T10:00:00Z","timezone":"UTC","repeated":"never"}`))
	req.Header.Set(AuthorizationHeader, BearerPrefix+signToken(t))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestUpdateEventRename(t *testing.T) {
	srv, s := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	event, err := s.Add(context.Background(), &models.Event{
		ID:        uuid.New(),
		Title:     "standup",
		StartTime: day.Add(9 * time.Hour),
		EndTime:   day.Add(10 * time.Hour),
		Timezone:  "UTC",
		Repeated:  models.RepeatNever,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/events/"+event.ID.String(),
		strings.NewReader(`{"title":"weekly sync","repeated":"weekly"}`))
	req.Header.Set(AuthorizationHeader, BearerPrefix+signToken(t))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	got, _ := s.GetByID(event.ID)
	if got.Title != "weekly sync" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Repeated != models.RepeatWeekly {
		t.Errorf("repeated = %q", got.Repeated)
	}
	// Untouched fields stay as they were.
	if !got.StartTime.Equal(event.StartTime) {
		t.Errorf("start moved to %s", got.StartTime)
	}
}

func TestWebsocketRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected unauthenticated dial to fail")
	}
	if res != nil && res.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", res.StatusCode)
	}
}
