// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/ushiradineth/koano/internal/models"
)

func TestExport(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	events := []*models.Event{
		{
			ID:        uuid.New(),
			Title:     "standup",
			StartTime: time.Date(2026, time.March, 10, 9, 0, 0, 0, loc),
			EndTime:   time.Date(2026, time.March, 10, 9, 30, 0, 0, loc),
			Timezone:  "Europe/Madrid",
			Repeated:  models.RepeatDaily,
		},
		{
			ID:        uuid.New(),
			Title:     "dentist",
			StartTime: time.Date(2026, time.March, 12, 15, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.March, 12, 16, 0, 0, 0, time.UTC),
			Timezone:  "UTC",
			Repeated:  models.RepeatNever,
		},
	}

	out := Export(events, now)

	// The output must parse back with the same library.
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed))
	}

	// Times are exported in UTC: 09:00 CET is 08:00Z.
	start, err := parsed[0].GetStartAt()
	if err != nil {
		t.Fatalf("get start: %v", err)
	}
	if want := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %s, want %s", start, want)
	}

	if !strings.Contains(out, "RRULE:FREQ=DAILY") {
		t.Error("daily event should carry an RRULE")
	}
	if strings.Count(out, "RRULE") != 1 {
		t.Error("non-repeating event should carry no RRULE")
	}
	if !strings.Contains(out, "SUMMARY:standup") {
		t.Error("summary missing")
	}
}
