// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package models

import (
	"testing"
	"time"

	"github.com/ushiradineth/koano/internal/pkg/errors"
)

func TestCreateEventInputValidate(t *testing.T) {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	valid := CreateEventInput{
		Title:     "standup",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Timezone:  "Europe/Madrid",
		Repeated:  RepeatNever,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CreateEventInput)
	}{
		{"short title", func(in *CreateEventInput) { in.Title = "x" }},
		{"inverted times", func(in *CreateEventInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
		{"unknown repeat", func(in *CreateEventInput) { in.Repeated = "fortnightly" }},
		{"bad timezone", func(in *CreateEventInput) { in.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := in.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestUpdateEventInputApply(t *testing.T) {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	event := &Event{
		Title:     "standup",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Timezone:  "UTC",
		Repeated:  RepeatNever,
	}

	title := "weekly sync"
	repeated := RepeatWeekly
	in := UpdateEventInput{Title: &title, Repeated: &repeated}
	if err := in.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	in.Apply(event)

	if event.Title != "weekly sync" || event.Repeated != RepeatWeekly {
		t.Errorf("update not applied: %+v", event)
	}
	if !event.StartTime.Equal(start) {
		t.Errorf("untouched field changed: %s", event.StartTime)
	}
}

func TestUpdateEventInputInvertedTimes(t *testing.T) {
	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	in := UpdateEventInput{StartTime: &start, EndTime: &end}
	if err := in.Validate(); err == nil {
		t.Fatal("expected validation error for inverted times")
	}
}
