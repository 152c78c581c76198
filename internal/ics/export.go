// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package ics serializes the event collection to iCalendar for export.
package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ushiradineth/koano/internal/models"
)

// ProductID identifies this exporter in generated calendars.
const ProductID = "-//koano//calendar//EN"

// rrules maps recurrence settings to their RRULE serialization. Events
// repeating "never" carry no RRULE at all.
var rrules = map[models.Repeat]string{
	models.RepeatDaily:   "FREQ=DAILY",
	models.RepeatWeekly:  "FREQ=WEEKLY",
	models.RepeatMonthly: "FREQ=MONTHLY",
	models.RepeatYearly:  "FREQ=YEARLY",
}

// Export serializes the events into a single VCALENDAR. Timestamps are
// written in UTC, matching the wire format of the backend.
func Export(events []*models.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID.String())
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(e.Title)
		ve.SetStartAt(e.StartTime.UTC())
		ve.SetEndAt(e.EndTime.UTC())
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt.UTC())
		}
		if rule, ok := rrules[e.Repeated]; ok {
			ve.SetProperty(ical.ComponentPropertyRrule, rule)
		}
	}
	return cal.Serialize()
}

// Write serializes the events and writes the calendar to w.
func Write(w io.Writer, events []*models.Event, now time.Time) error {
	_, err := io.WriteString(w, Export(events, now))
	return err
}
