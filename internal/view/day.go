// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package view derives the presentational state of the calendar grid: the
// per-day columns and the horizontally paged sequence of days.
package view

import (
	"fmt"
	"time"

	"github.com/ushiradineth/koano/internal/grid"
	"github.com/ushiradineth/koano/internal/models"
)

// DayKey addresses one rendered calendar day. It carries the weekday,
// day-of-month, month, year, and ISO week so scroll logic can target a
// specific column without string parsing.
type DayKey struct {
	Weekday time.Weekday
	Day     int
	Month   time.Month
	Year    int
	Week    int
}

// NewDayKey derives the key for the calendar day containing t.
func NewDayKey(t time.Time) DayKey {
	_, week := t.ISOWeek()
	return DayKey{
		Weekday: t.Weekday(),
		Day:     t.Day(),
		Month:   t.Month(),
		Year:    t.Year(),
		Week:    week,
	}
}

// String renders the composite identifier, e.g. "Tue-10-March-2026-W11".
func (k DayKey) String() string {
	return fmt.Sprintf("%s-%02d-%s-%d-W%d",
		k.Weekday.String()[:3], k.Day, k.Month, k.Year, k.Week)
}

// Column is one calendar day's rendering state.
type Column struct {
	// Day is the column's midnight instant in the display location.
	Day time.Time
	// Key addresses this column.
	Key DayKey
	// Width is the column width in pixels.
	Width int
}

// NewColumn creates a column for the given day (a midnight instant).
func NewColumn(day time.Time, width int) Column {
	return Column{Day: day, Key: NewDayKey(day), Width: width}
}

// Contains reports whether the event belongs to this column: its start
// instant falls on this calendar date in the display location. Comparing
// calendar dates in the display zone, not UTC, keeps events near midnight
// on the correct side of the boundary.
func (c Column) Contains(event *models.Event) bool {
	local := event.StartTime.In(c.Day.Location())
	return local.Year() == c.Day.Year() &&
		local.Month() == c.Day.Month() &&
		local.Day() == c.Day.Day()
}

// Events filters the given collection down to this column's day.
func (c Column) Events(events []*models.Event) []*models.Event {
	var out []*models.Event
	for _, e := range events {
		if c.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// IsToday reports whether this column shows the current date.
func (c Column) IsToday(now time.Time) bool {
	local := now.In(c.Day.Location())
	return local.Year() == c.Day.Year() &&
		local.Month() == c.Day.Month() &&
		local.Day() == c.Day.Day()
}

// NowOffset returns the pixel offset of the current-time indicator line.
// The indicator exists only when this column is today.
func (c Column) NowOffset(now time.Time) (int, bool) {
	if !c.IsToday(now) {
		return 0, false
	}
	return grid.Clamp(grid.OffsetFromTime(now, c.Day)), true
}

// EventRect returns the pixel rectangle of an event within this column.
// Height is floored at one quarter so very short events stay visible.
func (c Column) EventRect(event *models.Event) (top, height int) {
	top = grid.Clamp(grid.OffsetFromTime(event.StartTime, c.Day))
	bottom := grid.Clamp(grid.OffsetFromTime(event.EndTime, c.Day))
	height = bottom - top
	if height < grid.PixelsPerQuarter {
		height = grid.PixelsPerQuarter
	}
	return top, height
}

// HourLabel formats an hour-axis label the way the grid displays it:
// "12AM", "1AM" .. "12PM" .. "11PM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12AM"
	case hour < 12:
		return fmt.Sprintf("%dAM", hour)
	case hour == 12:
		return "12PM"
	default:
		return fmt.Sprintf("%dPM", hour-12)
	}
}

// TimeLabel formats an event time for display in either 24-hour or
// 12-hour form, per the user's clock setting.
func TimeLabel(t time.Time, twentyFourHour bool) string {
	if twentyFourHour {
		return t.Format("15:04")
	}
	return t.Format("3:04PM")
}
