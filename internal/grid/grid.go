// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package grid provides the deterministic conversions between absolute time
// and the calendar grid's pixel space. One pixel is one minute; all
// interactive offsets are quantized down to quarter-hour boundaries so drag
// previews stay stable under small pointer jitter.
package grid

import "time"

// Fixed unit ratios of the grid.
const (
	PixelsPerMinute  = 1
	PixelsPerHour    = 60 * PixelsPerMinute
	PixelsPerQuarter = 15 * PixelsPerMinute

	// Height is the total pixel height of a 24-hour day column.
	Height = 24 * PixelsPerHour

	// QuarterMinutes is the quantization unit in minutes.
	QuarterMinutes = 15
)

// Clamp bounds a pixel offset to the grid's vertical range [0, Height].
// Pointer coordinates must be clamped before any conversion so a gesture
// that leaves the grid never produces out-of-range offsets.
func Clamp(px int) int {
	if px < 0 {
		return 0
	}
	if px > Height {
		return Height
	}
	return px
}

// Quantize rounds a pixel offset down to the nearest quarter boundary.
// Rounding is always toward the lower boundary, never to nearest.
func Quantize(px int) int {
	px = Clamp(px)
	return (px / PixelsPerQuarter) * PixelsPerQuarter
}

// DayOf returns midnight of t's calendar day in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// OffsetFromTime returns the pixel offset of t within day, where day is the
// midnight instant of the target column. The result is the number of minutes
// elapsed since that midnight in the pixel unit.
func OffsetFromTime(t time.Time, day time.Time) int {
	return int(t.Sub(day).Minutes()) * PixelsPerMinute
}

// TimeFromOffset returns the instant at pixel offset px within day, after
// quantizing px down to the enclosing quarter boundary. An offset of exactly
// Height maps to 24:00, which is midnight of the following day; callers
// using it as an end boundary must treat it as such.
func TimeFromOffset(px int, day time.Time) time.Time {
	px = Quantize(px)
	return day.Add(time.Duration(px/PixelsPerMinute) * time.Minute)
}

// SelectionSpan derives the preview rectangle of a range selection between
// the gesture anchor and the current cursor, both raw pixel offsets. The
// earlier bound quantizes down to its quarter boundary; the later bound
// extends to the end of its enclosing quarter, so any selection spans at
// least one full quarter.
func SelectionSpan(anchor, cursor int) (top, height int) {
	lo, hi := anchor, cursor
	if hi < lo {
		lo, hi = hi, lo
	}

	top = Quantize(lo)
	bottom := Quantize(hi) + PixelsPerQuarter
	if bottom > Height {
		bottom = Height
	}
	if bottom-top < PixelsPerQuarter {
		top = bottom - PixelsPerQuarter
	}
	return top, bottom - top
}
