// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package grid

import (
	"testing"
	"time"
)

var madrid = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic(err)
	}
	return loc
}()

func day(loc *time.Location) time.Time {
	return time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)
}

// ============================================================================
// Quantization
// ============================================================================

func TestQuantize_FloorsToQuarter(t *testing.T) {
	tests := []struct {
		px   int
		want int
	}{
		{0, 0},
		{1, 0},
		{14, 0},
		{15, 15},
		{29, 15},
		{40, 30},
		{100, 90},
		{Height, Height},
	}

	for _, tt := range tests {
		if got := Quantize(tt.px); got != tt.want {
			t.Errorf("Quantize(%d) = %d, want %d", tt.px, got, tt.want)
		}
	}
}

func TestQuantize_ClampsOutOfRange(t *testing.T) {
	if got := Quantize(-50); got != 0 {
		t.Errorf("Quantize(-50) = %d, want 0", got)
	}
	if got := Quantize(Height + 99); got != Height {
		t.Errorf("Quantize(Height+99) = %d, want %d", got, Height)
	}
}

// TimeFromOffset must land on a quarter boundary for every pixel offset.
func TestTimeFromOffset_AlwaysQuantized(t *testing.T) {
	d := day(time.UTC)
	for px := -10; px <= Height+10; px++ {
		got := TimeFromOffset(px, d)
		if off := OffsetFromTime(got, d); off%PixelsPerQuarter != 0 {
			t.Fatalf("TimeFromOffset(%d) offset = %d, not a quarter multiple", px, off)
		}
	}
}

func TestTimeFromOffset_RoundTrip(t *testing.T) {
	d := day(madrid)
	for px := 0; px <= Height; px += PixelsPerQuarter {
		got := OffsetFromTime(TimeFromOffset(px, d), d)
		if got != px {
			t.Errorf("round trip of %d = %d", px, got)
		}
	}
}

func TestTimeFromOffset_GridHeightIsNextMidnight(t *testing.T) {
	d := day(time.UTC)
	got := TimeFromOffset(Height, d)
	want := d.AddDate(0, 0, 1)
	if !got.Equal(want) {
		t.Errorf("TimeFromOffset(Height) = %v, want next midnight %v", got, want)
	}
}

func TestOffsetFromTime(t *testing.T) {
	d := day(time.UTC)
	tests := []struct {
		t    time.Time
		want int
	}{
		{d, 0},
		{d.Add(9 * time.Hour), 9 * PixelsPerHour},
		{d.Add(8*time.Hour + 40*time.Minute), 520},
		{d.AddDate(0, 0, 1), Height},
	}

	for _, tt := range tests {
		if got := OffsetFromTime(tt.t, d); got != tt.want {
			t.Errorf("OffsetFromTime(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

// ============================================================================
// Selection spans
// ============================================================================

func TestSelectionSpan_UpwardDrag(t *testing.T) {
	// Anchor at pixel 100, dragged up to pixel 40: the earlier bound floors
	// to 30, the later bound extends to the end of its quarter at 105.
	top, height := SelectionSpan(100, 40)
	if top != 30 || height != 75 {
		t.Errorf("SelectionSpan(100, 40) = {top: %d, height: %d}, want {top: 30, height: 75}", top, height)
	}
}

func TestSelectionSpan_DirectionIndependent(t *testing.T) {
	topDown, heightDown := SelectionSpan(40, 100)
	topUp, heightUp := SelectionSpan(100, 40)
	if topDown != topUp || heightDown != heightUp {
		t.Errorf("span differs by drag direction: down={%d,%d} up={%d,%d}",
			topDown, heightDown, topUp, heightUp)
	}
}

func TestSelectionSpan_MinimumOneQuarter(t *testing.T) {
	top, height := SelectionSpan(50, 50)
	if height != PixelsPerQuarter {
		t.Errorf("zero-span selection height = %d, want one quarter (%d)", height, PixelsPerQuarter)
	}
	if top != 45 {
		t.Errorf("zero-span selection top = %d, want 45", top)
	}
}

func TestSelectionSpan_ClampedAtGridBottom(t *testing.T) {
	top, height := SelectionSpan(Height-5, Height)
	if top+height > Height {
		t.Errorf("span exceeds grid: top=%d height=%d", top, height)
	}
	if height < PixelsPerQuarter {
		t.Errorf("span below minimum at grid bottom: height=%d", height)
	}
}

// ============================================================================
// Day boundaries
// ============================================================================

func TestDayOf_NonUTCZone(t *testing.T) {
	// 23:30 UTC on March 10 is already March 11 in Madrid (UTC+1).
	instant := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)
	got := DayOf(instant, madrid)
	want := time.Date(2026, time.March, 11, 0, 0, 0, 0, madrid)
	if !got.Equal(want) {
		t.Errorf("DayOf = %v, want %v", got, want)
	}
}

func TestDayOf_Idempotent(t *testing.T) {
	d := day(madrid)
	if got := DayOf(d, madrid); !got.Equal(d) {
		t.Errorf("DayOf(midnight) = %v, want %v", got, d)
	}
}
