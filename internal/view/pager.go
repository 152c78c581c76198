// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package view

import (
	"fmt"
	"sync"
	"time"

	"github.com/ushiradineth/koano/internal/pkg/logger"
)

// ============================================================================
// Paging constants
// ============================================================================

const (
	// InitialWindowDays is loaded on each side of today at startup.
	InitialWindowDays = 60
	// BufferDays is appended or prepended when the user nears an edge.
	BufferDays = 30
	// EdgeProximityColumns triggers a window extension when the scroll
	// position comes within this many columns of either end.
	EdgeProximityColumns = 5
	// DefaultDebounce spaces out scroll handling.
	DefaultDebounce = 100 * time.Millisecond
)

// ValidVisibleDays are the per-view column counts the settings screen
// offers. 30 selects the month view.
var ValidVisibleDays = []int{1, 3, 7, 30}

// MonthViewDays marks the month-view setting, which renders a placeholder
// rather than the paged day grid.
const MonthViewDays = 30

// PagerConfig configures a Pager.
type PagerConfig struct {
	// ColumnWidth is the pixel width of one day column.
	ColumnWidth int
	// ViewportWidth is the pixel width of the visible scroll area.
	ViewportWidth int
	// VisibleDays is the configured view size, one of ValidVisibleDays.
	VisibleDays int
	// Location is the display timezone.
	Location *time.Location
	// Debounce spaces out scroll handling. Zero disables debouncing.
	Debounce time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Pager maintains the contiguous, horizontally scrolled window of day
// columns. The window starts at today plus or minus InitialWindowDays and
// grows by BufferDays whenever the scroll position nears an edge. Days are
// never removed, so columns stay contiguous for the session.
type Pager struct {
	mu  sync.Mutex
	cfg PagerConfig
	log *logger.Logger

	columns []Column
	scrollX int

	lastHandled time.Time
}

// NewPager builds the initial window around today and positions the
// scroll on today's column.
func NewPager(cfg PagerConfig, log *logger.Logger) (*Pager, error) {
	if cfg.ColumnWidth <= 0 {
		return nil, fmt.Errorf("column width must be positive, got %d", cfg.ColumnWidth)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.VisibleDays == 0 {
		cfg.VisibleDays = 7
	}
	valid := false
	for _, n := range ValidVisibleDays {
		if cfg.VisibleDays == n {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("visible days must be one of %v, got %d", ValidVisibleDays, cfg.VisibleDays)
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Pager{cfg: cfg, log: log.Named("pager")}

	today := p.midnight(cfg.Now())
	start := today.AddDate(0, 0, -InitialWindowDays)
	for i := 0; i <= 2*InitialWindowDays; i++ {
		p.columns = append(p.columns, NewColumn(start.AddDate(0, 0, i), cfg.ColumnWidth))
	}
	p.scrollX = InitialWindowDays * cfg.ColumnWidth
	return p, nil
}

func (p *Pager) midnight(t time.Time) time.Time {
	local := t.In(p.cfg.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.cfg.Location)
}

// MonthView reports whether the configured view size selects the month
// placeholder instead of the day grid.
func (p *Pager) MonthView() bool {
	return p.cfg.VisibleDays == MonthViewDays
}

// Columns returns the current window, oldest day first.
func (p *Pager) Columns() []Column {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Column, len(p.columns))
	copy(out, p.columns)
	return out
}

// Span returns the first and last day of the loaded window.
func (p *Pager) Span() (first, last time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.columns[0].Day, p.columns[len(p.columns)-1].Day
}

// ScrollX returns the current horizontal scroll offset in pixels.
func (p *Pager) ScrollX() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollX
}

// TotalWidth returns the pixel width of the whole loaded window.
func (p *Pager) TotalWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.columns) * p.cfg.ColumnWidth
}

// HandleScroll records a new scroll position and extends the window when
// the position is within EdgeProximityColumns of either end. Extending at
// the left prepends BufferDays older columns and shifts the scroll
// position so the visible days do not move. Calls arriving within the
// debounce interval of the previous handled call update the position but
// skip the extension check. Returns true when the window grew.
func (p *Pager) HandleScroll(x int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scrollX = x

	now := p.cfg.Now()
	if p.cfg.Debounce > 0 && now.Sub(p.lastHandled) < p.cfg.Debounce {
		return false
	}
	p.lastHandled = now

	threshold := EdgeProximityColumns * p.cfg.ColumnWidth
	grew := false

	if p.scrollX < threshold {
		p.prependLocked(BufferDays)
		grew = true
	}

	rightEdge := len(p.columns)*p.cfg.ColumnWidth - p.cfg.ViewportWidth
	if p.scrollX > rightEdge-threshold {
		p.appendLocked(BufferDays)
		grew = true
	}
	return grew
}

func (p *Pager) prependLocked(n int) {
	first := p.columns[0].Day
	older := make([]Column, 0, n)
	for i := n; i >= 1; i-- {
		older = append(older, NewColumn(first.AddDate(0, 0, -i), p.cfg.ColumnWidth))
	}
	p.columns = append(older, p.columns...)
	// Shift so the same day stays under the viewport after the prepend.
	p.scrollX += n * p.cfg.ColumnWidth
	p.log.Debugf("prepended %d days, window now starts %s", n, p.columns[0].Day.Format("2006-01-02"))
}

func (p *Pager) appendLocked(n int) {
	last := p.columns[len(p.columns)-1].Day
	for i := 1; i <= n; i++ {
		p.columns = append(p.columns, NewColumn(last.AddDate(0, 0, i), p.cfg.ColumnWidth))
	}
	p.log.Debugf("appended %d days, window now ends %s", n, p.columns[len(p.columns)-1].Day.Format("2006-01-02"))
}

// ScrollToToday moves the scroll position to today's column. Today is
// always inside the window because days are only ever added.
func (p *Pager) ScrollToToday() {
	p.mu.Lock()
	defer p.mu.Unlock()
	today := p.midnight(p.cfg.Now())
	for i, c := range p.columns {
		if c.Day.Equal(today) {
			p.scrollX = i * p.cfg.ColumnWidth
			return
		}
	}
}

// IndexOf returns the column index for the given day key, or -1.
func (p *Pager) IndexOf(key DayKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// ColumnAt returns the column containing the given pixel x position.
func (p *Pager) ColumnAt(x int) (Column, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := x / p.cfg.ColumnWidth
	if i < 0 || i >= len(p.columns) {
		return Column{}, false
	}
	return p.columns[i], true
}

// CurrentMonthLabel returns the header label, e.g. "March 2026": the month
// and year of the first column whose left edge is at or past the viewport's
// left edge.
func (p *Pager) CurrentMonthLabel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.columns {
		if i*p.cfg.ColumnWidth-p.scrollX >= 0 {
			return fmt.Sprintf("%s %d", c.Day.Month(), c.Day.Year())
		}
	}
	last := p.columns[len(p.columns)-1]
	return fmt.Sprintf("%s %d", last.Day.Month(), last.Day.Year())
}
