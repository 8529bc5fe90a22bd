// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/scrollback.go
// Summary: Bounded FIFO store of rows evicted from the visible grid.

package parser

import "strings"

const defaultScrollbackMax = 10000

// ScrollbackLine is an immutable snapshot of a row that scrolled past the top
// of the grid.
type ScrollbackLine struct {
	cells []Cell
}

// Cells returns a copy of the line's cells.
func (l ScrollbackLine) Cells() []Cell {
	out := make([]Cell, len(l.cells))
	copy(out, l.cells)
	return out
}

// Text returns the line's characters with trailing padding trimmed.
func (l ScrollbackLine) Text() string {
	var b strings.Builder
	for _, c := range l.cells {
		b.WriteString(c.Text())
	}
	return strings.TrimRight(b.String(), " ")
}

// Scrollback holds historical lines, oldest first, bounded by a configurable
// maximum. Older lines are evicted FIFO once the bound is exceeded.
type Scrollback struct {
	lines []ScrollbackLine
	max   int
}

func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = defaultScrollbackMax
	}
	return &Scrollback{max: maxLines}
}

// Push snapshots a grid row into scrollback, evicting the oldest line when
// the maximum is exceeded.
func (s *Scrollback) Push(row []Cell) {
	cells := make([]Cell, len(row))
	copy(cells, row)
	s.lines = append(s.lines, ScrollbackLine{cells: cells})
	if len(s.lines) > s.max {
		over := len(s.lines) - s.max
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

func (s *Scrollback) Len() int { return len(s.lines) }

// Line returns the i-th stored line, oldest first.
func (s *Scrollback) Line(i int) (ScrollbackLine, bool) {
	if i < 0 || i >= len(s.lines) {
		return ScrollbackLine{}, false
	}
	return s.lines[i], true
}

// Texts returns all stored lines as trimmed strings, oldest first.
func (s *Scrollback) Texts() []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Text()
	}
	return out
}
