// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/selection/selection.go
// Summary: Mouse-driven selection over grid coordinates.

package selection

import (
	"strings"

	"github.com/framegrace/taskterm/term/parser"
)

// Mode picks how a drag maps to cells.
type Mode int

const (
	// ModeChar selects the reading-order run of cells between the anchor
	// and the cursor.
	ModeChar Mode = iota
	// ModeLine selects whole rows.
	ModeLine
)

// Point is a grid coordinate, row-major.
type Point struct {
	Row, Col int
}

// less orders points in reading order.
func (p Point) less(q Point) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

// Selection is the drag state machine: Start on mouse-down, Extend on
// mouse-move, Finalize on mouse-up.
type Selection struct {
	mode      Mode
	anchor    Point
	cursor    Point
	selecting bool
	active    bool
}

func New() *Selection {
	return &Selection{}
}

// Active reports whether a finalized or in-progress selection exists.
func (s *Selection) Active() bool { return s.active || s.selecting }

// Selecting reports whether the mouse button is still down.
func (s *Selection) Selecting() bool { return s.selecting }

func (s *Selection) Mode() Mode { return s.mode }

// Start begins a new selection at the clicked coordinate, discarding any
// previous one.
func (s *Selection) Start(p Point, mode Mode) {
	s.mode = mode
	s.anchor = p
	s.cursor = p
	s.selecting = true
	s.active = false
}

// Extend moves the free end of the selection while dragging.
func (s *Selection) Extend(p Point) {
	if !s.selecting {
		return
	}
	s.cursor = p
}

// Finalize ends the drag, keeping the selection highlighted.
func (s *Selection) Finalize(p Point) {
	if !s.selecting {
		return
	}
	s.cursor = p
	s.selecting = false
	s.active = true
}

// Clear drops the selection entirely.
func (s *Selection) Clear() {
	s.selecting = false
	s.active = false
}

// Bounds returns the selection endpoints normalized to reading order.
func (s *Selection) Bounds() (start, end Point) {
	if s.cursor.less(s.anchor) {
		return s.cursor, s.anchor
	}
	return s.anchor, s.cursor
}

// Contains reports whether the cell at p is inside the selection, for the
// renderer's highlight pass.
func (s *Selection) Contains(p Point) bool {
	if !s.Active() {
		return false
	}
	start, end := s.Bounds()
	if p.Row < start.Row || p.Row > end.Row {
		return false
	}
	if s.mode == ModeLine {
		return true
	}
	if p.Row == start.Row && p.Col < start.Col {
		return false
	}
	if p.Row == end.Row && p.Col > end.Col {
		return false
	}
	return true
}

// Text serializes the selected cells. Rows are trimmed of trailing blank
// padding and joined with newlines.
func (s *Selection) Text(grid [][]parser.Cell) string {
	if !s.Active() || len(grid) == 0 {
		return ""
	}
	start, end := s.Bounds()
	if start.Row >= len(grid) {
		return ""
	}
	if end.Row >= len(grid) {
		end.Row = len(grid) - 1
		end.Col = len(grid[end.Row]) - 1
	}

	var rows []string
	for row := start.Row; row <= end.Row; row++ {
		from, to := 0, len(grid[row])-1
		if s.mode == ModeChar {
			if row == start.Row {
				from = start.Col
			}
			if row == end.Row {
				to = end.Col
			}
		}
		rows = append(rows, rowText(grid[row], from, to))
	}
	return strings.Join(rows, "\n")
}

func rowText(row []parser.Cell, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to >= len(row) {
		to = len(row) - 1
	}
	var b strings.Builder
	for col := from; col <= to; col++ {
		if row[col].Cont {
			continue
		}
		text := row[col].Text()
		if text == "" {
			text = " "
		}
		b.WriteString(text)
	}
	return strings.TrimRight(b.String(), " ")
}
