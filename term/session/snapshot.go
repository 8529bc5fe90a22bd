// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/snapshot.go
// Summary: Read-only render snapshot; the session never draws.

package session

import (
	"github.com/framegrace/taskterm/term/complete"
	"github.com/framegrace/taskterm/term/outsearch"
	"github.com/framegrace/taskterm/term/parser"
	"github.com/framegrace/taskterm/term/selection"
)

// Snapshot is everything a renderer needs for one frame. Cell rows alias
// the live grid and must be consumed before the next event is processed.
type Snapshot struct {
	Rows          [][]parser.Cell
	CursorX       int
	CursorY       int
	CursorVisible bool
	Title         string

	// Editable line region.
	Line       string
	LineCursor int // display columns
	Suggestion string

	// Overlays.
	Candidates     []complete.Candidate
	CandidateIndex int
	SearchActive   bool
	SearchQuery    string
	// Matches index lines from the oldest scrollback line; subtract
	// ScrollbackLen for grid rows (negative means off-screen).
	Matches       []outsearch.Match
	CurrentMatch  int
	ScrollbackLen int
	Selected      func(row, col int) bool
	Status        string
	HistorySearch bool
	HistoryQuery  string
	HistoryMatch  string
}

// Snapshot captures the current state. Call only from the loop goroutine
// (typically inside the OnRender callback).
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Rows:          s.term.Grid(),
		CursorVisible: s.term.CursorVisible(),
		Title:         s.title,
		Line:          s.edit.Text(),
		LineCursor:    s.edit.DisplayCursor(),
		Suggestion:    s.suggestion,
		Status:        s.status,
	}
	snap.CursorX, snap.CursorY = s.term.Cursor()

	if s.compState != nil {
		snap.Candidates = s.compState.Candidates
		snap.CandidateIndex = s.compState.Index()
	}
	if s.mode == modeOutputSearch {
		snap.SearchActive = true
		snap.SearchQuery = s.osearch.Query()
		snap.ScrollbackLen = s.term.Scrollback().Len()
		snap.Matches = s.osearch.Matches()
		if cur, ok := s.osearch.Current(); ok {
			for i, m := range snap.Matches {
				if m == cur {
					snap.CurrentMatch = i
					break
				}
			}
		}
	}
	if s.mode == modeHistorySearch {
		snap.HistorySearch = true
		snap.HistoryQuery = s.rsearch.Query()
		if m, ok := s.rsearch.Match(); ok {
			snap.HistoryMatch = m
		}
	}
	if s.sel.Active() {
		sel := s.sel
		snap.Selected = func(row, col int) bool {
			return sel.Contains(selection.Point{Row: row, Col: col})
		}
	}
	return snap
}
