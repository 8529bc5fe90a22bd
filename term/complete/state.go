// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/complete/state.go
// Summary: Candidate list lifecycle: common prefix, then cycling.

package complete

import "strings"

// Kind tags where a candidate came from.
type Kind int

const (
	KindBuiltin Kind = iota
	KindSubcommand
	KindFlag
	KindExecutable
	KindFile
	KindDirectory
	KindTask
)

// Candidate is one completion option. Display is what the overlay shows,
// Insert is what replaces the token under the cursor.
type Candidate struct {
	Display string
	Insert  string
	Kind    Kind
}

// State lives from the first completion key press until any other edit.
// SpanStart/SpanEnd delimit the byte range of the token being replaced
// within the original line.
type State struct {
	Candidates []Candidate
	SpanStart  int
	SpanEnd    int

	// index is -1 until cycling begins; the first press only inserts the
	// common prefix when the list is ambiguous.
	index int
	line  string
}

func newState(line string, start, end int, candidates []Candidate) *State {
	return &State{
		Candidates: candidates,
		SpanStart:  start,
		SpanEnd:    end,
		index:      -1,
		line:       line,
	}
}

// Len returns the candidate count.
func (s *State) Len() int { return len(s.Candidates) }

// Index returns the cycled candidate position, or -1 before cycling starts.
func (s *State) Index() int { return s.index }

// First applies the initial completion key press. With one candidate it
// inserts it outright, appending a trailing space unless the candidate is a
// directory, and reports done=true. With several it inserts the longest
// common prefix and keeps the state alive for cycling.
func (s *State) First() (line string, cursor int, done bool) {
	if len(s.Candidates) == 1 {
		c := s.Candidates[0]
		text := c.Insert
		if c.Kind != KindDirectory {
			text += " "
		}
		return s.replace(text), s.SpanStart + len(text), true
	}

	prefix := commonPrefix(s.Candidates)
	if len(prefix) <= s.SpanEnd-s.SpanStart {
		// Already at the common prefix; nothing to insert.
		return s.line, s.SpanEnd, false
	}
	s.line = s.replace(prefix)
	s.SpanEnd = s.SpanStart + len(prefix)
	return s.line, s.SpanEnd, false
}

// Cycle replaces the token with the next candidate, wrapping after the last.
func (s *State) Cycle() (line string, cursor int) {
	s.index = (s.index + 1) % len(s.Candidates)
	text := s.Candidates[s.index].Insert
	line = s.replace(text)
	return line, s.SpanStart + len(text)
}

func (s *State) replace(text string) string {
	return s.line[:s.SpanStart] + text + s.line[s.SpanEnd:]
}

func commonPrefix(candidates []Candidate) string {
	if len(candidates) == 0 {
		return ""
	}
	prefix := candidates[0].Insert
	for _, c := range candidates[1:] {
		for !strings.HasPrefix(c.Insert, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
