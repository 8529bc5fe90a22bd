// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/search.go
// Summary: Reverse incremental search over the history list.

package history

import "strings"

// ReverseSearch is the Ctrl-R mode: a query buffer matched as a
// case-sensitive substring against history entries, most recent first.
type ReverseSearch struct {
	engine *Engine

	active    bool
	query     string
	savedLine string
	// matchIdx indexes into the entries slice, or -1 when nothing matches.
	matchIdx int
}

func NewReverseSearch(engine *Engine) *ReverseSearch {
	return &ReverseSearch{engine: engine, matchIdx: -1}
}

func (s *ReverseSearch) Active() bool { return s.active }
func (s *ReverseSearch) Query() string { return s.query }

// Start enters search mode, remembering the pre-search line for Cancel.
func (s *ReverseSearch) Start(currentLine string) {
	s.active = true
	s.query = ""
	s.savedLine = currentLine
	s.matchIdx = -1
}

// SetQuery replaces the query and re-runs the filter from the newest entry.
func (s *ReverseSearch) SetQuery(query string) {
	s.query = query
	s.matchIdx = s.findFrom(len(s.engine.Entries()) - 1)
}

// Next advances to the next older match for the same query.
func (s *ReverseSearch) Next() {
	if s.matchIdx < 0 {
		s.matchIdx = s.findFrom(len(s.engine.Entries()) - 1)
		return
	}
	if idx := s.findFrom(s.matchIdx - 1); idx >= 0 {
		s.matchIdx = idx
	}
}

func (s *ReverseSearch) findFrom(start int) int {
	if s.query == "" {
		return -1
	}
	entries := s.engine.Entries()
	if start >= len(entries) {
		start = len(entries) - 1
	}
	for i := start; i >= 0; i-- {
		if strings.Contains(entries[i], s.query) {
			return i
		}
	}
	return -1
}

// Match returns the currently highlighted entry.
func (s *ReverseSearch) Match() (string, bool) {
	if s.matchIdx < 0 {
		return "", false
	}
	entries := s.engine.Entries()
	if s.matchIdx >= len(entries) {
		return "", false
	}
	return entries[s.matchIdx], true
}

// Accept leaves search mode and returns the line the editor should adopt:
// the found entry, or the pre-search line when nothing matched.
func (s *ReverseSearch) Accept() string {
	match, ok := s.Match()
	s.active = false
	if !ok {
		return s.savedLine
	}
	return match
}

// Cancel leaves search mode restoring the pre-search line exactly.
func (s *ReverseSearch) Cancel() string {
	s.active = false
	return s.savedLine
}
