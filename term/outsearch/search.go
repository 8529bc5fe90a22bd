// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/outsearch/search.go
// Summary: Eager substring/regex search over scrollback plus visible grid.
//
// Matches are recomputed on every query or toggle change and held as an
// ordered list; next/previous moves a highlighted index circularly.

package outsearch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/framegrace/taskterm/term/parser"
)

// Match locates one hit. Line counts from the oldest scrollback line;
// lines at index >= scrollback length are visible grid rows. StartCol and
// EndCol are display columns, end exclusive.
type Match struct {
	Line     int
	StartCol int
	EndCol   int
}

// Search holds the query state and the eagerly computed match list.
type Search struct {
	term *parser.VTerm

	query         string
	useRegexp     bool
	caseSensitive bool

	matches []Match
	index   int
}

func NewSearch(term *parser.VTerm) *Search {
	return &Search{term: term, caseSensitive: true, index: -1}
}

func (s *Search) Query() string       { return s.query }
func (s *Search) Regexp() bool        { return s.useRegexp }
func (s *Search) CaseSensitive() bool { return s.caseSensitive }

// Matches returns the ordered match list, oldest line first.
func (s *Search) Matches() []Match { return s.matches }

// SetQuery replaces the query and recomputes all matches. In regex mode a
// bad pattern is reported and leaves the previous matches in place.
func (s *Search) SetQuery(query string) error {
	prev := s.query
	s.query = query
	if err := s.run(); err != nil {
		s.query = prev
		return err
	}
	return nil
}

// SetRegexp toggles regular-expression mode and re-runs the search.
func (s *Search) SetRegexp(on bool) error {
	s.useRegexp = on
	return s.run()
}

// SetCaseSensitive toggles case folding and re-runs the search.
func (s *Search) SetCaseSensitive(on bool) error {
	s.caseSensitive = on
	return s.run()
}

// Refresh recomputes matches against the current terminal content.
func (s *Search) Refresh() error { return s.run() }

// Clear drops the query and all matches.
func (s *Search) Clear() {
	s.query = ""
	s.matches = nil
	s.index = -1
}

// Current returns the highlighted match.
func (s *Search) Current() (Match, bool) {
	if s.index < 0 || s.index >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.index], true
}

// Next advances the highlight circularly.
func (s *Search) Next() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.index = (s.index + 1) % len(s.matches)
	return s.matches[s.index], true
}

// Prev steps the highlight backward circularly.
func (s *Search) Prev() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.index--
	if s.index < 0 {
		s.index = len(s.matches) - 1
	}
	return s.matches[s.index], true
}

func (s *Search) run() error {
	var re *regexp.Regexp
	if s.useRegexp && s.query != "" {
		pattern := s.query
		if !s.caseSensitive {
			pattern = "(?i)" + pattern
		}
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			// Previous matches stay valid for the previous query.
			return fmt.Errorf("invalid search pattern: %w", err)
		}
	}

	s.matches = nil
	s.index = -1
	if s.query == "" {
		return nil
	}

	sb := s.term.Scrollback()
	line := 0
	for i := 0; i < sb.Len(); i++ {
		if sl, ok := sb.Line(i); ok {
			s.scanLine(line, sl.Cells(), re)
		}
		line++
	}
	for _, row := range s.term.Grid() {
		s.scanLine(line, row, re)
		line++
	}

	if len(s.matches) > 0 {
		s.index = 0
	}
	return nil
}

func (s *Search) scanLine(line int, cells []parser.Cell, re *regexp.Regexp) {
	text, cols := flattenRow(cells)
	if s.useRegexp {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] {
				// Zero-width matches (patterns like "x*") highlight nothing.
				continue
			}
			s.matches = append(s.matches, Match{
				Line:     line,
				StartCol: cols[loc[0]].start,
				EndCol:   cols[loc[1]-1].end,
			})
		}
		return
	}

	for from := 0; from < len(text); {
		start, end := s.indexQuery(text, from)
		if start < 0 {
			break
		}
		s.matches = append(s.matches, Match{
			Line:     line,
			StartCol: cols[start].start,
			EndCol:   cols[end-1].end,
		})
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
}

// indexQuery finds the next occurrence of the query at or after from and
// returns its start and end byte offsets into text, or -1 when absent.
// Case-insensitive matching folds rune by rune so the offsets always index
// the original text, never a lowered copy of a different byte length.
func (s *Search) indexQuery(text string, from int) (int, int) {
	if s.caseSensitive {
		i := strings.Index(text[from:], s.query)
		if i < 0 {
			return -1, -1
		}
		start := from + i
		return start, start + len(s.query)
	}
	for at := from; at < len(text); {
		if end, ok := foldMatch(text, s.query, at); ok {
			return at, end
		}
		_, size := utf8.DecodeRuneInString(text[at:])
		at += size
	}
	return -1, -1
}

// foldMatch reports whether needle matches text at byte offset at under
// simple case folding, returning the end offset of the match in text.
func foldMatch(text, needle string, at int) (int, bool) {
	rest := text[at:]
	for _, nr := range needle {
		hr, size := utf8.DecodeRuneInString(rest)
		if size == 0 {
			return 0, false
		}
		if hr != nr && !runesFold(hr, nr) {
			return 0, false
		}
		rest = rest[size:]
	}
	return len(text) - len(rest), true
}

func runesFold(a, b rune) bool {
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

type colSpan struct{ start, end int }

// flattenRow renders a row of cells to text, trimming trailing blanks, and
// records the display-column span backing every byte of that text.
func flattenRow(cells []parser.Cell) (string, []colSpan) {
	var b strings.Builder
	var cols []colSpan
	lastNonBlank := -1

	for col, cell := range cells {
		if cell.Cont {
			continue
		}
		text := cell.Text()
		if text == "" {
			text = " "
		}
		width := 1
		if cell.Wide {
			width = 2
		}
		b.WriteString(text)
		for range len(text) {
			cols = append(cols, colSpan{start: col, end: col + width})
		}
		if strings.TrimSpace(text) != "" {
			lastNonBlank = len(cols)
		}
	}

	text := b.String()
	if lastNonBlank < len(cols) {
		// Trailing blank cells would otherwise match queries with spaces.
		keep := lastNonBlank
		if keep < 0 {
			keep = 0
		}
		text = text[:keep]
		cols = cols[:keep]
	}
	return text, cols
}
