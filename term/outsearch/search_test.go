// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/outsearch/search_test.go
// Summary: Search covers scrollback and grid; navigation wraps circularly.

package outsearch

import (
	"strings"
	"testing"

	"github.com/framegrace/taskterm/term/parser"
)

// feedLines writes each line followed by CRLF into a small terminal so the
// earlier lines scroll into the scrollback buffer.
func feedLines(t *testing.T, cols, rows int, lines ...string) *parser.VTerm {
	t.Helper()
	v := parser.NewVTerm(cols, rows)
	p := parser.NewParser(v)
	p.Parse([]byte(strings.Join(lines, "\r\n")))
	return v
}

func TestSearchSpansScrollbackAndGrid(t *testing.T) {
	// 2 rows: "error one" and "error two" end up in scrollback, the rest
	// stays on the grid.
	v := feedLines(t, 20, 2, "error one", "plain", "error two", "done")
	s := NewSearch(v)

	if err := s.SetQuery("error"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	matches := s.Matches()
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Line >= matches[1].Line {
		t.Errorf("expected matches ordered oldest first: %v", matches)
	}
	if matches[0].StartCol != 0 || matches[0].EndCol != 5 {
		t.Errorf("expected columns [0,5), got [%d,%d)", matches[0].StartCol, matches[0].EndCol)
	}
}

func TestSearchNextPrevCircular(t *testing.T) {
	v := feedLines(t, 20, 4, "aaa", "bbb", "aaa")
	s := NewSearch(v)
	s.SetQuery("aaa")

	first, ok := s.Current()
	if !ok {
		t.Fatal("expected a current match")
	}
	second, _ := s.Next()
	if second == first {
		t.Fatal("expected Next to advance")
	}
	wrapped, _ := s.Next()
	if wrapped != first {
		t.Errorf("expected Next to wrap to the first match, got %v", wrapped)
	}
	back, _ := s.Prev()
	if back != second {
		t.Errorf("expected Prev to wrap backward, got %v", back)
	}
}

func TestSearchCaseToggle(t *testing.T) {
	v := feedLines(t, 20, 4, "Warning: disk")
	s := NewSearch(v)

	s.SetQuery("warning")
	if len(s.Matches()) != 0 {
		t.Fatal("expected case-sensitive search to miss")
	}
	s.SetCaseSensitive(false)
	if len(s.Matches()) != 1 {
		t.Errorf("expected case-insensitive search to hit, got %d", len(s.Matches()))
	}
}

func TestSearchRegexpMode(t *testing.T) {
	v := feedLines(t, 24, 4, "task-12 done", "task-7 open")
	s := NewSearch(v)

	if err := s.SetRegexp(true); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := s.SetQuery(`task-\d+`); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(s.Matches()) != 2 {
		t.Errorf("expected 2 regex matches, got %d", len(s.Matches()))
	}
}

func TestSearchZeroWidthRegexpMatchesSkipped(t *testing.T) {
	v := feedLines(t, 20, 4, "abc")
	s := NewSearch(v)
	s.SetRegexp(true)

	// "x*" matches with zero width at every position; none of those can
	// be highlighted, and none may crash the scan.
	if err := s.SetQuery("x*"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(s.Matches()) != 0 {
		t.Errorf("expected no matches for a zero-width-only pattern, got %d", len(s.Matches()))
	}

	if err := s.SetQuery("b*"); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(s.Matches()) != 1 {
		t.Errorf("expected only the non-empty match to survive, got %d", len(s.Matches()))
	}
}

func TestSearchCaseFoldKeepsColumnsAligned(t *testing.T) {
	// Lowercasing Ⱥ grows its UTF-8 encoding, so offsets computed on a
	// lowered copy of the row would run past the column table.
	v := feedLines(t, 20, 4, "Ⱥzzz")
	s := NewSearch(v)
	s.SetCaseSensitive(false)
	s.SetQuery("ZZZ")

	matches := s.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].StartCol != 1 || matches[0].EndCol != 4 {
		t.Errorf("expected columns [1,4), got [%d,%d)", matches[0].StartCol, matches[0].EndCol)
	}
}

func TestSearchCaseFoldAfterShrinkingRune(t *testing.T) {
	// İ lowercases to fewer bytes than it occupies; the match after it must
	// still report its original columns.
	v := feedLines(t, 20, 4, "İx")
	s := NewSearch(v)
	s.SetCaseSensitive(false)
	s.SetQuery("X")

	matches := s.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].StartCol != 1 || matches[0].EndCol != 2 {
		t.Errorf("expected columns [1,2), got [%d,%d)", matches[0].StartCol, matches[0].EndCol)
	}
}

func TestSearchBadRegexpKeepsPreviousMatches(t *testing.T) {
	v := feedLines(t, 20, 4, "alpha")
	s := NewSearch(v)
	s.SetRegexp(true)
	s.SetQuery("alpha")
	if len(s.Matches()) != 1 {
		t.Fatal("expected initial match")
	}

	if err := s.SetQuery("("); err == nil {
		t.Fatal("expected invalid pattern to error")
	}
	if s.Query() != "alpha" {
		t.Errorf("expected previous query retained, got %q", s.Query())
	}
	if len(s.Matches()) != 1 {
		t.Errorf("expected previous matches retained, got %d", len(s.Matches()))
	}
}

func TestSearchFindsClearedOutputInScrollback(t *testing.T) {
	v := feedLines(t, 20, 2, "needle here", "a", "b")
	// Clear the visible screen the way a clear command does.
	p := parser.NewParser(v)
	p.Parse([]byte("\x1b[2J\x1b[H"))

	s := NewSearch(v)
	s.SetQuery("needle")
	if len(s.Matches()) != 1 {
		t.Errorf("expected cleared output still searchable via scrollback, got %d matches", len(s.Matches()))
	}
}

func TestSearchWideCharColumns(t *testing.T) {
	v := feedLines(t, 20, 4, "x中y")
	s := NewSearch(v)
	s.SetQuery("中")

	matches := s.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].StartCol != 1 || matches[0].EndCol != 3 {
		t.Errorf("expected wide char to span columns [1,3), got [%d,%d)", matches[0].StartCol, matches[0].EndCol)
	}
}
