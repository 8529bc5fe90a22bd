// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/editline/editline.go
// Summary: Grapheme-aware in-progress input line with kill buffer.

package editline

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// EditLine is the mutable input buffer: a sequence of grapheme clusters, a
// cursor offset in clusters, and the last killed span. It is owned by the
// editor alone and never aliased by the screen model.
type EditLine struct {
	clusters []string
	cursor   int
	killBuf  string
}

func New() *EditLine {
	return &EditLine{}
}

func splitClusters(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

// Text returns the full line contents.
func (e *EditLine) Text() string {
	return strings.Join(e.clusters, "")
}

// SetText replaces the line and moves the cursor to the end.
func (e *EditLine) SetText(s string) {
	e.clusters = splitClusters(s)
	e.cursor = len(e.clusters)
}

// Len reports the number of grapheme clusters.
func (e *EditLine) Len() int { return len(e.clusters) }

// Cursor reports the cursor offset in grapheme clusters.
func (e *EditLine) Cursor() int { return e.cursor }

// AtEnd reports whether the cursor sits past the last cluster.
func (e *EditLine) AtEnd() bool { return e.cursor == len(e.clusters) }

// DisplayCursor reports the cursor position in display columns.
func (e *EditLine) DisplayCursor() int {
	col := 0
	for _, c := range e.clusters[:e.cursor] {
		col += runewidth.StringWidth(c)
	}
	return col
}

// ByteCursor reports the cursor position as a byte offset into Text().
func (e *EditLine) ByteCursor() int {
	n := 0
	for _, c := range e.clusters[:e.cursor] {
		n += len(c)
	}
	return n
}

// Insert places text at the cursor and advances past it.
func (e *EditLine) Insert(s string) {
	if s == "" {
		return
	}
	in := splitClusters(s)
	e.clusters = append(e.clusters[:e.cursor], append(in, e.clusters[e.cursor:]...)...)
	e.cursor += len(in)
}

// Backspace removes the cluster before the cursor. No-op at the start.
func (e *EditLine) Backspace() bool {
	if e.cursor == 0 {
		return false
	}
	e.clusters = append(e.clusters[:e.cursor-1], e.clusters[e.cursor:]...)
	e.cursor--
	return true
}

// Delete removes the cluster under the cursor. No-op at the end.
func (e *EditLine) Delete() bool {
	if e.cursor >= len(e.clusters) {
		return false
	}
	e.clusters = append(e.clusters[:e.cursor], e.clusters[e.cursor+1:]...)
	return true
}

// MoveLeft moves one grapheme cluster left. No-op at the start.
func (e *EditLine) MoveLeft() bool {
	if e.cursor == 0 {
		return false
	}
	e.cursor--
	return true
}

// MoveRight moves one grapheme cluster right. No-op at the end.
func (e *EditLine) MoveRight() bool {
	if e.cursor >= len(e.clusters) {
		return false
	}
	e.cursor++
	return true
}

func (e *EditLine) MoveHome() { e.cursor = 0 }
func (e *EditLine) MoveEnd()  { e.cursor = len(e.clusters) }

type charClass int

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classify(cluster string) charClass {
	r := []rune(cluster)[0]
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classPunct
	}
}

// MoveWordLeft moves to the start of the previous word. A word is a maximal
// run of one class, so the cursor stops at punctuation-to-alnum boundaries.
func (e *EditLine) MoveWordLeft() {
	for e.cursor > 0 && classify(e.clusters[e.cursor-1]) == classSpace {
		e.cursor--
	}
	if e.cursor == 0 {
		return
	}
	cls := classify(e.clusters[e.cursor-1])
	for e.cursor > 0 && classify(e.clusters[e.cursor-1]) == cls {
		e.cursor--
	}
}

// MoveWordRight moves past the end of the next word.
func (e *EditLine) MoveWordRight() {
	n := len(e.clusters)
	for e.cursor < n && classify(e.clusters[e.cursor]) == classSpace {
		e.cursor++
	}
	if e.cursor == n {
		return
	}
	cls := classify(e.clusters[e.cursor])
	for e.cursor < n && classify(e.clusters[e.cursor]) == cls {
		e.cursor++
	}
}

// KillToEnd deletes from the cursor to the end of the line, storing the
// removed span in the kill buffer (overwriting any previous content).
func (e *EditLine) KillToEnd() string {
	killed := strings.Join(e.clusters[e.cursor:], "")
	e.clusters = e.clusters[:e.cursor]
	if killed != "" {
		e.killBuf = killed
	}
	return killed
}

// Yank re-inserts the kill buffer at the cursor.
func (e *EditLine) Yank() bool {
	if e.killBuf == "" {
		return false
	}
	e.Insert(e.killBuf)
	return true
}

// KillBuffer returns the last killed span.
func (e *EditLine) KillBuffer() string { return e.killBuf }

// Clear empties the line, keeping the kill buffer.
func (e *EditLine) Clear() {
	e.clusters = nil
	e.cursor = 0
}
