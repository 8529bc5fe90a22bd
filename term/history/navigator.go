// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/navigator.go
// Summary: Linear up/down history recall with a saved restore point.

package history

// Navigator walks the history linearly. The first Up press saves the
// in-progress line verbatim; moving Down past the newest entry restores it
// exactly, even when it was empty.
type Navigator struct {
	engine *Engine

	active bool
	// offset counts backwards from the end of the history: 1 is the newest
	// entry, len(entries) the oldest.
	offset int
	saved  string
}

func NewNavigator(engine *Engine) *Navigator {
	return &Navigator{engine: engine}
}

// Active reports whether a navigation "peek" is in progress.
func (n *Navigator) Active() bool { return n.active }

// Up steps to the next older entry. current is the line as the user has it
// right now; it becomes the restore point on the first press.
func (n *Navigator) Up(current string) (string, bool) {
	entries := n.engine.Entries()
	if len(entries) == 0 {
		return "", false
	}
	if !n.active {
		n.active = true
		n.saved = current
		n.offset = 0
	}
	if n.offset >= len(entries) {
		return "", false
	}
	n.offset++
	return entries[len(entries)-n.offset], true
}

// Down steps toward the newest entry. Past the newest it returns the saved
// restore point and ends navigation.
func (n *Navigator) Down() (string, bool) {
	if !n.active {
		return "", false
	}
	if n.offset <= 1 {
		n.active = false
		n.offset = 0
		return n.saved, true
	}
	n.offset--
	entries := n.engine.Entries()
	return entries[len(entries)-n.offset], true
}

// Reset drops the peek without touching the stored history. Called on any
// edit so a later Up starts fresh from the edited line.
func (n *Navigator) Reset() {
	n.active = false
	n.offset = 0
	n.saved = ""
}
