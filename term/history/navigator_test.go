// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/navigator_test.go
// Summary: History recall is loss-free: N Ups then N Downs restores the line.

package history

import "testing"

func newTestEngine(t *testing.T, entries ...string) *Engine {
	t.Helper()
	e := NewEngine(NewMemoryStore(100))
	t.Cleanup(func() { e.Close() })
	for _, entry := range entries {
		e.Append(entry)
	}
	return e
}

func TestNavigatorUpDownRestoresLine(t *testing.T) {
	e := newTestEngine(t, "one", "two", "three")
	n := NewNavigator(e)

	line, ok := n.Up("draft in progress")
	if !ok || line != "three" {
		t.Fatalf("expected newest entry, got %q (ok=%v)", line, ok)
	}
	line, _ = n.Up("three")
	if line != "two" {
		t.Fatalf("expected %q, got %q", "two", line)
	}

	line, _ = n.Down()
	if line != "three" {
		t.Fatalf("expected %q, got %q", "three", line)
	}
	line, ok = n.Down()
	if !ok || line != "draft in progress" {
		t.Errorf("expected restore point, got %q (ok=%v)", line, ok)
	}
	if n.Active() {
		t.Error("expected navigation to end after restoring")
	}
}

func TestNavigatorRestoresEmptyLineExactly(t *testing.T) {
	e := newTestEngine(t, "echo hi")
	n := NewNavigator(e)

	line, ok := n.Up("")
	if !ok || line != "echo hi" {
		t.Fatalf("expected %q, got %q (ok=%v)", "echo hi", line, ok)
	}
	line, ok = n.Down()
	if !ok || line != "" {
		t.Errorf("expected empty restore point, got %q (ok=%v)", line, ok)
	}
}

func TestNavigatorUpStopsAtOldest(t *testing.T) {
	e := newTestEngine(t, "only")
	n := NewNavigator(e)

	n.Up("x")
	if _, ok := n.Up("only"); ok {
		t.Error("expected Up past the oldest entry to be a no-op")
	}
	// Still navigable back down.
	line, ok := n.Down()
	if !ok || line != "x" {
		t.Errorf("expected restore point %q, got %q (ok=%v)", "x", line, ok)
	}
}

func TestNavigatorEmptyHistoryIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	n := NewNavigator(e)

	if _, ok := n.Up("line"); ok {
		t.Error("expected Up with no history to be a no-op")
	}
	if _, ok := n.Down(); ok {
		t.Error("expected Down without navigation to be a no-op")
	}
}

func TestNavigatorResetDropsPeek(t *testing.T) {
	e := newTestEngine(t, "a", "b")
	n := NewNavigator(e)

	n.Up("edited")
	n.Reset()
	if n.Active() {
		t.Fatal("expected navigation inactive after reset")
	}
	// A fresh Up saves the new current line.
	line, _ := n.Up("new draft")
	if line != "b" {
		t.Fatalf("expected %q, got %q", "b", line)
	}
	line, _ = n.Down()
	if line != "new draft" {
		t.Errorf("expected new restore point, got %q", line)
	}
}
