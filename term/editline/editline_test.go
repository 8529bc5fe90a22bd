// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/editline/editline_test.go
// Summary: Edit operation contracts: cluster moves, words, kill buffer.

package editline

import "testing"

func TestInsertAndText(t *testing.T) {
	e := New()
	e.Insert("hello")
	e.MoveHome()
	e.Insert("> ")

	if e.Text() != "> hello" {
		t.Errorf("expected %q, got %q", "> hello", e.Text())
	}
	if e.Cursor() != 2 {
		t.Errorf("expected cursor 2, got %d", e.Cursor())
	}
}

func TestMoveByGraphemeCluster(t *testing.T) {
	e := New()
	// Flag emoji + family emoji are single clusters spanning several runes.
	e.SetText("a🇪🇸b")

	if e.Len() != 3 {
		t.Fatalf("expected 3 clusters, got %d", e.Len())
	}
	e.MoveHome()
	e.MoveRight()
	e.MoveRight()
	if e.Cursor() != 2 {
		t.Errorf("expected cursor 2, got %d", e.Cursor())
	}
	e.Backspace()
	if e.Text() != "ab" {
		t.Errorf("expected flag removed in one backspace, got %q", e.Text())
	}
}

func TestMoveNoOpAtBounds(t *testing.T) {
	e := New()
	e.SetText("x")

	e.MoveEnd()
	if e.MoveRight() {
		t.Error("expected MoveRight to be a no-op at end")
	}
	e.MoveHome()
	if e.MoveLeft() {
		t.Error("expected MoveLeft to be a no-op at start")
	}
	if e.Backspace() {
		t.Error("expected Backspace to be a no-op at start")
	}
}

func TestWordMovement(t *testing.T) {
	e := New()
	e.SetText("git commit --amend")
	e.MoveHome()

	e.MoveWordRight()
	if e.Cursor() != 3 { // after "git"
		t.Errorf("expected cursor 3, got %d", e.Cursor())
	}
	e.MoveWordRight()
	if e.Cursor() != 10 { // after "commit"
		t.Errorf("expected cursor 10, got %d", e.Cursor())
	}
	// "--amend": punctuation run then word run are separate words.
	e.MoveWordRight()
	if e.Cursor() != 13 { // after "--"
		t.Errorf("expected cursor 13 at punct/alnum boundary, got %d", e.Cursor())
	}

	e.MoveEnd()
	e.MoveWordLeft()
	if e.Cursor() != 13 { // start of "amend"
		t.Errorf("expected cursor 13, got %d", e.Cursor())
	}
	e.MoveWordLeft()
	if e.Cursor() != 11 { // start of "--"
		t.Errorf("expected cursor 11, got %d", e.Cursor())
	}
}

func TestKillToEndAndYank(t *testing.T) {
	e := New()
	e.SetText("echo hello world")
	e.MoveHome()
	e.MoveWordRight()

	killed := e.KillToEnd()
	if killed != " hello world" {
		t.Errorf("expected killed span %q, got %q", " hello world", killed)
	}
	if e.Text() != "echo" {
		t.Errorf("expected remaining %q, got %q", "echo", e.Text())
	}

	e.MoveEnd()
	if !e.Yank() {
		t.Fatal("expected yank to succeed")
	}
	if e.Text() != "echo hello world" {
		t.Errorf("expected yank to restore line, got %q", e.Text())
	}
}

func TestKillOverwritesPreviousKill(t *testing.T) {
	e := New()
	e.SetText("first")
	e.MoveHome()
	e.KillToEnd()

	e.SetText("second")
	e.MoveHome()
	e.KillToEnd()

	if e.KillBuffer() != "second" {
		t.Errorf("expected kill buffer %q, got %q", "second", e.KillBuffer())
	}
}

func TestEmptyKillKeepsBuffer(t *testing.T) {
	e := New()
	e.SetText("keep")
	e.MoveHome()
	e.KillToEnd()
	e.KillToEnd() // nothing left; buffer must survive

	if e.KillBuffer() != "keep" {
		t.Errorf("expected kill buffer %q, got %q", "keep", e.KillBuffer())
	}
}

func TestDisplayCursorCountsWideCells(t *testing.T) {
	e := New()
	e.SetText("a中b")
	e.MoveEnd()

	if e.DisplayCursor() != 4 {
		t.Errorf("expected display column 4, got %d", e.DisplayCursor())
	}
}
