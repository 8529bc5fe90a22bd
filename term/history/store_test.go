// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/store_test.go
// Summary: SQLite store round-trip, eviction and reopen behavior.

package history

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStoreAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	for _, cmd := range []string{"ls", "git status", "echo hi"} {
		if err := store.Append(cmd); err != nil {
			t.Fatalf("failed to append %q: %v", cmd, err)
		}
	}

	entries, err := store.LoadAll()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "ls" || entries[2].Text != "echo hi" {
		t.Errorf("entries out of order: %v", entries)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Append("make test"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	store.Close()

	store, err = OpenSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	entries, err := store.LoadAll()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "make test" {
		t.Errorf("expected persisted entry to survive reopen, got %v", entries)
	}
}

func TestSQLiteStoreEvictsOverLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteStore(path, 2)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	for _, cmd := range []string{"one", "two", "three"} {
		if err := store.Append(cmd); err != nil {
			t.Fatalf("failed to append %q: %v", cmd, err)
		}
	}

	entries, err := store.LoadAll()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", len(entries))
	}
	if entries[0].Text != "two" || entries[1].Text != "three" {
		t.Errorf("expected oldest evicted, got %v", entries)
	}
}

func TestSQLiteStoreAllowsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	store.Append("ls")
	store.Append("ls")

	entries, err := store.LoadAll()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected duplicates kept as separate rows, got %d", len(entries))
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStore(2)
	store.Append("a")
	store.Append("b")
	store.Append("c")

	entries, _ := store.LoadAll()
	if len(entries) != 2 || entries[0].Text != "b" {
		t.Errorf("expected [b c], got %v", entries)
	}
}
