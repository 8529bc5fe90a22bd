// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/engine.go
// Summary: In-memory history list with write-through persistence.

package history

import (
	"log"
	"strings"
	"sync"
)

// Engine keeps the working copy of the history, newest last, and writes every
// accepted line through to the backing store. Persistence failures demote the
// engine to memory-only operation; the session keeps working.
type Engine struct {
	store      Store
	entries    []string
	memoryOnly bool

	// OnDegrade is invoked once when the store stops accepting writes, so
	// the session can surface a non-fatal status line.
	OnDegrade func(err error)

	wg sync.WaitGroup
	mu sync.Mutex
}

// NewEngine loads existing entries from the store. A load failure is not
// fatal: the engine starts empty and memory-only.
func NewEngine(store Store) *Engine {
	e := &Engine{store: store}
	entries, err := store.LoadAll()
	if err != nil {
		log.Printf("History: Failed to load entries: %v", err)
		e.memoryOnly = true
		return e
	}
	for _, entry := range entries {
		e.entries = append(e.entries, entry.Text)
	}
	return e
}

// Entries returns the working history, oldest first.
func (e *Engine) Entries() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.entries))
	copy(out, e.entries)
	return out
}

// Append records a submitted line. Empty (after trimming) lines are skipped.
// The persistence write does not block the caller; Close waits for all
// pending writes.
func (e *Engine) Append(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	e.mu.Lock()
	e.entries = append(e.entries, text)
	memoryOnly := e.memoryOnly
	e.mu.Unlock()

	if memoryOnly {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.store.Append(text); err != nil {
			log.Printf("History: Persist failed, continuing in memory: %v", err)
			e.mu.Lock()
			degraded := !e.memoryOnly
			e.memoryOnly = true
			e.mu.Unlock()
			if degraded && e.OnDegrade != nil {
				e.OnDegrade(err)
			}
		}
	}()
}

// Suggest returns the most recent entry that has line as a strict prefix.
func (e *Engine) Suggest(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.entries) - 1; i >= 0; i-- {
		if strings.HasPrefix(e.entries[i], line) && e.entries[i] != line {
			return e.entries[i], true
		}
	}
	return "", false
}

// Close waits for pending persistence writes and closes the store.
func (e *Engine) Close() error {
	e.wg.Wait()
	return e.store.Close()
}
