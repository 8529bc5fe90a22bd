// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/store.go
// Summary: SQLite-backed append log for submitted input lines.
//
// The store is append-only and single-writer. Entries are durable once
// Append returns; a crash loses at most the in-flight line.

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one submitted line. Immutable once persisted; duplicates are
// allowed and ranked by recency.
type Entry struct {
	Seq       int64
	Text      string
	CreatedAt time.Time
}

// Store is the persistence boundary for the history engine.
type Store interface {
	// Append durably persists one entry and enforces the maximum size by
	// evicting the oldest rows.
	Append(text string) error

	// LoadAll returns entries in chronological order, oldest first.
	LoadAll() ([]Entry, error)

	// EvictOldest removes the n oldest entries.
	EvictOldest(n int) error

	Close() error
}

const historySchema = `
CREATE TABLE IF NOT EXISTS command_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// OpenSQLiteStore opens (creating if needed) the history database at path.
func OpenSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

func (s *SQLiteStore) Append(text string) error {
	_, err := s.db.Exec(
		"INSERT INTO command_history (command, created_at) VALUES (?, ?)",
		text, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM command_history").Scan(&count); err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}
	if count > int64(s.maxEntries) {
		return s.EvictOldest(int(count - int64(s.maxEntries)))
	}
	return nil
}

func (s *SQLiteStore) LoadAll() ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT id, command, created_at FROM command_history ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.Seq, &e.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) EvictOldest(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`DELETE FROM command_history WHERE id IN (
			SELECT id FROM command_history ORDER BY id ASC LIMIT ?)`, n)
	if err != nil {
		return fmt.Errorf("failed to evict entries: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is the in-memory fallback used when the database is
// unavailable. History survives the session only.
type MemoryStore struct {
	entries    []Entry
	nextSeq    int64
	maxEntries int
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryStore{nextSeq: 1, maxEntries: maxEntries}
}

func (m *MemoryStore) Append(text string) error {
	m.entries = append(m.entries, Entry{Seq: m.nextSeq, Text: text, CreatedAt: time.Now()})
	m.nextSeq++
	if over := len(m.entries) - m.maxEntries; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	return nil
}

func (m *MemoryStore) LoadAll() ([]Entry, error) {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryStore) EvictOldest(n int) error {
	if n > len(m.entries) {
		n = len(m.entries)
	}
	m.entries = append(m.entries[:0:0], m.entries[n:]...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
