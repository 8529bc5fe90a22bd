// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tasks/store.go
// Summary: SQLite persistence for tasks.

package tasks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const taskSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    external_id TEXT,
    source TEXT,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    priority TEXT NOT NULL,
    assignee TEXT,
    labels TEXT,
    due_date TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Store persists tasks in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the task database at path.
func Open(path string) (*Store, error) {
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
	if _, err := db.Exec(taskSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Create inserts a new task.
func (s *Store) Create(t *Task) error {
	labels, err := json.Marshal(t.Labels)
	if err != nil {
		return fmt.Errorf("failed to encode labels: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, external_id, source, title, description, status,
			priority, assignee, labels, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.ExternalID, t.Source, t.Title, t.Description,
		string(t.Status), string(t.Priority), t.Assignee, string(labels),
		t.DueDate, t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get loads one task by id.
func (s *Store) Get(id uuid.UUID) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT id, external_id, source, title, description, status, priority,
			assignee, labels, due_date, created_at, updated_at
		 FROM tasks WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// FindByTitle returns the most recently created task with the given title.
func (s *Store) FindByTitle(title string) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT id, external_id, source, title, description, status, priority,
			assignee, labels, due_date, created_at, updated_at
		 FROM tasks WHERE title = ? ORDER BY created_at DESC LIMIT 1`, title)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

// SetStatus moves a task through its lifecycle and bumps updated_at.
func (s *Store) SetStatus(id uuid.UUID, status Status) error {
	res, err := s.db.Exec(
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// Delete removes a task.
func (s *Store) Delete(id uuid.UUID) error {
	_, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// List returns all tasks, newest first.
func (s *Store) List() ([]*Task, error) {
	rows, err := s.db.Query(
		`SELECT id, external_id, source, title, description, status, priority,
			assignee, labels, due_date, created_at, updated_at
		 FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Titles returns the titles of tasks that are not done, for completion.
func (s *Store) Titles() []string {
	rows, err := s.db.Query(
		"SELECT title FROM tasks WHERE status != ? ORDER BY created_at DESC",
		string(StatusDone))
	if err != nil {
		return nil
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return titles
		}
		titles = append(titles, title)
	}
	return titles
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var id, labels string
	var createdAt, updatedAt int64
	err := row.Scan(&id, &t.ExternalID, &t.Source, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.Assignee, &labels, &t.DueDate,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", id, err)
	}
	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &t.Labels); err != nil {
			return nil, fmt.Errorf("invalid labels for task %s: %w", id, err)
		}
	}
	t.CreatedAt = time.Unix(0, createdAt)
	t.UpdatedAt = time.Unix(0, updatedAt)
	return &t, nil
}
