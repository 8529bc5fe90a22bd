// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tasks/tasks.go
// Summary: Task model and status lifecycle.

package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Priority ranks tasks for listing.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Task is one tracked work item. ExternalID and Source identify tasks
// imported from an external tracker; locally created tasks leave them empty.
type Task struct {
	ID          uuid.UUID
	ExternalID  string
	Source      string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	Labels      []string
	DueDate     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates an open, medium-priority task with a fresh id.
func New(title string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    StatusOpen,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
