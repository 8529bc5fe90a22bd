// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/builtins.go
// Summary: Built-in slash commands handled without the child process.

package session

import (
	"fmt"
	"strings"
)

// BuiltinCommands lists the slash commands, without the prefix marker.
var BuiltinCommands = []string{"task", "done", "progress", "list", "clear", "help", "quit"}

func (s *Session) runBuiltin(line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "task":
		s.builtinTask(arg)
	case "done":
		s.builtinSetStatus(arg, true)
	case "progress":
		s.builtinSetStatus(arg, false)
	case "list":
		s.builtinList()
	case "clear":
		// Rows visible at clear time move to scrollback, so output search
		// still reaches everything that was on screen.
		s.pushVisibleRows()
		s.term.ClearScreen()
		s.term.SetCursorPos(0, 0)
	case "help":
		s.echoLines(
			"/task <title>      create a task",
			"/done <title>      mark a task done",
			"/progress <title>  mark a task in progress",
			"/list              list open tasks",
			"/clear             clear the screen",
			"/quit              exit",
		)
	case "quit":
		s.quit = true
	default:
		s.status = fmt.Sprintf("unknown command /%s", name)
	}
}

func (s *Session) builtinTask(title string) {
	if title == "" {
		s.status = "usage: /task <title>"
		return
	}
	if s.tasks == nil {
		s.status = "task store unavailable"
		return
	}
	if err := s.tasks.Add(title); err != nil {
		s.status = fmt.Sprintf("task create failed: %v", err)
		return
	}
	s.echoLines("created: " + title)
}

func (s *Session) builtinSetStatus(title string, done bool) {
	if title == "" {
		s.status = "usage: /done|/progress <title>"
		return
	}
	if s.tasks == nil {
		s.status = "task store unavailable"
		return
	}
	var err error
	verb := "in progress"
	if done {
		err = s.tasks.MarkDone(title)
		verb = "done"
	} else {
		err = s.tasks.MarkInProgress(title)
	}
	if err != nil {
		s.status = fmt.Sprintf("task update failed: %v", err)
		return
	}
	s.echoLines(fmt.Sprintf("%s: %s", verb, title))
}

func (s *Session) builtinList() {
	if s.tasks == nil {
		s.status = "task store unavailable"
		return
	}
	lines := s.tasks.Summaries()
	if len(lines) == 0 {
		lines = []string{"no open tasks"}
	}
	s.echoLines(lines...)
}

// pushVisibleRows snapshots the grid into scrollback, up to the last row
// holding any text. Interior blank rows are kept so line numbering stays
// stable for search.
func (s *Session) pushVisibleRows() {
	grid := s.term.Grid()
	last := -1
	for y, row := range grid {
		for _, cell := range row {
			if !cell.Cont && strings.TrimSpace(cell.Text()) != "" {
				last = y
				break
			}
		}
	}
	for y := 0; y <= last; y++ {
		s.term.Scrollback().Push(grid[y])
	}
}

// echoLines writes local feedback through the parser so it scrolls and
// wraps exactly like process output.
func (s *Session) echoLines(lines ...string) {
	for _, line := range lines {
		s.parser.Parse([]byte(line + "\r\n"))
	}
}
