// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/taskterm/main.go
// Summary: Terminal entry point: wiring, screen lifecycle, event pump.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/taskterm/config"
	"github.com/framegrace/taskterm/tasks"
	"github.com/framegrace/taskterm/term/complete"
	"github.com/framegrace/taskterm/term/history"
	"github.com/framegrace/taskterm/term/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("taskterm", flag.ContinueOnError)
	shellFlag := fs.String("shell", "", "Shell to run (default: config, then $SHELL)")
	dbFlag := fs.String("db", "", "Path to the taskterm database")
	logFlag := fs.String("log", "", "File to append logs to")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *logFlag != "" {
		logFile, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
	} else {
		log.SetOutput(os.Stderr)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("taskterm must run on a terminal")
	}

	cfg := config.Load()
	if err := config.Err(); err != nil {
		log.Printf("Main: Continuing with default config: %v", err)
	}

	shell := *shellFlag
	if shell == "" {
		shell = cfg.GetString("", "shell", "/bin/sh")
	}
	dbPath := *dbFlag
	if dbPath == "" {
		var err error
		dbPath, err = config.DatabasePath(cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnablePaste()

	cols, rows := screen.Size()
	gridRows := rows - 2
	if gridRows < 1 {
		gridRows = 1
	}

	// History store; a broken database demotes to memory-only.
	maxEntries := cfg.GetInt("history", "max_entries", 1000)
	var store history.Store
	if cfg.GetBool("history", "persist", true) {
		sqlStore, err := history.OpenSQLiteStore(dbPath, maxEntries)
		if err != nil {
			log.Printf("Main: History database unavailable, using memory: %v", err)
			store = history.NewMemoryStore(maxEntries)
		} else {
			store = sqlStore
		}
	} else {
		store = history.NewMemoryStore(maxEntries)
	}
	hist := history.NewEngine(store)

	taskStore, err := tasks.Open(dbPath)
	if err != nil {
		log.Printf("Main: Task store unavailable: %v", err)
	} else {
		defer taskStore.Close()
	}

	completer := newCompleter(taskStore)

	proc, err := session.StartShell(shell, cols, gridRows)
	if err != nil {
		return err
	}

	s := session.New(session.Options{
		Cols:       cols,
		Rows:       gridRows,
		Scrollback: cfg.GetInt("scrollback", "max_lines", 10000),
		Proc:       proc,
		History:    hist,
		Completer:  completer,
		Clipboard:  &screenClipboard{screen: screen},
		Tasks:      taskBackend(taskStore),
	})
	s.OnDegrade(func(err error) {
		log.Printf("Main: History persistence degraded: %v", err)
	})

	renderer := newRenderer(screen)
	s.SetRenderFunc(func() { renderer.draw(s.Snapshot()) })

	// Pump tcell events into the session's queue; the loop goroutine owns
	// all state.
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			s.Post(ev)
		}
	}()

	err = s.Run()
	if closeErr := s.Close(); closeErr != nil {
		log.Printf("Main: Shutdown: %v", closeErr)
	}
	return err
}

// newCompleter wires the builtin command set, a few well-known program
// tables and the task-title fallback.
func newCompleter(taskStore *tasks.Store) *complete.Engine {
	opts := []complete.Option{
		complete.WithBuiltins(session.BuiltinCommands...),
		complete.WithProgram("git", complete.ProgramSpec{
			Subcommands: []string{
				"add", "branch", "checkout", "cherry-pick", "clone", "commit",
				"diff", "fetch", "log", "merge", "pull", "push", "rebase",
				"reset", "stash", "status", "tag",
			},
			Flags: map[string][]string{
				"commit":   {"--all", "--amend", "--message", "--no-verify"},
				"checkout": {"-b", "--track"},
				"log":      {"--oneline", "--graph", "--stat"},
				"push":     {"--force-with-lease", "--set-upstream", "--tags"},
			},
		}),
		complete.WithProgram("cargo", complete.ProgramSpec{
			Subcommands: []string{"build", "check", "clippy", "fmt", "run", "test"},
			Flags: map[string][]string{
				"build": {"--release", "--features"},
				"test":  {"--release", "--no-default-features"},
			},
		}),
		complete.WithProgram("docker", complete.ProgramSpec{
			Subcommands: []string{"build", "exec", "images", "logs", "ps", "pull", "push", "run", "stop"},
			Flags: map[string][]string{
				"run": {"--detach", "--interactive", "--rm", "--tty", "--volume"},
			},
		}),
		complete.WithProgram("kubectl", complete.ProgramSpec{
			Subcommands: []string{"apply", "delete", "describe", "get", "logs", "port-forward"},
			Flags: map[string][]string{
				"get": {"--all-namespaces", "--output", "--watch"},
			},
		}),
	}
	if taskStore != nil {
		opts = append(opts, complete.WithTaskSource(taskStore))
	}
	return complete.NewEngine(opts...)
}

// taskBackend adapts the sqlite store to the session's builtin commands.
func taskBackend(store *tasks.Store) session.TaskBackend {
	if store == nil {
		return nil
	}
	return &taskAdapter{store: store}
}

type taskAdapter struct {
	store *tasks.Store
}

func (a *taskAdapter) Add(title string) error {
	return a.store.Create(tasks.New(title))
}

func (a *taskAdapter) MarkDone(title string) error {
	return a.setStatus(title, tasks.StatusDone)
}

func (a *taskAdapter) MarkInProgress(title string) error {
	return a.setStatus(title, tasks.StatusInProgress)
}

func (a *taskAdapter) setStatus(title string, status tasks.Status) error {
	task, err := a.store.FindByTitle(title)
	if err != nil {
		return err
	}
	return a.store.SetStatus(task.ID, status)
}

func (a *taskAdapter) Summaries() []string {
	list, err := a.store.List()
	if err != nil {
		return nil
	}
	var out []string
	for _, t := range list {
		if t.Status == tasks.StatusDone {
			continue
		}
		out = append(out, fmt.Sprintf("[%s] %s", t.Status, t.Title))
	}
	return out
}

// screenClipboard forwards copies through tcell, which emits OSC 52 to the
// host terminal. Reads come from the local shadow.
type screenClipboard struct {
	screen tcell.Screen
	shadow string
}

func (c *screenClipboard) Set(text string) error {
	c.screen.SetClipboard([]byte(text))
	c.shadow = text
	return nil
}

func (c *screenClipboard) Get() (string, error) {
	return c.shadow, nil
}
