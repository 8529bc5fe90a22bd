// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/complete/engine_test.go
// Summary: Strategy selection, prefix insertion and cycling behavior.

package complete

import (
	"os"
	"path/filepath"
	"testing"
)

type stubTasks struct{ titles []string }

func (s *stubTasks) Titles() []string { return s.titles }

func gitEngine() *Engine {
	return NewEngine(
		WithBuiltins("task", "done", "list", "clear", "help", "quit"),
		WithProgram("git", ProgramSpec{
			Subcommands: []string{"commit", "checkout", "cherry-pick"},
			Flags: map[string][]string{
				"commit": {"--amend", "--all", "--message"},
			},
		}),
	)
}

func TestCompleteBuiltinPrefixFilter(t *testing.T) {
	e := gitEngine()

	st := e.Complete("/cl", 3)
	if st == nil {
		t.Fatal("expected candidates")
	}
	line, cursor, done := st.First()
	if !done {
		t.Fatal("expected a single candidate to complete immediately")
	}
	if line != "/clear " {
		t.Errorf("expected %q with trailing separator, got %q", "/clear ", line)
	}
	if cursor != len("/clear ") {
		t.Errorf("expected cursor at end, got %d", cursor)
	}
}

func TestCompleteBuiltinOnlyAtLineStart(t *testing.T) {
	e := gitEngine()

	st := e.Complete("echo /cl", 8)
	if st != nil {
		for _, c := range st.Candidates {
			if c.Kind == KindBuiltin {
				t.Errorf("builtin candidate %q offered mid-line", c.Display)
			}
		}
	}
}

func TestCompleteAmbiguousCyclesInOrder(t *testing.T) {
	e := gitEngine()

	st := e.Complete("git c", 5)
	if st == nil {
		t.Fatal("expected candidates")
	}
	if st.Len() != 3 {
		t.Fatalf("expected 3 candidates, got %d", st.Len())
	}

	// Common prefix of commit/checkout/cherry-pick is "c": first press is
	// a visible no-op.
	line, _, done := st.First()
	if done {
		t.Fatal("expected ambiguous completion to stay alive")
	}
	if line != "git c" {
		t.Errorf("expected line unchanged at common prefix, got %q", line)
	}

	want := []string{"git commit", "git checkout", "git cherry-pick", "git commit"}
	for i, expected := range want {
		line, _ = st.Cycle()
		if line != expected {
			t.Errorf("cycle %d: expected %q, got %q", i, expected, line)
		}
	}
}

func TestCompleteInsertsLongestCommonPrefix(t *testing.T) {
	e := gitEngine()

	st := e.Complete("git ch", 6)
	if st == nil {
		t.Fatal("expected candidates")
	}
	line, cursor, done := st.First()
	if done {
		t.Fatal("expected checkout/cherry-pick to stay ambiguous")
	}
	if line != "git che" {
		t.Errorf("expected common prefix inserted, got %q", line)
	}
	if cursor != len("git che") {
		t.Errorf("expected cursor after prefix, got %d", cursor)
	}
}

func TestCompleteFlagsForSubcommand(t *testing.T) {
	e := gitEngine()

	st := e.Complete("git commit --am", 15)
	if st == nil {
		t.Fatal("expected flag candidates")
	}
	line, _, done := st.First()
	if !done || line != "git commit --amend " {
		t.Errorf("expected flag completed, got %q (done=%v)", line, done)
	}
}

func TestCompleteFilesystemPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"readme.md", "recipe.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "reports"), 0755); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(WithWorkDir(dir))
	st := e.Complete("cat re", 6)
	if st == nil {
		t.Fatal("expected path candidates")
	}
	if st.Len() != 3 {
		t.Fatalf("expected 3 candidates, got %d", st.Len())
	}

	// A directory candidate completes without the trailing separator.
	st = e.Complete("cat repo", 8)
	if st == nil {
		t.Fatal("expected the directory candidate")
	}
	line, _, done := st.First()
	if !done {
		t.Fatal("expected single candidate")
	}
	if line != "cat reports"+string(filepath.Separator) {
		t.Errorf("expected open directory completion, got %q", line)
	}
}

func TestCompleteTaskTitleFallback(t *testing.T) {
	e := NewEngine(
		WithWorkDir(t.TempDir()),
		WithTaskSource(&stubTasks{titles: []string{"write report", "water plants"}}),
	)

	st := e.Complete("done w", 6)
	if st == nil {
		t.Fatal("expected task candidates")
	}
	if st.Len() != 2 {
		t.Fatalf("expected 2 candidates, got %d", st.Len())
	}
	line, _, _ := st.First()
	if line != "done w" {
		t.Errorf("expected common prefix %q unchanged, got %q", "w", line)
	}
}

func TestCompleteNoCandidatesReturnsNil(t *testing.T) {
	e := NewEngine(WithWorkDir(t.TempDir()))
	if st := e.Complete("xyzzy nothing-here", 18); st != nil {
		t.Errorf("expected nil state, got %d candidates", st.Len())
	}
}
