// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/complete/engine.go
// Summary: Strategy dispatch for the completion key.
//
// Strategies are a fixed set tried in priority order: built-in commands,
// registered program tables (subcommands and flags), executables on PATH,
// filesystem paths, and finally known task titles.

package complete

import (
	"sort"
	"strings"
	"unicode"
)

// BuiltinPrefix marks built-in commands on the input line.
const BuiltinPrefix = "/"

// ProgramSpec registers bash-style completions for one external program.
type ProgramSpec struct {
	Subcommands []string
	// Flags maps a subcommand to its flag completions. The empty key holds
	// flags valid for the bare program.
	Flags map[string][]string
}

// TaskSource supplies entity names for the last-resort strategy.
type TaskSource interface {
	Titles() []string
}

// Engine turns a line and cursor into an ordered candidate list.
type Engine struct {
	builtins []string
	programs map[string]ProgramSpec
	tasks    TaskSource
	fs       *pathCompleter
}

// Option configures an Engine.
type Option func(*Engine)

// WithBuiltins sets the built-in command set, without the prefix marker.
func WithBuiltins(names ...string) Option {
	return func(e *Engine) { e.builtins = names }
}

// WithProgram registers subcommand and flag completions for a program.
func WithProgram(name string, spec ProgramSpec) Option {
	return func(e *Engine) { e.programs[name] = spec }
}

// WithTaskSource sets the fallback entity-name provider.
func WithTaskSource(ts TaskSource) Option {
	return func(e *Engine) { e.tasks = ts }
}

// WithWorkDir sets the directory relative paths complete against.
func WithWorkDir(dir string) Option {
	return func(e *Engine) { e.fs.workDir = dir }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		programs: make(map[string]ProgramSpec),
		fs:       newPathCompleter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Complete builds a State for the token under the cursor, or nil when no
// strategy yields candidates.
func (e *Engine) Complete(line string, cursor int) *State {
	if cursor > len(line) {
		cursor = len(line)
	}
	start := tokenStart(line, cursor)
	token := line[start:cursor]
	isFirst := strings.TrimSpace(line[:start]) == ""

	candidates := e.generate(line, start, token, isFirst)
	if len(candidates) == 0 {
		return nil
	}
	return newState(line, start, cursor, candidates)
}

func (e *Engine) generate(line string, start int, token string, isFirst bool) []Candidate {
	if isFirst && strings.HasPrefix(token, BuiltinPrefix) {
		return e.builtinCandidates(token)
	}

	if isFirst {
		// Completing the program name itself.
		if cands := e.fs.executables(token); len(cands) > 0 {
			return cands
		}
	} else {
		program := firstToken(line[:start])
		if spec, ok := e.programs[program]; ok {
			if cands := e.programCandidates(line[:start], spec, token); len(cands) > 0 {
				return cands
			}
		}
		if cands := e.fs.paths(token); len(cands) > 0 {
			return cands
		}
	}

	return e.taskCandidates(token)
}

func (e *Engine) builtinCandidates(token string) []Candidate {
	var out []Candidate
	for _, name := range e.builtins {
		full := BuiltinPrefix + name
		if strings.HasPrefix(full, token) {
			out = append(out, Candidate{Display: full, Insert: full, Kind: KindBuiltin})
		}
	}
	return out
}

func (e *Engine) programCandidates(before string, spec ProgramSpec, token string) []Candidate {
	if strings.HasPrefix(token, "-") {
		sub := secondToken(before)
		flags := spec.Flags[sub]
		if flags == nil {
			flags = spec.Flags[""]
		}
		var out []Candidate
		for _, f := range flags {
			if strings.HasPrefix(f, token) {
				out = append(out, Candidate{Display: f, Insert: f, Kind: KindFlag})
			}
		}
		return out
	}

	// Only the token directly after the program name completes subcommands.
	if secondToken(before) != "" {
		return nil
	}
	var out []Candidate
	for _, sub := range spec.Subcommands {
		if strings.HasPrefix(sub, token) {
			out = append(out, Candidate{Display: sub, Insert: sub, Kind: KindSubcommand})
		}
	}
	return out
}

func (e *Engine) taskCandidates(token string) []Candidate {
	if e.tasks == nil {
		return nil
	}
	titles := e.tasks.Titles()
	sort.Strings(titles)
	var out []Candidate
	for _, title := range titles {
		if strings.HasPrefix(title, token) {
			out = append(out, Candidate{Display: title, Insert: title, Kind: KindTask})
		}
	}
	return out
}

// tokenStart finds the byte offset where the token under the cursor begins.
func tokenStart(line string, cursor int) int {
	start := cursor
	for start > 0 {
		r := rune(line[start-1])
		if unicode.IsSpace(r) {
			break
		}
		start--
	}
	return start
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// secondToken returns the token after the program name, skipping flags, or
// empty when the line has only the program so far.
func secondToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return ""
	}
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "-") {
			return f
		}
	}
	return ""
}
