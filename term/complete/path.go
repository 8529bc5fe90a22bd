// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/complete/path.go
// Summary: Filesystem and PATH-executable candidate generation.

package complete

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type pathCompleter struct {
	workDir string
	// pathEnv overrides $PATH in tests.
	pathEnv string
}

func newPathCompleter() *pathCompleter {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &pathCompleter{workDir: wd}
}

// paths completes token as a filesystem path. Directories get a trailing
// slash and stay open for further completion.
func (p *pathCompleter) paths(token string) []Candidate {
	dir, base := filepath.Split(token)
	scanDir := dir
	if scanDir == "" {
		scanDir = "."
	}
	if !filepath.IsAbs(scanDir) {
		scanDir = filepath.Join(p.workDir, scanDir)
	}

	entries, err := os.ReadDir(scanDir)
	if err != nil {
		return nil
	}

	var out []Candidate
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if base == "" && strings.HasPrefix(name, ".") {
			continue
		}
		insert := dir + name
		kind := KindFile
		if entry.IsDir() {
			insert += string(filepath.Separator)
			kind = KindDirectory
		}
		out = append(out, Candidate{Display: name, Insert: insert, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Insert < out[j].Insert })
	return out
}

// executables completes a program name from the directories on PATH.
func (p *pathCompleter) executables(token string) []Candidate {
	if token == "" {
		return nil
	}
	// Paths with a separator complete as files, not PATH lookups.
	if strings.ContainsRune(token, filepath.Separator) || strings.HasPrefix(token, ".") {
		return p.paths(token)
	}

	pathEnv := p.pathEnv
	if pathEnv == "" {
		pathEnv = os.Getenv("PATH")
	}

	seen := make(map[string]bool)
	var names []string
	for _, dir := range filepath.SplitList(pathEnv) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, token) || seen[name] {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]Candidate, 0, len(names))
	for _, name := range names {
		out = append(out, Candidate{Display: name, Insert: name, Kind: KindExecutable})
	}
	return out
}
