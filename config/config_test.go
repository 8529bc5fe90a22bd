// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
)

func resetStore() {
	once = sync.Once{}
	current = nil
	loadErr = nil
}

func TestLoadWritesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	cfg := Load()
	if cfg.GetString("", "shell", "") == "" {
		t.Fatalf("expected shell default to be set")
	}
	if cfg.GetInt("history", "max_entries", 0) != 1000 {
		t.Fatalf("expected history default, got %d", cfg.GetInt("history", "max_entries", 0))
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var disk Config
	if err := json.Unmarshal(data, &disk); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if disk.Section("scrollback") == nil {
		t.Fatalf("expected scrollback section on disk")
	}
}

func TestSaveWritesUpdates(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	Set(Config{"shell": "/bin/zsh"})
	if err := Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	resetStore()

	cfg := Load()
	if got := cfg.GetString("", "shell", ""); got != "/bin/zsh" {
		t.Fatalf("expected saved shell, got %q", got)
	}
}

func TestBrokenFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	resetStore()

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if err := os.MkdirAll(dir+"/taskterm", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if Err() == nil {
		t.Error("expected load error for broken file")
	}
	if cfg.GetInt("scrollback", "max_lines", 0) != 10000 {
		t.Errorf("expected defaults despite broken file")
	}
}

func TestDatabasePathOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	cfg := Config{"database_path": "/tmp/custom.db"}
	applyDefaults(cfg)
	path, err := DatabasePath(cfg)
	if err != nil {
		t.Fatalf("DatabasePath: %v", err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("expected override honored, got %q", path)
	}
}
