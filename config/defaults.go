// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the taskterm configuration file.

package config

import "os"

func applyDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cfg.RegisterDefaults("", Section{
		"shell": shell,
	})
	cfg.RegisterDefaults("history", Section{
		"max_entries": 1000,
		"persist":     true,
	})
	cfg.RegisterDefaults("scrollback", Section{
		"max_lines": 10000,
	})
}
