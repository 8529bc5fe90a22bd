// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/selection/clipboard.go
// Summary: Clipboard boundary: OSC 52 pass-through with memory fallback.

package selection

import (
	"encoding/base64"
	"fmt"
)

// Clipboard is the copy/paste boundary for the session.
type Clipboard interface {
	Set(text string) error
	Get() (string, error)
}

// OSC52Clipboard forwards copies to the outer terminal via OSC 52, which
// works across SSH. It keeps a local shadow so Get works even when the
// outer terminal refuses to answer clipboard queries.
type OSC52Clipboard struct {
	write  func([]byte) error
	shadow string
}

func NewOSC52Clipboard(write func([]byte) error) *OSC52Clipboard {
	return &OSC52Clipboard{write: write}
}

func (c *OSC52Clipboard) Set(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := fmt.Sprintf("\x1b]52;c;%s\x1b\\", encoded)
	if err := c.write([]byte(seq)); err != nil {
		return fmt.Errorf("failed to write clipboard sequence: %w", err)
	}
	c.shadow = text
	return nil
}

func (c *OSC52Clipboard) Get() (string, error) {
	return c.shadow, nil
}

// MemoryClipboard is the in-process fallback used in tests and when the
// outer terminal is not a tty.
type MemoryClipboard struct {
	text string
}

func (c *MemoryClipboard) Set(text string) error { c.text = text; return nil }
func (c *MemoryClipboard) Get() (string, error)  { return c.text, nil }
