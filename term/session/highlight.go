// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/highlight.go
// Summary: Highlight tinting for selection and search matches.

package session

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/framegrace/taskterm/term/parser"
)

const (
	selectionTintIntensity = 0.35
	matchTintIntensity     = 0.45
)

var (
	selectionTint = colorful.Color{R: 0.35, G: 0.55, B: 0.85}
	matchTint     = colorful.Color{R: 0.90, G: 0.75, B: 0.25}
)

// SelectionColor blends a cell background toward the selection tint.
func SelectionColor(bg parser.Color) (r, g, b uint8) {
	return tint(bg, selectionTint, selectionTintIntensity)
}

// MatchColor blends a cell background toward the search-match tint. current
// marks the highlighted match, which gets a stronger blend.
func MatchColor(bg parser.Color, current bool) (r, g, b uint8) {
	intensity := matchTintIntensity
	if current {
		intensity = 0.7
	}
	return tint(bg, matchTint, intensity)
}

func tint(bg parser.Color, target colorful.Color, intensity float64) (uint8, uint8, uint8) {
	base := cellColor(bg)
	blended := base.BlendLab(target, intensity).Clamped()
	return uint8(blended.R * 255), uint8(blended.G * 255), uint8(blended.B * 255)
}

// cellColor approximates the cell background as an RGB color. Non-RGB modes
// fall back to a dark default; the renderer resolves palette colors itself
// and only tints true-color cells precisely.
func cellColor(c parser.Color) colorful.Color {
	if c.Mode == parser.ColorModeRGB {
		return colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}
	}
	return colorful.Color{R: 0.10, G: 0.10, B: 0.12}
}
