// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/cell.go
// Summary: Cell, color and attribute types for the terminal grid.

package parser

// Attribute defines style flags carried by a cell.
type Attribute uint16

const (
	AttrBold Attribute = 1 << iota
	AttrUnderline
	AttrReverse
)

// String returns a human-readable representation of the attribute flags.
func (a Attribute) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	if a&AttrBold != 0 {
		parts = append(parts, "bold")
	}
	if a&AttrUnderline != 0 {
		parts = append(parts, "underline")
	}
	if a&AttrReverse != 0 {
		parts = append(parts, "reverse")
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += "|" + parts[i]
	}
	return result
}

// ColorMode defines the type of color stored.
type ColorMode int

const (
	ColorModeDefault  ColorMode = iota // Default terminal color
	ColorModeStandard                  // The basic 16 ANSI colors
	ColorMode256                       // 256-color palette
	ColorModeRGB                       // 24-bit "true" color
)

// Color represents a color in potentially different modes.
type Color struct {
	Mode    ColorMode
	Value   uint8 // Holds the color code for Standard (0-15) and 256-mode (0-255)
	R, G, B uint8 // Holds the values for RGB mode
}

// Cell represents a single character cell on the screen. A cell carries one
// grapheme: the base rune plus any combining marks applied on top of it.
type Cell struct {
	Rune      rune
	Combining []rune
	FG        Color
	BG        Color
	Attr      Attribute
	Wide      bool // True if this cell holds a 2-column character
	Cont      bool // True if this cell is the continuation half of a wide cell
}

// Text returns the cell's grapheme as a string. Continuation cells and empty
// cells render as nothing and a space respectively.
func (c Cell) Text() string {
	if c.Cont {
		return ""
	}
	if c.Rune == 0 {
		return " "
	}
	return string(append([]rune{c.Rune}, c.Combining...))
}

var (
	DefaultFG = Color{Mode: ColorModeDefault}
	DefaultBG = Color{Mode: ColorModeDefault}
)

func blankCell(fg, bg Color) Cell {
	return Cell{Rune: ' ', FG: fg, BG: bg}
}
