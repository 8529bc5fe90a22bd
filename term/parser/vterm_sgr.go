// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/vterm_sgr.go
// Summary: Select Graphic Rendition handling (attributes and colors).

package parser

// ProcessSGR applies a CSI m parameter list. Extended color forms consume
// their sub-parameters; unknown parameters are skipped without desyncing the
// rest of the list.
func (v *VTerm) ProcessSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			v.currentFG = DefaultFG
			v.currentBG = DefaultBG
			v.currentAttr = 0
		case p == 1:
			v.currentAttr |= AttrBold
		case p == 4:
			v.currentAttr |= AttrUnderline
		case p == 7:
			v.currentAttr |= AttrReverse
		case p == 22:
			v.currentAttr &^= AttrBold
		case p == 24:
			v.currentAttr &^= AttrUnderline
		case p == 27:
			v.currentAttr &^= AttrReverse
		case p == 39:
			v.currentFG = DefaultFG
		case p == 49:
			v.currentBG = DefaultBG
		case p >= 30 && p <= 37:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 30)}
		case p >= 40 && p <= 47:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 40)}
		case p >= 90 && p <= 97:
			v.currentFG = Color{Mode: ColorModeStandard, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			v.currentBG = Color{Mode: ColorModeStandard, Value: uint8(p - 100 + 8)}
		case p == 38:
			if c, consumed, ok := extendedColor(params[i+1:]); ok {
				v.currentFG = c
				i += consumed
			}
		case p == 48:
			if c, consumed, ok := extendedColor(params[i+1:]); ok {
				v.currentBG = c
				i += consumed
			}
		}
		i++
	}
}

// extendedColor decodes the 38/48 sub-parameter forms: "5;n" for the 256-color
// palette and "2;r;g;b" for 24-bit color. Returns how many parameters were
// consumed beyond the introducer.
func extendedColor(rest []int) (Color, int, bool) {
	if len(rest) >= 2 && rest[0] == 5 {
		return Color{Mode: ColorMode256, Value: uint8(rest[1])}, 2, true
	}
	if len(rest) >= 4 && rest[0] == 2 {
		return Color{
			Mode: ColorModeRGB,
			R:    uint8(rest[1]),
			G:    uint8(rest[2]),
			B:    uint8(rest[3]),
		}, 4, true
	}
	return Color{}, 0, false
}
