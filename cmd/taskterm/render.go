// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/taskterm/render.go
// Summary: Draws session snapshots with tcell. The only code that draws.

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/taskterm/term/outsearch"
	"github.com/framegrace/taskterm/term/parser"
	"github.com/framegrace/taskterm/term/session"
)

const prompt = "> "

type renderer struct {
	screen  tcell.Screen
	palette [258]tcell.Color
}

func newRenderer(screen tcell.Screen) *renderer {
	return &renderer{screen: screen, palette: newDefaultPalette()}
}

func (r *renderer) draw(snap session.Snapshot) {
	r.screen.Clear()
	_, height := r.screen.Size()

	matchAt := indexMatches(snap.Matches, snap.ScrollbackLen)
	for y, row := range snap.Rows {
		for x, cell := range row {
			if cell.Cont {
				continue
			}
			style := r.cellStyle(cell)
			if snap.Selected != nil && snap.Selected(y, x) {
				style = style.Background(tintColor(session.SelectionColor(cell.BG)))
			}
			if idx, ok := matchAt[gridPos{y, x}]; ok {
				style = style.Background(tintColor(session.MatchColor(cell.BG, idx == snap.CurrentMatch)))
			}
			if snap.CursorVisible && x == snap.CursorX && y == snap.CursorY {
				style = style.Reverse(true)
			}
			ch := cell.Rune
			if ch == 0 {
				ch = ' '
			}
			r.screen.SetContent(x, y, ch, cell.Combining, style)
		}
	}

	r.drawEditLine(snap, height-2)
	r.drawStatus(snap, height-1)
	r.screen.Show()
}

func (r *renderer) drawEditLine(snap session.Snapshot, y int) {
	style := tcell.StyleDefault
	x := drawText(r.screen, 0, y, prompt, style)
	x = drawText(r.screen, x, y, snap.Line, style)
	if snap.Suggestion != "" && len(snap.Suggestion) > len(snap.Line) {
		drawText(r.screen, x, y, snap.Suggestion[len(snap.Line):], style.Dim(true))
	}
	r.screen.ShowCursor(len(prompt)+snap.LineCursor, y)
}

func (r *renderer) drawStatus(snap session.Snapshot, y int) {
	style := tcell.StyleDefault.Reverse(true)
	switch {
	case snap.HistorySearch:
		drawText(r.screen, 0, y,
			fmt.Sprintf("(reverse-i-search)`%s': %s", snap.HistoryQuery, snap.HistoryMatch), style)
	case snap.SearchActive:
		drawText(r.screen, 0, y,
			fmt.Sprintf("search: %s  (%d matches)", snap.SearchQuery, len(snap.Matches)), style)
	case len(snap.Candidates) > 0:
		x := 0
		for i, c := range snap.Candidates {
			s := style
			if i == snap.CandidateIndex {
				s = s.Bold(true).Underline(true)
			}
			x = drawText(r.screen, x, y, c.Display, s)
			x = drawText(r.screen, x, y, "  ", style)
		}
	case snap.Status != "":
		drawText(r.screen, 0, y, snap.Status, style)
	default:
		drawText(r.screen, 0, y, snap.Title, style)
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x += runewidth.RuneWidth(ch)
	}
	return x
}

type gridPos struct{ row, col int }

// indexMatches maps grid coordinates to their match index. Scrollback-only
// matches have no on-screen cells and are skipped.
func indexMatches(matches []outsearch.Match, scrollbackLen int) map[gridPos]int {
	if len(matches) == 0 {
		return nil
	}
	out := make(map[gridPos]int)
	for i, m := range matches {
		row := m.Line - scrollbackLen
		if row < 0 {
			continue
		}
		for col := m.StartCol; col < m.EndCol; col++ {
			out[gridPos{row, col}] = i
		}
	}
	return out
}

func tintColor(r, g, b uint8) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// cellStyle translates a parser cell to tcell, resolving palette colors.
func (r *renderer) cellStyle(cell parser.Cell) tcell.Style {
	fg := r.mapColor(cell.FG, 256)
	bg := r.mapColor(cell.BG, 257)
	style := tcell.StyleDefault.Foreground(fg).Background(bg)
	style = style.Bold(cell.Attr&parser.AttrBold != 0)
	style = style.Underline(cell.Attr&parser.AttrUnderline != 0)
	style = style.Reverse(cell.Attr&parser.AttrReverse != 0)
	return style
}

func (r *renderer) mapColor(c parser.Color, defaultIdx int) tcell.Color {
	switch c.Mode {
	case parser.ColorModeStandard, parser.ColorMode256:
		return r.palette[c.Value]
	case parser.ColorModeRGB:
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return r.palette[defaultIdx]
	}
}

// newDefaultPalette builds the standard xterm 256 color palette plus the
// default foreground and background at indexes 256 and 257.
func newDefaultPalette() [258]tcell.Color {
	var p [258]tcell.Color
	base := []tcell.Color{
		tcell.NewRGBColor(0, 0, 0),
		tcell.NewRGBColor(128, 0, 0),
		tcell.NewRGBColor(0, 128, 0),
		tcell.NewRGBColor(128, 128, 0),
		tcell.NewRGBColor(0, 0, 128),
		tcell.NewRGBColor(128, 0, 128),
		tcell.NewRGBColor(0, 128, 128),
		tcell.NewRGBColor(192, 192, 192),
		tcell.NewRGBColor(128, 128, 128),
		tcell.NewRGBColor(255, 0, 0),
		tcell.NewRGBColor(0, 255, 0),
		tcell.NewRGBColor(255, 255, 0),
		tcell.NewRGBColor(0, 0, 255),
		tcell.NewRGBColor(255, 0, 255),
		tcell.NewRGBColor(0, 255, 255),
		tcell.NewRGBColor(255, 255, 255),
	}
	copy(p[:], base)

	levels := []int32{0, 95, 135, 175, 215, 255}
	i := 16
	for red := 0; red < 6; red++ {
		for green := 0; green < 6; green++ {
			for blue := 0; blue < 6; blue++ {
				p[i] = tcell.NewRGBColor(levels[red], levels[green], levels[blue])
				i++
			}
		}
	}
	for j := 0; j < 24; j++ {
		gray := int32(8 + j*10)
		p[i] = tcell.NewRGBColor(gray, gray, gray)
		i++
	}
	p[256] = p[15]
	p[257] = p[0]
	return p
}
