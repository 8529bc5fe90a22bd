// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/vterm.go
// Summary: Virtual terminal grid: cursor, margins, wrap and scrollback.

package parser

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// VTerm holds the state of a virtual terminal. The grid is mutated only by
// decoder-applied operations and by Resize; the cursor is clamped inside
// [0,rows) x [0,cols) after every operation.
type VTerm struct {
	width, height              int
	cursorX, cursorY           int
	savedCursorX, savedCursorY int
	grid                       [][]Cell
	currentFG, currentBG       Color
	currentAttr                Attribute
	tabStops                   map[int]bool
	cursorVisible              bool
	wrapNext                   bool
	autoWrapMode               bool
	marginTop, marginBottom    int

	scrollback *Scrollback

	// Private mode flags, exposed read-only so the event loop knows whether
	// to forward raw mouse bytes or translate them to selection gestures.
	bracketedPasteMode bool
	mouseReporting     bool

	TitleChanged   func(string)
	WriteToPty     func([]byte)
	OnBell         func()
	OnClipboardSet func([]byte)
	OnClipboardGet func() []byte
}

type Option func(*VTerm)

func WithTitleChangeHandler(handler func(string)) Option {
	return func(v *VTerm) { v.TitleChanged = handler }
}

func WithPtyWriter(writer func([]byte)) Option {
	return func(v *VTerm) { v.WriteToPty = writer }
}

func WithScrollback(maxLines int) Option {
	return func(v *VTerm) { v.scrollback = NewScrollback(maxLines) }
}

// NewVTerm creates and initializes a new virtual terminal.
func NewVTerm(width, height int, opts ...Option) *VTerm {
	v := &VTerm{
		width:         width,
		height:        height,
		grid:          make([][]Cell, height),
		currentFG:     DefaultFG,
		currentBG:     DefaultBG,
		tabStops:      make(map[int]bool),
		cursorVisible: true,
		autoWrapMode:  true,
		marginTop:     0,
		marginBottom:  height - 1,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.scrollback == nil {
		v.scrollback = NewScrollback(defaultScrollbackMax)
	}
	for i := range v.grid {
		v.grid[i] = make([]Cell, width)
	}
	v.ClearScreen()
	for i := 0; i < width; i++ {
		if i%8 == 0 {
			v.tabStops[i] = true
		}
	}
	return v
}

func (v *VTerm) Size() (cols, rows int)        { return v.width, v.height }
func (v *VTerm) Grid() [][]Cell                { return v.grid }
func (v *VTerm) Cursor() (int, int)            { return v.cursorX, v.cursorY }
func (v *VTerm) CursorVisible() bool           { return v.cursorVisible }
func (v *VTerm) SetCursorVisible(visible bool) { v.cursorVisible = visible }
func (v *VTerm) Scrollback() *Scrollback       { return v.scrollback }

// BracketedPaste reports whether the application enabled bracketed paste.
func (v *VTerm) BracketedPaste() bool { return v.bracketedPasteMode }

// MouseReporting reports whether the application asked for raw mouse events.
func (v *VTerm) MouseReporting() bool { return v.mouseReporting }

// Resize is lossy but stable: rows are preserved left-to-right and
// truncated or padded; scrollback is untouched.
func (v *VTerm) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == v.width && height == v.height {
		return
	}

	newGrid := make([][]Cell, height)
	for y := range newGrid {
		newGrid[y] = make([]Cell, width)
		for x := range newGrid[y] {
			newGrid[y][x] = blankCell(DefaultFG, DefaultBG)
		}
	}

	rowsToCopy := min(v.height, height)
	colsToCopy := min(v.width, width)
	for y := 0; y < rowsToCopy; y++ {
		copy(newGrid[y][:colsToCopy], v.grid[y][:colsToCopy])
	}

	v.grid = newGrid
	v.width = width
	v.height = height

	v.marginTop = 0
	v.marginBottom = height - 1
	v.SetCursorPos(v.cursorY, v.cursorX)
}

// SetMargins defines the active scrolling region (1-based ANSI coordinates).
func (v *VTerm) SetMargins(top, bottom int) {
	if top == 0 {
		top = 1
	}
	if bottom == 0 {
		bottom = v.height
	}
	if top < 1 {
		top = 1
	}
	if bottom > v.height {
		bottom = v.height
	}
	if top >= bottom {
		return
	}
	v.marginTop = top - 1
	v.marginBottom = bottom - 1
	v.SetCursorPos(0, 0)
}

func (v *VTerm) placeChar(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining mark: attach to the previously written cell.
		v.attachCombining(r)
		return
	}

	if v.wrapNext {
		v.cursorX = 0
		v.LineFeed()
		v.wrapNext = false
	}

	if w == 2 && v.cursorX == v.width-1 {
		// A wide character never straddles the margin; pad and wrap first.
		v.grid[v.cursorY][v.cursorX] = blankCell(v.currentFG, v.currentBG)
		if v.autoWrapMode {
			v.cursorX = 0
			v.LineFeed()
		}
	}

	if v.cursorY >= 0 && v.cursorY < v.height && v.cursorX >= 0 && v.cursorX < v.width {
		v.grid[v.cursorY][v.cursorX] = Cell{
			Rune: r,
			FG:   v.currentFG,
			BG:   v.currentBG,
			Attr: v.currentAttr,
			Wide: w == 2,
		}
		if w == 2 && v.cursorX+1 < v.width {
			v.grid[v.cursorY][v.cursorX+1] = Cell{
				FG:   v.currentFG,
				BG:   v.currentBG,
				Attr: v.currentAttr,
				Cont: true,
			}
		}
	}

	advance := w
	if v.cursorX+advance >= v.width {
		if v.autoWrapMode {
			v.cursorX = v.width - 1
			v.wrapNext = true
		} else {
			v.cursorX = v.width - 1
		}
	} else {
		v.cursorX += advance
	}
}

func (v *VTerm) attachCombining(r rune) {
	x, y := v.cursorX, v.cursorY
	if !v.wrapNext {
		x--
	}
	if x < 0 || y < 0 || y >= v.height || x >= v.width {
		return
	}
	if v.grid[y][x].Cont && x > 0 {
		x--
	}
	if v.grid[y][x].Rune != 0 {
		v.grid[y][x].Combining = append(v.grid[y][x].Combining, r)
	}
}

func (v *VTerm) scrollUp() {
	// The evicted top line of the region enters scrollback only when the
	// region starts at the first grid row.
	if v.marginTop == 0 && v.scrollback != nil {
		v.scrollback.Push(v.grid[0])
	}
	copy(v.grid[v.marginTop:], v.grid[v.marginTop+1:v.marginBottom+1])
	newLine := make([]Cell, v.width)
	for i := range newLine {
		newLine[i] = blankCell(v.currentFG, v.currentBG)
	}
	v.grid[v.marginBottom] = newLine
}

func (v *VTerm) scrollDown(n int) {
	for i := 0; i < n; i++ {
		copy(v.grid[v.marginTop+1:v.marginBottom+1], v.grid[v.marginTop:v.marginBottom])
		newLine := make([]Cell, v.width)
		for j := range newLine {
			newLine[j] = blankCell(v.currentFG, v.currentBG)
		}
		v.grid[v.marginTop] = newLine
	}
}

func (v *VTerm) LineFeed() {
	v.wrapNext = false
	if v.cursorY == v.marginBottom {
		v.scrollUp()
	} else if v.cursorY < v.height-1 {
		v.cursorY++
	}
}

// ReverseIndex moves the cursor up one line, scrolling the region down when
// the cursor sits on the top margin.
func (v *VTerm) ReverseIndex() {
	if v.cursorY == v.marginTop {
		v.scrollDown(1)
	} else if v.cursorY > 0 {
		v.cursorY--
	}
}

func (v *VTerm) CarriageReturn() {
	v.wrapNext = false
	v.cursorX = 0
}

func (v *VTerm) Backspace() {
	v.wrapNext = false
	if v.cursorX > 0 {
		v.cursorX--
	}
}

func (v *VTerm) Tab() {
	v.wrapNext = false
	for x := v.cursorX + 1; x < v.width; x++ {
		if v.tabStops[x] {
			v.cursorX = x
			return
		}
	}
	v.cursorX = v.width - 1
}

func (v *VTerm) Bell() {
	if v.OnBell != nil {
		v.OnBell()
	}
}

func (v *VTerm) SetTitle(title string) {
	if v.TitleChanged != nil {
		v.TitleChanged(title)
	}
}

func (v *VTerm) SetCursorPos(row, col int) {
	v.wrapNext = false
	if row < 0 {
		row = 0
	}
	if row >= v.height {
		row = v.height - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.cursorY, v.cursorX = row, col
}

func (v *VTerm) SetCursorColumn(col int) {
	v.wrapNext = false
	if col < 0 {
		col = 0
	}
	if col >= v.width {
		col = v.width - 1
	}
	v.cursorX = col
}

func (v *VTerm) SetCursorRow(row int) {
	v.wrapNext = false
	if row < 0 {
		row = 0
	}
	if row >= v.height {
		row = v.height - 1
	}
	v.cursorY = row
}

func (v *VTerm) MoveCursorUp(n int) {
	v.wrapNext = false
	v.cursorY -= n
	if v.cursorY < v.marginTop {
		v.cursorY = v.marginTop
	}
}

func (v *VTerm) MoveCursorDown(n int) {
	v.wrapNext = false
	v.cursorY += n
	if v.cursorY > v.marginBottom {
		v.cursorY = v.marginBottom
	}
}

func (v *VTerm) MoveCursorForward(n int) {
	v.wrapNext = false
	v.cursorX += n
	if v.cursorX >= v.width {
		v.cursorX = v.width - 1
	}
}

func (v *VTerm) MoveCursorBackward(n int) {
	v.wrapNext = false
	v.cursorX -= n
	if v.cursorX < 0 {
		v.cursorX = 0
	}
}

func (v *VTerm) SaveCursor() {
	v.savedCursorX, v.savedCursorY = v.cursorX, v.cursorY
}

func (v *VTerm) RestoreCursor() {
	v.cursorX, v.cursorY = v.savedCursorX, v.savedCursorY
}

// ClearScreen empties the visible grid. Lines already pushed to scrollback
// stay reachable for scroll-back and search.
func (v *VTerm) ClearScreen() {
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(DefaultFG, DefaultBG)
		}
	}
}

func (v *VTerm) ClearScreenMode(mode int) {
	switch mode {
	case 0:
		v.ClearToEndOfScreen()
	case 1:
		v.clearToStartOfScreen()
	case 2:
		v.ClearScreen()
		v.SetCursorPos(0, 0)
	}
}

func (v *VTerm) ClearToEndOfScreen() {
	v.ClearLine(0)
	for y := v.cursorY + 1; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(v.currentFG, v.currentBG)
		}
	}
}

func (v *VTerm) clearToStartOfScreen() {
	v.ClearLine(1)
	for y := 0; y < v.cursorY; y++ {
		for x := 0; x < v.width; x++ {
			v.grid[y][x] = blankCell(v.currentFG, v.currentBG)
		}
	}
}

func (v *VTerm) ClearLine(mode int) {
	start, end := 0, 0
	switch mode {
	case 0:
		start, end = v.cursorX, v.width-1
	case 1:
		start, end = 0, v.cursorX
	case 2:
		start, end = 0, v.width-1
	}
	for x := start; x <= end && x < v.width; x++ {
		v.grid[v.cursorY][x] = blankCell(v.currentFG, v.currentBG)
	}
}

// EraseCharacters overwrites N characters from the cursor with space.
func (v *VTerm) EraseCharacters(n int) {
	for i := 0; i < n; i++ {
		if v.cursorX+i < v.width {
			v.grid[v.cursorY][v.cursorX+i] = blankCell(v.currentFG, v.currentBG)
		}
	}
}

// DeleteCharacters deletes N characters, shifting the rest of the line left.
func (v *VTerm) DeleteCharacters(n int) {
	if n <= 0 {
		return
	}
	line := v.grid[v.cursorY]
	start := v.cursorX
	if start+n > v.width {
		n = v.width - start
	}
	copy(line[start:], line[start+n:])
	for i := v.width - n; i < v.width; i++ {
		line[i] = blankCell(v.currentFG, v.currentBG)
	}
}

// InsertCharacters inserts N blank characters at the cursor, shifting right.
func (v *VTerm) InsertCharacters(n int) {
	if n <= 0 || v.cursorX >= v.width {
		return
	}
	line := v.grid[v.cursorY]
	if v.cursorX+n > v.width {
		n = v.width - v.cursorX
	}
	copy(line[v.cursorX+n:], line[v.cursorX:v.width-n])
	for i := v.cursorX; i < v.cursorX+n; i++ {
		line[i] = blankCell(v.currentFG, v.currentBG)
	}
}

func (v *VTerm) ClearAllTabStops() { v.tabStops = make(map[int]bool) }

// Reset restores the terminal to its initial state. Scrollback is preserved.
func (v *VTerm) Reset() {
	v.currentFG = DefaultFG
	v.currentBG = DefaultBG
	v.currentAttr = 0
	v.marginTop = 0
	v.marginBottom = v.height - 1
	v.wrapNext = false
	v.autoWrapMode = true
	v.cursorVisible = true
	v.bracketedPasteMode = false
	v.mouseReporting = false
	v.tabStops = make(map[int]bool)
	for i := 0; i < v.width; i++ {
		if i%8 == 0 {
			v.tabStops[i] = true
		}
	}
	v.ClearScreen()
	v.SetCursorPos(0, 0)
}

func (v *VTerm) ProcessCSI(command rune, params []int, private bool) {
	if private {
		v.processPrivateCSI(command, params)
		return
	}

	// Parameters are non-negative by protocol; floor anything else so the
	// movement and erase clamps below hold.
	for i, p := range params {
		if p < 0 {
			params[i] = 0
		}
	}

	param := func(i int, defaultVal int) int {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return defaultVal
	}

	switch command {
	case 'A':
		v.MoveCursorUp(param(0, 1))
	case 'B':
		v.MoveCursorDown(param(0, 1))
	case 'C':
		v.MoveCursorForward(param(0, 1))
	case 'D':
		v.MoveCursorBackward(param(0, 1))
	case 'H', 'f':
		v.SetCursorPos(param(0, 1)-1, param(1, 1)-1)
	case 'G':
		v.SetCursorColumn(param(0, 1) - 1)
	case 'd':
		v.SetCursorRow(param(0, 1) - 1)
	case 'r':
		v.SetMargins(param(0, 1), param(1, v.height))
	case 'J':
		v.ClearScreenMode(firstParam(params, 0))
	case 'K':
		v.ClearLine(firstParam(params, 0))
	case 'P':
		v.DeleteCharacters(param(0, 1))
	case 'X':
		v.EraseCharacters(param(0, 1))
	case '@':
		v.InsertCharacters(param(0, 1))
	case 'S':
		for i := 0; i < param(0, 1); i++ {
			v.scrollUp()
		}
	case 'T':
		v.scrollDown(param(0, 1))
	case 'm':
		v.ProcessSGR(params)
	case 's':
		v.SaveCursor()
	case 'u':
		v.RestoreCursor()
	case 'g':
		if firstParam(params, 0) == 3 {
			v.ClearAllTabStops()
		}
	case 'n':
		if firstParam(params, 0) == 6 {
			// Cursor position report, 1-based.
			response := fmt.Sprintf("\x1b[%d;%dR", v.cursorY+1, v.cursorX+1)
			if v.WriteToPty != nil {
				v.WriteToPty([]byte(response))
			}
		}
	}
}

func (v *VTerm) processPrivateCSI(command rune, params []int) {
	if len(params) == 0 {
		return
	}
	set := command == 'h'
	if !set && command != 'l' {
		return
	}
	for _, mode := range params {
		switch mode {
		case 7:
			v.autoWrapMode = set // DECAWM
		case 25:
			v.SetCursorVisible(set)
		case 1000, 1002, 1006:
			v.mouseReporting = set
		case 2004:
			v.bracketedPasteMode = set
		}
	}
}

func firstParam(params []int, defaultVal int) int {
	if len(params) > 0 {
		return params[0]
	}
	return defaultVal
}
