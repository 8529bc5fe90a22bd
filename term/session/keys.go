// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/keys.go
// Summary: Key and mouse dispatch for the three input modes.

package session

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/taskterm/term/selection"
)

func (s *Session) handleKey(ev *tcell.EventKey) {
	// Between paste markers, keystrokes are collected into one block.
	if s.pasting {
		switch ev.Key() {
		case tcell.KeyRune:
			s.pasteBuf.WriteRune(ev.Rune())
		case tcell.KeyEnter:
			s.pasteBuf.WriteByte('\n')
		case tcell.KeyTab:
			s.pasteBuf.WriteByte('\t')
		}
		return
	}

	// Any keystroke drops a finished selection highlight.
	if !s.sel.Selecting() {
		s.sel.Clear()
	}

	switch s.mode {
	case modeHistorySearch:
		s.handleHistorySearchKey(ev)
	case modeOutputSearch:
		s.handleOutputSearchKey(ev)
	default:
		s.handleEditKey(ev)
	}
}

func (s *Session) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		s.invalidate()
		s.nav.Reset()
		s.edit.Insert(string(ev.Rune()))
		s.refreshSuggestion()

	case tcell.KeyEnter:
		s.submit()

	case tcell.KeyTab:
		s.complete()

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.invalidate()
		s.nav.Reset()
		s.edit.Backspace()
		s.refreshSuggestion()

	case tcell.KeyDelete:
		s.invalidate()
		s.nav.Reset()
		s.edit.Delete()
		s.refreshSuggestion()

	case tcell.KeyLeft:
		s.invalidate()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			s.edit.MoveWordLeft()
		} else {
			s.edit.MoveLeft()
		}

	case tcell.KeyRight:
		s.invalidate()
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			s.edit.MoveWordRight()
			return
		}
		// At the end of the line, Right adopts the inline suggestion.
		if s.acceptSuggestion() {
			return
		}
		s.edit.MoveRight()

	case tcell.KeyUp:
		s.invalidate()
		if line, ok := s.nav.Up(s.edit.Text()); ok {
			s.edit.SetText(line)
			s.suggestion = ""
		}

	case tcell.KeyDown:
		s.invalidate()
		if line, ok := s.nav.Down(); ok {
			s.edit.SetText(line)
			s.suggestion = ""
		}

	case tcell.KeyHome, tcell.KeyCtrlA:
		s.invalidate()
		s.edit.MoveHome()

	case tcell.KeyEnd:
		s.invalidate()
		s.edit.MoveEnd()

	case tcell.KeyCtrlE:
		s.invalidate()
		if s.acceptSuggestion() {
			return
		}
		s.edit.MoveEnd()

	case tcell.KeyCtrlK:
		s.invalidate()
		s.nav.Reset()
		s.edit.KillToEnd()
		s.refreshSuggestion()

	case tcell.KeyCtrlY:
		s.invalidate()
		s.nav.Reset()
		s.edit.Yank()
		s.refreshSuggestion()

	case tcell.KeyCtrlR:
		s.invalidate()
		s.mode = modeHistorySearch
		s.rsearch.Start(s.edit.Text())

	case tcell.KeyCtrlF:
		s.invalidate()
		s.mode = modeOutputSearch
		s.osearch.Clear()

	case tcell.KeyCtrlV:
		s.pasteFromClipboard()

	case tcell.KeyCtrlC:
		s.interrupt()

	case tcell.KeyEscape:
		s.invalidate()
		s.sel.Clear()
		s.osearch.Clear()
		s.status = ""
	}
}

// complete drives the Tab key: first press builds the candidate list and
// inserts the unambiguous part, consecutive presses cycle.
func (s *Session) complete() {
	if s.compState != nil {
		line, cursor := s.compState.Cycle()
		s.setLineAndCursor(line, cursor)
		return
	}

	st := s.comp.Complete(s.edit.Text(), s.edit.ByteCursor())
	if st == nil {
		return
	}
	line, cursor, done := st.First()
	s.setLineAndCursor(line, cursor)
	if !done {
		s.compState = st
	}
	s.suggestion = ""
}

func (s *Session) setLineAndCursor(line string, byteCursor int) {
	s.edit.SetText(line[:byteCursor])
	tail := line[byteCursor:]
	if tail != "" {
		// Re-append the tail without moving the cursor past it.
		cur := s.edit.Cursor()
		s.edit.Insert(tail)
		for s.edit.Cursor() > cur {
			s.edit.MoveLeft()
		}
	}
}

func (s *Session) handleHistorySearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		s.rsearch.SetQuery(s.rsearch.Query() + string(ev.Rune()))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		q := s.rsearch.Query()
		if q != "" {
			s.rsearch.SetQuery(q[:len(q)-1])
		}
	case tcell.KeyCtrlR:
		s.rsearch.Next()
	case tcell.KeyEnter:
		s.edit.SetText(s.rsearch.Accept())
		s.mode = modeEdit
		s.refreshSuggestion()
	case tcell.KeyEscape, tcell.KeyCtrlG:
		s.edit.SetText(s.rsearch.Cancel())
		s.mode = modeEdit
	case tcell.KeyCtrlC:
		s.interrupt()
	}
}

func (s *Session) handleOutputSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		s.setSearchQuery(s.osearch.Query() + string(ev.Rune()))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		q := s.osearch.Query()
		if q != "" {
			s.setSearchQuery(q[:len(q)-1])
		}
	case tcell.KeyEnter, tcell.KeyCtrlN:
		s.osearch.Next()
	case tcell.KeyCtrlP:
		s.osearch.Prev()
	case tcell.KeyCtrlT:
		s.osearch.SetCaseSensitive(!s.osearch.CaseSensitive())
	case tcell.KeyCtrlX:
		if err := s.osearch.SetRegexp(!s.osearch.Regexp()); err != nil {
			s.status = err.Error()
		}
	case tcell.KeyEscape, tcell.KeyCtrlG, tcell.KeyCtrlF:
		s.mode = modeEdit
	case tcell.KeyCtrlC:
		s.interrupt()
	}
}

func (s *Session) setSearchQuery(q string) {
	if err := s.osearch.SetQuery(q); err != nil {
		s.status = err.Error()
		return
	}
	s.status = fmt.Sprintf("%d matches", len(s.osearch.Matches()))
}

// handleMouse translates gestures to selection unless the application asked
// for raw mouse reporting, in which case the bytes go to the pty.
func (s *Session) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	if s.term.MouseReporting() {
		s.forwardMouse(ev, x, y)
		return
	}

	p := selection.Point{Row: y, Col: x}
	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		if s.sel.Selecting() {
			s.sel.Extend(p)
		} else {
			mode := selection.ModeChar
			if ev.Modifiers()&tcell.ModShift != 0 {
				mode = selection.ModeLine
			}
			s.sel.Start(p, mode)
		}
	default:
		if s.sel.Selecting() {
			s.sel.Finalize(p)
			if text := s.sel.Text(s.term.Grid()); text != "" {
				if err := s.clip.Set(text); err != nil {
					s.status = fmt.Sprintf("copy failed: %v", err)
				}
			}
		}
	}
}

// forwardMouse encodes the event as an SGR (1006) mouse report.
func (s *Session) forwardMouse(ev *tcell.EventMouse, x, y int) {
	if s.proc == nil {
		return
	}
	button := -1
	release := false
	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		button = 0
	case ev.Buttons()&tcell.Button3 != 0:
		button = 1
	case ev.Buttons()&tcell.Button2 != 0:
		button = 2
	default:
		button = 0
		release = true
	}
	final := byte('M')
	if release {
		final = 'm'
	}
	s.proc.Write([]byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, x+1, y+1, final)))
}
