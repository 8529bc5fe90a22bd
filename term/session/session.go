// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/session.go
// Summary: Single-threaded event loop tying terminal, editor and history.
//
// One goroutine owns every mutable component. Input events and pty output
// chunks feed a merged queue; queued output is always applied before the
// render that follows an event.

package session

import (
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/taskterm/term/complete"
	"github.com/framegrace/taskterm/term/editline"
	"github.com/framegrace/taskterm/term/history"
	"github.com/framegrace/taskterm/term/outsearch"
	"github.com/framegrace/taskterm/term/parser"
	"github.com/framegrace/taskterm/term/selection"
)

type mode int

const (
	modeEdit mode = iota
	modeHistorySearch
	modeOutputSearch
)

// TaskBackend is what the builtin task commands need from the task store.
type TaskBackend interface {
	Add(title string) error
	MarkDone(title string) error
	MarkInProgress(title string) error
	Summaries() []string
}

// Session wires the engine together and runs the event loop.
type Session struct {
	term   *parser.VTerm
	parser *parser.Parser
	proc   Proc

	edit    *editline.EditLine
	hist    *history.Engine
	nav     *history.Navigator
	rsearch *history.ReverseSearch
	comp    *complete.Engine
	osearch *outsearch.Search
	sel     *selection.Selection
	clip    selection.Clipboard
	tasks   TaskBackend

	compState  *complete.State
	mode       mode
	suggestion string
	status     string
	title      string

	pasting  bool
	pasteBuf strings.Builder

	events   chan tcell.Event
	onRender func()
	quit     bool
	exitErr  error
}

// Options configures a Session.
type Options struct {
	Cols, Rows int
	Scrollback int
	Proc       Proc
	History    *history.Engine
	Completer  *complete.Engine
	Clipboard  selection.Clipboard
	Tasks      TaskBackend
	// OnRender is called after each processed event, on the loop goroutine.
	OnRender func()
}

func New(opts Options) *Session {
	s := &Session{
		proc:     opts.Proc,
		edit:     editline.New(),
		hist:     opts.History,
		comp:     opts.Completer,
		clip:     opts.Clipboard,
		tasks:    opts.Tasks,
		events:   make(chan tcell.Event, 64),
		onRender: opts.OnRender,
	}
	if s.clip == nil {
		s.clip = &selection.MemoryClipboard{}
	}
	if s.comp == nil {
		s.comp = complete.NewEngine()
	}
	if s.hist == nil {
		s.hist = history.NewEngine(history.NewMemoryStore(0))
	}

	termOpts := []parser.Option{
		parser.WithTitleChangeHandler(func(t string) { s.title = t }),
		parser.WithPtyWriter(func(b []byte) {
			if s.proc != nil {
				s.proc.Write(b)
			}
		}),
	}
	if opts.Scrollback > 0 {
		termOpts = append(termOpts, parser.WithScrollback(opts.Scrollback))
	}
	s.term = parser.NewVTerm(opts.Cols, opts.Rows, termOpts...)
	s.parser = parser.NewParser(s.term)
	s.term.OnClipboardSet = func(b []byte) {
		if err := s.clip.Set(string(b)); err != nil {
			log.Printf("Session: Clipboard write failed: %v", err)
		}
	}
	s.term.OnClipboardGet = func() []byte {
		text, err := s.clip.Get()
		if err != nil {
			return nil
		}
		return []byte(text)
	}

	s.nav = history.NewNavigator(s.hist)
	s.rsearch = history.NewReverseSearch(s.hist)
	s.osearch = outsearch.NewSearch(s.term)
	s.sel = selection.New()
	return s
}

// Post queues an input event for the loop. Safe from other goroutines.
func (s *Session) Post(ev tcell.Event) {
	s.events <- ev
}

// Run drains events and process output until the child exits or a quit
// command is handled. The child's exit error is returned unconsumed.
func (s *Session) Run() error {
	for {
		var output <-chan []byte
		if s.proc != nil {
			output = s.proc.Output()
		}
		select {
		case chunk, ok := <-output:
			if !ok {
				s.exitErr = s.proc.Wait()
				s.render()
				return s.exitErr
			}
			s.applyOutput(chunk)
			s.drainOutput()
			s.render()
		case ev := <-s.events:
			s.drainOutput()
			s.handleEvent(ev)
			if s.quit {
				return s.exitErr
			}
			s.render()
		}
	}
}

// drainOutput applies queued output without blocking, so renders never show
// a state older than already-received bytes.
func (s *Session) drainOutput() {
	if s.proc == nil {
		return
	}
	for {
		select {
		case chunk, ok := <-s.proc.Output():
			if !ok {
				return
			}
			s.applyOutput(chunk)
		default:
			return
		}
	}
}

func (s *Session) applyOutput(chunk []byte) {
	s.parser.Parse(chunk)
	s.sel.Clear()
	if s.osearch.Query() != "" {
		if err := s.osearch.Refresh(); err != nil {
			log.Printf("Session: Search refresh failed: %v", err)
		}
	}
}

func (s *Session) render() {
	if s.onRender != nil {
		s.onRender()
	}
}

func (s *Session) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventResize:
		cols, rows := ev.Size()
		s.resize(cols, rows)
	case *tcell.EventPaste:
		if ev.Start() {
			s.pasting = true
			s.pasteBuf.Reset()
		} else {
			s.pasting = false
			s.Paste(s.pasteBuf.String())
		}
	}
}

func (s *Session) resize(cols, rows int) {
	s.term.Resize(cols, rows)
	if s.proc != nil {
		if err := s.proc.Resize(cols, rows); err != nil {
			log.Printf("Session: Pty resize failed: %v", err)
		}
	}
}

// submit handles the Enter key in edit mode.
func (s *Session) submit() {
	line := s.edit.Text()
	s.invalidate()
	s.nav.Reset()
	s.edit.Clear()
	s.suggestion = ""

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if s.proc != nil {
			s.proc.Write([]byte("\r"))
		}
		return
	}

	s.hist.Append(line)
	if strings.HasPrefix(trimmed, complete.BuiltinPrefix) {
		s.runBuiltin(trimmed)
		return
	}
	if s.proc != nil {
		s.proc.Write([]byte(line + "\r"))
	}
}

// interrupt kills the foreground child work and resets the editor without
// touching stored history.
func (s *Session) interrupt() {
	if s.proc != nil {
		if err := s.proc.Interrupt(); err != nil {
			log.Printf("Session: Interrupt failed: %v", err)
		}
	}
	s.edit.Clear()
	s.suggestion = ""
	s.invalidate()
	s.nav.Reset()
	s.mode = modeEdit
}

// invalidate discards completion state; called on every non-Tab edit.
func (s *Session) invalidate() {
	s.compState = nil
}

// refreshSuggestion recomputes the inline suggestion for the current line.
func (s *Session) refreshSuggestion() {
	if sugg, ok := s.hist.Suggest(s.edit.Text()); ok {
		s.suggestion = sugg
	} else {
		s.suggestion = ""
	}
}

// acceptSuggestion replaces the line with the suggestion, cursor at end.
func (s *Session) acceptSuggestion() bool {
	if s.suggestion == "" || !s.edit.AtEnd() {
		return false
	}
	s.edit.SetText(s.suggestion)
	s.suggestion = ""
	return true
}

// Paste inserts clipboard text. Under bracketed paste the block is forwarded
// to the application verbatim; otherwise it lands in the edit line as one
// atomic insert with no completion side effects.
func (s *Session) Paste(text string) {
	if text == "" {
		return
	}
	if s.term.BracketedPaste() && s.proc != nil {
		s.proc.Write([]byte("\x1b[200~" + text + "\x1b[201~"))
		return
	}
	s.invalidate()
	s.nav.Reset()
	s.edit.Insert(text)
	s.refreshSuggestion()
}

func (s *Session) pasteFromClipboard() {
	text, err := s.clip.Get()
	if err != nil {
		s.status = fmt.Sprintf("paste failed: %v", err)
		return
	}
	s.Paste(text)
}

// SetRenderFunc sets the callback invoked after each processed event. Must
// be set before Run.
func (s *Session) SetRenderFunc(fn func()) { s.onRender = fn }

// OnDegrade registers a callback fired once if history persistence fails.
func (s *Session) OnDegrade(fn func(error)) { s.hist.OnDegrade = fn }

// Term exposes the screen model for the renderer and tests.
func (s *Session) Term() *parser.VTerm { return s.term }

// Line exposes the editable line for tests.
func (s *Session) Line() *editline.EditLine { return s.edit }

// ExitErr returns the child's exit error once Run has returned.
func (s *Session) ExitErr() error { return s.exitErr }

// Close releases resources and waits for pending history writes.
func (s *Session) Close() error {
	var firstErr error
	if s.proc != nil {
		if err := s.proc.Close(); err != nil {
			firstErr = err
		}
	}
	if s.hist != nil {
		if err := s.hist.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
