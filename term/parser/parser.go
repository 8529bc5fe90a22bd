// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser.go
// Summary: VT escape-sequence decoder feeding the virtual terminal.
// Usage: Consumed by the session loop when decoding process output.
// Notes: Keeps parsing concerns isolated from rendering.

package parser

import (
	"encoding/base64"
	"strconv"
	"unicode/utf8"
)

// maxCSIParam bounds a single CSI parameter value. xterm caps at 65535.
const maxCSIParam = 65535

type State int

const (
	StateGround State = iota
	StateEscape
	StateCSI
	StateOSC
	StateOSCEscape
	StateDCS
	StateDCSEscape
	StateCharset
	StateIgnore
)

// Parser is a byte-oriented VT100/xterm stream decoder. It holds only its own
// transient parse state; every decoded operation is applied to the attached
// VTerm. Malformed sequences move to StateIgnore and are dropped, the stream
// resumes at the next final byte.
type Parser struct {
	state        State
	vterm        *VTerm
	params       []int
	currentParam int
	private      bool
	intermediate rune
	oscBuffer    []rune
	dcsBuffer    []rune

	// Partial UTF-8 sequence carried across Parse calls, so chunk boundaries
	// never change the decoded result.
	pending []byte
}

func NewParser(v *VTerm) *Parser {
	return &Parser{
		state:     StateGround,
		vterm:     v,
		params:    make([]int, 0, 16),
		oscBuffer: make([]rune, 0, 128),
		dcsBuffer: make([]rune, 0, 128),
	}
}

// Parse processes a chunk of raw bytes from the pty.
func (p *Parser) Parse(data []byte) {
	if len(p.pending) > 0 {
		data = append(p.pending, data...)
		p.pending = nil
	}
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			if !utf8.FullRune(data) {
				// Incomplete rune at the end of the chunk; keep it for the
				// next read.
				p.pending = append(p.pending, data...)
				return
			}
		}
		p.step(r)
		data = data[size:]
	}
}

func (p *Parser) step(r rune) {
	switch p.state {
	case StateGround:
		switch r {
		case '\x1b':
			p.state = StateEscape
		case '\n':
			p.vterm.LineFeed()
		case '\r':
			p.vterm.CarriageReturn()
		case '\b':
			p.vterm.Backspace()
		case '\t':
			p.vterm.Tab()
		case '\a':
			p.vterm.Bell()
		default:
			if r >= ' ' {
				p.vterm.placeChar(r)
			}
		}
	case StateEscape:
		switch r {
		case '[':
			p.state = StateCSI
			p.params = p.params[:0]
			p.currentParam = 0
			p.private = false
			p.intermediate = 0
		case ']':
			p.state = StateOSC
			p.oscBuffer = p.oscBuffer[:0]
		case 'P':
			p.state = StateDCS
			p.dcsBuffer = p.dcsBuffer[:0]
		case '(':
			p.state = StateCharset
		case 'c':
			p.vterm.Reset()
			p.state = StateGround
		case 'M':
			p.vterm.ReverseIndex()
			p.state = StateGround
		case 'D':
			p.vterm.LineFeed()
			p.state = StateGround
		case '7':
			p.vterm.SaveCursor()
			p.state = StateGround
		case '8':
			p.vterm.RestoreCursor()
			p.state = StateGround
		case '=', '>':
			p.state = StateGround
		default:
			// Unsupported escape; drop it and resume.
			p.state = StateGround
		}
	case StateCSI:
		switch {
		case r >= '0' && r <= '9':
			// Saturate so absurdly long parameters cannot wrap negative.
			if p.currentParam < maxCSIParam {
				p.currentParam = p.currentParam*10 + int(r-'0')
			}
			if p.currentParam > maxCSIParam {
				p.currentParam = maxCSIParam
			}
		case r == ';' || r == ':':
			p.params = append(p.params, p.currentParam)
			p.currentParam = 0
		case r >= '<' && r <= '?':
			p.private = true
		case r >= ' ' && r <= '/':
			p.intermediate = r
		case r >= '@' && r <= '~':
			p.params = append(p.params, p.currentParam)
			p.vterm.ProcessCSI(r, p.params, p.private)
			p.state = StateGround
		default:
			p.state = StateIgnore
		}
	case StateOSC:
		switch r {
		case '\x07':
			p.handleOSC(p.oscBuffer)
			p.state = StateGround
		case '\x1b':
			p.state = StateOSCEscape
		default:
			p.oscBuffer = append(p.oscBuffer, r)
		}
	case StateOSCEscape:
		if r == '\\' { // ST terminator
			p.handleOSC(p.oscBuffer)
			p.state = StateGround
		} else {
			p.state = StateGround
			p.step('\x1b')
			p.step(r)
		}
	case StateDCS:
		if r == '\x1b' {
			p.state = StateDCSEscape
		} else {
			p.dcsBuffer = append(p.dcsBuffer, r)
		}
	case StateDCSEscape:
		if r == '\\' {
			// DCS payloads are accepted and discarded.
			p.state = StateGround
		} else {
			p.state = StateDCS
			p.dcsBuffer = append(p.dcsBuffer, '\x1b', r)
		}
	case StateCharset:
		p.state = StateGround
	case StateIgnore:
		if r >= '@' && r <= '~' {
			p.state = StateGround
		}
	}
}

func (p *Parser) handleOSC(sequence []rune) {
	parts := splitRunesN(sequence, ';', 2)
	if len(parts) == 0 {
		return
	}

	command, err := strconv.Atoi(string(parts[0]))
	if err != nil {
		return
	}
	if len(parts) < 2 {
		return
	}
	payload := string(parts[1])

	switch command {
	case 0, 2:
		p.vterm.SetTitle(payload)
	case 52:
		p.handleOSC52(payload)
	}
}

// handleOSC52 implements the clipboard set/query directive. Payload format is
// "<target>;<base64 data>" where "?" queries the current contents.
func (p *Parser) handleOSC52(payload string) {
	parts := splitRunesN([]rune(payload), ';', 2)
	if len(parts) != 2 {
		return
	}
	target := string(parts[0])
	data := string(parts[1])

	if data == "?" {
		if p.vterm.OnClipboardGet == nil || p.vterm.WriteToPty == nil {
			return
		}
		encoded := base64.StdEncoding.EncodeToString(p.vterm.OnClipboardGet())
		p.vterm.WriteToPty([]byte("\x1b]52;" + target + ";" + encoded + "\x1b\\"))
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	if p.vterm.OnClipboardSet != nil {
		p.vterm.OnClipboardSet(decoded)
	}
}

func splitRunesN(r []rune, sep rune, n int) [][]rune {
	if n <= 1 {
		return [][]rune{r}
	}
	res := make([][]rune, 0, n)
	start := 0
	count := 1
	for i, ru := range r {
		if ru == sep && count < n {
			res = append(res, r[start:i])
			start = i + 1
			count++
		}
	}
	res = append(res, r[start:])
	return res
}
