// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/parser_test.go
// Summary: Decoder tests: chunking invariance, recovery, OSC handling.

package parser

import (
	"encoding/base64"
	"strings"
	"testing"
)

func feed(p *Parser, s string) {
	p.Parse([]byte(s))
}

func gridText(v *VTerm) []string {
	grid := v.Grid()
	out := make([]string, len(grid))
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(c.Text())
		}
		out[y] = strings.TrimRight(b.String(), " ")
	}
	return out
}

func TestParse_PlainText(t *testing.T) {
	v := NewVTerm(20, 4)
	p := NewParser(v)
	feed(p, "hello")

	if got := gridText(v)[0]; got != "hello" {
		t.Errorf("expected first row %q, got %q", "hello", got)
	}
	x, y := v.Cursor()
	if x != 5 || y != 0 {
		t.Errorf("expected cursor (5,0), got (%d,%d)", x, y)
	}
}

func TestParse_ChunkingNeverChangesResult(t *testing.T) {
	input := "ab\x1b[31mred\x1b[0m\r\nline2 \xc3\xa9\xe4\xb8\xad\x1b[2;3HX\x1b[1;32;44mY"

	for chunk := 1; chunk <= len(input); chunk++ {
		v := NewVTerm(20, 5)
		p := NewParser(v)
		for i := 0; i < len(input); i += chunk {
			end := i + chunk
			if end > len(input) {
				end = len(input)
			}
			p.Parse([]byte(input[i:end]))
		}

		ref := NewVTerm(20, 5)
		refP := NewParser(ref)
		refP.Parse([]byte(input))

		if want, got := gridText(ref), gridText(v); strings.Join(want, "\n") != strings.Join(got, "\n") {
			t.Fatalf("chunk size %d changed grid:\nwant %q\ngot  %q", chunk, want, got)
		}
		wx, wy := ref.Cursor()
		gx, gy := v.Cursor()
		if wx != gx || wy != gy {
			t.Fatalf("chunk size %d changed cursor: want (%d,%d), got (%d,%d)", chunk, wx, wy, gx, gy)
		}
	}
}

func TestParse_UTF8AcrossChunks(t *testing.T) {
	v := NewVTerm(10, 2)
	p := NewParser(v)
	// é is 0xC3 0xA9; split it across two reads.
	p.Parse([]byte{'a', 0xC3})
	p.Parse([]byte{0xA9, 'b'})

	if got := gridText(v)[0]; got != "aéb" {
		t.Errorf("expected %q, got %q", "aéb", got)
	}
}

func TestParse_OverlongCSIParamClamped(t *testing.T) {
	v := NewVTerm(10, 4)
	p := NewParser(v)
	// The parameter overflows int64; accumulation must saturate so the
	// move and erase stay inside the grid.
	feed(p, "\x1b[18446744073709551611B\x1b[K")

	x, y := v.Cursor()
	if x != 0 || y != 3 {
		t.Errorf("expected cursor clamped to (0,3), got (%d,%d)", x, y)
	}
}

func TestParse_MalformedCSIDropsAndRecovers(t *testing.T) {
	v := NewVTerm(20, 2)
	p := NewParser(v)
	// A control byte inside CSI is invalid; the sequence is dropped and
	// parsing resumes with the following printable text.
	feed(p, "a\x1b[12\x01Zok")

	if got := gridText(v)[0]; got != "aok" {
		t.Errorf("expected %q after recovery, got %q", "aok", got)
	}
}

func TestParse_UnknownSGRIgnoredWithoutDesync(t *testing.T) {
	v := NewVTerm(20, 2)
	p := NewParser(v)
	feed(p, "\x1b[95;999mX\x1b[31mY")

	row := v.Grid()[0]
	if row[0].Rune != 'X' || row[1].Rune != 'Y' {
		t.Fatalf("expected XY, got %q%q", row[0].Rune, row[1].Rune)
	}
	if row[1].FG != (Color{Mode: ColorModeStandard, Value: 1}) {
		t.Errorf("expected red FG on Y, got %+v", row[1].FG)
	}
}

func TestParse_ExtendedColors(t *testing.T) {
	v := NewVTerm(20, 2)
	p := NewParser(v)
	feed(p, "\x1b[38;5;208ma\x1b[48;2;10;20;30mb")

	row := v.Grid()[0]
	if row[0].FG != (Color{Mode: ColorMode256, Value: 208}) {
		t.Errorf("expected 256-color FG 208, got %+v", row[0].FG)
	}
	if row[1].BG != (Color{Mode: ColorModeRGB, R: 10, G: 20, B: 30}) {
		t.Errorf("expected RGB BG 10/20/30, got %+v", row[1].BG)
	}
}

func TestParse_OSCTitle(t *testing.T) {
	v := NewVTerm(10, 2)
	var title string
	v.TitleChanged = func(s string) { title = s }
	p := NewParser(v)
	feed(p, "\x1b]0;my title\x07after")

	if title != "my title" {
		t.Errorf("expected title %q, got %q", "my title", title)
	}
	if got := gridText(v)[0]; got != "after" {
		t.Errorf("expected %q after OSC, got %q", "after", got)
	}
}

func TestParse_OSC52SetClipboard(t *testing.T) {
	v := NewVTerm(10, 2)
	var setData []byte
	v.OnClipboardSet = func(data []byte) { setData = data }
	p := NewParser(v)

	encoded := base64.StdEncoding.EncodeToString([]byte("Hello, World!"))
	feed(p, "\x1b]52;c;"+encoded+"\x07")

	if string(setData) != "Hello, World!" {
		t.Errorf("expected clipboard %q, got %q", "Hello, World!", string(setData))
	}
}

func TestParse_OSC52QueryClipboard(t *testing.T) {
	v := NewVTerm(10, 2)
	v.OnClipboardGet = func() []byte { return []byte("stuff") }
	var ptyOut []byte
	v.WriteToPty = func(b []byte) { ptyOut = append(ptyOut, b...) }
	p := NewParser(v)

	feed(p, "\x1b]52;c;?\x07")

	want := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte("stuff")) + "\x1b\\"
	if string(ptyOut) != want {
		t.Errorf("expected response %q, got %q", want, string(ptyOut))
	}
}

func TestParse_DSRCursorReport(t *testing.T) {
	v := NewVTerm(20, 5)
	var ptyOut []byte
	v.WriteToPty = func(b []byte) { ptyOut = append(ptyOut, b...) }
	p := NewParser(v)

	feed(p, "\x1b[3;7H\x1b[6n")

	if string(ptyOut) != "\x1b[3;7R" {
		t.Errorf("expected cursor report \\x1b[3;7R, got %q", string(ptyOut))
	}
}

func TestParse_BracketedPasteAndMouseFlags(t *testing.T) {
	v := NewVTerm(10, 2)
	p := NewParser(v)

	feed(p, "\x1b[?2004h\x1b[?1002h")
	if !v.BracketedPaste() {
		t.Error("expected bracketed paste enabled")
	}
	if !v.MouseReporting() {
		t.Error("expected mouse reporting enabled")
	}

	feed(p, "\x1b[?2004l\x1b[?1002l")
	if v.BracketedPaste() {
		t.Error("expected bracketed paste disabled")
	}
	if v.MouseReporting() {
		t.Error("expected mouse reporting disabled")
	}
}

func TestParse_DCSConsumedSilently(t *testing.T) {
	v := NewVTerm(10, 2)
	p := NewParser(v)
	feed(p, "\x1bPsome payload\x1b\\ok")

	if got := gridText(v)[0]; got != "ok" {
		t.Errorf("expected %q after DCS, got %q", "ok", got)
	}
}
