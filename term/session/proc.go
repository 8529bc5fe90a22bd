// Copyright © 2025 Taskterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/session/proc.go
// Summary: Child process boundary: pty spawn, resize, signal, exit status.

package session

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Proc abstracts the child process so the event loop can be driven by a
// fake in tests.
type Proc interface {
	io.Writer
	Resize(cols, rows int) error
	// Interrupt delivers SIGINT to the child's process group.
	Interrupt() error
	// Output delivers pty output chunks; the channel closes on child exit.
	Output() <-chan []byte
	// Wait returns the child's exit error after Output closes.
	Wait() error
	Close() error
}

// PtyProc runs a command on a pseudo-terminal.
type PtyProc struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	out    chan []byte
	waitCh chan error
}

// StartShell spawns command on a pty sized cols×rows and begins reading
// its output.
func StartShell(command string, cols, rows int) (*PtyProc, error) {
	cmd := exec.Command(command)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s on pty: %w", command, err)
	}

	p := &PtyProc{
		cmd:    cmd,
		ptmx:   ptmx,
		out:    make(chan []byte, 16),
		waitCh: make(chan error, 1),
	}
	go p.readLoop()
	return p, nil
}

func (p *PtyProc) readLoop() {
	defer close(p.out)
	buf := make([]byte, 4096)
	for {
		n, err := p.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.out <- chunk
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Session: Pty read ended: %v", err)
			}
			p.waitCh <- p.cmd.Wait()
			return
		}
	}
}

func (p *PtyProc) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

func (p *PtyProc) Resize(cols, rows int) error {
	return pty.Setsize(p.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

func (p *PtyProc) Interrupt() error {
	if p.cmd.Process == nil {
		return nil
	}
	// Negative pid signals the process group the pty session leads.
	return syscall.Kill(-p.cmd.Process.Pid, syscall.SIGINT)
}

func (p *PtyProc) Output() <-chan []byte { return p.out }

func (p *PtyProc) Wait() error { return <-p.waitCh }

func (p *PtyProc) Close() error {
	if p.cmd.Process != nil {
		p.cmd.Process.Signal(syscall.SIGTERM)
	}
	return p.ptmx.Close()
}
