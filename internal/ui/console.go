package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console implements UI on a terminal.
// Prompts read a line from in, progress is written to out, and a dialog reports
// cancellation once ctx is done (e.g. on Ctrl-C).
type Console struct {
	ctx       context.Context
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewConsole returns a Console UI. When assumeYes is set, Confirm never reads input.
func NewConsole(ctx context.Context, in io.Reader, out io.Writer, assumeYes bool) *Console {
	return &Console{
		ctx:       ctx,
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// Confirm prints message followed by a [y/N] prompt; only 'y' or 'yes' confirms.
func (c *Console) Confirm(message string) bool {
	if c.assumeYes {
		return true
	}

	_, _ = fmt.Fprintf(c.out, "%s [y/N]: ", message)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Notify prints message on its own line.
func (c *Console) Notify(message string) {
	_, _ = fmt.Fprintln(c.out, message)
}

func (c *Console) NewProgress() ProgressDialog {
	return &consoleProgress{ctx: c.ctx, out: c.out, last: -1}
}

type consoleProgress struct {
	mu     sync.Mutex
	ctx    context.Context
	out    io.Writer
	last   int
	closed bool
}

func (p *consoleProgress) Create(title string) {
	_, _ = fmt.Fprintln(p.out, title)
}

// Update only redraws when the percentage changes.
func (p *consoleProgress) Update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || percent == p.last {
		return
	}
	p.last = percent
	_, _ = fmt.Fprintf(p.out, "\r%3d%%", percent)
}

func (p *consoleProgress) IsCancelled() bool {
	if p.ctx == nil {
		return false
	}

	return p.ctx.Err() != nil
}

func (p *consoleProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.last >= 0 {
		_, _ = fmt.Fprintln(p.out)
	}
}
