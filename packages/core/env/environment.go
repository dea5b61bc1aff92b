package env

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	// ProgName is the name used in diagnostics regardless of argv[0].
	ProgName = "jsonrpc"

	Colors256 = 256
	Colors88  = 88
)

// Environment holds the streams and terminal capabilities of a run.
type Environment struct {
	ProgName string

	// Colors is 256, 88, or 0 to disable colors completely.
	Colors int

	Stdin      io.Reader
	StdinIsTTY bool

	Stdout      io.Writer
	StdoutIsTTY bool

	Stderr      io.Writer
	StderrIsTTY bool
}

// FromOS returns the environment of the current process.
func FromOS() *Environment {
	return &Environment{
		ProgName:    ProgName,
		Colors:      ColorsFromTerm(os.Getenv("TERM")),
		Stdin:       os.Stdin,
		StdinIsTTY:  isTerminal(os.Stdin),
		Stdout:      os.Stdout,
		StdoutIsTTY: isTerminal(os.Stdout),
		Stderr:      os.Stderr,
		StderrIsTTY: isTerminal(os.Stderr),
	}
}

// ColorsFromTerm maps a TERM value to a color depth.
func ColorsFromTerm(term string) int {
	if strings.Contains(term, "256color") {
		return Colors256
	}
	return Colors88
}

// WithStdout returns a copy of e writing to w, which is never a terminal.
func (e *Environment) WithStdout(w io.Writer) *Environment {
	c := *e
	c.Stdout = w
	c.StdoutIsTTY = false
	return &c
}

// Flusher is implemented by streams that buffer output.
type Flusher interface {
	Flush() error
}

// FlushStdout flushes Stdout when it buffers. *os.File writes are
// unbuffered and need nothing.
func (e *Environment) FlushStdout() error {
	if f, ok := e.Stdout.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
