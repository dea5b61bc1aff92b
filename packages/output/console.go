package output

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Console prints diagnostics ("jsonrpc: error: ...") to a stream.
type Console struct {
	writer   io.Writer
	progName string
	noColor  bool
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer:   os.Stderr,
		progName: "jsonrpc",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

func WithProgName(name string) ConsoleOption {
	return func(c *Console) {
		c.progName = name
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(c *Console) {
		c.noColor = nc
	}
}

func (c *Console) paint(attr color.Attribute) func(a ...any) string {
	col := color.New(attr)
	if c.noColor {
		col.DisableColor()
	} else {
		col.EnableColor()
	}
	return col.SprintFunc()
}

func (c *Console) message(level string, attr color.Attribute, msg string) {
	fmt.Fprintf(c.writer, "\n%s: %s: %s\n", c.progName, c.paint(attr)(level), msg)
}

// Error prints msg at level "error".
func (c *Console) Error(msg string) {
	c.message("error", color.FgRed, msg)
}

// Warning prints msg at level "warning".
func (c *Console) Warning(msg string) {
	c.message("warning", color.FgYellow, msg)
}

// Traceback prints err followed by every error it wraps, one per line.
func (c *Console) Traceback(err error) {
	bold := c.paint(color.Bold)
	fmt.Fprintf(c.writer, "%s\n", bold("Traceback:"))
	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(c.writer, "  %*s%T: %v\n", depth*2, "", e, e)
		depth++
	}
}

// Newline writes a bare newline, as after an interrupted run.
func (c *Console) Newline() {
	fmt.Fprintln(c.writer)
}
