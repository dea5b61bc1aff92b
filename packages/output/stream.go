package output

import (
	"io"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
)

// BuildStream returns the output chunks for a response body: the processed
// body, followed by a blank line when stdout is a terminal.
func BuildStream(e *env.Environment, p *Pipeline, body []byte) [][]byte {
	stream := [][]byte{p.ProcessBody(body)}
	if e.StdoutIsTTY {
		stream = append(stream, []byte("\n\n"))
	}
	return stream
}

// Write writes every chunk of stream to w, calling flush after each chunk
// when flush is not nil.
func Write(stream [][]byte, w io.Writer, flush func() error) error {
	for _, chunk := range stream {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		if flush != nil {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
