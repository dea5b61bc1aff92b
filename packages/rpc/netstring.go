package rpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxNetstringSize bounds the payload accepted by ReadNetstring.
const MaxNetstringSize = 64 << 20

var ErrNetstringFormat = errors.New("malformed netstring")

// WriteNetstring writes payload framed as "<len>:<payload>,".
func WriteNetstring(w io.Writer, payload []byte) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strconv.Itoa(len(payload)) + ":"); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	if err := bw.WriteByte(','); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadNetstring reads one netstring of at most max bytes from r.
func ReadNetstring(r *bufio.Reader, max int) ([]byte, error) {
	var n int
	digits := 0
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && digits > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if c == ':' {
			break
		}
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: unexpected %q in length", ErrNetstringFormat, c)
		}
		// no leading zeros except "0:"
		if digits == 1 && n == 0 {
			return nil, fmt.Errorf("%w: leading zero in length", ErrNetstringFormat)
		}
		n = n*10 + int(c-'0')
		digits++
		if n > max {
			return nil, fmt.Errorf("%w: length exceeds %d bytes", ErrNetstringFormat, max)
		}
	}
	if digits == 0 {
		return nil, fmt.Errorf("%w: empty length", ErrNetstringFormat)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	c, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if c != ',' {
		return nil, fmt.Errorf("%w: missing trailing comma", ErrNetstringFormat)
	}
	return payload, nil
}
