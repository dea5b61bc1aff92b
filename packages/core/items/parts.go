package items

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Bucket is one of the four targets an item is stored into.
type Bucket int

const (
	BucketHeaders Bucket = iota
	BucketParams
	BucketData
	BucketFiles
)

func (b Bucket) String() string {
	switch b {
	case BucketHeaders:
		return "headers"
	case BucketParams:
		return "params"
	case BucketData:
		return "data"
	case BucketFiles:
		return "files"
	default:
		return "unknown"
	}
}

// File is a file attachment read from a KEY@PATH item.
type File struct {
	Name    string
	Content []byte
}

// RequestParts is the request description assembled from items.
type RequestParts struct {
	Headers *ParamDict
	Params  *ParamDict
	Data    *ParamDict
	Files   *ParamDict

	// Sources lists every file path read while classifying, in order.
	Sources []string

	body    any
	hasBody bool
}

func NewRequestParts() *RequestParts {
	return &RequestParts{
		Headers: NewParamDict(),
		Params:  NewParamDict(),
		Data:    NewParamDict(),
		Files:   NewParamDict(),
	}
}

func (rp *RequestParts) bucket(b Bucket) *ParamDict {
	switch b {
	case BucketHeaders:
		return rp.Headers
	case BucketParams:
		return rp.Params
	case BucketData:
		return rp.Data
	case BucketFiles:
		return rp.Files
	}
	panic(fmt.Sprintf("items: unknown bucket %d", b))
}

// Add stores item into bucket b.
func (rp *RequestParts) Add(b Bucket, item Item) {
	rp.bucket(b).Set(item.Key, item.Value)
}

// HasBody reports whether a body was read with ReadBody.
func (rp *RequestParts) HasBody() bool {
	return rp.hasBody
}

// RPCParams returns the value sent as the call's params: the body read with
// ReadBody when present, otherwise the data fields, or nil when neither
// was supplied.
func (rp *RequestParts) RPCParams() any {
	if rp.hasBody {
		return rp.body
	}
	if rp.Data.Len() > 0 {
		return rp.Data
	}
	return nil
}

// ReadBody reads a JSON request body from r. Supplying a body when data
// fields were already given by items is an error.
func (rp *RequestParts) ReadBody(r io.Reader) error {
	if rp.Data.Len() > 0 {
		return &ParseError{
			Kind:    BodyConflict,
			Message: "Request body (from stdin or a file) and request data (key=value) cannot be mixed.",
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}

	v, err := decodeJSON(data)
	if err != nil {
		return &ParseError{
			Kind:    InvalidBody,
			Message: fmt.Sprintf("Failed to parse request body (from stdin or a file):\n%s", data),
			Err:     err,
		}
	}

	rp.body = v
	rp.hasBody = true
	return nil
}

// decodeJSON validates exactly one JSON value and keeps it verbatim as a
// json.RawMessage, preserving object key order and number text. A
// top-level array becomes a []any of its raw elements so that a repeated
// key can append to it.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of JSON input")
		}
		return nil, err
	}
	if rest := bytes.TrimSpace(data[dec.InputOffset():]); len(rest) > 0 {
		return nil, fmt.Errorf("invalid character %q after top-level value at offset %d", rest[0], dec.InputOffset())
	}

	if raw[0] != '[' {
		return raw, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	seq := make([]any, len(elems))
	for i, e := range elems {
		seq[i] = e
	}
	return seq, nil
}
