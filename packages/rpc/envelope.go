package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Version is the JSON-RPC protocol version sent with every request.
const Version = "2.0"

var (
	ErrInvalidResponse = errors.New("invalid JSON-RPC response")
	ErrIDMismatch      = errors.New("response id does not match request id")
)

// Request is a JSON-RPC request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      string `json:"id"`
}

func NewRequest(method string, params any, id string) *Request {
	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

// Encode marshals the request without HTML escaping.
func (r *Request) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Error is the error object of a JSON-RPC response.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`

	raw json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("JSONRPC %d %s", e.Code, e.Message)
}

// Value returns the error object as it was received.
func (e *Error) Value() json.RawMessage {
	if len(e.raw) > 0 {
		return e.raw
	}
	data, _ := json.Marshal(e)
	return data
}

// DecodeResponse extracts the result of a response to the request with the
// given id. An error member yields *Error.
func DecodeResponse(body []byte, id string) (json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, truncate(body, 200))
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidResponse)
	}

	if rid := res.Get("id"); rid.Exists() && rid.Type != gjson.Null && rid.String() != id {
		return nil, fmt.Errorf("%w: got %s, want %q", ErrIDMismatch, rid.Raw, id)
	}

	if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
		rpcErr := &Error{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("message").String(),
			raw:     json.RawMessage(e.Raw),
		}
		if d := e.Get("data"); d.Exists() {
			rpcErr.Data = json.RawMessage(d.Raw)
		}
		return nil, rpcErr
	}

	result := res.Get("result")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: neither result nor error present", ErrInvalidResponse)
	}
	return json.RawMessage(result.Raw), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
