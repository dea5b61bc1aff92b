package rpc

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout bounds a whole call, connect included.
	DefaultTimeout = 30 * time.Second
	// MaxHTTPResponseSize bounds the HTTP response body read.
	MaxHTTPResponseSize = MaxNetstringSize
)

// Caller performs one JSON-RPC call and returns the raw result.
type Caller interface {
	Call(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error)
}

// HTTPStatusError is returned when an HTTP endpoint answers with a non-2xx
// status and no JSON-RPC body.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

type header struct {
	key, value string
}

type Client struct {
	timeout        time.Duration
	validateSSL    bool
	proxyURL       string
	defaultHeaders map[string]string
	headers        []header
	query          neturl.Values
	username       string
	password       string
	useBasicAuth   bool
	newID          func() string
	logger         *slog.Logger

	httpClient *http.Client
	dialer     *net.Dialer
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		query:          make(neturl.Values),
		newID:          uuid.NewString,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	// Configure TLS verification
	if !c.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// Configure proxy if specified
	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	c.httpClient = &http.Client{Transport: transport}
	c.dialer = &net.Dialer{}

	return c
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithDefaultHeader sets a header sent with every HTTP request unless a
// WithHeader of the same name replaces it.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithHeader adds a request header. Repeating a key sends it repeatedly.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers = append(c.headers, header{key, value})
	}
}

// WithQueryParam appends a URL query parameter to HTTP requests.
func WithQueryParam(key, value string) ClientOption {
	return func(c *Client) {
		c.query.Add(key, value)
	}
}

func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.useBasicAuth = true
	}
}

// WithIDGenerator replaces the request id generator.
func WithIDGenerator(fn func() string) ClientOption {
	return func(c *Client) {
		c.newID = fn
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Call sends method with params to endpoint and waits for the response.
func (c *Client) Call(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error) {
	ep, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := NewRequest(method, params, c.newID())
	payload, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	log := c.logger.With("component", "rpc", "transport", ep.Transport.String(), "id", req.ID)
	log.Debug("sending request", "endpoint", ep.Address, "method", method, "bytes", len(payload))
	start := time.Now()

	var body []byte
	switch ep.Transport {
	case TransportHTTP:
		body, err = c.postHTTP(ctx, ep.Address, payload)
	default:
		body, err = c.callNetstring(ctx, ep.Address, payload)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("received response", "bytes", len(body), "elapsed", time.Since(start))
	return DecodeResponse(body, req.ID)
}

func (c *Client) callNetstring(ctx context.Context, addr string, payload []byte) ([]byte, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := WriteNetstring(conn, payload); err != nil {
		return nil, fmt.Errorf("sending request: %w", ctxErr(ctx, err))
	}
	body, err := ReadNetstring(bufio.NewReader(conn), MaxNetstringSize)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", ctxErr(ctx, err))
	}
	return body, nil
}

func (c *Client) postHTTP(ctx context.Context, rawURL string, payload []byte) ([]byte, error) {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if len(c.query) > 0 {
		q := u.Query()
		for k, vs := range c.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	seen := make(map[string]bool)
	for _, h := range c.headers {
		canonical := http.CanonicalHeaderKey(h.key)
		if seen[canonical] {
			req.Header.Add(h.key, h.value)
		} else {
			req.Header.Set(h.key, h.value)
			seen[canonical] = true
		}
	}
	if c.useBasicAuth {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxHTTPResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", ctxErr(ctx, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// An error object sent with a non-2xx status is still decoded.
		if !gjson.GetBytes(body, "error").IsObject() {
			return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
	}
	return body, nil
}

// ctxErr prefers the context's error when the context ended, so a deadline
// surfaces as context.DeadlineExceeded rather than an i/o timeout.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return err
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
