package rpc

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Transport selects how a request reaches the server.
type Transport int

const (
	TransportTCP Transport = iota
	TransportHTTP
)

func (t Transport) String() string {
	if t == TransportHTTP {
		return "http"
	}
	return "tcp"
}

// Endpoint is a parsed call address.
type Endpoint struct {
	Transport Transport
	// Address is "host:port" for TCP and the full URL for HTTP.
	Address string
}

// ParseEndpoint interprets addr. ":3000" is shorthand for "localhost:3000".
func ParseEndpoint(addr string) (Endpoint, error) {
	switch {
	case strings.HasPrefix(addr, "http://"), strings.HasPrefix(addr, "https://"):
		u, err := url.Parse(addr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", addr, err)
		}
		if u.Host == "" {
			return Endpoint{}, fmt.Errorf("invalid endpoint %q: missing host", addr)
		}
		return Endpoint{Transport: TransportHTTP, Address: u.String()}, nil
	case strings.HasPrefix(addr, "tcp://"):
		addr = strings.TrimPrefix(addr, "tcp://")
	}

	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", addr, err)
	}
	if host == "" || port == "" {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: host and port required", addr)
	}
	return Endpoint{Transport: TransportTCP, Address: net.JoinHostPort(host, port)}, nil
}
