// Package rpc is a minimal JSON-RPC 2.0 client used by the jsonrpc CLI.
//
// Two transports are supported, chosen by the endpoint:
//   - netstring-framed JSON over TCP ("host:port", ":port", "tcp://host:port")
//   - JSON over HTTP POST ("http://..." and "https://...")
//
// A response carrying an "error" member is returned as *Error.
package rpc
