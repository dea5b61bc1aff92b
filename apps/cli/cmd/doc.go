// Package cmd implements the jsonrpc CLI using Cobra.
//
//	jsonrpc [flags] ADDR METHOD [REQUEST_ITEM...]
//
// ADDR is host:port (":3000" means localhost:3000) for the netstring TCP
// transport, or an http(s) URL for JSON-RPC over HTTP POST. Request items
// become params, headers, query parameters or file uploads depending on
// their separator.
//
// Additional commands:
//   - version: Show version information
//   - completion: Generate shell completion scripts
package cmd
