package cmd

// Exit codes for the jsonrpc CLI
const (
	// ExitSuccess indicates the call completed
	ExitSuccess = 0

	// ExitError indicates a usage, input, transport error, or an RPC
	// error response with --check-status
	ExitError = 1

	// ExitTimeout indicates the call did not complete before --timeout
	ExitTimeout = 2
)
