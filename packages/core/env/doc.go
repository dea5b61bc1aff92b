// Package env describes the execution environment of a jsonrpc invocation.
//
// An Environment groups the standard streams, whether each is a terminal,
// and the color depth of the terminal. It is built once by the CLI and
// passed explicitly to the parsing and output stages, which makes it easy
// to substitute buffers in tests.
package env
