// Package output turns a response payload into the bytes written to stdout.
//
// A Pipeline chains processors selected by group:
//   - format: re-indent JSON with sorted keys
//   - colors: JSON syntax highlighting in a named style
//
// Console prints error and warning diagnostics to stderr.
package output
