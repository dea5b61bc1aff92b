// Package config handles configuration loading and management for jsonrpc.
//
// It provides functionality for:
//   - Loading configuration from JSON or YAML files in the working
//     directory or the per-user config directory
//   - Validating config documents against an embedded JSON Schema
//   - Default configuration values and merging
package config
