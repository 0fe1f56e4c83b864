// Package config provides server configuration for sessgate.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (ports, log settings, rate limits)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// a YAML file, SESSGATE_ prefixed environment variables and the legacy
// environment names of the workbench deployment (API_PORT, PROXY_KEY, ...).
package config
