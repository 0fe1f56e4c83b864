// Package logger provides structured logging for sessgate.
//
// This package wraps log/slog:
//
//   - logger.go: handler construction, level control, process default
//   - context.go: context-aware logging with request IDs
//   - redact.go: masking of session tokens and key passphrases
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Automatic sensitive data masking
//   - Context propagation for request tracing
package logger
