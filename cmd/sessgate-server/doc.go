// Package main provides the entry point for sessgate-server.
//
// sessgate-server is a session-gated reverse proxy. It issues opaque
// session tokens, forwards API calls and WebSocket upgrades that carry one
// to the backend, and serves the SPA shell for every other route.
//
// Usage:
//
//	sessgate-server [flags]
//	sessgate-server --config /etc/sessgate/config.yaml
//	sessgate-server --config /etc/sessgate/config.yaml check-config
//
// Settings come from defaults, the YAML file, SESSGATE_* variables and
// the legacy variables (API_HOST_ADDRESS, PROXY_PORT, ...), in that order
// of increasing priority. Command-line flags win over all of them.
package main
