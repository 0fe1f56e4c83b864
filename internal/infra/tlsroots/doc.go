// Package tlsroots provides TLS certificate management for sessgate.
//
// This package handles TLS material loading and management:
//
//   - keypair.go: proxy key pair loading, with passphrase-protected keys
//   - watcher.go: certificate hot-reload via fsnotify
//   - roots.go: trusted roots for the backend connection
package tlsroots
