// Package httpserver provides the HTTP/HTTPS server for sessgate.
//
// This package wires the dispatcher and upgrade handler into a listener
// using stdlib net/http:
//
//   - router.go: upgrade split, middleware chain, operations router
//   - middleware.go: RequestID, Audit, Recover, RateLimit, security
//     headers (unrolled/secure) and CORS (go-chi/cors)
//   - server.go: plain or TLS listener with hot-reloaded certificates
package httpserver
