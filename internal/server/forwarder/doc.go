// Package forwarder relays HTTP requests and WebSocket upgrades to the
// backend.
//
// A Forwarder is bound to the backend at construction and keeps one
// reverse proxy per (traffic kind, TLS verification) pair, each with its
// own transport so that connection pools are not shared across
// verification modes.
//
// Forwarding failures never reach the client as an HTTP response: the
// failure is logged and counted and the handler is aborted with
// http.ErrAbortHandler, which makes the server drop the connection.
package forwarder
