// Package handler provides HTTP request handlers for sessgate.
//
// It implements the request dispatcher (session login, the API gate, the
// archive download and the SPA shell) and the upgrade handler that
// authorizes WebSocket connections by the sessionID query value.
package handler
