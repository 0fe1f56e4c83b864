// Package handler provides HTTP request handlers for sessgate.
package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// Counter reports the number of registered sessions.
type Counter interface {
	Count() int
}

// Health returns the handler for GET /health and GET /ready, served on
// the operations listener next to /metrics.
func Health(sessions Counter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, "healthy", sessions)
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, "ready", sessions)
	})
	return mux
}

func writeHealth(w http.ResponseWriter, status string, sessions Counter) {
	resp := HealthResponse{
		Status: status,
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if sessions != nil {
		resp.Sessions = sessions.Count()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
