// Package handler provides HTTP request handlers for sessgate.
package handler

import "time"

// LoginResponse is the response body for GET /api/login.
type LoginResponse struct {
	SessionID string `json:"sessionID"`
}

// ErrorResponse is the JSON envelope of locally generated errors.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// HealthResponse is the response body of the health endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Sessions int    `json:"sessions"`
}
