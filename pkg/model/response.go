package model

import (
	"time"
)

// NetworkErrorText is the status text of a response that never reached a server.
const NetworkErrorText = "Network Error"

// Response summarizes one HTTP exchange. It is never persisted.
type Response struct {
	Status     int               `json:"status"`     // 0 when the exchange failed
	StatusText string            `json:"statusText"` // "OK", "Not Found", "Network Error"
	Headers    map[string]string `json:"headers"`    // Multi-valued headers joined with ", "
	Data       any               `json:"data"`       // Parsed JSON, or the raw text
	Time       int64             `json:"time"`       // Elapsed milliseconds
	Size       int               `json:"size"`       // Bytes of the serialized body
}

// NetworkError builds the response returned when no exchange completed.
func NetworkError(err error, elapsed time.Duration) Response {
	return Response{
		Status:     0,
		StatusText: NetworkErrorText,
		Headers:    map[string]string{},
		Data:       map[string]any{"error": err.Error()},
		Time:       elapsed.Milliseconds(),
		Size:       0,
	}
}

// Failed reports whether the exchange never completed.
func (r Response) Failed() bool {
	return r.Status == 0
}

// ErrorMessage returns the failure message of a network error response.
func (r Response) ErrorMessage() string {
	if !r.Failed() {
		return ""
	}
	if m, ok := r.Data.(map[string]any); ok {
		if s, ok := m["error"].(string); ok {
			return s
		}
	}
	return ""
}
