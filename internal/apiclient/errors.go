package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError is a transport failure: the request never produced a usable
// response (connection refused, TLS failure, timeout, undecodable body).
type NetworkError struct {
	Op  string // "send request", "read response", "decode response"
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is a non-2xx response from the backend
type HTTPStatusError struct {
	Code int
	Body []byte
}

func (e *HTTPStatusError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request failed (status %d): %s", e.Code, msg)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Code, http.StatusText(e.Code))
}

// Message returns the server-supplied message from a JSON error body.
// The API documents {"message": ...}; the backend also answers {"error": ...}.
func (e *HTTPStatusError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(body.Error)
}

// IsUnauthorized reports whether the backend rejected the credentials
func (e *HTTPStatusError) IsUnauthorized() bool {
	return e.Code == http.StatusUnauthorized
}
