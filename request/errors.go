package request

import (
	"errors"
	"fmt"
)

const (
	// MsgRequestFailed is shown when the server rejects a request without
	// saying why.
	MsgRequestFailed = "Something went wrong, failed to send request."
	// MsgUnexpected is shown for transport and decoding failures.
	MsgUnexpected = "Something went wrong!"
)

// NetworkError is a transport failure; no response was received.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message is the body's message field, or
// MsgRequestFailed when the body carried none.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// ClientError reports whether the server rejected the request itself, as
// opposed to failing to process it.
func (e *HTTPError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return MsgUnexpected
}
