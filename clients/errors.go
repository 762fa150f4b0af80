package clients

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NetworkError means no HTTP response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means the per-call deadline elapsed before a response arrived.
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s %s", e.Timeout, e.Method, e.URL)
}

// HTTPError is a response with a failing status, or a 2xx whose envelope
// reported success=false.
type HTTPError struct {
	StatusCode int
	// Message is the envelope message, empty when the server sent none.
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// Unauthorized reports a 401.
func (e *HTTPError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// ValidationError rejects a request before it reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// UserMessage picks the text to show for err. Server-supplied messages and
// validation reasons win; everything else gets the fallback.
func UserMessage(err error, fallback string) string {
	switch e := Classify(err).(type) {
	case *HTTPError:
		if e.Message != "" {
			return e.Message
		}
		return fallback
	case *ValidationError:
		return e.Error()
	case *TimeoutError:
		return fallback
	case *NetworkError:
		return fallback
	default:
		return fallback
	}
}

// Classify unwraps err to the first client error variant it carries, or
// returns err unchanged.
func Classify(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr
	}
	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return networkErr
	}
	return err
}
