package gls

import (
	"fmt"
	"net/http"
)

// ConfigError reports invalid or missing client options.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "gls config: " + e.Reason
}

// TransportError wraps a network level failure: connection refused, DNS,
// TLS, timeout.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gls %s: transport error: %s", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is returned when the service answers with a non 2xx status.
// The body of such answers is not read.
type HTTPError struct {
	Operation  string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gls %s: server responded with HTTP status %d %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
}

// ResponseParseError is returned when a 2xx answer is not valid JSON.
type ResponseParseError struct {
	Operation string
	Err       error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("gls %s: error while decoding response: %s", e.Operation, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
