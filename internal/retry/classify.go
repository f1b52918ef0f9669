package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusError carries the HTTP status of a failed API call so that adapters
// built on plain net/http classify the same way as the SDK-based ones.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %.200s", e.StatusCode, e.Body)
}

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

func retryableHTTP(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		statusOverloaded:
		return true
	}
	return false
}

// Retryable reports whether err is a transient failure: resource exhaustion or
// rate limiting, service unavailability, or an exceeded deadline. It recognizes
// gRPC status codes, Google API errors, StatusError and transport timeouts.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return retryableHTTP(se.StatusCode)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return retryableHTTP(gerr.Code)
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
		return false
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	return false
}
