package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures, non-200 responses and unreadable bodies.
	ErrTransport = errors.New("transport failure")
	// ErrDecode covers bodies that are not JSON or lack the expected payload.
	ErrDecode = errors.New("decode failure")
	// ErrUpstream is matched by every *APIError.
	ErrUpstream = errors.New("upstream api error")
)

// APIError is returned when the response envelope carries a non-zero error code.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: api error %d: %s", e.Endpoint, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: api error %d", e.Endpoint, e.Code)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUpstream
}
