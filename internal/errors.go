package stattop

import (
	"errors"
	"fmt"
)

// ErrSurfaceNotFound is returned when a chart targets an element the surface does not have
var ErrSurfaceNotFound = errors.New("rendering surface not found")

// NetworkError means the request never produced a response
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError means the source answered with a non-2xx status
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

// ParseError means the response body did not match the expected shape
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing stats: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorKind names the class of a fetch error for logging
func ErrorKind(err error) string {
	var netErr *NetworkError
	var statusErr *HTTPStatusError
	var parseErr *ParseError
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "unknown"
	}
}
