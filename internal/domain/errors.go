package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the feed body is empty or whitespace.
// Callers treat it as "no data" rather than a failure.
var ErrEmptyInput = errors.New("empty feed body")

// NetworkError wraps a failure to reach the feed: an unparseable URL, a
// dial failure, a timeout, or an interrupted transfer.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a deadline.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

// HTTPStatusError is returned when the feed answers with a non-2xx status.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("feed returned status %d", e.Code)
}

// MalformedFeedError is returned when the body is not a JSON object with a
// top-level "features" array.
type MalformedFeedError struct {
	Reason string
	Err    error
}

func (e *MalformedFeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed feed: %s: %v", e.Reason, e.Err)
	}
	return "malformed feed: " + e.Reason
}

func (e *MalformedFeedError) Unwrap() error { return e.Err }
