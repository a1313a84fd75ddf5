package domain

import "context"

// FeedFetcher retrieves the raw feed body for a query URL.
type FeedFetcher interface {
	// Fetch performs a GET and returns the full response body. It fails
	// with *NetworkError or *HTTPStatusError.
	Fetch(ctx context.Context, url string) (string, error)
}
