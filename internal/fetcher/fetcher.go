// Package fetcher implements HTML fetching for the scrape pipeline: a
// single GET with decompression, redirect following, and a total
// per-request timeout, wrapping all failures as *types.FetchError.
package fetcher

import "context"

// Fetcher retrieves the raw HTML text at a URL.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	Close() error
}
