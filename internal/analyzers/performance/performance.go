// Package performance makes a single timed GET against a URL: one
// request, wall-clock milliseconds, and response size in kilobytes.
package performance

import (
	"io"
	"net/http"
	"time"
)

// Result is the performance field of a processing response.
type Result struct {
	LoadTimeMs  int `json:"load_time_ms"`
	TotalSizeKB int `json:"total_size_kb"`
	NumRequests int `json:"num_requests"`
}

// Measure performs one GET against rawURL and reports timing and size.
// LoadTimeMs is always at least 1.
func Measure(rawURL string) (Result, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	start := time.Now()
	resp, err := client.Get(rawURL)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	elapsedMs := int(time.Since(start).Milliseconds())
	if elapsedMs < 1 {
		elapsedMs = 1
	}

	return Result{
		LoadTimeMs:  elapsedMs,
		TotalSizeKB: len(body) / 1024,
		NumRequests: 1,
	}, nil
}
