package scrapepipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/cache"
	"github.com/agustinabelencapo0/scrapecoord/internal/procclient"
	"github.com/agustinabelencapo0/scrapecoord/internal/taskmanager"
	"github.com/agustinabelencapo0/scrapecoord/internal/types"
)

type stubFetcher struct {
	html string
	err  error
}

func (f *stubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	return f.html, f.err
}
func (f *stubFetcher) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFetchFailureMarksTaskFailed(t *testing.T) {
	tasks := taskmanager.New()
	record := tasks.Create("https://example.com/")

	fetchErr := &types.FetchError{URL: "https://example.com/", Err: errors.New("connection refused")}
	client := procclient.New("127.0.0.1:1", 100*time.Millisecond, 100*time.Millisecond)
	pipeline := New(&stubFetcher{err: fetchErr}, client, tasks, cache.New(time.Minute), 5, testLogger())

	pipeline.Run(context.Background(), record.TaskID, "https://example.com/")

	got, err := tasks.Get(record.TaskID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != taskmanager.StatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestRunFetchTimeoutReportsTimeoutMessage(t *testing.T) {
	tasks := taskmanager.New()
	record := tasks.Create("https://example.com/")

	fetchErr := &types.FetchError{URL: "https://example.com/", Err: errors.New("deadline exceeded"), Timeout: true}
	client := procclient.New("127.0.0.1:1", 100*time.Millisecond, 100*time.Millisecond)
	pipeline := New(&stubFetcher{err: fetchErr}, client, tasks, cache.New(time.Minute), 5, testLogger())

	pipeline.Run(context.Background(), record.TaskID, "https://example.com/")

	got, _ := tasks.Get(record.TaskID)
	if got.Error != "Timeout" {
		t.Errorf("error = %q, want Timeout", got.Error)
	}
}

func TestRunProcessingUnavailableYieldsPartialResult(t *testing.T) {
	tasks := taskmanager.New()
	record := tasks.Create("https://example.com/")
	resultCache := cache.New(time.Minute)

	html := `<html><head><title>A Title</title></head><body><h1>H</h1></body></html>`
	// Port 1 on loopback refuses connections immediately in virtually any
	// environment, simulating an unreachable processing back-end without a
	// real listener.
	client := procclient.New("127.0.0.1:1", 100*time.Millisecond, 100*time.Millisecond)
	pipeline := New(&stubFetcher{html: html}, client, tasks, resultCache, 5, testLogger())

	pipeline.Run(context.Background(), record.TaskID, "https://example.com/")

	got, err := tasks.Get(record.TaskID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != taskmanager.StatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.Result["status"] != "partial" {
		t.Errorf("result status = %v, want partial", got.Result["status"])
	}
	if _, hit := resultCache.Get("https://example.com/"); !hit {
		t.Error("expected result to be cached even when partial")
	}
}

func TestRunCancelledBeforeProcessingMarksTaskCancelled(t *testing.T) {
	tasks := taskmanager.New()
	record := tasks.Create("https://example.com/")

	html := `<html><head><title>A Title</title></head><body><h1>H</h1></body></html>`
	client := procclient.New("127.0.0.1:1", 100*time.Millisecond, 100*time.Millisecond)
	pipeline := New(&stubFetcher{html: html}, client, tasks, cache.New(time.Minute), 5, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline.Run(ctx, record.TaskID, "https://example.com/")

	got, err := tasks.Get(record.TaskID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != taskmanager.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.Error != "Cancelled" {
		t.Errorf("error = %q, want Cancelled", got.Error)
	}
}

func TestDomainExtractsHostname(t *testing.T) {
	got := Domain("https://sub.example.com:8080/path?q=1")
	if got != "sub.example.com" {
		t.Errorf("Domain = %q, want sub.example.com", got)
	}
}

func TestDomainInvalidURLReturnsEmpty(t *testing.T) {
	got := Domain("://not a url")
	if got != "" {
		t.Errorf("Domain = %q, want empty", got)
	}
}
