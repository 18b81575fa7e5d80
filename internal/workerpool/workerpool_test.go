package workerpool

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFakeWorker writes an executable shell script standing in for
// cmd/scrape-worker, so tests can exercise process spawning and respawn
// without a real Go binary on disk.
func writeFakeWorker(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-worker.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake worker: %v", err)
	}
	return path
}

func TestNewSpawnsSizeWorkers(t *testing.T) {
	worker := writeFakeWorker(t, "#!/bin/sh\nexec cat\n")
	pool, err := New(worker, 3, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	if got := len(pool.ready); got != 3 {
		t.Errorf("ready queue depth = %d, want 3", got)
	}
}

// TestSubmitRespawnsDeadWorker points the pool at a worker that exits
// immediately without reading or writing anything, simulating a crashed
// analyzer subprocess. Submit must surface the failed exchange as an
// error to its caller without poisoning the pool: a second Submit must
// still complete (against a freshly respawned worker) rather than
// deadlock.
func TestSubmitRespawnsDeadWorker(t *testing.T) {
	worker := writeFakeWorker(t, "#!/bin/sh\nexit 0\n")
	pool, err := New(worker, 1, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	// Give the fake worker time to actually exit before dispatching a
	// job to it; the pool hands out the worker as "ready" the instant
	// its process starts, not once it exits.
	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := pool.Submit(ctx, map[string]any{"url": "https://example.com"}); err == nil {
		t.Fatal("expected Submit against a dead worker to return an error")
	}

	done := make(chan struct{})
	go func() {
		pool.Submit(ctx, map[string]any{"url": "https://example.com"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("pool deadlocked after respawning a dead worker")
	}
}

func TestSubmitRoundTrip(t *testing.T) {
	// A worker that echoes its framed input straight back out is enough
	// to exercise Submit's write/read exchange end to end.
	worker := writeFakeWorker(t, "#!/bin/sh\nexec cat\n")
	pool, err := New(worker, 1, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	request := map[string]any{"status": "success", "processing_data": map[string]any{}}
	response, err := pool.Submit(ctx, request)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if response["status"] != "success" {
		t.Errorf("status = %v, want success", response["status"])
	}
}

func TestNewClampsSizeToOne(t *testing.T) {
	worker := writeFakeWorker(t, "#!/bin/sh\nexec cat\n")
	pool, err := New(worker, 0, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer pool.Close()

	if got := len(pool.ready); got != 1 {
		t.Errorf("ready queue depth = %d, want 1 (clamped)", got)
	}
}
