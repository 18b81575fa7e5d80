package procserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/rpcproto"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubPool stands in for the worker pool so procserver's connection
// handling can be exercised without spawning real worker subprocesses.
type stubPool struct {
	resp map[string]any
	err  error
}

func (p *stubPool) Submit(ctx context.Context, job any) (map[string]any, error) {
	return p.resp, p.err
}

func dialAndCall(t *testing.T, addr string, request any) map[string]any {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := rpcproto.WriteMessage(conn, request); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var response map[string]any
	if err := rpcproto.ReadMessage(conn, &response); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return response
}

func TestServeRoundTripSuccess(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	pool := &stubPool{resp: map[string]any{
		"status":          "success",
		"processing_data": map[string]any{"seo": map[string]any{"score": 42}},
	}}
	server := New(ln, pool, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	response := dialAndCall(t, ln.Addr().String(), map[string]any{"url": "https://example.com"})
	if response["status"] != "success" {
		t.Fatalf("status = %v, want success", response["status"])
	}
	data, ok := response["processing_data"].(map[string]any)
	if !ok {
		t.Fatalf("processing_data missing or wrong type: %v", response["processing_data"])
	}
	if data["seo"] == nil {
		t.Error("expected seo field to round-trip")
	}

	cancel()
	if err := <-serveErr; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestServeMissingURLReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := New(ln, &stubPool{}, time.Second, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.Serve(ctx)

	response := dialAndCall(t, ln.Addr().String(), map[string]any{})
	if response["status"] != "error" {
		t.Fatalf("status = %v, want error", response["status"])
	}
	if response["error"] != "missing url" {
		t.Errorf("error = %v, want \"missing url\"", response["error"])
	}
}

func TestServePoolFailureReturnsErrorResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	pool := &stubPool{err: errors.New("worker exchange failed")}
	server := New(ln, pool, time.Second, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.Serve(ctx)

	response := dialAndCall(t, ln.Addr().String(), map[string]any{"url": "https://example.com"})
	if response["status"] != "error" {
		t.Fatalf("status = %v, want error", response["status"])
	}
	if response["error"] != "worker exchange failed" {
		t.Errorf("error = %v, want the pool's failure message", response["error"])
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := New(ln, &stubPool{}, time.Second, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()
	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("Serve after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}
