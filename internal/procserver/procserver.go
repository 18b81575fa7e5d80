// Package procserver implements the processing back-end's TCP server:
// one goroutine per accepted connection, each connection handling
// exactly one framed request/response pair by submitting the decoded
// request to the worker pool and writing the framed reply back.
package procserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers"
	"github.com/agustinabelencapo0/scrapecoord/internal/rpcproto"
)

// Pool is the worker-dispatch dependency the processing server needs;
// *workerpool.Pool satisfies it. Declared here so tests can substitute a
// stub without spawning real worker subprocesses.
type Pool interface {
	Submit(ctx context.Context, job any) (map[string]any, error)
}

// Server accepts framed processing requests and dispatches them to a
// worker pool.
type Server struct {
	listener   net.Listener
	pool       Pool
	jobTimeout time.Duration
	logger     *slog.Logger
}

// New wraps an already-bound listener with pool as the analysis backend.
func New(listener net.Listener, pool Pool, jobTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		listener:   listener,
		pool:       pool,
		jobTimeout: jobTimeout,
		logger:     logger.With("component", "processing_server"),
	}
}

// Serve accepts connections until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	var req analyzers.Request
	if err := rpcproto.ReadMessage(conn, &req); err != nil {
		s.logger.Warn("read request failed", "error", err)
		_ = rpcproto.WriteMessage(conn, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	if req.URL == "" {
		_ = rpcproto.WriteMessage(conn, map[string]any{
			"status": "error",
			"error":  "missing url",
		})
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	response, err := s.pool.Submit(jobCtx, req)
	if err != nil {
		s.logger.Warn("worker pool submit failed", "url", req.URL, "error", err)
		_ = rpcproto.WriteMessage(conn, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	if err := rpcproto.WriteMessage(conn, response); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}
