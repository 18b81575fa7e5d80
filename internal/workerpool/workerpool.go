// Package workerpool implements the bounded, isolated analyzer worker
// pool: a fixed number of long-lived cmd/scrape-worker subprocesses,
// each fed one framed analysis job at a time over its stdin/stdout via
// internal/rpcproto. Process isolation keeps a crashing analyzer from
// taking the server down with it. Dispatch round-robins over a buffered
// channel of ready workers.
package workerpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/agustinabelencapo0/scrapecoord/internal/rpcproto"
)

// Pool dispatches analysis jobs to a fixed set of worker subprocesses.
// A worker that exits unexpectedly is respawned transparently; the
// in-flight job surfaces as an error to its caller only, never crashing
// the pool.
type Pool struct {
	workerPath string
	size       int
	logger     *slog.Logger

	mu      sync.Mutex
	closed  bool
	ready   chan *worker
}

type worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

// New starts size worker subprocesses of workerPath and returns a Pool
// ready to dispatch jobs. size is clamped to at least 1.
func New(workerPath string, size int, logger *slog.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		workerPath: workerPath,
		size:       size,
		logger:     logger.With("component", "worker_pool"),
		ready:      make(chan *worker, size),
	}

	for i := 0; i < size; i++ {
		w, err := p.spawn()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("spawn worker %d: %w", i, err)
		}
		p.ready <- w
	}
	return p, nil
}

func (p *Pool) spawn() (*worker, error) {
	cmd := exec.Command(p.workerPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &worker{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

// Submit checks out a worker, sends job, and waits for its framed
// response. If the worker's process is dead or the exchange fails for any
// reason, the worker is respawned before being returned to the pool and
// the failure is reported to this call only.
func (p *Pool) Submit(ctx context.Context, job any) (map[string]any, error) {
	var w *worker
	select {
	case w = <-p.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	response, err := p.exchange(ctx, w, job)
	if err != nil {
		p.logger.Warn("worker exchange failed, respawning", "error", err)
		w.close()
		replacement, spawnErr := p.spawn()
		if spawnErr != nil {
			p.logger.Error("failed to respawn worker", "error", spawnErr)
			// Put nothing back; the pool shrinks by one rather than
			// deadlocking future callers on a permanently empty slot.
			return nil, err
		}
		w = replacement
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		w.close()
	} else {
		p.ready <- w
		p.mu.Unlock()
	}

	return response, err
}

func (p *Pool) exchange(ctx context.Context, w *worker, job any) (map[string]any, error) {
	type result struct {
		resp map[string]any
		err  error
	}
	done := make(chan result, 1)

	go func() {
		if err := rpcproto.WriteMessage(w.stdin, job); err != nil {
			done <- result{nil, err}
			return
		}
		var resp map[string]any
		err := rpcproto.ReadMessage(w.stdout, &resp)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *worker) close() {
	w.stdin.Close()
	w.stdout.Close()
	_ = w.cmd.Process.Kill()
	_ = w.cmd.Wait()
}

// Close drains the pool and terminates every worker subprocess.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	close(p.ready)
	for w := range p.ready {
		w.close()
	}
	return nil
}
