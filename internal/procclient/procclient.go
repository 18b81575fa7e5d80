// Package procclient implements the processing RPC client: the
// front-end's side of the length-prefixed TCP call into the processing
// back-end. Any failure to connect, frame, or decode is folded into a
// single ProcessingUnavailableError, since the scrape pipeline treats all
// of these the same way (non-fatal, partial result).
package procclient

import (
	"context"
	"net"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/rpcproto"
	"github.com/agustinabelencapo0/scrapecoord/internal/types"
)

// Client calls a single processing back-end over TCP.
type Client struct {
	Addr           string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// New creates a Client targeting addr ("host:port").
func New(addr string, connectTimeout, readTimeout time.Duration) *Client {
	return &Client{Addr: addr, ConnectTimeout: connectTimeout, ReadTimeout: readTimeout}
}

// Call sends request and returns the decoded response. Every failure mode
// (dial failure, framing violation, bad JSON, timeout) surfaces as a
// *types.ProcessingUnavailableError so callers can treat the processing
// back-end uniformly as "unreachable".
func (c *Client) Call(ctx context.Context, request any) (map[string]any, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", c.Addr)
	if err != nil {
		return nil, &types.ProcessingUnavailableError{Cause: err.Error()}
	}
	defer conn.Close()

	deadline := time.Now().Add(c.ReadTimeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &types.ProcessingUnavailableError{Cause: err.Error()}
	}

	if err := rpcproto.WriteMessage(conn, request); err != nil {
		return nil, &types.ProcessingUnavailableError{Cause: err.Error()}
	}

	var response map[string]any
	if err := rpcproto.ReadMessage(conn, &response); err != nil {
		return nil, &types.ProcessingUnavailableError{Cause: err.Error()}
	}

	return response, nil
}
