// Command scrape-worker is the isolated subprocess entry point run by the
// worker pool: it loops reading one framed analysis job from stdin, runs
// the analyzers, and writes one framed result to stdout, until stdin is
// closed by its parent. Crashes here take down one subprocess, never the
// serving process.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers"
	"github.com/agustinabelencapo0/scrapecoord/internal/rpcproto"
)

func main() {
	for {
		var req analyzers.Request
		if err := rpcproto.ReadMessage(os.Stdin, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			// A framing/format violation leaves the stream unrecoverable;
			// exit so the pool respawns a clean worker.
			return
		}

		processingData := analyzers.Run(req)
		response := map[string]any{
			"status":          "success",
			"processing_data": processingData,
		}

		if err := rpcproto.WriteMessage(os.Stdout, response); err != nil {
			return
		}
	}
}
