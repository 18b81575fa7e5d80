// Package scrapepipeline implements the scrape pipeline: the
// orchestration that turns a submitted task into a published result by
// fetching HTML, extracting basic structure and metadata, delegating
// enrichment to the processing back-end, and merging the two into the
// final result document.
package scrapepipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/agustinabelencapo0/scrapecoord/internal/cache"
	"github.com/agustinabelencapo0/scrapecoord/internal/fetcher"
	"github.com/agustinabelencapo0/scrapecoord/internal/htmlinfo"
	"github.com/agustinabelencapo0/scrapecoord/internal/procclient"
	"github.com/agustinabelencapo0/scrapecoord/internal/taskmanager"
	"github.com/agustinabelencapo0/scrapecoord/internal/types"
)

// Pipeline runs a single task from pending to a terminal state.
type Pipeline struct {
	Fetcher     fetcher.Fetcher
	ProcClient  *procclient.Client
	Tasks       *taskmanager.Manager
	Cache       *cache.ResultCache
	ImageLimit  int
	logger      *slog.Logger
}

// New creates a Pipeline. imageLimit caps how many discovered image URLs
// are forwarded to the processing back-end for thumbnailing.
func New(f fetcher.Fetcher, pc *procclient.Client, tasks *taskmanager.Manager, c *cache.ResultCache, imageLimit int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Fetcher:    f,
		ProcClient: pc,
		Tasks:      tasks,
		Cache:      c,
		ImageLimit: imageLimit,
		logger:     logger.With("component", "scrape_pipeline"),
	}
}

// Run executes the full pipeline for taskID/rawURL. It never returns an
// error to the caller: every failure is recorded on the task record
// itself, matching the "no exception escapes into the event loop"
// invariant.
func (p *Pipeline) Run(ctx context.Context, taskID, rawURL string) {
	if err := p.Tasks.SetStatus(taskID, taskmanager.StatusScraping, ""); err != nil {
		p.logger.Warn("set_status failed", "task_id", taskID, "error", err)
		return
	}

	html, err := p.Fetcher.FetchText(ctx, rawURL)
	if err != nil {
		if ctx.Err() == context.Canceled {
			p.cancel(taskID)
			return
		}
		p.fail(taskID, err)
		return
	}

	if ctx.Err() != nil {
		p.cancel(taskID)
		return
	}

	basic, err := htmlinfo.ParseBasicStructure(html, rawURL)
	if err != nil {
		p.fail(taskID, err)
		return
	}
	meta, err := htmlinfo.ExtractMetaTags(html)
	if err != nil {
		p.fail(taskID, err)
		return
	}

	scrapingData := map[string]any{
		"title":        basic.Title,
		"links":        basic.Links,
		"meta_tags":    meta,
		"structure":    basic.Structure,
		"images_count": basic.ImagesCount,
	}

	imageURLs := basic.ImageURLs
	if len(imageURLs) > p.ImageLimit {
		imageURLs = imageURLs[:p.ImageLimit]
	}

	if err := p.Tasks.SetStatus(taskID, taskmanager.StatusProcessing, ""); err != nil {
		p.logger.Warn("set_status failed", "task_id", taskID, "error", err)
		return
	}

	if ctx.Err() != nil {
		p.cancel(taskID)
		return
	}

	processingPayload := map[string]any{
		"url": rawURL,
		"tasks": map[string]bool{
			"screenshot":      true,
			"performance":     true,
			"thumbnails":      true,
			"tech_stack":      true,
			"seo":             true,
			"structured_data": true,
			"accessibility":   true,
		},
		"image_urls":    imageURLs,
		"html":          html,
		"scraping_data": scrapingData,
	}

	processingResponse, procErr := p.ProcClient.Call(ctx, processingPayload)

	result := map[string]any{
		"url":           rawURL,
		"timestamp":     time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		"scraping_data": scrapingData,
	}

	if procErr != nil {
		result["processing_data"] = map[string]any{}
		result["status"] = "partial"
		result["processing_error"] = procErr.Error()
	} else {
		processingData, _ := processingResponse["processing_data"].(map[string]any)
		if processingData == nil {
			processingData = map[string]any{}
		}
		result["processing_data"] = processingData
		if status, _ := processingResponse["status"].(string); status == "success" {
			result["status"] = "success"
		} else {
			result["status"] = "partial"
			if procError, ok := processingResponse["error"].(string); ok {
				result["processing_error"] = procError
			}
		}
	}

	if err := p.Tasks.SetResult(taskID, result); err != nil {
		p.logger.Warn("set_result failed", "task_id", taskID, "error", err)
		return
	}
	p.Cache.Set(rawURL, result)
}

func (p *Pipeline) fail(taskID string, err error) {
	message := err.Error()
	if fetchErr, ok := err.(*types.FetchError); ok && fetchErr.Timeout {
		message = "Timeout"
	}
	if setErr := p.Tasks.SetStatus(taskID, taskmanager.StatusFailed, message); setErr != nil {
		p.logger.Warn("set_status failed", "task_id", taskID, "error", setErr)
	}
}

// cancel marks taskID failed with reason "Cancelled", used when ctx is
// cancelled out from under a running pipeline during server shutdown.
func (p *Pipeline) cancel(taskID string) {
	if err := p.Tasks.SetStatus(taskID, taskmanager.StatusFailed, "Cancelled"); err != nil {
		p.logger.Warn("set_status failed", "task_id", taskID, "error", err)
	}
}

// Domain extracts the hostname used for rate limiting from rawURL.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
