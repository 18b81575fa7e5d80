// Package analyzers dispatches one processing request across the
// individual page analyzers, fault isolating each so a single analyzer
// panic or error yields only that field's neutral default and never
// poisons the rest of the response.
package analyzers

import (
	"encoding/base64"

	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/accessibility"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/performance"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/screenshot"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/seo"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/structured"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/techstack"
	"github.com/agustinabelencapo0/scrapecoord/internal/analyzers/thumbnail"
)

// ThumbnailSize and MaxImages are the thumbnail analyzer defaults: max
// dimension in pixels, and how many images to thumbnail per request.
const (
	ThumbnailSize = 160
	MaxImages     = 3
)

// Request is the decoded processing request body.
type Request struct {
	URL          string         `json:"url"`
	Tasks        map[string]bool `json:"tasks"`
	ImageURLs    []string       `json:"image_urls"`
	HTML         string         `json:"html"`
	ScrapingData map[string]any `json:"scraping_data"`
}

// Run executes every task flagged true in req.Tasks and returns the
// processing_data object. Neutral defaults (null/[]/{}) are used for any
// analyzer that is skipped, errors, or panics.
func Run(req Request) map[string]any {
	out := map[string]any{
		"screenshot":      nil,
		"performance":     nil,
		"thumbnails":      []string{},
		"tech_stack":      []string{},
		"seo":             map[string]any{},
		"structured_data": []map[string]any{},
		"accessibility":   map[string]any{},
	}

	if req.Tasks["screenshot"] {
		safely(func() {
			png := screenshot.Capture(req.URL)
			if png != nil {
				out["screenshot"] = base64.StdEncoding.EncodeToString(png)
			}
		})
	}

	if req.Tasks["performance"] {
		safely(func() {
			result, err := performance.Measure(req.URL)
			if err == nil {
				out["performance"] = result
			}
		})
	}

	if req.Tasks["thumbnails"] && len(req.ImageURLs) > 0 {
		safely(func() {
			thumbs := thumbnail.Generate(req.ImageURLs, ThumbnailSize, MaxImages)
			encoded := make([]string, 0, len(thumbs))
			for _, t := range thumbs {
				encoded = append(encoded, base64.StdEncoding.EncodeToString(t))
			}
			out["thumbnails"] = encoded
		})
	}

	if req.Tasks["tech_stack"] && req.HTML != "" {
		safely(func() {
			labels, err := techstack.Detect(req.HTML)
			if err == nil {
				out["tech_stack"] = labels
			}
		})
	}

	if req.Tasks["seo"] && req.HTML != "" {
		safely(func() {
			result, err := seo.Evaluate(req.HTML, req.ScrapingData)
			if err == nil {
				out["seo"] = result
			}
		})
	}

	if req.Tasks["structured_data"] && req.HTML != "" {
		safely(func() {
			data, err := structured.Extract(req.HTML)
			if err == nil {
				out["structured_data"] = data
			}
		})
	}

	if req.Tasks["accessibility"] && req.HTML != "" {
		safely(func() {
			result, err := accessibility.Analyze(req.HTML)
			if err == nil {
				out["accessibility"] = result
			}
		})
	}

	return out
}

// safely runs fn, swallowing any panic so one analyzer's crash can never
// take down the worker process or corrupt sibling fields.
func safely(fn func()) {
	defer func() { recover() }()
	fn()
}
