// Package seo scores a page's on-page SEO signals: title and description
// length, heading structure, canonical/robots presence, and Open Graph
// tags.
package seo

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is the seo field of a processing response.
type Result struct {
	TitleLength           int  `json:"title_length"`
	MetaDescriptionLength int  `json:"meta_description_length"`
	H1Count               int  `json:"h1_count"`
	HasCanonical          bool `json:"has_canonical"`
	HasRobots             bool `json:"has_robots"`
	HasOpenGraph          bool `json:"has_open_graph"`
	Score                 int  `json:"score"`
}

// Evaluate scores html. scrapingData, when it carries a non-empty "title"
// and "meta_tags.description", takes priority over re-deriving them from
// html.
func Evaluate(html string, scrapingData map[string]any) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, err
	}

	title := stringField(scrapingData, "title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	description := metaTag(scrapingData, "description")
	if description == "" {
		description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	}

	h1Count := doc.Find("h1").Length()
	hasCanonical := doc.Find(`link[rel="canonical"]`).Length() > 0
	hasRobots := doc.Find(`meta[name="robots"]`).Length() > 0

	hasOpenGraph := false
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if property, ok := s.Attr("property"); ok && strings.Contains(property, "og:") {
			hasOpenGraph = true
			return false
		}
		return true
	})

	score := 0
	if title != "" {
		score += 15
	}
	if l := len(title); l >= 10 && l <= 70 {
		score += 20
	}
	if description != "" {
		score += 15
	}
	if l := len(description); l >= 50 && l <= 160 {
		score += 15
	}
	if h1Count == 1 {
		score += 10
	}
	if hasCanonical {
		score += 10
	}
	if hasRobots {
		score += 5
	}
	if hasOpenGraph {
		score += 10
	}
	if score > 100 {
		score = 100
	}

	return Result{
		TitleLength:           len(title),
		MetaDescriptionLength: len(description),
		H1Count:               h1Count,
		HasCanonical:          hasCanonical,
		HasRobots:             hasRobots,
		HasOpenGraph:          hasOpenGraph,
		Score:                 score,
	}, nil
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

func metaTag(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	meta, _ := data["meta_tags"].(map[string]any)
	if meta == nil {
		if metaStr, ok := data["meta_tags"].(map[string]string); ok {
			return metaStr[key]
		}
		return ""
	}
	s, _ := meta[key].(string)
	return s
}
