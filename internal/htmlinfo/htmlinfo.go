// Package htmlinfo extracts the basic structure and metadata the scrape
// pipeline needs before handing the page off to the processing back-end:
// title, links, meta tags, heading counts, and image references.
package htmlinfo

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BasicStructure mirrors the scraping_data fields produced from a single
// parse pass over the page.
type BasicStructure struct {
	Title       string         `json:"title"`
	Links       []string       `json:"links"`
	Structure   map[string]int `json:"structure"`
	ImagesCount int            `json:"images_count"`
	ImageURLs   []string       `json:"image_urls"`
}

// ParseBasicStructure extracts title, normalized links/images, heading
// counts, and image count from html. baseURL, if non-empty, resolves
// relative hrefs/srcs to absolute URLs.
func ParseBasicStructure(html, baseURL string) (BasicStructure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return BasicStructure{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	links := normalizeURLs(doc.Find("a[href]"), "href", baseURL)
	images := normalizeURLs(doc.Find("img[src]"), "src", baseURL)

	structure := map[string]int{
		"h1": doc.Find("h1").Length(),
		"h2": doc.Find("h2").Length(),
		"h3": doc.Find("h3").Length(),
		"h4": doc.Find("h4").Length(),
		"h5": doc.Find("h5").Length(),
		"h6": doc.Find("h6").Length(),
	}

	return BasicStructure{
		Title:       title,
		Links:       links,
		Structure:   structure,
		ImagesCount: doc.Find("img").Length(),
		ImageURLs:   images,
	}, nil
}

func normalizeURLs(sel *goquery.Selection, attr, baseURL string) []string {
	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}

	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		val, ok := s.Attr(attr)
		if !ok || val == "" {
			return
		}
		if base != nil {
			if ref, err := url.Parse(val); err == nil {
				val = base.ResolveReference(ref).String()
			}
		}
		out = append(out, val)
	})
	return out
}

// ExtractMetaTags extracts the description, keywords, og:title, and
// og:description meta tags, omitting any that are absent or empty.
func ExtractMetaTags(html string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	setIfPresent := func(key, value string) {
		if value != "" {
			meta[key] = value
		}
	}

	setIfPresent("description", metaContentByName(doc, "description"))
	setIfPresent("keywords", metaContentByName(doc, "keywords"))
	setIfPresent("og:title", metaContentByProperty(doc, "og:title", "og:title"))
	setIfPresent("og:description", metaContentByProperty(doc, "og:description", "og:description"))

	return meta, nil
}

func metaContentByName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return content
}

// metaContentByProperty checks property= first, falling back to name=;
// og: tags appear under either attribute in the wild.
func metaContentByProperty(doc *goquery.Document, property, name string) string {
	if content, ok := doc.Find(`meta[property="` + property + `"]`).First().Attr("content"); ok {
		return content
	}
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return content
}
