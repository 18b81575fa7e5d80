// Package structured extracts JSON-LD structured data blocks from a page:
// each <script type="application/ld+json"> is parsed as either a single
// object or an array of objects, and malformed entries are silently
// skipped.
package structured

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract returns the decoded JSON-LD objects found in html, in document
// order. Entries are left as map[string]any since their schema is
// arbitrary.
func Extract(htmlDoc string) ([]map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlDoc))
	if err != nil {
		return nil, err
	}

	data := []map[string]any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		var single map[string]any
		if err := json.Unmarshal([]byte(text), &single); err == nil {
			data = append(data, single)
			return
		}

		var list []map[string]any
		if err := json.Unmarshal([]byte(text), &list); err == nil {
			data = append(data, list...)
		}
	})

	return data, nil
}
