// Package techstack fingerprints common front-end and CMS technologies
// from a page's markup by scanning for fixed substring markers in the
// lowercased HTML and in script/stylesheet URLs.
package techstack

import (
	"sort"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var markers = map[string][]string{
	"React":       {"data-reactroot", "react"},
	"Angular":     {"ng-app", "ng-controller", "angular"},
	"Vue":         {"v-bind:", "vuejs", "vue.js", "vue"},
	"Svelte":      {"svelte"},
	"jQuery":      {"jquery"},
	"Bootstrap":   {"bootstrap"},
	"TailwindCSS": {"tailwind"},
	"WordPress":   {"wp-content", "wp-json"},
	"Drupal":      {"drupal"},
	"Django":      {"django"},
	"Laravel":     {"laravel"},
	"Next.js":     {"__next", "next/dist"},
	"Nuxt.js":     {"nuxt"},
}

// Detect returns the sorted, deduplicated set of technology labels whose
// markers appear in the lowercased page text, script srcs, or stylesheet
// hrefs.
func Detect(rawHTML string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var scripts, styles []string
	for _, n := range htmlquery.Find(doc, "//script") {
		if src := htmlquery.SelectAttr(n, "src"); src != "" {
			scripts = append(scripts, src)
		}
	}
	for _, n := range htmlquery.Find(doc, "//link") {
		if href := htmlquery.SelectAttr(n, "href"); href != "" {
			styles = append(styles, href)
		}
	}

	haystack := strings.ToLower(strings.Join([]string{
		rawHTML,
		strings.Join(scripts, " "),
		strings.Join(styles, " "),
	}, " "))

	found := make(map[string]struct{})
	for label, clues := range markers {
		for _, clue := range clues {
			if strings.Contains(haystack, clue) {
				found[label] = struct{}{}
				break
			}
		}
	}

	labels := make([]string, 0, len(found))
	for label := range found {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}
