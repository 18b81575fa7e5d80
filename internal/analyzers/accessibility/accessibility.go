// Package accessibility flags common WCAG-adjacent issues: images missing
// alt text, links and buttons with no accessible text, and a basic
// same-color foreground/background contrast heuristic.
package accessibility

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result is the accessibility field of a processing response.
type Result struct {
	ImagesMissingAlt   []string `json:"images_missing_alt"`
	LinksWithoutText   []string `json:"links_without_text"`
	ButtonsWithoutText []int    `json:"buttons_without_text"`
	ContrastWarnings   []string `json:"contrast_warnings"`
	Score              int      `json:"score"`
}

var colorRe = regexp.MustCompile(`color:\s*#([0-9a-f]{3,6})`)
var bgRe = regexp.MustCompile(`background(?:-color)?:\s*#([0-9a-f]{3,6})`)

// Analyze scores html, always returning empty (not nil) slices so the
// response shape is stable even when no issues are found.
func Analyze(html string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, err
	}

	imagesMissingAlt := []string{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		if strings.TrimSpace(alt) == "" {
			src, _ := s.Attr("src")
			imagesMissingAlt = append(imagesMissingAlt, src)
		}
	})

	linksWithoutText := []string{}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			href, _ := s.Attr("href")
			linksWithoutText = append(linksWithoutText, href)
		}
	})

	buttonsWithoutText := []int{}
	doc.Find("button").Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			buttonsWithoutText = append(buttonsWithoutText, i)
		}
	})

	contrastWarnings := detectContrastIssues(doc)

	total := len(imagesMissingAlt) + len(linksWithoutText) + len(buttonsWithoutText) + len(contrastWarnings)
	score := 100 - total*10
	if score < 0 {
		score = 0
	}

	return Result{
		ImagesMissingAlt:   imagesMissingAlt,
		LinksWithoutText:   linksWithoutText,
		ButtonsWithoutText: buttonsWithoutText,
		ContrastWarnings:   contrastWarnings,
		Score:              score,
	}, nil
}

func detectContrastIssues(doc *goquery.Document) []string {
	warnings := []string{}
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		style = strings.ToLower(style)

		colorMatch := colorRe.FindStringSubmatch(style)
		bgMatch := bgRe.FindStringSubmatch(style)
		if colorMatch == nil || bgMatch == nil {
			return
		}
		if colorMatch[1] == bgMatch[1] {
			tag := goquery.NodeName(s)
			warnings = append(warnings, fmt.Sprintf("Posible poco contraste en elemento: %s", tag))
		}
	})
	return warnings
}
