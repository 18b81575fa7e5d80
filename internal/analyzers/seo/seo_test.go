package seo

import "testing"

// TestEvaluateOracle checks the full point formula on a page that earns
// everything but the robots bonus: title, an in-range description, one
// h1, a canonical link, and an og:title meta score 15+20+15+15+10+10+10=95.
func TestEvaluateOracle(t *testing.T) {
	html := `<html><head>
<title>Example title for SEO</title>
<meta name="description" content="This description is exactly sixty characters long for the test case">
<link rel="canonical" href="https://example.com/">
<meta property="og:title" content="Example OG Title">
</head><body><h1>Welcome</h1></body></html>`

	result, err := Evaluate(html, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if result.H1Count != 1 {
		t.Errorf("h1_count = %d, want 1", result.H1Count)
	}
	if !result.HasCanonical {
		t.Error("expected has_canonical = true")
	}
	if !result.HasOpenGraph {
		t.Error("expected has_open_graph = true")
	}
	if result.Score < 0 || result.Score > 100 {
		t.Errorf("score %d out of [0,100]", result.Score)
	}
	if result.Score != 95 {
		t.Errorf("score = %d, want 95", result.Score)
	}
}

func TestEvaluateEmptyPage(t *testing.T) {
	result, err := Evaluate("<html><head></head><body></body></html>", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
}

func TestEvaluateCanonicalAndRobotsCountOnTagPresenceNotAttr(t *testing.T) {
	html := `<html><head>
<title>A Title</title>
<link rel="canonical">
<meta name="robots">
</head><body></body></html>`

	result, err := Evaluate(html, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.HasCanonical {
		t.Error("expected has_canonical = true for a canonical link with no href")
	}
	if !result.HasRobots {
		t.Error("expected has_robots = true for a robots meta with no content")
	}
}

func TestEvaluateScoreCapped(t *testing.T) {
	html := `<html><head>
<title>A perfectly sized title here</title>
<meta name="description" content="This description is exactly within the fifty to one hundred sixty character window">
<link rel="canonical" href="https://example.com/">
<meta name="robots" content="index,follow">
<meta property="og:title" content="Title">
</head><body><h1>Only heading</h1></body></html>`

	result, err := Evaluate(html, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Score > 100 {
		t.Errorf("score = %d, exceeds 100", result.Score)
	}
}
