package accessibility

import "testing"

func TestAnalyzeCountsIssues(t *testing.T) {
	html := `<html><body>
<img src="/a.png">
<img src="/b.png" alt="described">
<a href="/x"></a>
<a href="/y">Home</a>
<button></button>
</body></html>`

	result, err := Analyze(html)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.ImagesMissingAlt) != 1 {
		t.Errorf("images_missing_alt = %d, want 1", len(result.ImagesMissingAlt))
	}
	if len(result.LinksWithoutText) != 1 {
		t.Errorf("links_without_text = %d, want 1", len(result.LinksWithoutText))
	}
	if len(result.ButtonsWithoutText) != 1 {
		t.Errorf("buttons_without_text = %d, want 1", len(result.ButtonsWithoutText))
	}
	if result.Score != 70 {
		t.Errorf("score = %d, want 70 (100 - 3*10)", result.Score)
	}
}

func TestAnalyzeScoreFloor(t *testing.T) {
	html := `<html><body>` +
		`<img src="/a.png"><img src="/b.png"><img src="/c.png"><img src="/d.png">` +
		`<img src="/e.png"><img src="/f.png"><img src="/g.png"><img src="/h.png">` +
		`<img src="/i.png"><img src="/j.png"><img src="/k.png">` +
		`</body></html>`

	result, err := Analyze(html)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0 (floored)", result.Score)
	}
}

func TestContrastWarning(t *testing.T) {
	html := `<html><body><div style="color: #fff; background-color: #fff;">hi</div></body></html>`
	result, err := Analyze(html)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.ContrastWarnings) != 1 {
		t.Errorf("contrast_warnings = %d, want 1", len(result.ContrastWarnings))
	}
}
