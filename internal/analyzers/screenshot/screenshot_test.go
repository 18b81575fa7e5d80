package screenshot

import (
	"bytes"
	"image/png"
	"testing"
)

func TestPlaceholderPNGIsDecodable(t *testing.T) {
	data := placeholderPNG("https://example.com/", defaultWidth, defaultHeight)

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != defaultWidth || bounds.Dy() != defaultHeight {
		t.Errorf("placeholder = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), defaultWidth, defaultHeight)
	}
}

func TestPlaceholderPNGIsDeterministic(t *testing.T) {
	a := placeholderPNG("https://example.com/", 200, 100)
	b := placeholderPNG("https://example.com/", 200, 100)
	if !bytes.Equal(a, b) {
		t.Error("expected identical bytes for identical input")
	}
}
