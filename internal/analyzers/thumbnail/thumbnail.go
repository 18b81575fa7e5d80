// Package thumbnail downloads a handful of a page's images and produces
// small PNG thumbnails, scaling with golang.org/x/image/draw's CatmullRom
// resampler.
package thumbnail

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"golang.org/x/image/draw"
)

// Generate downloads up to maxImages of imageURLs and returns their PNG
// thumbnails, each with its longest side scaled down to at most size
// pixels while preserving aspect ratio. Images that fail to download or
// decode are skipped.
func Generate(imageURLs []string, size, maxImages int) [][]byte {
	client := &http.Client{Timeout: 20 * time.Second}

	urls := imageURLs
	if len(urls) > maxImages {
		urls = urls[:maxImages]
	}

	var thumbs [][]byte
	for _, url := range urls {
		thumb, err := fetchAndResize(client, url, size)
		if err != nil {
			continue
		}
		thumbs = append(thumbs, thumb)
	}
	return thumbs
}

func fetchAndResize(client *http.Client, url string, size int) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	resized := resize(img, size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resize scales img so its longest side is at most maxDim, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func resize(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	ratio := float64(w) / float64(h)
	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = int(float64(maxDim) / ratio)
	} else {
		newH = maxDim
		newW = int(float64(maxDim) * ratio)
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
