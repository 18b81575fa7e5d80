// Package screenshot renders a page to a PNG. It first tries a headless
// go-rod/stealth capture; on any launch, navigation, or capture error it
// falls back to a deterministic placeholder PNG containing the URL as
// text, so the analyzer produces an image on machines with no browser
// installed.
package screenshot

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	defaultWidth  = 1024
	defaultHeight = 640
)

// Capture renders url and returns a PNG. It first attempts a headless
// browser capture (best effort: launch failure, navigation timeout, or
// any other error falls through silently) and otherwise returns a
// deterministic placeholder PNG naming url. Capture never fails.
func Capture(url string) []byte {
	if png, err := captureHeadless(url); err == nil {
		return png
	}
	return placeholderPNG(url, defaultWidth, defaultHeight)
}

func captureHeadless(url string) ([]byte, error) {
	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(launchURL).Timeout(30 * time.Second)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.Timeout(30 * time.Second).Navigate(url); err != nil {
		return nil, err
	}
	if err := page.Timeout(10 * time.Second).WaitStable(300 * time.Millisecond); err != nil {
		// Not fatal: capture whatever has rendered so far.
		_ = err
	}

	return page.Screenshot(true, &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng})
}

func placeholderPNG(url string, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	fg := color.RGBA{R: 220, G: 220, B: 220, A: 255}
	drawText(img, 20, 30, "Screenshot placeholder", fg)
	drawText(img, 20, 50, url, fg)

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func drawText(img draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
