package generation

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultPreviewBlocks is the pixelation grid width for instant placeholder
// previews. Small enough to render in well under a frame.
const DefaultPreviewBlocks = 16

// PixelatedPreview renders a blocky low-resolution preview of the source
// image at the source's own size, returned as a PNG data URL. It gives the
// placeholder instant visual feedback before the first streaming frame
// arrives.
func PixelatedPreview(src image.Image, blocks int) (string, error) {
	if src == nil {
		return "", fmt.Errorf("generation: preview source cannot be nil")
	}
	if blocks < 1 {
		blocks = DefaultPreviewBlocks
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return "", fmt.Errorf("generation: preview source has zero size")
	}

	blockH := blocks * h / w
	if blockH < 1 {
		blockH = 1
	}

	// Downscale to the block grid, then blow back up without smoothing.
	small := image.NewRGBA(image.Rect(0, 0, blocks, blockH))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), src, bounds, xdraw.Over, nil)

	full := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(full, full.Bounds(), small, small.Bounds(), xdraw.Over, nil)

	return encodePNGDataURL(full)
}

// DecodePreviewSource decodes raw source bytes into an image for preview
// rendering. Format detection covers png, jpeg, gif, bmp and webp.
func DecodePreviewSource(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("generation: failed to decode preview source: %w", err)
	}
	return img, nil
}

// RenderErrorOverlay renders the substitute image for a failed generation:
// a striped pattern with the classified label, at the placeholder's size, so
// the user keeps the spatial context of what failed. Returned as a PNG data
// URL.
func RenderErrorOverlay(width, height int, label string) (string, error) {
	if width < 1 || height < 1 {
		return "", fmt.Errorf("generation: overlay size must be positive, got %dx%d", width, height)
	}

	background := color.RGBA{R: 0x2b, G: 0x2b, B: 0x30, A: 0xff}
	stripe := color.RGBA{R: 0x45, G: 0x45, B: 0x4c, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)/12%2 == 0 {
				img.Set(x, y, background)
			} else {
				img.Set(x, y, stripe)
			}
		}
	}

	if label != "" {
		drawCenteredLabel(img, label)
	}

	return encodePNGDataURL(img)
}

// drawCenteredLabel draws the label in the middle of the overlay using the
// built-in bitmap face.
func drawCenteredLabel(img *image.RGBA, label string) {
	face := basicfont.Face7x13
	bounds := img.Bounds()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xe8, G: 0xe8, B: 0xec, A: 0xff}),
		Face: face,
	}
	textWidth := d.MeasureString(label)

	x := fixed.I(bounds.Dx()/2) - textWidth/2
	y := fixed.I(bounds.Dy()/2 + face.Height/2)
	if x < 0 {
		x = fixed.I(2)
	}
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(label)
}

// encodePNGDataURL PNG-encodes an image into a data: URL.
func encodePNGDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("generation: failed to encode preview: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
