package generation

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		t.Fatalf("not a png data URL: %.40s", dataURL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("png decode failed: %v", err)
	}
	return img
}

func TestPixelatedPreviewKeepsSourceSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), A: 0xff})
		}
	}

	dataURL, err := PixelatedPreview(src, 8)
	if err != nil {
		t.Fatalf("PixelatedPreview failed: %v", err)
	}

	out := decodeDataURL(t, dataURL)
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 48 {
		t.Errorf("preview size = %dx%d, want 64x48",
			out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestPixelatedPreviewNilSource(t *testing.T) {
	if _, err := PixelatedPreview(nil, 8); err == nil {
		t.Error("expected error for nil source")
	}
}

func TestRenderErrorOverlay(t *testing.T) {
	dataURL, err := RenderErrorOverlay(200, 120, "Content Blocked")
	if err != nil {
		t.Fatalf("RenderErrorOverlay failed: %v", err)
	}

	out := decodeDataURL(t, dataURL)
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 120 {
		t.Errorf("overlay size = %dx%d, want 200x120",
			out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestRenderErrorOverlayRejectsBadSize(t *testing.T) {
	if _, err := RenderErrorOverlay(0, 100, "x"); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := RenderErrorOverlay(100, -1, "x"); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestDecodePreviewSourceGarbage(t *testing.T) {
	if _, err := DecodePreviewSource([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
}
