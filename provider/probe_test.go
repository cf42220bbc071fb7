package provider

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

// pngBytes renders a small solid PNG for probe tests.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 80, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestProbeImageURLExtractsDimensions(t *testing.T) {
	data := pngBytes(t, 640, 480)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	dims, err := ProbeImageURL(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("ProbeImageURL failed: %v", err)
	}
	if dims.Width != 640 || dims.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", dims.Width, dims.Height)
	}
}

func TestProbeImageURL404IsNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := ProbeImageURL(context.Background(), server.Client(), server.URL+"/gone.png")
	if Classify(err) != ErrNotFound {
		t.Errorf("classification = %v, want ErrNotFound (err: %v)", Classify(err), err)
	}
}

func TestProbeImageURLGarbageIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not an image"))
	}))
	defer server.Close()

	_, err := ProbeImageURL(context.Background(), server.Client(), server.URL)
	if Classify(err) != ErrServer {
		t.Errorf("classification = %v, want ErrServer (err: %v)", Classify(err), err)
	}
}

func TestProbeImageURLUnreachable(t *testing.T) {
	_, err := ProbeImageURL(context.Background(), http.DefaultClient, "http://127.0.0.1:1/nothing.png")
	if err == nil {
		t.Fatal("expected error for unreachable URL")
	}
}

func TestProbeVideoURLAcceptsVideoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte{0x00, 0x00, 0x00, 0x18})
	}))
	defer server.Close()

	if err := ProbeVideoURL(context.Background(), server.Client(), server.URL); err != nil {
		t.Errorf("ProbeVideoURL failed: %v", err)
	}
}

func TestProbeVideoURLRejectsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>expired link</html>"))
	}))
	defer server.Close()

	if err := ProbeVideoURL(context.Background(), server.Client(), server.URL); err == nil {
		t.Error("expected error for HTML response")
	}
}

func TestClassifyUnknownError(t *testing.T) {
	if kind := Classify(context.Canceled); kind != ErrUnknown {
		t.Errorf("Classify(context.Canceled) = %v, want ErrUnknown", kind)
	}
	err := &Error{Kind: ErrContentModeration, Message: "blocked"}
	if kind := Classify(err); kind != ErrContentModeration {
		t.Errorf("Classify = %v, want ErrContentModeration", kind)
	}
}
