package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int, asPNG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if asPNG {
		png.Encode(&buf, img)
	} else {
		jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	return buf.Bytes()
}

func TestProcessCoverJPEG(t *testing.T) {
	data, mime, err := ProcessCover(bytes.NewReader(encodeTestImage(t, 200, 300, false)))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", mime)
	}
	if len(data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessCoverPNGReencoded(t *testing.T) {
	_, mime, err := ProcessCover(bytes.NewReader(encodeTestImage(t, 200, 300, true)))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected PNG input re-encoded as image/jpeg, got %s", mime)
	}
}

func TestProcessCoverDownscale(t *testing.T) {
	data, _, err := ProcessCover(bytes.NewReader(encodeTestImage(t, 1200, 2400, false)))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxWidth || bounds.Dy() > MaxHeight {
		t.Errorf("expected cover to fit %dx%d, got %dx%d", MaxWidth, MaxHeight, bounds.Dx(), bounds.Dy())
	}
	// Aspect ratio preserved: 1:2 input stays 1:2.
	if bounds.Dy() != 2*bounds.Dx() {
		t.Errorf("expected aspect ratio preserved, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessCoverNotUpscaled(t *testing.T) {
	data, _, err := ProcessCover(bytes.NewReader(encodeTestImage(t, 80, 120, false)))
	if err != nil {
		t.Fatalf("ProcessCover: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 120 {
		t.Errorf("small cover should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessCoverInvalidFormat(t *testing.T) {
	if _, _, err := ProcessCover(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessCoverGIFRejected(t *testing.T) {
	if _, _, err := ProcessCover(bytes.NewReader([]byte("GIF89a..."))); err == nil {
		t.Error("expected error for GIF")
	}
}
