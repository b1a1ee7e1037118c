package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"large square shrinks", 500, 500, 125, 125, 125},
		{"wide keeps aspect", 500, 200, 125, 125, 50},
		{"tall keeps aspect", 100, 500, 125, 25, 125},
		{"small left alone", 50, 50, 125, 50, 50},
		{"zero dim uses default", 300, 300, 0, DefaultMaxDim, DefaultMaxDim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(encodePNG(t, tt.w, tt.h), tt.maxDim)
			if err != nil {
				t.Fatalf("Normalize error: %v", err)
			}
			w, h := decodedSize(t, out)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if w > 125 || h > 125 {
				t.Fatalf("size %dx%d exceeds bound", w, h)
			}
		})
	}
}

func TestNormalize_AcceptsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	out, err := Normalize(buf.Bytes(), 125)
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if w, _ := decodedSize(t, out); w != 125 {
		t.Fatalf("width = %d", w)
	}
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("definitely not an image"), 125); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := Normalize(nil, 125); err != ErrEmptyImage {
		t.Fatalf("error = %v, want ErrEmptyImage", err)
	}
}
