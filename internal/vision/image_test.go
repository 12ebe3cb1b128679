package vision

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	normalize(v)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("norm^2 = %v, want 1", sum)
	}

	zero := []float32{0, 0, 0}
	normalize(zero)
	for _, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed: %v", zero)
		}
	}
}

func TestDecodeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, src, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if _, err := decodeImage(jpg.Bytes()); err != nil {
		t.Errorf("decode jpeg: %v", err)
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if _, err := decodeImage(pngBuf.Bytes()); err != nil {
		t.Errorf("decode png: %v", err)
	}

	if _, err := decodeImage([]byte("not an image")); err == nil {
		t.Error("decode garbage succeeded, want error")
	}
}

func TestResizeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 20))
	dst := resizeImage(src, 4, 4)
	if b := dst.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("resized bounds = %v, want 4x4", b)
	}
}

func TestCropFaceClampsAndRejectsEmpty(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))

	crop := cropFace(src, [4]float32{-50, -50, 50, 50})
	if crop == nil {
		t.Fatal("crop = nil for a valid region")
	}
	if b := crop.Bounds(); b.Dx() > 100 || b.Dy() > 100 {
		t.Errorf("crop exceeded source bounds: %v", b)
	}

	if crop := cropFace(src, [4]float32{80, 80, 80, 80}); crop != nil {
		t.Errorf("crop of empty box = %v, want nil", crop.Bounds())
	}
}
