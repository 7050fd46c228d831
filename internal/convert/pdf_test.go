package convert_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/helsedok/dokjournal/internal/convert"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newConverter() *convert.Image2PDF {
	logger := discardLogger()
	return convert.NewImage2PDF(convert.NewScaler(logger), logger)
}

func TestConvert_ProducesPDF(t *testing.T) {
	tests := []struct {
		name        string
		data        func(t *testing.T) []byte
		contentType string
	}{
		{"png image", func(t *testing.T) []byte { return encodePNG(t, 100, 150) }, "image/png"},
		{"jpeg image", func(t *testing.T) []byte { return encodeJPEG(t, 100, 150) }, "image/jpeg"},
		{"landscape jpeg", func(t *testing.T) []byte { return encodeJPEG(t, 900, 300) }, "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf, err := newConverter().Convert(tt.data(t), tt.contentType)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			if !bytes.HasPrefix(pdf, []byte("%PDF")) {
				t.Error("Convert() output is not a PDF document")
			}
		})
	}
}

func TestConvert_UnsupportedContentType(t *testing.T) {
	_, err := newConverter().Convert([]byte("irrelevant"), "image/tiff")
	if err == nil {
		t.Fatal("Convert() error = nil, want ConversionError")
	}

	var conversionErr *convert.ConversionError
	if !errors.As(err, &conversionErr) {
		t.Fatalf("Convert() error = %T, want *ConversionError", err)
	}
	if conversionErr.ContentType != "image/tiff" {
		t.Errorf("ConversionError.ContentType = %q, want %q", conversionErr.ContentType, "image/tiff")
	}
	if !errors.Is(err, convert.ErrUnsupportedMediaType) {
		t.Errorf("Convert() error = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestConvert_UndecodableImageKeepsContentType(t *testing.T) {
	_, err := newConverter().Convert([]byte("definitely not a png"), "image/png")
	if err == nil {
		t.Fatal("Convert() error = nil, want ConversionError")
	}

	var conversionErr *convert.ConversionError
	if !errors.As(err, &conversionErr) {
		t.Fatalf("Convert() error = %T, want *ConversionError", err)
	}
	if conversionErr.ContentType != "image/png" {
		t.Errorf("ConversionError.ContentType = %q, want %q", conversionErr.ContentType, "image/png")
	}
	if conversionErr.Unwrap() == nil {
		t.Error("ConversionError.Unwrap() = nil, want underlying cause")
	}
}
