package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// A4 page dimensions in PDF points, portrait orientation.
const (
	a4Width  = 595
	a4Height = 841
)

const jpegQuality = 90

// Scaler fits raw images onto an A4 portrait page. Landscape images are
// rotated 90 degrees, oversized images are scaled down preserving aspect
// ratio. Images that already fit are returned byte-identical to avoid
// re-encoding artifacts.
type Scaler struct {
	logger *slog.Logger
}

// NewScaler creates a scaler logging through the provided logger.
func NewScaler(logger *slog.Logger) *Scaler {
	return &Scaler{logger: logger.With("component", "scaler")}
}

// ScaleToPage decodes data, rotates landscape images to portrait, scales the
// result down to fit an A4 page, and re-encodes it in the requested format
// ("png" or "jpeg"). If the image is portrait-oriented and already fits the
// page, the original bytes are returned unchanged.
func (s *Scaler) ScaleToPage(data []byte, format string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ConversionError{ContentType: "image/" + format, Err: fmt.Errorf("decode image: %w", err)}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rotate := width > height

	s.logger.Debug("scaling image to page",
		"width", width,
		"height", height,
		"rotate", rotate,
	)

	if rotate {
		img = rotatePortrait(img)
		width, height = height, width
	}

	targetWidth, targetHeight := fitToPage(width, height)

	if !rotate && targetWidth == width && targetHeight == height {
		s.logger.Debug("image already fits page, keeping original bytes")
		return data, nil
	}

	if targetWidth != width || targetHeight != height {
		img = resize(img, targetWidth, targetHeight)
	}

	out, err := encode(img, format)
	if err != nil {
		return nil, &ConversionError{ContentType: "image/" + format, Err: err}
	}
	return out, nil
}

// fitToPage computes the largest dimensions not exceeding the A4 page while
// preserving the aspect ratio. The second pass only ever shrinks further.
func fitToPage(width, height int) (int, int) {
	newWidth, newHeight := width, height

	if newWidth > a4Width {
		newWidth = a4Width
		newHeight = newWidth * height / width
	}

	if newHeight > a4Height {
		newHeight = a4Height
		newWidth = newHeight * width / height
	}

	return newWidth, newHeight
}

// rotatePortrait rotates img 90 degrees clockwise using bilinear
// interpolation, swapping width and height.
func rotatePortrait(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, height, width))

	// Maps source (x, y) to destination (height-y, x).
	m := f64.Aff3{
		0, -1, float64(height),
		1, 0, 0,
	}
	draw.BiLinear.Transform(dst, m, img, bounds, draw.Src, nil)
	return dst
}

// resize scales img to the given dimensions using the Catmull-Rom kernel.
func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: image/%s", ErrUnsupportedMediaType, format)
	}
	return buf.Bytes(), nil
}
