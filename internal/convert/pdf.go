package convert

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// importSpec places the image at the page origin on an A4 page without
// additional scaling; the scaler has already fitted it to the page.
const importSpec = "f:A4, pos:bl, sc:1.0 abs"

var imageFormats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

// Image2PDF wraps supported images into single-page PDF documents.
type Image2PDF struct {
	scaler *Scaler
	logger *slog.Logger
}

// NewImage2PDF creates a converter using the provided scaler.
func NewImage2PDF(scaler *Scaler, logger *slog.Logger) *Image2PDF {
	return &Image2PDF{
		scaler: scaler,
		logger: logger.With("component", "image2pdf"),
	}
}

// Convert scales the image to A4 and embeds it at the page origin of a new
// single-page PDF. Any decode, scale, or embed failure is reported as a
// ConversionError carrying the original content type.
func (c *Image2PDF) Convert(data []byte, contentType string) ([]byte, error) {
	format, ok := imageFormats[contentType]
	if !ok {
		return nil, &ConversionError{
			ContentType: contentType,
			Err:         fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType),
		}
	}

	c.logger.Debug("converting image to pdf", "content_type", contentType, "size_bytes", len(data))

	scaled, err := c.scaler.ScaleToPage(data, format)
	if err != nil {
		return nil, NewConversionError(contentType, err)
	}

	pdf, err := embedInPDF(scaled)
	if err != nil {
		return nil, NewConversionError(contentType, fmt.Errorf("embed image in pdf: %w", err))
	}
	return pdf, nil
}

func embedInPDF(img []byte) ([]byte, error) {
	imp, err := api.Import(importSpec, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse import spec: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(img)}, imp, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
