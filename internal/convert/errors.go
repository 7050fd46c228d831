// Package convert turns supported image documents into single-page,
// archive-ready PDF documents. Images are rotated to portrait orientation
// and scaled down to A4 before being embedded.
package convert

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMediaType indicates a content type that cannot be converted.
var ErrUnsupportedMediaType = errors.New("media type is not supported for conversion")

// ConversionError wraps a decode, scale, or embed failure together with the
// content type of the source document for diagnostics. The underlying cause
// is preserved for logging and errors.Is/As inspection.
type ConversionError struct {
	ContentType string
	Err         error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %q failed: %v", e.ContentType, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a ConversionError unless err already is one,
// in which case it is returned unchanged to keep the original content type.
func NewConversionError(contentType string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConversionError{ContentType: contentType, Err: err}
}
