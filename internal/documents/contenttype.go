package documents

import (
	"log/slog"
	"mime"
)

// Classification buckets a document's declared media type.
type Classification int

const (
	// ClassUnsupported marks media types that cannot be archived; such
	// documents are dropped from their batch.
	ClassUnsupported Classification = iota
	// ClassImage marks media types converted to PDF before archiving.
	ClassImage
	// ClassArchivable marks media types archived as-is.
	ClassArchivable
)

var (
	imageTypes = map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
	}
	archivableTypes = map[string]bool{
		"application/pdf":  true,
		"application/json": true,
		"application/xml":  true,
	}
)

// Classifier classifies declared content types. Malformed content types
// classify as unsupported and are logged, never treated as errors.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a classifier logging through the provided logger.
func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logger.With("component", "classifier")}
}

// Classify parses contentType and returns its classification. Parameters
// such as charset are ignored.
func (c *Classifier) Classify(contentType string) Classification {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		c.logger.Warn("unparseable content type", "content_type", contentType, "error", err)
		return ClassUnsupported
	}

	switch {
	case imageTypes[mediaType]:
		return ClassImage
	case archivableTypes[mediaType]:
		return ClassArchivable
	default:
		return ClassUnsupported
	}
}
