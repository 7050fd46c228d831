package documents

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// PDFContentType is the content type assigned to converted image documents.
const PDFContentType = "application/pdf"

// DocumentFetcher retrieves a single document from the document store.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url, subjectID, correlationID string) (Document, error)
}

// ImageConverter turns a supported image into a single-page PDF.
type ImageConverter interface {
	Convert(data []byte, contentType string) ([]byte, error)
}

// Metrics records normalization telemetry.
type Metrics interface {
	ContentTypeProcessed(contentType string)
}

// Normalizer fetches every document of a request concurrently and produces
// archive-ready batches: images converted to PDF, archivable documents passed
// through, unsupported documents dropped. Input ordering is preserved.
type Normalizer struct {
	fetcher     DocumentFetcher
	classifier  *Classifier
	converter   ImageConverter
	metrics     Metrics
	parallelism int
	logger      *slog.Logger
}

// NewNormalizer creates a normalizer with bounded fetch parallelism.
func NewNormalizer(
	fetcher DocumentFetcher,
	classifier *Classifier,
	converter ImageConverter,
	metrics Metrics,
	parallelism int,
	logger *slog.Logger,
) *Normalizer {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Normalizer{
		fetcher:     fetcher,
		classifier:  classifier,
		converter:   converter,
		metrics:     metrics,
		parallelism: parallelism,
		logger:      logger.With("component", "normalizer"),
	}
}

// Normalize fetches all documents referenced across batches concurrently and
// restores input order before classification. A single fetch or conversion
// failure aborts the whole normalization; dropping an unsupported document
// does not.
func (n *Normalizer) Normalize(ctx context.Context, batches [][]string, subjectID, correlationID string) ([]Batch, error) {
	fetched := make([][]Document, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.parallelism)

	for i, urls := range batches {
		fetched[i] = make([]Document, len(urls))
		for j, docURL := range urls {
			i, j, docURL := i, j, docURL
			g.Go(func() error {
				doc, err := n.fetcher.Fetch(gctx, docURL, subjectID, correlationID)
				if err != nil {
					return err
				}
				fetched[i][j] = doc
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	normalized := make([]Batch, 0, len(batches))
	for i, docs := range fetched {
		batch := make(Batch, 0, len(docs))
		for _, doc := range docs {
			n.metrics.ContentTypeProcessed(doc.ContentType)

			switch n.classifier.Classify(doc.ContentType) {
			case ClassImage:
				content, err := n.converter.Convert(doc.Content, doc.ContentType)
				if err != nil {
					return nil, err
				}
				batch = append(batch, Document{
					Title:       doc.Title,
					Content:     content,
					ContentType: PDFContentType,
				})
			case ClassArchivable:
				batch = append(batch, doc)
			default:
				n.logger.Warn("dropping unsupported document",
					"title", doc.Title,
					"content_type", doc.ContentType,
				)
			}
		}

		if len(batch) == 0 {
			n.logger.Warn("dropping empty document batch", "batch", i)
			continue
		}
		normalized = append(normalized, batch)
	}

	return normalized, nil
}
