package journaling

import (
	"fmt"
	"time"

	"github.com/helsedok/dokjournal/internal/documents"
)

// timestampLayout matches the archive system's expected timestamp format.
const timestampLayout = "2006-01-02T15:04:05-0700"

// Builder assembles archive submissions from normalized document batches.
// The first batch becomes the primary document, the rest become attachments
// in order. Each batch maps to one archive document whose variants are
// derived from the batch's documents.
type Builder struct {
	title   string
	channel string
	now     func() time.Time
}

// NewBuilder creates a builder stamping submissions with the given case
// title and receiving channel.
func NewBuilder(title, channel string) *Builder {
	return &Builder{
		title:   title,
		channel: channel,
		now:     time.Now,
	}
}

// Build validates the normalized batches and assembles the archive
// submission. Precondition violations are collected into a single
// ValidationError; an unmapped content type or type reference at this stage
// is a bug in normalization and fails with an internal error instead.
func (b *Builder) Build(meta CaseMetadata, batches []documents.Batch, typeRef TypeReference, finalize bool) (*JournalPostRequest, error) {
	if err := validateBatches(batches); err != nil {
		return nil, err
	}

	archiveDocs := make([]ArchiveDocument, 0, len(batches))
	for _, batch := range batches {
		doc, err := mapBatch(batch, typeRef)
		if err != nil {
			return nil, err
		}
		archiveDocs = append(archiveDocs, doc)
	}

	return &JournalPostRequest{
		FinalizeImmediately: finalize,
		CaseInfo: CaseInfo{
			Title:            b.title,
			SubjectID:        meta.SubjectID,
			CaseID:           meta.CaseID,
			SourceSystem:     meta.SourceSystem,
			ChannelReference: fmt.Sprintf("%s-%s", meta.SourceSystem, meta.CaseID),
			ReceivedAt:       formatTimestamp(meta.ReceivedAt),
			SubmittedAt:      formatTimestamp(b.now()),
			Channel:          b.channel,
		},
		PrimaryDocument: archiveDocs[0],
		Attachments:     archiveDocs[1:],
	}, nil
}

func validateBatches(batches []documents.Batch) error {
	var violations []Violation

	if len(batches) == 0 {
		violations = append(violations, Violation{
			Field:  "documents",
			Reason: "must include at least one document",
		})
	}

	for i, batch := range batches {
		if len(batch) == 0 {
			violations = append(violations, Violation{
				Field:  fmt.Sprintf("documents[%d]", i),
				Reason: "document batch must contain at least one document",
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func mapBatch(batch documents.Batch, typeRef TypeReference) (ArchiveDocument, error) {
	variants := make([]ArchiveVariant, 0, len(batch))
	for _, doc := range batch {
		variant, err := mapVariant(doc)
		if err != nil {
			return ArchiveDocument{}, err
		}
		variants = append(variants, variant)
	}

	archiveDoc := ArchiveDocument{
		Title:    batch[0].Title,
		Variants: variants,
	}

	switch ref := typeRef.(type) {
	case DocumentType:
		archiveDoc.DocumentTypeID = ref.ID
	case LetterCode:
		archiveDoc.LetterCode = ref.Code
		archiveDoc.DocumentCategory = ref.Category
	default:
		return ArchiveDocument{}, fmt.Errorf("%w: %T", ErrUnknownTypeReference, typeRef)
	}

	return archiveDoc, nil
}

// mapVariant derives the archive variant from a document's content type.
// Normalization guarantees only PDF, JSON, and XML reach this point.
func mapVariant(doc documents.Document) (ArchiveVariant, error) {
	var fileType ArchiveFileType
	var format VariantFormat

	switch doc.ContentType {
	case "application/pdf":
		fileType, format = FileTypePDFA, VariantArchival
	case "application/json":
		fileType, format = FileTypeJSON, VariantOriginal
	case "application/xml":
		fileType, format = FileTypeXML, VariantOriginal
	default:
		return ArchiveVariant{}, fmt.Errorf("%w: %q", ErrUnmappedContentType, doc.ContentType)
	}

	return ArchiveVariant{
		FileType: fileType,
		Format:   format,
		Content:  doc.Content,
	}, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
