// Package journaling assembles archive submissions from normalized document
// batches and files them with the Joark archive system, verifying the
// terminal archive state when immediate finalization is required.
package journaling

import (
	"time"
)

// CaseMetadata is the caller-supplied context for one journaling request.
// Immutable; validated before any document is fetched.
type CaseMetadata struct {
	SubjectID     string
	CaseID        string
	SourceSystem  string
	ReceivedAt    time.Time
	CorrelationID string
}

// TypeReference identifies how the archive system should categorize the
// submitted documents. It is a closed sum: either a document type id or a
// letter code with its document category.
type TypeReference interface {
	isTypeReference()
}

// DocumentType references documents by archive document type id.
type DocumentType struct {
	ID string
}

func (DocumentType) isTypeReference() {}

// LetterCode references documents by letter code and document category.
type LetterCode struct {
	Code     string
	Category string
}

func (LetterCode) isTypeReference() {}

// ArchiveFileType is the file type of an archive variant.
type ArchiveFileType string

// Archive variant file types.
const (
	FileTypePDFA ArchiveFileType = "PDFA"
	FileTypeXML  ArchiveFileType = "XML"
	FileTypeJSON ArchiveFileType = "JSON"
)

// VariantFormat is the role of an archive variant.
type VariantFormat string

// Archive variant roles.
const (
	VariantOriginal VariantFormat = "ORIGINAL"
	VariantArchival VariantFormat = "ARCHIVAL"
)

// ArchiveState is the filing state reported by the archive system.
type ArchiveState string

// Archive states. Only StatePermanentlyFiled is terminal.
const (
	StatePending            ArchiveState = "PENDING"
	StateProvisionallyFiled ArchiveState = "PROVISIONALLY_FILED"
	StatePermanentlyFiled   ArchiveState = "PERMANENTLY_FILED"
)

// ArchiveVariant is one representation of an archived document.
type ArchiveVariant struct {
	FileType ArchiveFileType `json:"file_type"`
	Format   VariantFormat   `json:"variant_format"`
	Content  []byte          `json:"content"`
}

// ArchiveDocument is one document entry of an archive submission. Exactly one
// of DocumentTypeID or LetterCode/DocumentCategory is populated, depending on
// the TypeReference in effect.
type ArchiveDocument struct {
	Title            string           `json:"title"`
	DocumentTypeID   string           `json:"document_type_id,omitempty"`
	LetterCode       string           `json:"letter_code,omitempty"`
	DocumentCategory string           `json:"document_category,omitempty"`
	Variants         []ArchiveVariant `json:"variants"`
}

// CaseInfo is the case context of an archive submission.
type CaseInfo struct {
	Title            string `json:"title"`
	SubjectID        string `json:"subject_id"`
	CaseID           string `json:"case_id"`
	SourceSystem     string `json:"source_system"`
	ChannelReference string `json:"channel_reference"`
	ReceivedAt       string `json:"received_at"`
	SubmittedAt      string `json:"submitted_at"`
	Channel          string `json:"channel"`
}

// JournalPostRequest is the wire shape of an archive submission. It carries
// exactly one primary document; attachments may be empty only when the
// request held a single batch.
type JournalPostRequest struct {
	FinalizeImmediately bool              `json:"finalize_immediately"`
	CaseInfo            CaseInfo          `json:"case_info"`
	PrimaryDocument     ArchiveDocument   `json:"primary_document"`
	Attachments         []ArchiveDocument `json:"attachments"`
}

// ArchiveResult is the archive system's response to a submission.
type ArchiveResult struct {
	ArchiveID    string       `json:"archive_id"`
	ArchiveState ArchiveState `json:"archive_state"`
}
