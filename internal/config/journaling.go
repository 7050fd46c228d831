package config

import (
	"fmt"

	"github.com/helsedok/dokjournal/internal/journaling"
)

// Type reference kinds selectable in configuration.
const (
	TypeReferenceDocumentType = "document_type"
	TypeReferenceLetterCode   = "letter_code"
)

// JournalingConfig contains the journaling policy: case presentation,
// archive categorization, and the finalization requirement.
type JournalingConfig struct {
	Title               string `toml:"title"`
	Channel             string `toml:"channel"`
	SourceSystem        string `toml:"source_system"`
	FinalizeImmediately *bool  `toml:"finalize_immediately"`

	TypeReferenceKind string `toml:"type_reference_kind"`
	DocumentTypeID    string `toml:"document_type_id"`
	LetterCode        string `toml:"letter_code"`
	DocumentCategory  string `toml:"document_category"`
}

// Finalize applies defaults and validates the journaling configuration.
func (c *JournalingConfig) Finalize() error {
	if c.Channel == "" {
		c.Channel = "NAV_NO"
	}
	if c.FinalizeImmediately == nil {
		finalize := true
		c.FinalizeImmediately = &finalize
	}
	if c.TypeReferenceKind == "" {
		c.TypeReferenceKind = TypeReferenceLetterCode
	}

	if c.Title == "" {
		return fmt.Errorf("title required")
	}
	if c.SourceSystem == "" {
		return fmt.Errorf("source_system required")
	}

	switch c.TypeReferenceKind {
	case TypeReferenceDocumentType:
		if c.DocumentTypeID == "" {
			return fmt.Errorf("document_type_id required for type_reference_kind %q", c.TypeReferenceKind)
		}
	case TypeReferenceLetterCode:
		if c.LetterCode == "" || c.DocumentCategory == "" {
			return fmt.Errorf("letter_code and document_category required for type_reference_kind %q", c.TypeReferenceKind)
		}
	default:
		return fmt.Errorf("invalid type_reference_kind: %q", c.TypeReferenceKind)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *JournalingConfig) Merge(overlay *JournalingConfig) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Channel != "" {
		c.Channel = overlay.Channel
	}
	if overlay.SourceSystem != "" {
		c.SourceSystem = overlay.SourceSystem
	}
	if overlay.FinalizeImmediately != nil {
		c.FinalizeImmediately = overlay.FinalizeImmediately
	}
	if overlay.TypeReferenceKind != "" {
		c.TypeReferenceKind = overlay.TypeReferenceKind
	}
	if overlay.DocumentTypeID != "" {
		c.DocumentTypeID = overlay.DocumentTypeID
	}
	if overlay.LetterCode != "" {
		c.LetterCode = overlay.LetterCode
	}
	if overlay.DocumentCategory != "" {
		c.DocumentCategory = overlay.DocumentCategory
	}
}

// TypeReference constructs the configured archive type reference.
func (c *JournalingConfig) TypeReference() journaling.TypeReference {
	if c.TypeReferenceKind == TypeReferenceDocumentType {
		return journaling.DocumentType{ID: c.DocumentTypeID}
	}
	return journaling.LetterCode{Code: c.LetterCode, Category: c.DocumentCategory}
}
