package journaling

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/helsedok/dokjournal/internal/documents"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// CaseSubmission is the inbound journaling request body.
type CaseSubmission struct {
	SubjectID  string     `json:"subject_id"`
	CaseID     string     `json:"case_id"`
	ReceivedAt time.Time  `json:"received_at"`
	Documents  [][]string `json:"documents"`
}

// Normalizer produces archive-ready document batches for a submission.
type Normalizer interface {
	Normalize(ctx context.Context, batches [][]string, subjectID, correlationID string) ([]documents.Batch, error)
}

// Submitter files an assembled archive request.
type Submitter interface {
	Submit(ctx context.Context, request *JournalPostRequest) (*ArchiveResult, error)
}

// Service orchestrates one journaling request to completion: validate,
// normalize, assemble, submit. It holds no state between requests.
type Service struct {
	normalizer   Normalizer
	builder      *Builder
	gateway      Submitter
	typeRef      TypeReference
	sourceSystem string
	finalize     bool
	logger       *slog.Logger
}

// NewService creates the journaling service.
func NewService(
	normalizer Normalizer,
	builder *Builder,
	gateway Submitter,
	typeRef TypeReference,
	sourceSystem string,
	finalize bool,
	logger *slog.Logger,
) *Service {
	return &Service{
		normalizer:   normalizer,
		builder:      builder,
		gateway:      gateway,
		typeRef:      typeRef,
		sourceSystem: sourceSystem,
		finalize:     finalize,
		logger:       logger.With("component", "journaling-service"),
	}
}

// Journal processes one submission and returns the archive id on success.
// Validation happens before any network call; any fetch, conversion, or
// submission failure aborts the request.
func (s *Service) Journal(ctx context.Context, sub CaseSubmission, correlationID string) (string, error) {
	if err := validateSubmission(sub); err != nil {
		return "", err
	}

	logger := s.logger.With("correlation_id", correlationID, "case_id", sub.CaseID)
	logger.Info("journaling request received", "batches", len(sub.Documents))

	batches, err := s.normalizer.Normalize(ctx, sub.Documents, sub.SubjectID, correlationID)
	if err != nil {
		return "", err
	}

	meta := CaseMetadata{
		SubjectID:     sub.SubjectID,
		CaseID:        sub.CaseID,
		SourceSystem:  s.sourceSystem,
		ReceivedAt:    sub.ReceivedAt,
		CorrelationID: correlationID,
	}

	request, err := s.builder.Build(meta, batches, s.typeRef, s.finalize)
	if err != nil {
		return "", err
	}

	result, err := s.gateway.Submit(ctx, request)
	if err != nil {
		return "", err
	}

	logger.Info("journaling complete", "journal_post_id", result.ArchiveID)
	return result.ArchiveID, nil
}

// validateSubmission checks caller preconditions before any fetch begins and
// reports every violation at once.
func validateSubmission(sub CaseSubmission) error {
	var violations []Violation

	if len(sub.Documents) == 0 {
		violations = append(violations, Violation{
			Field:  "documents",
			Reason: "must include at least one document",
		})
	}

	for i, batch := range sub.Documents {
		if len(batch) == 0 {
			violations = append(violations, Violation{
				Field:  fmt.Sprintf("documents[%d]", i),
				Reason: "document batch must contain at least one document",
			})
		}
	}

	if !digitsOnly.MatchString(sub.SubjectID) {
		violations = append(violations, Violation{
			Field:  "subject_id",
			Reason: "must contain digits only",
		})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
