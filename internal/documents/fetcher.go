package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/helsedok/dokjournal/internal/auth"
	"github.com/helsedok/dokjournal/internal/upstream"
)

// CorrelationHeader propagates the caller-supplied correlation id across all
// downstream calls.
const CorrelationHeader = "X-Correlation-ID"

// Fetcher retrieves documents from the document store, authenticated with a
// bearer token and scoped to the document owner. Transient store failures
// are retried by the underlying caller.
type Fetcher struct {
	caller  *upstream.Caller
	tokens  auth.TokenSource
	maxSize int64
	logger  *slog.Logger
}

// NewFetcher creates a document store fetcher. Documents larger than maxSize
// bytes are rejected; zero disables the limit.
func NewFetcher(caller *upstream.Caller, tokens auth.TokenSource, maxSize int64, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		caller:  caller,
		tokens:  tokens,
		maxSize: maxSize,
		logger:  logger.With("component", "fetcher"),
	}
}

// Fetch retrieves one document. The owner query parameter restricts access
// to documents belonging to the subject.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, subjectID, correlationID string) (Document, error) {
	token, err := f.tokens.AccessToken(ctx)
	if err != nil {
		return Document{}, err
	}

	target, err := ownerURL(rawURL, subjectID)
	if err != nil {
		return Document{}, err
	}

	body, err := f.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(CorrelationHeader, correlationID)
		return req, nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("fetch document %q: %w", rawURL, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: parse document response from %q: %v", upstream.ErrPermanent, rawURL, err)
	}

	if f.maxSize > 0 && int64(len(doc.Content)) > f.maxSize {
		return Document{}, fmt.Errorf("%w: document %q exceeds maximum size of %d bytes", upstream.ErrPermanent, rawURL, f.maxSize)
	}

	f.logger.Debug("document fetched",
		"url", rawURL,
		"content_type", doc.ContentType,
		"size_bytes", len(doc.Content),
	)
	return doc, nil
}

func ownerURL(rawURL, subjectID string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid document url %q: %v", upstream.ErrPermanent, rawURL, err)
	}
	q := u.Query()
	q.Set("owner", subjectID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
