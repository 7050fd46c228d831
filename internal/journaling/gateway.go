package journaling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/helsedok/dokjournal/internal/auth"
	"github.com/helsedok/dokjournal/internal/upstream"
)

// submissionPath is the archive system's incoming submission endpoint.
const submissionPath = "/rest/receiveIncomingSubmission"

// Gateway submits archive requests to the Joark archive system. Transport
// failures follow the shared retry policy; a successful exchange is still a
// failure when finalization was required but not reached.
type Gateway struct {
	caller *upstream.Caller
	tokens auth.TokenSource
	url    string
	logger *slog.Logger
}

// NewGateway creates a gateway for the archive system at baseURL.
func NewGateway(caller *upstream.Caller, tokens auth.TokenSource, baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		caller: caller,
		tokens: tokens,
		url:    strings.TrimSuffix(baseURL, "/") + submissionPath,
		logger: logger.With("component", "journaling-gateway"),
	}
}

// Submit files the request with the archive system and returns the archive
// result. If the request demands immediate finalization and the returned
// state is not permanently filed, Submit fails with ErrNotFinalized.
func (g *Gateway) Submit(ctx context.Context, request *JournalPostRequest) (*ArchiveResult, error) {
	token, err := g.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode archive request: %w", err)
	}

	g.logger.Debug("submitting archive request",
		"case_id", request.CaseInfo.CaseID,
		"attachments", len(request.Attachments),
		"finalize", request.FinalizeImmediately,
	)

	payload, err := g.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit archive request: %w", err)
	}

	var result ArchiveResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("%w: parse archive response: %v", upstream.ErrPermanent, err)
	}

	if request.FinalizeImmediately && result.ArchiveState != StatePermanentlyFiled {
		return nil, fmt.Errorf("%w: archive %s is in state %s", ErrNotFinalized, result.ArchiveID, result.ArchiveState)
	}

	g.logger.Info("archive submission filed",
		"archive_id", result.ArchiveID,
		"archive_state", result.ArchiveState,
	)
	return &result, nil
}
