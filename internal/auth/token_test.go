package auth_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helsedok/dokjournal/internal/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	calls  atomic.Int32
	tokens chan auth.Token
	err    error
}

func (f *fakeFetcher) FetchToken(ctx context.Context) (auth.Token, error) {
	f.calls.Add(1)
	if f.err != nil {
		return auth.Token{}, f.err
	}
	return <-f.tokens, nil
}

func TestFetchToken(t *testing.T) {
	var gotGrant, gotClientID, gotScope string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGrant = r.FormValue("grant_type")
		gotClientID = r.FormValue("client_id")
		gotScope = r.FormValue("scope")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	}))
	defer srv.Close()

	client := auth.NewClient(http.DefaultClient, srv.URL, "dokjournal", "secret", []string{"openid", "archive"}, discardLogger())

	token, err := client.FetchToken(context.Background())
	if err != nil {
		t.Fatalf("FetchToken() error = %v", err)
	}

	if token.Value != "abc123" {
		t.Errorf("token value = %q, want abc123", token.Value)
	}
	if remaining := time.Until(token.ExpiresAt); remaining < 59*time.Minute {
		t.Errorf("token expires in %v, want about an hour", remaining)
	}
	if gotGrant != "client_credentials" {
		t.Errorf("grant_type = %q", gotGrant)
	}
	if gotClientID != "dokjournal" {
		t.Errorf("client_id = %q", gotClientID)
	}
	if gotScope != "openid archive" {
		t.Errorf("scope = %q", gotScope)
	}
}

func TestFetchToken_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"provider error status",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			"undecodable response",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) },
		},
		{
			"empty access token",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"expires_in":3600}`)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := auth.NewClient(http.DefaultClient, srv.URL, "id", "secret", nil, discardLogger())

			_, err := client.FetchToken(context.Background())
			if !errors.Is(err, auth.ErrTokenUnavailable) {
				t.Errorf("FetchToken() error = %v, want ErrTokenUnavailable", err)
			}
		})
	}
}

func TestCachedSource_ReusesValidToken(t *testing.T) {
	fetcher := &fakeFetcher{tokens: make(chan auth.Token, 1)}
	fetcher.tokens <- auth.Token{Value: "first", ExpiresAt: time.Now().Add(time.Hour)}

	source := auth.NewCachedSource(fetcher)

	for i := 0; i < 3; i++ {
		value, err := source.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("AccessToken() error = %v", err)
		}
		if value != "first" {
			t.Errorf("AccessToken() = %q, want first", value)
		}
	}

	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times, want 1", got)
	}
}

func TestCachedSource_RefreshesExpiredToken(t *testing.T) {
	fetcher := &fakeFetcher{tokens: make(chan auth.Token, 2)}
	fetcher.tokens <- auth.Token{Value: "stale", ExpiresAt: time.Now().Add(time.Second)}
	fetcher.tokens <- auth.Token{Value: "fresh", ExpiresAt: time.Now().Add(time.Hour)}

	source := auth.NewCachedSource(fetcher)

	// The first token expires within the refresh leeway, so the second call
	// must fetch again.
	if _, err := source.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	value, err := source.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}

	if value != "fresh" {
		t.Errorf("AccessToken() = %q, want fresh", value)
	}
	if got := fetcher.calls.Load(); got != 2 {
		t.Errorf("fetcher called %d times, want 2", got)
	}
}

func TestCachedSource_SingleRefreshUnderConcurrency(t *testing.T) {
	const workers = 16

	// Enough tokens for every caller so an over-eager implementation fails
	// the call count assertion instead of deadlocking the test.
	fetcher := &fakeFetcher{tokens: make(chan auth.Token, workers)}
	for i := 0; i < workers; i++ {
		fetcher.tokens <- auth.Token{Value: "shared", ExpiresAt: time.Now().Add(time.Hour)}
	}

	source := auth.NewCachedSource(fetcher)

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := source.AccessToken(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if value != "shared" {
				errs <- fmt.Errorf("got token %q, want shared", value)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetcher called %d times under concurrency, want 1", got)
	}
}

func TestCachedSource_FetchFailurePropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	source := auth.NewCachedSource(&fakeFetcher{err: wantErr})

	if _, err := source.AccessToken(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("AccessToken() error = %v, want %v", err, wantErr)
	}
}
