package documents_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helsedok/dokjournal/internal/documents"
	"github.com/helsedok/dokjournal/internal/upstream"
)

type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

type failingTokens struct{}

func (failingTokens) AccessToken(ctx context.Context) (string, error) {
	return "", errors.New("credential provider down")
}

type nopRecorder struct{}

func (nopRecorder) Attempt(operation string, success bool) {}

func newTestCaller(attempts int) *upstream.Caller {
	policy := upstream.Policy{
		InitialDelay: time.Millisecond,
		Multiplier:   1.0,
		MaxAttempts:  attempts,
	}
	return upstream.NewCaller(http.DefaultClient, policy, nopRecorder{}, discardLogger(), "fetch-document")
}

func serveDocument(t *testing.T, doc documents.Document) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			t.Errorf("encode document: %v", err)
		}
	}
}

func TestFetch_SetsHeadersAndOwner(t *testing.T) {
	doc := documents.Document{
		Title:       "Application",
		Content:     []byte("pdf bytes"),
		ContentType: "application/pdf",
	}

	var gotAuth, gotAccept, gotCorrelation, gotOwner string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotCorrelation = r.Header.Get(documents.CorrelationHeader)
		gotOwner = r.URL.Query().Get("owner")
		serveDocument(t, doc)(w, r)
	}))
	defer srv.Close()

	fetcher := documents.NewFetcher(newTestCaller(1), staticTokens("token-123"), 0, discardLogger())

	got, err := fetcher.Fetch(context.Background(), srv.URL+"/dokument/1", "29099012345", "corr-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotAuth != "Bearer token-123" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer token-123")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept header = %q, want %q", gotAccept, "application/json")
	}
	if gotCorrelation != "corr-1" {
		t.Errorf("correlation header = %q, want %q", gotCorrelation, "corr-1")
	}
	if gotOwner != "29099012345" {
		t.Errorf("owner query parameter = %q, want %q", gotOwner, "29099012345")
	}
	if !got.Equal(doc) {
		t.Errorf("Fetch() = %+v, want %+v", got, doc)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	doc := documents.Document{Title: "Application", Content: []byte("x"), ContentType: "application/pdf"}

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveDocument(t, doc)(w, r)
	}))
	defer srv.Close()

	fetcher := documents.NewFetcher(newTestCaller(3), staticTokens("t"), 0, discardLogger())

	got, err := fetcher.Fetch(context.Background(), srv.URL, "123", "corr")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !got.Equal(doc) {
		t.Errorf("Fetch() = %+v, want %+v", got, doc)
	}
	if calls.Load() != 2 {
		t.Errorf("document store called %d times, want 2", calls.Load())
	}
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := documents.NewFetcher(newTestCaller(3), staticTokens("t"), 0, discardLogger())

	_, err := fetcher.Fetch(context.Background(), srv.URL, "123", "corr")
	if !errors.Is(err, upstream.ErrPermanent) {
		t.Fatalf("Fetch() error = %v, want ErrPermanent", err)
	}
	if calls.Load() != 1 {
		t.Errorf("document store called %d times, want 1", calls.Load())
	}
}

func TestFetch_RejectsOversizedDocument(t *testing.T) {
	doc := documents.Document{
		Title:       "Application",
		Content:     []byte("0123456789"),
		ContentType: "application/pdf",
	}
	srv := httptest.NewServer(serveDocument(t, doc))
	defer srv.Close()

	fetcher := documents.NewFetcher(newTestCaller(1), staticTokens("t"), 5, discardLogger())

	_, err := fetcher.Fetch(context.Background(), srv.URL, "123", "corr")
	if !errors.Is(err, upstream.ErrPermanent) {
		t.Fatalf("Fetch() error = %v, want ErrPermanent", err)
	}
}

func TestFetch_TokenFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("document store should not be called without a token")
	}))
	defer srv.Close()

	fetcher := documents.NewFetcher(newTestCaller(1), failingTokens{}, 0, discardLogger())

	if _, err := fetcher.Fetch(context.Background(), srv.URL, "123", "corr"); err == nil {
		t.Fatal("Fetch() error = nil, want token failure")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	fetcher := documents.NewFetcher(newTestCaller(1), staticTokens("t"), 0, discardLogger())

	_, err := fetcher.Fetch(context.Background(), "://not a url", "123", "corr")
	if !errors.Is(err, upstream.ErrPermanent) {
		t.Fatalf("Fetch() error = %v, want ErrPermanent", err)
	}
}
