package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	httpTimeout     = 15 * time.Second
	bodyExcerptSize = 512
)

// FetchError is a non-2xx response from a feed or API endpoint. It keeps
// the status and a short body excerpt for the failure report.
type FetchError struct {
	URL    string
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.Status, e.Body)
}

// Fetcher retrieves raw payloads from the configured job boards over a
// shared HTTP client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher constructs a Fetcher with a shared HTTP client.
func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: httpTimeout},
		userAgent: userAgent,
	}
}

// apiEnvelope mirrors the top-level API response. Items stay raw so the
// original bytes survive into the raw_payload audit column.
type apiEnvelope struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// FetchAPI retrieves the JSON API snapshot and returns its items undecoded.
func (f *Fetcher) FetchAPI(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	body, err := f.get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode API response from %s: %w", endpoint, err)
	}
	return envelope.Jobs, nil
}

// FetchFeed retrieves and parses one RSS feed.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]FeedItem, error) {
	body, err := f.get(ctx, feedURL, "application/rss+xml, application/xml, text/xml")
	if err != nil {
		return nil, err
	}

	items, err := ParseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	return items, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(body)
		if len(excerpt) > bodyExcerptSize {
			excerpt = excerpt[:bodyExcerptSize]
		}
		return nil, &FetchError{URL: rawURL, Status: resp.StatusCode, Body: excerpt}
	}

	return body, nil
}
