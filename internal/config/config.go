// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"jobpulse/ingest-service/internal/ingest"
)

// Defaults for the feed endpoints. Overridable per source family through
// the environment.
const (
	defaultRemotiveAPIURL = "https://remotive.com/api/remote-jobs"
	defaultRemotiveFeeds  = "https://remotive.com/remote-jobs/feed"
	defaultWWRFeeds       = "https://weworkremotely.com/categories/remote-programming-jobs.rss," +
		"https://weworkremotely.com/categories/remote-devops-sysadmin-jobs.rss," +
		"https://weworkremotely.com/categories/remote-design-jobs.rss"
	defaultUserAgent = "jobpulse-ingest/1.0 (+https://jobpulse.dev)"
)

// Config holds all runtime configuration for the ingest service,
// constructed once at startup and passed explicitly — no shared globals.
type Config struct {
	DatabaseURL         string
	RedisURL            string // optional; empty disables the run lock
	RemotiveAPIURL      string
	RemotiveFeedURLs    []string
	WWRFeedURLs         []string
	UserAgent           string
	ScrapeIntervalHours int // daemon mode cron interval
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	interval := 6
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	return &Config{
		DatabaseURL:         dbURL,
		RedisURL:            os.Getenv("REDIS_URL"),
		RemotiveAPIURL:      envOr("REMOTIVE_API_URL", defaultRemotiveAPIURL),
		RemotiveFeedURLs:    splitList(envOr("REMOTIVE_FEED_URLS", defaultRemotiveFeeds)),
		WWRFeedURLs:         splitList(envOr("WWR_FEED_URLS", defaultWWRFeeds)),
		UserAgent:           envOr("INGEST_USER_AGENT", defaultUserAgent),
		ScrapeIntervalHours: interval,
	}, nil
}

// Sources materialises the configured source families. Remotive exposes
// both an API and a redundant RSS feed; the API is the authoritative
// shape. WeWorkRemotely is RSS-only with company-in-title quirks.
func (c *Config) Sources() []ingest.Source {
	return []ingest.Source{
		{
			Name:        "remotive",
			APIEndpoint: c.RemotiveAPIURL,
			FeedURLs:    c.RemotiveFeedURLs,
			FeedShape:   ingest.ShapeFeedGeneric,
		},
		{
			Name:      "weworkremotely",
			FeedURLs:  c.WWRFeedURLs,
			FeedShape: ingest.ShapeFeedCompanyTitle,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated URL list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
