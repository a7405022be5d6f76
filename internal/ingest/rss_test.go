package ingest_test

import (
	"testing"

	"jobpulse/ingest-service/internal/ingest"
)

// ── ParseFeed ──────────────────────────────────────────────────────────────

const wwrSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>We Work Remotely: Remote Programming Jobs</title>
    <item>
      <title>Acme Corp: Backend Engineer</title>
      <region>Anywhere in the World</region>
      <category>programming</category>
      <type>Full-Time</type>
      <description><![CDATA[<p>Build things remotely.</p>]]></description>
      <pubDate>Fri, 01 Mar 2024 10:30:00 +0000</pubDate>
      <guid>https://weworkremotely.com/remote-jobs/acme-backend-engineer</guid>
      <link>https://weworkremotely.com/remote-jobs/acme-backend-engineer</link>
      <media:content url="https://wwr-cdn.example.com/acme-logo.png" medium="image"/>
    </item>
    <item>
      <title>Globex: SRE</title>
      <guid>https://weworkremotely.com/remote-jobs/globex-sre</guid>
      <link>https://weworkremotely.com/remote-jobs/globex-sre</link>
    </item>
  </channel>
</rss>`

func TestParseFeed_FullItem(t *testing.T) {
	items, err := ingest.ParseFeed([]byte(wwrSample))
	if err != nil {
		t.Fatalf("ParseFeed returned unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(items))
	}

	it := items[0]
	if it.Title != "Acme Corp: Backend Engineer" {
		t.Errorf("Title = %q", it.Title)
	}
	if it.Region != "Anywhere in the World" {
		t.Errorf("Region = %q", it.Region)
	}
	if it.JobType != "Full-Time" {
		t.Errorf("JobType = %q", it.JobType)
	}
	if len(it.Categories) != 1 || it.Categories[0] != "programming" {
		t.Errorf("Categories = %v", it.Categories)
	}
	if it.Description != "<p>Build things remotely.</p>" {
		t.Errorf("Description = %q, CDATA markup must survive", it.Description)
	}
	if it.Media == nil || it.Media.URL != "https://wwr-cdn.example.com/acme-logo.png" {
		t.Errorf("Media = %+v, want the media:content url attribute", it.Media)
	}
}

func TestParseFeed_SparseItem(t *testing.T) {
	items, err := ingest.ParseFeed([]byte(wwrSample))
	if err != nil {
		t.Fatalf("ParseFeed returned unexpected error: %v", err)
	}
	it := items[1]
	if it.Region != "" || it.Media != nil || len(it.Categories) != 0 {
		t.Errorf("sparse item grew unexpected fields: %+v", it)
	}
}

func TestParseFeed_RejectsBrokenXML(t *testing.T) {
	if _, err := ingest.ParseFeed([]byte(`<rss><channel><item>`)); err == nil {
		t.Error("expected error for truncated XML")
	}
}
