package ingest

import (
	"encoding/xml"
	"fmt"
)

// FeedItem is one <item> of an RSS 2.0 channel. Fields carry both xml
// tags (for parsing) and json tags (for the raw-payload audit column).
type FeedItem struct {
	GUID        string     `xml:"guid" json:"guid,omitempty"`
	Title       string     `xml:"title" json:"title,omitempty"`
	Link        string     `xml:"link" json:"link,omitempty"`
	Description string     `xml:"description" json:"description,omitempty"`
	PubDate     string     `xml:"pubDate" json:"pubDate,omitempty"`
	Categories  []string   `xml:"category" json:"categories,omitempty"`
	Region      string     `xml:"region" json:"region,omitempty"`
	JobType     string     `xml:"type" json:"type,omitempty"`
	Media       *FeedMedia `xml:"http://search.yahoo.com/mrss/ content" json:"media,omitempty"`
}

// FeedMedia is a media RSS <media:content> element; feeds use it for
// company logos.
type FeedMedia struct {
	URL string `xml:"url,attr" json:"url,omitempty"`
}

type feedChannel struct {
	Title string     `xml:"title"`
	Items []FeedItem `xml:"item"`
}

type feedDocument struct {
	XMLName xml.Name    `xml:"rss"`
	Channel feedChannel `xml:"channel"`
}

// ParseFeed decodes an RSS 2.0 payload into its items.
func ParseFeed(data []byte) ([]FeedItem, error) {
	var doc feedDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("xml unmarshal: %w", err)
	}
	return doc.Channel.Items, nil
}

// feedRawPayload wraps an RSS item with its originating feed URL for the
// raw_payload audit column.
type feedRawPayload struct {
	FeedURL string   `json:"feedUrl"`
	Item    FeedItem `json:"item"`
}
