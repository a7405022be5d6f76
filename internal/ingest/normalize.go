package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobpulse/ingest-service/internal/model"
)

// MissingIdentityError reports a raw item that yields no stable
// identifier after exhausting every fallback field. Fatal to the
// originating source's reconciliation.
type MissingIdentityError struct {
	Source string
	Origin string // API endpoint or feed URL the item came from
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("source %s: item from %s has no usable identity", e.Source, e.Origin)
}

// FeedShape selects which RSS normaliser variant applies to a source
// family's feeds. The set is closed — one variant per known feed shape,
// chosen by configuration rather than payload sniffing.
type FeedShape int

const (
	// ShapeFeedGeneric is a plain RSS 2.0 job feed.
	ShapeFeedGeneric FeedShape = iota
	// ShapeFeedCompanyTitle is the variant whose titles embed the company
	// as "Company: Job Title" and which carries region and media extras.
	ShapeFeedCompanyTitle
)

// apiIdentityFields is the ordered identity fallback chain for API items.
var apiIdentityFields = []string{"id", "slug"}

// NormalizeAPIItem maps one raw API JSON object into a canonical Job.
func NormalizeAPIItem(source, endpoint string, raw json.RawMessage) (model.Job, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return model.Job{}, fmt.Errorf("decode API item: %w", err)
	}

	id := firstText(m, apiIdentityFields...)
	if id == nil {
		return model.Job{}, &MissingIdentityError{Source: source, Origin: endpoint}
	}

	job := model.Job{
		Source:                    source,
		SourceJobID:               *id,
		URL:                       firstText(m, "url"),
		Title:                     firstText(m, "title"),
		CompanyName:               firstText(m, "company_name"),
		CompanyLogoURL:            firstText(m, "company_logo_url", "company_logo"),
		Category:                  firstText(m, "category"),
		JobType:                   firstText(m, "job_type"),
		CandidateRequiredLocation: firstText(m, "candidate_required_location"),
		Salary:                    firstText(m, "salary"),
		PublicationDate:           ToISOTimestamp(m["publication_date"]),
		DescriptionHTML:           SanitizeString(m["description"]),
		RawPayload:                raw,
	}
	job.ContentHash = contentHashFor(job)
	return job, nil
}

// NormalizeFeedItem maps one parsed RSS item into a canonical Job.
// Identity falls back from guid to link.
func NormalizeFeedItem(source, feedURL string, shape FeedShape, item FeedItem) (model.Job, error) {
	id := SanitizeString(item.GUID)
	if id == nil {
		id = SanitizeString(item.Link)
	}
	if id == nil {
		return model.Job{}, &MissingIdentityError{Source: source, Origin: feedURL}
	}

	title := SanitizeString(item.Title)
	var company *string
	if shape == ShapeFeedCompanyTitle {
		company, title = splitCompanyTitle(title)
	}

	job := model.Job{
		Source:          source,
		SourceJobID:     *id,
		URL:             SanitizeString(item.Link),
		Title:           title,
		CompanyName:     company,
		Category:        CoerceText(item.Categories),
		PublicationDate: ToISOTimestamp(item.PubDate),
		DescriptionHTML: SanitizeString(item.Description),
	}
	if shape == ShapeFeedCompanyTitle {
		job.CandidateRequiredLocation = SanitizeString(item.Region)
		job.JobType = SanitizeString(item.JobType)
		if item.Media != nil {
			job.CompanyLogoURL = SanitizeString(item.Media.URL)
		}
	}

	raw, err := json.Marshal(feedRawPayload{FeedURL: feedURL, Item: item})
	if err != nil {
		return model.Job{}, fmt.Errorf("encode raw feed item: %w", err)
	}
	job.RawPayload = raw
	job.ContentHash = contentHashFor(job)
	return job, nil
}

// splitCompanyTitle splits "Company: Job Title" on the first colon. The
// remainder is rejoined, so extra colons stay in the title. Without a
// colon the whole string is the title and the company is absent.
func splitCompanyTitle(title *string) (company, rest *string) {
	if title == nil {
		return nil, nil
	}
	before, after, found := strings.Cut(*title, ":")
	if !found {
		return nil, title
	}
	return SanitizeString(before), SanitizeString(after)
}

// firstText returns the first non-nil coerced text among the named keys.
func firstText(m map[string]any, keys ...string) *string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s := CoerceText(v); s != nil {
				return s
			}
		}
	}
	return nil
}

// contentHashFor digests exactly the normalised field set — identity
// included, raw payload excluded.
func contentHashFor(j model.Job) string {
	return BuildContentHash(map[string]any{
		"source":                    j.Source,
		"sourceJobId":               j.SourceJobID,
		"url":                       j.URL,
		"title":                     j.Title,
		"companyName":               j.CompanyName,
		"companyLogoUrl":            j.CompanyLogoURL,
		"category":                  j.Category,
		"jobType":                   j.JobType,
		"candidateRequiredLocation": j.CandidateRequiredLocation,
		"salary":                    j.Salary,
		"publicationDate":           j.PublicationDate,
		"descriptionHtml":           j.DescriptionHTML,
	})
}
