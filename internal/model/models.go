// Package model defines shared data structures for the ingest service.
package model

import (
	"encoding/json"
	"time"
)

// Job is a listing normalised from one external feed record. Optional
// fields are pointers — nil means the source did not provide a usable
// value. The (Source, SourceJobID) pair identifies the listing across
// runs and is the upsert key in the store.
type Job struct {
	Source                    string          `json:"source"`
	SourceJobID               string          `json:"sourceJobId"`
	URL                       *string         `json:"url"`
	Title                     *string         `json:"title"`
	CompanyName               *string         `json:"companyName"`
	CompanyLogoURL            *string         `json:"companyLogoUrl"`
	Category                  *string         `json:"category"`
	JobType                   *string         `json:"jobType"`
	CandidateRequiredLocation *string         `json:"candidateRequiredLocation"`
	Salary                    *string         `json:"salary"`
	PublicationDate           *time.Time      `json:"publicationDate"`
	DescriptionHTML           *string         `json:"descriptionHtml"`
	ContentHash               string          `json:"contentHash"`
	RawPayload                json.RawMessage `json:"rawPayload,omitempty"`
}

// SourceSummary reports one source family's reconciliation outcome.
type SourceSummary struct {
	Source        string         `json:"source"`
	Fetched       map[string]int `json:"fetched"` // raw item count per origin URL
	Jobs          int            `json:"jobs"`    // after merge
	Batches       int            `json:"batches"`
	Upserted      int64          `json:"upserted"`
	MarkedMissing int64          `json:"markedMissing"`
}

// RunSummary is the structured result of one full reconciliation run,
// written to stdout on success.
type RunSummary struct {
	RunTimestamp time.Time       `json:"runTimestamp"`
	Sources      []SourceSummary `json:"sources"`
}
