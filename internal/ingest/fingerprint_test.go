package ingest_test

import (
	"regexp"
	"testing"
	"time"

	"jobpulse/ingest-service/internal/ingest"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func str(s string) *string { return &s }

// ── BuildContentHash ───────────────────────────────────────────────────────

func TestBuildContentHash_FixedLengthHex(t *testing.T) {
	got := ingest.BuildContentHash(map[string]any{"title": str("Backend Engineer")})
	if !hexDigest.MatchString(got) {
		t.Errorf("BuildContentHash output %q is not 64 hex chars", got)
	}
}

func TestBuildContentHash_InsertionOrderIrrelevant(t *testing.T) {
	a := map[string]any{}
	a["title"] = str("Backend Engineer")
	a["companyName"] = str("Acme")
	a["salary"] = (*string)(nil)

	b := map[string]any{}
	b["salary"] = (*string)(nil)
	b["companyName"] = str("Acme")
	b["title"] = str("Backend Engineer")

	if ingest.BuildContentHash(a) != ingest.BuildContentHash(b) {
		t.Error("hash differs for identical field values inserted in different order")
	}
}

func TestBuildContentHash_TrackedFieldChangeChangesHash(t *testing.T) {
	base := map[string]any{
		"title":       str("Backend Engineer"),
		"companyName": str("Acme"),
		"salary":      (*string)(nil),
	}
	variants := []map[string]any{
		{"title": str("Frontend Engineer"), "companyName": str("Acme"), "salary": (*string)(nil)},
		{"title": str("Backend Engineer"), "companyName": str("Acme Corp"), "salary": (*string)(nil)},
		{"title": str("Backend Engineer"), "companyName": str("Acme"), "salary": str("$100k")},
	}

	baseHash := ingest.BuildContentHash(base)
	for i, v := range variants {
		if ingest.BuildContentHash(v) == baseHash {
			t.Errorf("variant %d: changed field did not change the hash", i)
		}
	}
}

func TestBuildContentHash_NilEncodesAsExplicitNull(t *testing.T) {
	// A nil pointer and a nil interface value are the same absent field.
	withPtr := map[string]any{"salary": (*string)(nil), "title": str("x")}
	withNil := map[string]any{"salary": nil, "title": str("x")}
	if ingest.BuildContentHash(withPtr) != ingest.BuildContentHash(withNil) {
		t.Error("nil pointer and nil interface should hash identically")
	}

	// But an absent value is not the same as an empty string.
	withEmpty := map[string]any{"salary": str(""), "title": str("x")}
	if ingest.BuildContentHash(withNil) == ingest.BuildContentHash(withEmpty) {
		t.Error("null and empty string should hash differently")
	}
}

func TestBuildContentHash_TimesNormalisedToUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	local := time.Date(2024, 3, 1, 11, 0, 0, 0, paris)
	utc := local.UTC()

	h1 := ingest.BuildContentHash(map[string]any{"publicationDate": &local})
	h2 := ingest.BuildContentHash(map[string]any{"publicationDate": &utc})
	if h1 != h2 {
		t.Error("equal instants in different zones should hash identically")
	}
}

func TestBuildContentHash_Deterministic(t *testing.T) {
	fields := map[string]any{
		"source":      "remotive",
		"sourceJobId": "42",
		"title":       str("Backend Engineer"),
	}
	if ingest.BuildContentHash(fields) != ingest.BuildContentHash(fields) {
		t.Error("repeated calls on identical input must match")
	}
}
