package ingest

import "jobpulse/ingest-service/internal/model"

// MergeByIdentity collapses redundant feeds of one source family into a
// single set keyed by SourceJobID. Feeds are passed in ascending
// precedence order: a later feed's record wholly replaces an earlier
// one's for the same identity — no field-level merging. First-appearance
// order of identities is preserved so batches stay deterministic.
func MergeByIdentity(feeds ...[]model.Job) []model.Job {
	index := make(map[string]int)
	var merged []model.Job

	for _, feed := range feeds {
		for _, job := range feed {
			if at, seen := index[job.SourceJobID]; seen {
				merged[at] = job
				continue
			}
			index[job.SourceJobID] = len(merged)
			merged = append(merged, job)
		}
	}

	return merged
}
