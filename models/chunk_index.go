package models

import "time"

// DocumentIndex is the persisted chunk list of one source document.
// Stored as <index dir>/<vendor>/<source>.json.
type DocumentIndex struct {
	Vendor string   `json:"vendor"`
	Source string   `json:"source"`
	Chunks []string `json:"chunks"`
}

// ScoredChunk is a chunk ranked against a query.
type ScoredChunk struct {
	Score  int    `json:"score"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// RawDocument is extracted document text ready for indexing.
type RawDocument struct {
	Vendor string
	Name   string
	Text   string
}

// RebuildReport summarizes a full vendor rebuild.
type RebuildReport struct {
	Vendor    string        `json:"vendor"`
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Removed   int           `json:"removed"`
	Duration  time.Duration `json:"duration_ns"`
}

// RetrievalResult is what one query contributes to the downstream prompt.
type RetrievalResult struct {
	ContextText   string        `json:"context_text"`
	Sources       []string      `json:"sources"`
	SessionID     string        `json:"session_id"`
	UsedRetrieval bool          `json:"used_retrieval"`
	Hits          []ScoredChunk `json:"hits,omitempty"`
}
