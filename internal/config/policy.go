package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RetrievalPolicy holds the knobs that shape chunking and query-time retrieval.
type RetrievalPolicy struct {
	ChunkSize         int `yaml:"chunk_size"`
	ChunkOverlap      int `yaml:"chunk_overlap"`
	MaxHits           int `yaml:"max_hits"`
	ChunksPerSource   int `yaml:"chunks_per_source"`
	ContextBudget     int `yaml:"context_budget"`
	FollowUpMaxTokens int `yaml:"followup_max_tokens"` // queries shorter than this may reuse session sources
}

// DefaultRetrievalPolicy matches the environment defaults.
func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		MaxHits:           4,
		ChunksPerSource:   4,
		ContextBudget:     8000,
		FollowUpMaxTokens: 6,
	}
}

func (p RetrievalPolicy) Validate() error {
	if p.ChunkSize <= 0 || p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, chunk size): size=%d overlap=%d", p.ChunkSize, p.ChunkOverlap)
	}
	if p.MaxHits <= 0 || p.ChunksPerSource <= 0 || p.ContextBudget <= 0 {
		return fmt.Errorf("max_hits, chunks_per_source and context_budget must be positive")
	}
	if p.FollowUpMaxTokens < 0 {
		return fmt.Errorf("followup_max_tokens must not be negative")
	}
	return nil
}

// LoadPolicy reads a YAML policy file. Keys absent from the file keep the
// values of base.
func LoadPolicy(path string, base RetrievalPolicy) (RetrievalPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read retrieval policy: %w", err)
	}
	policy := base
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return base, fmt.Errorf("parse retrieval policy %s: %w", path, err)
	}
	return policy, nil
}
