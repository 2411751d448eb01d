// Package app assembles the document, index and retrieval components shared
// by the HTTP server, the worker and the command line tool.
package app

import (
	"context"
	"fmt"

	"fdv-chatbot-platform/internal/ai"
	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/index"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/retrieval"
	"fdv-chatbot-platform/internal/session"
	"fdv-chatbot-platform/internal/telemetry"
	"fdv-chatbot-platform/services"

	"github.com/redis/go-redis/v9"
)

type Core struct {
	Config  *config.Config
	Library *documents.Library
	Store   *index.FileStore
	Reader  index.Reader
	Indexer *index.Indexer
	Metrics *telemetry.Metrics
}

// NewCore builds the document library and the index store with its indexer.
// metrics may be nil.
func NewCore(cfg *config.Config, metrics *telemetry.Metrics) (*Core, error) {
	chunker, err := retrieval.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	library := documents.NewLibrary(cfg.DocumentsDir, cfg.MaxFileSize)
	store := index.NewFileStore(cfg.IndexDir)
	store.OnCorrupt(func(vendor, file string, err error) {
		metrics.RecordCorruptIndex(vendor)
	})

	opts := []index.Option{index.WithMetrics(metrics)}
	var reader index.Reader = store
	if cfg.IndexCacheEnabled {
		cache := index.NewCache(store)
		reader = cache
		opts = append(opts, index.WithCache(cache))
	}

	return &Core{
		Config:  cfg,
		Library: library,
		Store:   store,
		Reader:  reader,
		Indexer: index.NewIndexer(store, library, chunker, opts...),
		Metrics: metrics,
	}, nil
}

// NewRetriever binds a retriever to the given session store.
func (c *Core) NewRetriever(sessions session.Store) *services.Retriever {
	return services.NewRetriever(c.Reader, c.Library, sessions, c.Config.Retrieval, c.Metrics)
}

// NewAnswerer returns the Gemini client when a key is configured and the
// context-only answerer otherwise. The returned close function is never nil.
func (c *Core) NewAnswerer(disableLLM bool) (ai.Answerer, func(), error) {
	if disableLLM || c.Config.GeminiAPIKey == "" {
		if !disableLLM {
			logger.Warn("GEMINI_API_KEY not set, answering with retrieved excerpts only")
		}
		return ai.ContextOnlyAnswerer{}, func() {}, nil
	}
	client, err := ai.NewGeminiClient(c.Config.GeminiAPIKey, c.Config.GeminiModel, c.Config.GeminiTier, c.Metrics)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// NewSessionStore picks the session backend. rdb may be nil unless the
// backend is redis.
func (c *Core) NewSessionStore(ctx context.Context, rdb *redis.Client) (session.Store, error) {
	return session.NewStore(ctx, c.Config, rdb)
}
