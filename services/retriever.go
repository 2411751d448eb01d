package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/index"
	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/retrieval"
	"fdv-chatbot-platform/internal/session"
	"fdv-chatbot-platform/internal/telemetry"
	"fdv-chatbot-platform/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DocumentLister lists the document filenames of a vendor collection.
type DocumentLister interface {
	List(vendor string) ([]string, error)
}

// Retriever turns a user query into bounded context for the language model.
// It combines keyword search over persisted chunks, product-code filename
// matching and the session's previous sources for short follow-ups.
type Retriever struct {
	indexes  index.Reader
	docs     DocumentLister
	sessions session.Store
	policy   config.RetrievalPolicy
	metrics  *telemetry.Metrics
}

func NewRetriever(indexes index.Reader, docs DocumentLister, sessions session.Store, policy config.RetrievalPolicy, metrics *telemetry.Metrics) *Retriever {
	return &Retriever{
		indexes:  indexes,
		docs:     docs,
		sessions: sessions,
		policy:   policy,
		metrics:  metrics,
	}
}

// Policy returns the retrieval knobs in effect.
func (r *Retriever) Policy() config.RetrievalPolicy { return r.policy }

// Search scores every chunk of the vendor against the query and returns the
// best maxHits chunks with a positive score, plus their sources in rank
// order without duplicates. Ties keep index filename and chunk order.
func (r *Retriever) Search(ctx context.Context, query, vendor string, maxHits int) ([]models.ScoredChunk, []string, error) {
	all, err := r.indexes.LoadAll(ctx, vendor)
	if err != nil {
		return nil, nil, fmt.Errorf("load indexes for %s: %w", vendor, err)
	}

	queryTokens := retrieval.Tokenize(query)
	hits := []models.ScoredChunk{}
	if len(queryTokens) > 0 {
		for _, idx := range all {
			for _, chunk := range idx.Chunks {
				if score := retrieval.Score(queryTokens, chunk); score > 0 {
					hits = append(hits, models.ScoredChunk{Score: score, Text: chunk, Source: idx.Source})
				}
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if maxHits >= 0 && len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	sources := []string{}
	for _, h := range hits {
		sources = retrieval.AppendUnique(sources, h.Source)
	}
	return hits, sources, nil
}

// MatchByFilename returns the vendor's document filenames that contain one
// of the product identifiers once both are normalized. A vendor without a
// document collection has no matches.
func (r *Retriever) MatchByFilename(_ context.Context, productIDs []string, vendor string) ([]string, error) {
	if len(productIDs) == 0 {
		return []string{}, nil
	}
	names, err := r.docs.List(vendor)
	if err != nil {
		if errors.Is(err, documents.ErrVendorNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	matched := []string{}
	for _, name := range names {
		if retrieval.MatchesProduct(name, productIDs) {
			matched = retrieval.AppendUnique(matched, name)
		}
	}
	return matched, nil
}

// Retrieve runs the full per-query protocol. An empty sessionID gets a
// fresh one, which is echoed in the result.
func (r *Retriever) Retrieve(ctx context.Context, query, vendor, sessionID string) (models.RetrievalResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer("retriever").Start(ctx, "retrieval.retrieve")
	defer span.End()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("vendor", vendor), attribute.String("session.id", sessionID))

	queryTokens := retrieval.Tokenize(query)
	products := retrieval.ExtractProductIDs(query)

	hits, sources, err := r.Search(ctx, query, vendor, r.policy.MaxHits)
	if err != nil {
		return models.RetrievalResult{}, err
	}
	path := "none"
	if len(sources) > 0 {
		path = "keyword"
	}

	matched, err := r.MatchByFilename(ctx, products, vendor)
	if err != nil {
		return models.RetrievalResult{}, err
	}
	sources = retrieval.AppendUnique(sources, matched...)
	if path == "none" && len(sources) > 0 {
		path = "filename"
	}

	if len(sources) == 0 && len(queryTokens) < r.policy.FollowUpMaxTokens {
		previous, err := r.sessions.Get(ctx, sessionID)
		if err != nil {
			logger.Warn("Session lookup failed", "session_id", sessionID, "error", err)
		} else if len(previous) > 0 {
			sources = previous
			path = "session"
		}
	}

	if len(sources) > 0 {
		hits = r.reload(ctx, vendor, sources, queryTokens)
		if err := r.sessions.Set(ctx, sessionID, sources); err != nil {
			logger.Warn("Session update failed", "session_id", sessionID, "error", err)
		}
	}

	contextText := BuildContext(hits, r.policy.ContextBudget)
	result := models.RetrievalResult{
		ContextText:   contextText,
		Sources:       sources,
		SessionID:     sessionID,
		UsedRetrieval: len(sources) > 0,
		Hits:          hits,
	}

	span.SetAttributes(
		attribute.String("retrieval.path", path),
		attribute.Int("retrieval.sources", len(sources)),
		attribute.Int("retrieval.products", len(products)),
		attribute.Int("retrieval.context_chars", len([]rune(contextText))),
	)
	r.metrics.RecordRetrieval(vendor, path, len([]rune(contextText)), time.Since(start).Seconds())
	logger.Debug("Retrieval completed",
		"vendor", vendor,
		"session_id", sessionID,
		"path", path,
		"sources", sources,
		"hits", len(hits),
	)
	return result, nil
}

// reload takes up to ChunksPerSource chunks from each source, best scoring
// first. Unscored chunks keep reading order, so a follow-up with no keyword
// overlap gets the start of each document.
func (r *Retriever) reload(ctx context.Context, vendor string, sources []string, queryTokens []string) []models.ScoredChunk {
	hits := []models.ScoredChunk{}
	for _, src := range sources {
		idx, err := r.indexes.Load(ctx, vendor, src)
		if err != nil {
			logger.Warn("Source has no readable index", "vendor", vendor, "source", src, "error", err)
			continue
		}
		ranked := make([]models.ScoredChunk, 0, len(idx.Chunks))
		for _, chunk := range idx.Chunks {
			ranked = append(ranked, models.ScoredChunk{
				Score:  retrieval.Score(queryTokens, chunk),
				Text:   chunk,
				Source: src,
			})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
		if len(ranked) > r.policy.ChunksPerSource {
			ranked = ranked[:r.policy.ChunksPerSource]
		}
		hits = append(hits, ranked...)
	}
	return hits
}

// BuildContext renders each hit under its source tag and cuts the result
// to budget characters.
func BuildContext(hits []models.ScoredChunk, budget int) string {
	if len(hits) == 0 {
		return ""
	}
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[")
		b.WriteString(h.Source)
		b.WriteString("]\n")
		b.WriteString(h.Text)
	}
	return truncateRunes(b.String(), budget)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
