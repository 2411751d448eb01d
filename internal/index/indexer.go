package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/internal/retrieval"
	"fdv-chatbot-platform/internal/telemetry"
	"fdv-chatbot-platform/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DocumentSource supplies the extracted text of a vendor's documents.
type DocumentSource interface {
	Vendors() ([]string, error)
	Documents(ctx context.Context, vendor string) ([]models.RawDocument, error)
}

// Invalidator is notified after a vendor's indexes change.
type Invalidator interface {
	Invalidate(vendor string)
}

// Indexer builds and publishes vendor indexes. Rebuilds of the same vendor
// are serialized; readers are never blocked.
type Indexer struct {
	store   *FileStore
	docs    DocumentSource
	chunker *retrieval.Chunker
	cache   Invalidator
	metrics *telemetry.Metrics

	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

type Option func(*Indexer)

func WithCache(c Invalidator) Option { return func(ix *Indexer) { ix.cache = c } }

func WithMetrics(m *telemetry.Metrics) Option { return func(ix *Indexer) { ix.metrics = m } }

func NewIndexer(store *FileStore, docs DocumentSource, chunker *retrieval.Chunker, opts ...Option) *Indexer {
	ix := &Indexer{
		store:   store,
		docs:    docs,
		chunker: chunker,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *Indexer) vendorLock(vendor string) *sync.Mutex {
	ix.mu.RLock()
	if l, ok := ix.locks[vendor]; ok {
		ix.mu.RUnlock()
		return l
	}
	ix.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := ix.locks[vendor]; ok {
		return l
	}
	l := &sync.Mutex{}
	ix.locks[vendor] = l
	return l
}

// BuildIndex chunks one document and publishes its index, replacing any
// previous index of the same source.
func (ix *Indexer) BuildIndex(ctx context.Context, vendor, source, rawText string) (models.DocumentIndex, error) {
	lock := ix.vendorLock(vendor)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return models.DocumentIndex{}, err
	}
	idx := models.DocumentIndex{
		Vendor: vendor,
		Source: source,
		Chunks: ix.chunker.Split(rawText),
	}
	if err := ix.store.Save(idx); err != nil {
		return models.DocumentIndex{}, err
	}
	ix.invalidate(vendor)
	return idx, nil
}

// BuildAllForVendor rebuilds every index of a vendor from its documents.
// All documents are extracted and chunked before the first index is
// published, so an extraction failure leaves the previous indexes untouched.
// Indexes whose source document has disappeared are removed afterwards.
func (ix *Indexer) BuildAllForVendor(ctx context.Context, vendor string) (report models.RebuildReport, err error) {
	ctx, span := otel.Tracer("indexer").Start(ctx, "index.rebuild_vendor")
	span.SetAttributes(attribute.String("vendor", vendor))
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		ix.metrics.RecordRebuild(vendor, status, report.Chunks, time.Since(start).Seconds())
		span.End()
	}()

	lock := ix.vendorLock(vendor)
	lock.Lock()
	defer lock.Unlock()

	report.Vendor = vendor

	docs, err := ix.docs.Documents(ctx, vendor)
	if err != nil {
		return report, fmt.Errorf("load documents for %s: %w", vendor, err)
	}

	records := make([]models.DocumentIndex, 0, len(docs))
	keep := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		chunks := ix.chunker.Split(d.Text)
		records = append(records, models.DocumentIndex{Vendor: vendor, Source: d.Name, Chunks: chunks})
		keep[d.Name] = struct{}{}
		report.Chunks += len(chunks)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	published := 0
	for _, rec := range records {
		if err := ix.store.Save(rec); err != nil {
			if published > 0 {
				ix.invalidate(vendor)
			}
			return report, err
		}
		published++
	}
	report.Documents = published

	existing, err := ix.store.Sources(vendor)
	if err != nil {
		ix.invalidate(vendor)
		return report, err
	}
	for _, src := range existing {
		if _, ok := keep[src]; ok {
			continue
		}
		if err := ix.store.Remove(vendor, src); err != nil {
			logger.Warn("Failed to remove stale index", "vendor", vendor, "source", src, "error", err)
			continue
		}
		report.Removed++
	}

	ix.invalidate(vendor)
	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("index.documents", report.Documents),
		attribute.Int("index.chunks", report.Chunks),
		attribute.Int("index.removed", report.Removed),
	)
	logger.Info("Vendor index rebuilt",
		"vendor", vendor,
		"documents", report.Documents,
		"chunks", report.Chunks,
		"removed", report.Removed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// BuildAll rebuilds every vendor the document source knows about. A failing
// vendor does not stop the others; all failures are returned joined.
func (ix *Indexer) BuildAll(ctx context.Context) ([]models.RebuildReport, error) {
	vendors, err := ix.docs.Vendors()
	if err != nil {
		return nil, err
	}
	reports := make([]models.RebuildReport, 0, len(vendors))
	var errs []error
	for _, v := range vendors {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		r, err := ix.BuildAllForVendor(ctx, v)
		if err != nil {
			logger.Error("Vendor rebuild failed", "vendor", v, "error", err)
			errs = append(errs, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}

func (ix *Indexer) invalidate(vendor string) {
	if ix.cache != nil {
		ix.cache.Invalidate(vendor)
	}
}
