package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics records nothing,
// which keeps the CLI and tests free of telemetry setup.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	TokensUsed          metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
	Rebuilds            metric.Int64Counter
	RebuildDuration     metric.Float64Histogram
	ChunksIndexed       metric.Int64Counter
	CorruptIndexes      metric.Int64Counter
	Retrievals          metric.Int64Counter
	RetrievalDuration   metric.Float64Histogram
	ContextChars        metric.Int64Histogram
	DatabaseOperations  metric.Int64Counter
}

// InitMetrics initializes all application metrics on the global meter provider.
func InitMetrics(serviceName string) (*Metrics, error) {
	meter := otel.Meter(serviceName)
	m := &Metrics{}
	var err error

	if m.RequestCounter, err = meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.TokensUsed, err = meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	); err != nil {
		return nil, err
	}
	if m.CircuitBreakerState, err = meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	); err != nil {
		return nil, err
	}
	if m.Rebuilds, err = meter.Int64Counter(
		"index.rebuilds.total",
		metric.WithDescription("Vendor index rebuilds"),
	); err != nil {
		return nil, err
	}
	if m.RebuildDuration, err = meter.Float64Histogram(
		"index.rebuild.duration",
		metric.WithDescription("Vendor index rebuild duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ChunksIndexed, err = meter.Int64Counter(
		"index.chunks.written",
		metric.WithDescription("Chunks written by index rebuilds"),
	); err != nil {
		return nil, err
	}
	if m.CorruptIndexes, err = meter.Int64Counter(
		"index.corrupt.skipped",
		metric.WithDescription("Index files skipped because they could not be read"),
	); err != nil {
		return nil, err
	}
	if m.Retrievals, err = meter.Int64Counter(
		"retrieval.queries.total",
		metric.WithDescription("Retrieval queries by the path that produced the sources"),
	); err != nil {
		return nil, err
	}
	if m.RetrievalDuration, err = meter.Float64Histogram(
		"retrieval.duration",
		metric.WithDescription("Retrieval duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ContextChars, err = meter.Int64Histogram(
		"retrieval.context.chars",
		metric.WithDescription("Characters of context handed to the language model"),
	); err != nil {
		return nil, err
	}
	if m.DatabaseOperations, err = meter.Int64Counter(
		"database.operations.total",
		metric.WithDescription("Total database operations"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	)
	m.RequestCounter.Add(context.Background(), 1, attrs)
	m.RequestDuration.Record(context.Background(), duration, attrs)
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	if m == nil {
		return
	}
	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(
		attribute.String("gemini.model", model),
	))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("state", state),
	))
}

// RecordRebuild records one vendor rebuild. status is "success" or "error".
func (m *Metrics) RecordRebuild(vendor, status string, chunks int, duration float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("status", status),
	)
	m.Rebuilds.Add(context.Background(), 1, attrs)
	m.RebuildDuration.Record(context.Background(), duration, attrs)
	if chunks > 0 {
		m.ChunksIndexed.Add(context.Background(), int64(chunks), metric.WithAttributes(attribute.String("vendor", vendor)))
	}
}

func (m *Metrics) RecordCorruptIndex(vendor string) {
	if m == nil {
		return
	}
	m.CorruptIndexes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("vendor", vendor)))
}

// RecordRetrieval records which path produced the sources of a query:
// "keyword", "filename", "session" or "none".
func (m *Metrics) RecordRetrieval(vendor, path string, contextChars int, duration float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("path", path),
	)
	m.Retrievals.Add(context.Background(), 1, attrs)
	m.RetrievalDuration.Record(context.Background(), duration, attrs)
	m.ContextChars.Record(context.Background(), int64(contextChars), attrs)
}

// RecordDatabaseOperation records database operation metrics
func (m *Metrics) RecordDatabaseOperation(operation, collection string, success bool) {
	if m == nil {
		return
	}
	m.DatabaseOperations.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
		attribute.Bool("db.success", success),
	))
}
