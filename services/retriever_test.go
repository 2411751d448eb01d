package services

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/documents"
	"fdv-chatbot-platform/internal/index"
	"fdv-chatbot-platform/internal/retrieval"
	"fdv-chatbot-platform/internal/session"
	"fdv-chatbot-platform/models"
)

type staticLister map[string][]string

func (l staticLister) List(vendor string) ([]string, error) {
	names, ok := l[vendor]
	if !ok {
		return nil, documents.ErrVendorNotFound
	}
	return names, nil
}

type fixture struct {
	store    *index.FileStore
	lister   staticLister
	sessions *session.MemoryStore
	policy   config.RetrievalPolicy
}

// newFixture indexes the given documents (vendor -> filename -> text).
func newFixture(t *testing.T, files map[string]map[string]string) *fixture {
	t.Helper()
	policy := config.DefaultRetrievalPolicy()
	policy.ChunkSize = 120
	policy.ChunkOverlap = 20

	chunker, err := retrieval.NewChunker(policy.ChunkSize, policy.ChunkOverlap)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	f := &fixture{
		store:    index.NewFileStore(t.TempDir()),
		lister:   staticLister{},
		sessions: session.NewMemoryStore(),
		policy:   policy,
	}
	indexer := index.NewIndexer(f.store, nil, chunker)
	for vendor, docs := range files {
		names := make([]string, 0, len(docs))
		for name, text := range docs {
			if _, err := indexer.BuildIndex(context.Background(), vendor, name, text); err != nil {
				t.Fatalf("BuildIndex(%s/%s): %v", vendor, name, err)
			}
			names = append(names, name)
		}
		sort.Strings(names)
		f.lister[vendor] = names
	}
	return f
}

func (f *fixture) retriever() *Retriever {
	return NewRetriever(f.store, f.lister, f.sessions, f.policy, nil)
}

func TestSearchEmptyVendor(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{})
	hits, sources, err := f.retriever().Search(context.Background(), "temperature", "acme", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 || len(sources) != 0 {
		t.Fatalf("expected empty results, got hits=%v sources=%v", hits, sources)
	}
}

func TestSearchFindsTemperatureSensor(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"TS200.txt": "The temperature sensor measures duct air between -30 and +70 degrees.",
			"valve.txt": "Motorized valve with spring return actuator.",
		},
	})
	hits, sources, err := f.retriever().Search(context.Background(), "temperature", "acme", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(sources, []string{"TS200.txt"}) {
		t.Fatalf("expected TS200.txt as sole source, got %q", sources)
	}
	if len(hits) == 0 || hits[0].Score < 1 {
		t.Fatalf("expected a hit with score >= 1, got %+v", hits)
	}
}

func TestSearchRanksAndLimits(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"a.txt": "pump",
			"b.txt": "pump pump pump",
			"c.txt": "pump pump",
			"d.txt": "fan",
		},
	})
	hits, sources, err := f.retriever().Search(context.Background(), "pump", "acme", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Source != "b.txt" || hits[1].Source != "c.txt" {
		t.Fatalf("unexpected ranking %+v", hits)
	}
	if !reflect.DeepEqual(sources, []string{"b.txt", "c.txt"}) {
		t.Fatalf("unexpected sources %q", sources)
	}
}

func TestSearchTiesKeepEnumerationOrder(t *testing.T) {
	// two windows of 120 runes, each holding one "pump"
	twoChunks := "pump" + strings.Repeat(".", 146) + "pump" + strings.Repeat(".", 66)
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"a.txt": "pump",
			"b.txt": twoChunks,
			"c.txt": "pump pump",
			"d.txt": "pump",
		},
	})
	hits, sources, err := f.retriever().Search(context.Background(), "pump", "acme", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	gotOrder := make([]string, 0, len(hits))
	for _, h := range hits {
		gotOrder = append(gotOrder, h.Source)
	}
	if want := []string{"c.txt", "a.txt", "b.txt", "b.txt", "d.txt"}; !reflect.DeepEqual(gotOrder, want) {
		t.Fatalf("expected hit order %q, got %q", want, gotOrder)
	}
	if !strings.HasPrefix(hits[2].Text, "pump") || !strings.HasPrefix(hits[3].Text, ".") {
		t.Fatalf("equal-score chunks of one source must keep reading order, got %q then %q", hits[2].Text[:8], hits[3].Text[:8])
	}
	if want := []string{"c.txt", "a.txt", "b.txt", "d.txt"}; !reflect.DeepEqual(sources, want) {
		t.Fatalf("expected sources %q, got %q", want, sources)
	}
}

func TestRetrieveFollowUpUsesSession(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"PS100.pdf": "Trykktransmitter for vannbårne anlegg. Utgang 4-20 mA.",
			"other.pdf": "Ventilasjonsaggregat med roterende varmegjenvinner.",
		},
	})
	r := f.retriever()
	ctx := context.Background()

	first, err := r.Retrieve(ctx, "pressure sensor PS100", "acme", "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if first.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}
	if !reflect.DeepEqual(first.Sources, []string{"PS100.pdf"}) {
		t.Fatalf("expected filename match on PS100, got %q", first.Sources)
	}
	if !first.UsedRetrieval {
		t.Fatalf("expected retrieval to be used")
	}

	second, err := r.Retrieve(ctx, "ja", "acme", first.SessionID)
	if err != nil {
		t.Fatalf("Retrieve follow-up: %v", err)
	}
	if !reflect.DeepEqual(second.Sources, first.Sources) {
		t.Fatalf("expected follow-up to reuse %q, got %q", first.Sources, second.Sources)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id must be echoed")
	}
	if !strings.Contains(second.ContextText, "[PS100.pdf]") {
		t.Fatalf("expected context tagged with the source, got %q", second.ContextText)
	}
}

func TestRetrieveLongQueryDoesNotUseSession(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {"PS100.txt": "Trykktransmitter."},
	})
	r := f.retriever()
	ctx := context.Background()

	if err := f.sessions.Set(ctx, "s1", []string{"PS100.txt"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	res, err := r.Retrieve(ctx, "what about the one we talked about earlier today", "acme", "s1")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res.UsedRetrieval || len(res.Sources) != 0 || res.ContextText != "" {
		t.Fatalf("long unmatched queries must not fall back to the session, got %+v", res)
	}
}

func TestRetrieveFollowUpThresholdIsConfigurable(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {"PS100.txt": "Trykktransmitter."},
	})
	f.policy.FollowUpMaxTokens = 1
	r := f.retriever()
	ctx := context.Background()
	_ = f.sessions.Set(ctx, "s1", []string{"PS100.txt"})

	res, err := r.Retrieve(ctx, "ja", "acme", "s1")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res.UsedRetrieval {
		t.Fatalf("a one-token query must not count as follow-up when the threshold is 1")
	}
}

func TestRetrieveDeduplicatesKeywordAndFilenameSources(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"manual.txt": "General manual mentioning the pressure range of all sensors.",
			"PS100.txt":  "PS100 pressure transmitter, pressure range 0-10 bar.",
		},
	})
	res, err := f.retriever().Retrieve(context.Background(), "pressure PS100", "acme", "s")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if want := []string{"PS100.txt", "manual.txt"}; !reflect.DeepEqual(res.Sources, want) {
		t.Fatalf("expected %q, got %q", want, res.Sources)
	}
	stored, _ := f.sessions.Get(context.Background(), "s")
	if !reflect.DeepEqual(stored, res.Sources) {
		t.Fatalf("sources must be stored in the session, got %q", stored)
	}
}

func TestRetrieveReloadsAtMostFourChunksPerSource(t *testing.T) {
	long := strings.Repeat("Vedlikeholdsintervall for filterbytte er seks måneder. ", 40)
	f := newFixture(t, map[string]map[string]string{
		"acme": {"filter.txt": long},
	})
	res, err := f.retriever().Retrieve(context.Background(), "filterbytte", "acme", "s")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res.Hits) != f.policy.ChunksPerSource {
		t.Fatalf("expected %d reloaded chunks, got %d", f.policy.ChunksPerSource, len(res.Hits))
	}
}

func TestBuildContextTruncatesToBudget(t *testing.T) {
	hits := []models.ScoredChunk{
		{Source: "a.txt", Text: strings.Repeat("æ", 50)},
		{Source: "b.txt", Text: strings.Repeat("ø", 50)},
	}
	ctxText := BuildContext(hits, 60)
	if n := utf8.RuneCountInString(ctxText); n != 60 {
		t.Fatalf("expected 60 characters, got %d", n)
	}
	if !strings.HasPrefix(ctxText, "[a.txt]\n") {
		t.Fatalf("expected source tag first, got %q", ctxText[:10])
	}
	if BuildContext(nil, 60) != "" {
		t.Fatalf("expected empty context without hits")
	}
}

func TestRetrieveAppendsFilenameMatchesAfterKeywordSources(t *testing.T) {
	f := newFixture(t, map[string]map[string]string{
		"acme": {
			"manual.txt": "General manual describing the pressure ranges of the plant.",
			"PS100.txt":  "Trykktransmitter for vannbårne anlegg.",
		},
	})
	res, err := f.retriever().Retrieve(context.Background(), "pressure PS100", "acme", "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if want := []string{"manual.txt", "PS100.txt"}; !reflect.DeepEqual(res.Sources, want) {
		t.Fatalf("expected %q, got %q", want, res.Sources)
	}
	manualAt := strings.Index(res.ContextText, "[manual.txt]")
	productAt := strings.Index(res.ContextText, "[PS100.txt]")
	if manualAt < 0 || productAt < manualAt {
		t.Fatalf("expected keyword source before filename match in context, got %q", res.ContextText)
	}
}
