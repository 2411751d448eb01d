package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fdv-chatbot-platform/internal/ai"
	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/index"
	"fdv-chatbot-platform/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		DocumentsDir:      filepath.Join(root, "docs"),
		IndexDir:          filepath.Join(root, "index"),
		Retrieval:         config.DefaultRetrievalPolicy(),
		IndexCacheEnabled: true,
		SessionBackend:    "memory",
	}
}

func TestNewCoreEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(cfg.DocumentsDir, "acme")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pump.md"), []byte("# Pumpe\nSirkulasjonspumpe med trinnløs regulering."), 0o644); err != nil {
		t.Fatal(err)
	}

	core, err := NewCore(cfg, nil)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	if _, ok := core.Reader.(*index.Cache); !ok {
		t.Fatalf("expected cached reader, got %T", core.Reader)
	}
	if _, err := core.Indexer.BuildAll(context.Background()); err != nil {
		t.Fatalf("BuildAll: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions, err := core.NewSessionStore(ctx, nil)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	if _, ok := sessions.(*session.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", sessions)
	}

	res, err := core.NewRetriever(sessions).Retrieve(ctx, "sirkulasjonspumpe", "acme", "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0] != "pump.md" {
		t.Fatalf("unexpected sources %q", res.Sources)
	}
}

func TestNewCoreRejectsBadChunking(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retrieval.ChunkOverlap = cfg.Retrieval.ChunkSize
	if _, err := NewCore(cfg, nil); err == nil {
		t.Fatalf("expected chunker error")
	}
}

func TestNewAnswererWithoutKey(t *testing.T) {
	core, err := NewCore(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	a, closeFn, err := core.NewAnswerer(false)
	if err != nil {
		t.Fatalf("NewAnswerer: %v", err)
	}
	defer closeFn()
	if _, ok := a.(ai.ContextOnlyAnswerer); !ok {
		t.Fatalf("expected context-only answerer, got %T", a)
	}
}

func TestRedisSessionsRequireClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionBackend = "redis"
	core, err := NewCore(cfg, nil)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	if _, err := core.NewSessionStore(context.Background(), nil); err == nil {
		t.Fatalf("expected error without redis client")
	}
}
