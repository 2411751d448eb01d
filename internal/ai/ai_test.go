package ai

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSystemInstruction(t *testing.T) {
	if got := SystemInstruction("prosjektleder"); got != "Du er en faglig prosjektassistent. Brukerrolle: prosjektleder" {
		t.Fatalf("unexpected instruction %q", got)
	}
	if got := SystemInstruction("  "); !strings.HasSuffix(got, DefaultRole) {
		t.Fatalf("expected default role, got %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	plain := BuildPrompt(AnswerInput{Question: "Hei?"})
	if plain != "Hei?" {
		t.Fatalf("question without context must pass through, got %q", plain)
	}

	p := BuildPrompt(AnswerInput{
		Question: "Hva er måleområdet?",
		Vendor:   "acme",
		Context:  "[PS100.pdf]\n0-10 bar",
	})
	if !strings.Contains(p, "[PS100.pdf]\n0-10 bar") || !strings.Contains(p, "leverandør acme") {
		t.Fatalf("context missing from prompt: %q", p)
	}
	if !strings.HasSuffix(p, "Spørsmål: Hva er måleområdet?") {
		t.Fatalf("question must come last: %q", p)
	}
}

func TestContextOnlyAnswerer(t *testing.T) {
	var a Answerer = ContextOnlyAnswerer{}
	got, err := a.Answer(context.Background(), AnswerInput{Question: "x"})
	if err != nil || !strings.Contains(got, "Fant ingen") {
		t.Fatalf("unexpected answer %q, %v", got, err)
	}
	got, _ = a.Answer(context.Background(), AnswerInput{Context: "[a.pdf]\ntekst", Sources: []string{"a.pdf"}})
	if !strings.Contains(got, "a.pdf") || !strings.Contains(got, "tekst") {
		t.Fatalf("expected excerpts in answer, got %q", got)
	}
}

func TestTokenCounterLimits(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tc := NewTokenCounter(RateLimits{RPM: 2, TPM: 100, RPD: 3})
	tc.now = func() time.Time { return now }

	if !tc.CanConsume(50, 1) {
		t.Fatalf("first request must pass")
	}
	tc.RecordUsage(50, 1)
	if tc.CanConsume(60, 1) {
		t.Fatalf("token budget per minute must be enforced")
	}
	tc.RecordUsage(10, 1)
	if tc.CanConsume(1, 1) {
		t.Fatalf("request budget per minute must be enforced")
	}

	now = now.Add(time.Minute)
	if !tc.CanConsume(10, 1) {
		t.Fatalf("minute window must reset")
	}
	tc.RecordUsage(10, 1)
	if tc.CanConsume(10, 1) {
		t.Fatalf("daily request budget must be enforced")
	}
}

func TestGetRateLimits(t *testing.T) {
	if getRateLimits("tier2").RPM != 2000 {
		t.Fatalf("tier2 limits not applied")
	}
	if getRateLimits("unknown") != getRateLimits("free") {
		t.Fatalf("unknown tiers must fall back to free")
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient("", "gemini-2.0-flash", "free", nil); err == nil {
		t.Fatalf("expected error without api key")
	}
}
