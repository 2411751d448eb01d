package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fdv-chatbot-platform/models"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeAsker struct {
	reqs []models.AskRequest
	err  error
}

func (f *fakeAsker) Ask(_ context.Context, req models.AskRequest) (models.AskResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return models.AskResponse{}, f.err
	}
	return models.AskResponse{Answer: "0-10 bar", Sources: []string{"PS100.pdf"}, SessionID: "s-1"}, nil
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestAskRoundTrip(t *testing.T) {
	asker := &fakeAsker{}
	var m tea.Model = New(asker, "acme", "driftsleder", "", 0)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeText(m, "måleområde PS100?")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected an ask command")
	}
	if !m.(Model).waiting {
		t.Fatalf("model must wait for the answer")
	}

	m, _ = m.Update(cmd())
	got := m.(Model)
	if got.SessionID() != "s-1" {
		t.Fatalf("expected session to be adopted, got %q", got.SessionID())
	}
	view := got.View()
	if !strings.Contains(view, "0-10 bar") || !strings.Contains(view, "PS100.pdf") {
		t.Fatalf("answer missing from view:\n%s", view)
	}
	if len(asker.reqs) != 1 || asker.reqs[0].Vendor != "acme" || asker.reqs[0].Role != "driftsleder" {
		t.Fatalf("unexpected request %+v", asker.reqs)
	}

	// the follow-up carries the session id
	m = typeText(m, "ja")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	if asker.reqs[1].SessionID != "s-1" {
		t.Fatalf("follow-up must reuse the session, got %+v", asker.reqs[1])
	}
}

func TestAskError(t *testing.T) {
	var m tea.Model = New(&fakeAsker{err: errors.New("nede")}, "acme", "", "", 0)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeText(m, "hei")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())
	if !strings.Contains(m.View(), "nede") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestEmptyInputDoesNothing(t *testing.T) {
	var m tea.Model = New(&fakeAsker{}, "acme", "", "", 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("blank input must not ask")
	}
}

func TestQuitKeys(t *testing.T) {
	var m tea.Model = New(&fakeAsker{}, "acme", "", "", 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
