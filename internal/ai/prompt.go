package ai

import (
	"context"
	"fmt"
	"strings"
)

// DefaultRole is used when the caller does not say who is asking.
const DefaultRole = "prosjektdeltaker"

// SystemInstruction is the system prompt for a user role.
func SystemInstruction(role string) string {
	if strings.TrimSpace(role) == "" {
		role = DefaultRole
	}
	return fmt.Sprintf("Du er en faglig prosjektassistent. Brukerrolle: %s", role)
}

// BuildPrompt places the retrieved document excerpts ahead of the question.
// Without context the question is sent as is.
func BuildPrompt(in AnswerInput) string {
	if in.Context == "" {
		return in.Question
	}

	var b strings.Builder
	b.WriteString("Bruk følgende utdrag fra dokumentasjonen")
	if in.Vendor != "" {
		fmt.Fprintf(&b, " for leverandør %s", in.Vendor)
	}
	b.WriteString(". Oppgi hvilke kilder du bygger på.\n\n")
	b.WriteString(in.Context)
	b.WriteString("\n\nSpørsmål: ")
	b.WriteString(in.Question)
	return b.String()
}

// ContextOnlyAnswerer answers without a language model by returning the
// retrieved excerpts. It serves `docbot ask --no-llm` and deployments
// without a Gemini key.
type ContextOnlyAnswerer struct{}

func (ContextOnlyAnswerer) Answer(_ context.Context, in AnswerInput) (string, error) {
	if in.Context == "" {
		return "Fant ingen relevante dokumenter for spørsmålet.", nil
	}
	return "Relevante utdrag (" + strings.Join(in.Sources, ", ") + "):\n\n" + in.Context, nil
}
