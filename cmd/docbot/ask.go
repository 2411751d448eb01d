package main

import (
	"fmt"
	"strings"

	"fdv-chatbot-platform/internal/session"
	"fdv-chatbot-platform/models"
	"fdv-chatbot-platform/services"

	"github.com/spf13/cobra"
)

func askCMD() *cobra.Command {
	var sessionID, role string
	var noLLM bool
	var ask = &cobra.Command{
		Use:   "ask <vendor> <question>",
		Short: "Answer a single question from the vendor's documents",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, closeFn, err := newLocalAssistant(noLLM)
			if err != nil {
				return err
			}
			defer closeFn()

			resp, err := assistant.Ask(cmd.Context(), models.AskRequest{
				Question:  strings.Join(args[1:], " "),
				Role:      role,
				Vendor:    args[0],
				SessionID: sessionID,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Answer)
			if len(resp.Sources) > 0 {
				fmt.Fprintf(out, "\nKilder: %s\n", strings.Join(resp.Sources, ", "))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", resp.SessionID)
			return nil
		},
	}
	ask.Flags().StringVar(&sessionID, "session", "", "continue an earlier session")
	ask.Flags().StringVar(&role, "role", "", "user role given to the model")
	ask.Flags().BoolVar(&noLLM, "no-llm", false, "print the retrieved excerpts instead of calling the model")
	return ask
}

// newLocalAssistant wires an assistant with in-process sessions and no
// transcript store.
func newLocalAssistant(noLLM bool) (*services.Assistant, func(), error) {
	core, err := loadCore()
	if err != nil {
		return nil, nil, err
	}
	answerer, closeFn, err := core.NewAnswerer(noLLM)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.NewMemoryStore(session.WithTTL(core.Config.SessionTTL))
	return services.NewAssistant(core.NewRetriever(sessions), answerer, nil, core.Config.AITimeout), closeFn, nil
}
