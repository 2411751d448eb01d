package main

import (
	"fdv-chatbot-platform/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func chatCMD() *cobra.Command {
	var role string
	var noLLM bool
	var chat = &cobra.Command{
		Use:   "chat <vendor>",
		Short: "Interactive terminal chat over one vendor's documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, closeFn, err := newLocalAssistant(noLLM)
			if err != nil {
				return err
			}
			defer closeFn()

			m := tui.New(assistant, args[0], role, "", 0)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	chat.Flags().StringVar(&role, "role", "", "user role given to the model")
	chat.Flags().BoolVar(&noLLM, "no-llm", false, "show retrieved excerpts instead of calling the model")
	return chat
}
