package main

import (
	"fmt"

	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/utils"

	"github.com/spf13/cobra"
)

func hashPasswordCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost := 12
			if cfg, err := config.LoadConfig(); err == nil {
				cost = cfg.BcryptCost
			}
			hash, err := utils.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
