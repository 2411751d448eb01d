package main

import (
	"errors"
	"fmt"
	"time"

	"fdv-chatbot-platform/models"

	"github.com/spf13/cobra"
)

func rebuildCMD() *cobra.Command {
	var all bool
	var rebuild = &cobra.Command{
		Use:   "rebuild [vendor]",
		Short: "Rebuild the search index of one vendor or of every vendor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either a vendor or --all")
			}
			core, err := loadCore()
			if err != nil {
				return err
			}

			var reports []models.RebuildReport
			if all {
				reports, err = core.Indexer.BuildAll(cmd.Context())
			} else {
				var r models.RebuildReport
				if r, err = core.Indexer.BuildAllForVendor(cmd.Context(), args[0]); err != nil {
					return err
				}
				reports = append(reports, r)
			}
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %4d documents %6d chunks %3d removed %s\n",
					r.Vendor, r.Documents, r.Chunks, r.Removed, r.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	rebuild.Flags().BoolVar(&all, "all", false, "rebuild every vendor")
	return rebuild
}
