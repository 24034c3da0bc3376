package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"activityboard/internal/domain/board"
)

func newListCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show all activities with availability and participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := opts.newBoard().Refresh(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return err
				}
			} else {
				newPrinter(cmd).Board(view)
			}
			if view.Status == board.StatusFailed {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rendered board as JSON")
	return cmd
}
