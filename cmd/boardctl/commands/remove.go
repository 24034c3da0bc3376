package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"activityboard/internal/domain/board"
)

func newRemoveCommand(opts *globalOptions) *cobra.Command {
	var (
		click board.RemoveClick
		yes   bool
	)
	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Remove a student from an activity",
		Example: `  boardctl remove --email zoe@mergington.edu --activity "Chess Club" --yes`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			click.Confirmed = yes
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), board.ConfirmPrompt(click.Email, click.Activity))
				if err != nil {
					return err
				}
				click.Confirmed = ok
			}

			b := opts.newBoard()
			_, err := b.Remove(cmd.Context(), click)
			if errors.Is(err, board.ErrNotConfirmed) {
				p.Warning("Removal cancelled")
				return nil
			}
			return printToast(p, b, err)
		},
	}
	cmd.Flags().StringVar(&click.Email, "email", "", "Student email")
	cmd.Flags().StringVar(&click.Activity, "activity", "", "Activity name")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks prompt on out and reads a y/yes answer from in.
// End of input counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
