package commands

import (
	"github.com/spf13/cobra"

	"activityboard/internal/domain/board"
)

func newSignupCommand(opts *globalOptions) *cobra.Command {
	var form board.SignupForm
	cmd := &cobra.Command{
		Use:     "signup",
		Short:   "Sign a student up for an activity",
		Example: `  boardctl signup --email zoe@mergington.edu --activity "Chess Club"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := opts.newBoard()
			p := newPrinter(cmd)
			b.Refresh(cmd.Context())

			_, err := b.Signup(cmd.Context(), form)
			if err := printToast(p, b, err); err != nil {
				return err
			}
			if c, ok := b.View().Card(form.Activity); ok {
				p.Card(c)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "Student email")
	cmd.Flags().StringVar(&form.Activity, "activity", "", "Activity name")
	return cmd
}
