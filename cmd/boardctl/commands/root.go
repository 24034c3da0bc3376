package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"activityboard/internal/adapters/activitiesapi"
	appBoard "activityboard/internal/application/board"
	"activityboard/internal/cli"
	"activityboard/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

// globalOptions holds the persistent flags shared by all subcommands.
type globalOptions struct {
	apiURL  string
	timeout time.Duration
}

// NewRootCommand builds the boardctl command tree. Flag defaults come from cfg.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "boardctl",
		Short: "boardctl - Mergington High School activity board",
		Long: `boardctl shows the extracurricular activities served by the Activities API
and signs students up for them or removes them from a roster.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", cfg.APIURL, "Activities API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.APITimeout, "Activities API request timeout")

	root.AddCommand(newListCommand(opts), newSignupCommand(opts), newRemoveCommand(opts))
	return root
}

// Execute loads configuration and runs the command tree.
// Errors not already printed by a command are printed to stderr.
func Execute() error {
	p := cli.NewPrinter(os.Stdout, os.Stderr)
	cfg, err := config.Load()
	if err != nil {
		return p.Error("Invalid configuration", err.Error(), []string{
			"Check the BOARD_* variables in your environment or .env file",
		})
	}
	root := NewRootCommand(cfg)
	return reportError(p, root.Execute())
}

// reportError prints errors that no command has printed yet, such as flag
// parse failures.
func reportError(p *cli.Printer, err error) error {
	if err == nil || errors.Is(err, errReported) {
		return err
	}
	return p.Error("boardctl failed", err.Error(), []string{
		"Run 'boardctl --help' for usage",
	})
}

// SetVersionInfo sets the version information shown by --version.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func (o *globalOptions) newBoard() *appBoard.Board {
	return appBoard.New(appBoard.Deps{API: activitiesapi.NewClient(o.apiURL, o.timeout)})
}

func newPrinter(cmd *cobra.Command) *cli.Printer {
	return cli.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// printToast prints the board's pending toast and turns an operation error
// into errReported.
func printToast(p *cli.Printer, b *appBoard.Board, opErr error) error {
	if t, ok := b.TakeToast(); ok {
		p.Toast(t)
	}
	if opErr != nil {
		return errReported
	}
	return nil
}
