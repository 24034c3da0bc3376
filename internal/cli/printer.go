// Package cli renders the activity board and its toasts in a terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"activityboard/internal/domain/board"
)

func init() {
	// Force color output even when not connected to TTY.
	// Users can disable with NO_COLOR.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// Printer writes board output to a terminal stream.
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter returns a printer writing normal output to out and errors to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Toast prints a feedback message coloured by kind.
func (p *Printer) Toast(t board.Toast) {
	switch t.Kind {
	case board.KindSuccess:
		green.Fprintf(p.out, "✓ %s\n", t.Text)
	case board.KindError:
		red.Fprintf(p.err, "✗ %s\n", t.Text)
	default:
		cyan.Fprintf(p.out, "→ %s\n", t.Text)
	}
}

// Warning prints a warning in yellow.
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	yellow.Fprintf(p.err, "⚠️  %s\n", strings.TrimSuffix(msg, "\n"))
}

// Board prints every card of the view, or the placeholder text when the
// catalog is not loaded.
func (p *Printer) Board(v board.View) {
	switch v.Status {
	case board.StatusLoading:
		fmt.Fprintln(p.out, board.LoadingText)
		return
	case board.StatusFailed:
		red.Fprintln(p.err, v.ErrorText)
		return
	}
	for i, c := range v.Cards {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		p.Card(c)
	}
}

// Card prints one activity with its availability and roster.
func (p *Printer) Card(c board.Card) {
	bold.Fprintln(p.out, c.Name)
	fmt.Fprintf(p.out, "  %s\n", c.Description)
	fmt.Fprintf(p.out, "  Schedule: %s\n", c.Schedule)
	fmt.Fprintf(p.out, "  Availability: %d spots left\n", c.SpotsLeft)
	fmt.Fprintf(p.out, "  Participants (%d)\n", c.ParticipantCount())
	if len(c.Participants) == 0 {
		fmt.Fprintf(p.out, "    %s\n", board.NoParticipantsText)
		return
	}
	for _, pt := range c.Participants {
		fmt.Fprintf(p.out, "    %s %s\n", cyan.Sprintf("[%s]", pt.Initials), pt.Email)
	}
}

// Error prints a formatted error with an explanation and suggestions to the
// error stream and returns a plain error for cobra.
func (p *Printer) Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(p.err, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(p.err, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(p.err, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(p.err, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.err, "Either:\n")
			for i, s := range suggestions {
				fmt.Fprintf(p.err, "  %d. %s\n", i+1, s)
			}
		}
	}
	return fmt.Errorf("%s", title)
}
