package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	return NewPrinter(out, errOut), out, errOut
}

func TestBoard(t *testing.T) {
	t.Run("prints cards in name order", func(t *testing.T) {
		p, out, _ := newTestPrinter()
		p.Board(board.Render(activity.Catalog{
			"Programming Class": {Description: "Learn programming", Schedule: "Tuesdays", MaxParticipants: 20, Participants: []string{"emma.j@mergington.edu"}},
			"Chess Club":        {Description: "Learn chess", Schedule: "Fridays", MaxParticipants: 12},
		}))

		s := out.String()
		chess := bytes.Index(out.Bytes(), []byte("Chess Club"))
		prog := bytes.Index(out.Bytes(), []byte("Programming Class"))
		require.True(t, chess >= 0 && prog > chess, "cards should be sorted: %s", s)
		require.Contains(t, s, "Availability: 12 spots left")
		require.Contains(t, s, "Availability: 19 spots left")
		require.Contains(t, s, "[EJ] emma.j@mergington.edu")
		require.Contains(t, s, "Participants (0)")
		require.Contains(t, s, board.NoParticipantsText)
	})

	t.Run("prints error text when load failed", func(t *testing.T) {
		p, out, errOut := newTestPrinter()
		p.Board(board.Loading().Failed())
		require.Empty(t, out.String())
		require.Contains(t, errOut.String(), board.LoadFailedText)
	})

	t.Run("prints loading text", func(t *testing.T) {
		p, out, _ := newTestPrinter()
		p.Board(board.Loading())
		require.Equal(t, board.LoadingText+"\n", out.String())
	})
}

func TestToast(t *testing.T) {
	now := time.Now()

	p, out, errOut := newTestPrinter()
	p.Toast(board.NewToast("Signed up", board.KindSuccess, now))
	p.Toast(board.NewToast("Activity not found", board.KindError, now))
	p.Toast(board.NewToast("Working", board.KindInfo, now))

	require.Equal(t, "✓ Signed up\n→ Working\n", out.String())
	require.Equal(t, "✗ Activity not found\n", errOut.String())
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		p, _, errOut := newTestPrinter()
		err := p.Error("Test Error", "This is a test error", nil)
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		require.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("numbers multiple suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter()
		err := p.Error("Test Error", "Explanation", []string{"First option", "Second option"})
		require.Equal(t, "Test Error", err.Error())
		require.Contains(t, errOut.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestWarning(t *testing.T) {
	p, _, errOut := newTestPrinter()
	p.Warning("removal cancelled\n")
	require.Equal(t, "⚠️  removal cancelled\n", errOut.String())
}
