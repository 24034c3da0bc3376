// Package board holds the per-visitor ActivityBoard controller and the
// registry that keys boards by visitor session.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"activityboard/internal/application/orchestrators"
	"activityboard/internal/application/projections"
	domainBoard "activityboard/internal/domain/board"
	"activityboard/internal/observability"
)

// API is the Activities API surface a board needs.
type API interface {
	projections.CatalogSource
	orchestrators.SignupAPI
	orchestrators.RemovalAPI
}

// Deps holds dependencies shared by all boards.
type Deps struct {
	API      API
	Notifier orchestrators.Notifier // optional
}

// Board is one visitor's ActivityBoard: the rendered view, the sticky form
// values and the pending toast.
// INVARIANT: network calls are never made while mu is held
type Board struct {
	deps Deps
	now  func() time.Time

	mu    sync.Mutex
	view  domainBoard.View
	form  domainBoard.SignupForm
	toast *domainBoard.Toast
	// issued is the last fetch ticket handed out; applied is the ticket of
	// the render currently in view.
	issued  uint64
	applied uint64
}

// New creates a board in the loading state.
func New(deps Deps) *Board {
	return &Board{
		deps: deps,
		now:  time.Now,
		view: domainBoard.Loading(),
	}
}

// Refresh fetches the catalog and renders it.
// POST: Returns the view after this fetch; a fetch that completes after a
// newer one has been applied is discarded
func (b *Board) Refresh(ctx context.Context) domainBoard.View {
	b.mu.Lock()
	b.issued++
	ticket := b.issued
	prev := b.view
	b.mu.Unlock()

	res := projections.QueryGetActivityBoard(ctx, projections.GetActivityBoardQuery{Previous: prev}, projections.GetActivityBoardDeps{Source: b.deps.API})

	b.mu.Lock()
	defer b.mu.Unlock()
	if ticket < b.applied {
		observability.RecordBoardEvent("fetch_stale")
		slog.Info("board_event", "event", "fetch_stale", "ticket", ticket, "applied", b.applied)
		return b.view
	}
	b.applied = ticket
	if res.LoadErr != nil {
		// Options of the render on screen survive, not those seen at ticket time.
		b.view = b.view.Failed()
	} else {
		b.view = res.View
	}
	return b.view
}

// SignupOutcome is the result of a sign-up submitted through a board.
type SignupOutcome struct {
	orchestrators.SignupResult
	// Patched is the view with the optimistic row applied, as it stood before
	// the re-fetch. Zero when the sign-up failed.
	Patched domainBoard.View
}

// Signup submits the form, patches the view on success and re-fetches.
// POST: A toast is pending; the form is reset only on success
// POST: Validation failures issue no request and no re-fetch
func (b *Board) Signup(ctx context.Context, form domainBoard.SignupForm) (SignupOutcome, error) {
	b.mu.Lock()
	b.form = form
	b.mu.Unlock()

	res, err := orchestrators.ExecuteSignup(ctx, orchestrators.SignupInput{Email: form.Email, Activity: form.Activity}, orchestrators.SignupDeps{
		API:      b.deps.API,
		Notifier: b.deps.Notifier,
	})

	out := SignupOutcome{SignupResult: res}
	b.mu.Lock()
	b.setToastLocked(res.Message, res.Kind)
	if res.Patch != nil {
		b.form = domainBoard.SignupForm{}
		b.view = b.view.Apply(*res.Patch)
		out.Patched = b.view
	}
	b.mu.Unlock()

	if err == nil {
		b.Refresh(ctx)
	}
	return out, err
}

// Remove removes a participant after confirmation and re-fetches on success.
// POST: An unconfirmed click returns domainBoard.ErrNotConfirmed and changes nothing
func (b *Board) Remove(ctx context.Context, click domainBoard.RemoveClick) (orchestrators.RemoveParticipantResult, error) {
	res, err := orchestrators.ExecuteRemoveParticipant(ctx, orchestrators.RemoveParticipantInput{
		Email:     click.Email,
		Activity:  click.Activity,
		Confirmed: click.Confirmed,
	}, orchestrators.RemoveParticipantDeps{
		API:      b.deps.API,
		Notifier: b.deps.Notifier,
	})
	if errors.Is(err, domainBoard.ErrNotConfirmed) {
		return res, err
	}

	b.mu.Lock()
	b.setToastLocked(res.Message, res.Kind)
	b.mu.Unlock()

	if err == nil {
		b.Refresh(ctx)
	}
	return res, err
}

func (b *Board) setToastLocked(text string, kind domainBoard.ToastKind) {
	if text == "" {
		return
	}
	t := domainBoard.NewToast(text, kind, b.now())
	b.toast = &t
}

// TakeToast returns the pending toast once. Expired toasts are dropped.
func (b *Board) TakeToast() (domainBoard.Toast, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.toast
	b.toast = nil
	if t == nil || t.Expired(b.now()) {
		return domainBoard.Toast{}, false
	}
	return *t, true
}

// View returns the view currently on screen.
func (b *Board) View() domainBoard.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Form returns the sticky form values.
func (b *Board) Form() domainBoard.SignupForm {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}
