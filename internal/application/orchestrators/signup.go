package orchestrators

import (
	"context"
	"log/slog"

	"activityboard/internal/adapters/activitiesapi"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
	"activityboard/internal/observability"
)

// Feedback texts used when the API gives none.
const (
	MsgSignupOK         = "Signed up successfully"
	MsgSignupFailed     = "Failed to sign up. Please try again."
	MsgRemovalOK        = "Participant removed"
	MsgRemovalFailed    = "Failed to remove participant. Please try again."
	MsgGenericHTTPError = "An error occurred"
)

// SignupAPI is the slice of the Activities API used by sign-up.
type SignupAPI interface {
	Signup(ctx context.Context, activityName, email string) (activitiesapi.Message, error)
}

// SignupInput carries the submitted form.
type SignupInput struct {
	Email    string
	Activity string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	API      SignupAPI
	Notifier Notifier // optional
}

// SignupResult describes the feedback of a sign-up attempt.
type SignupResult struct {
	Message string
	Kind    board.ToastKind
	// Patch is set only when the API accepted the sign-up.
	Patch *board.Patch
}

// ExecuteSignup validates the form and submits the sign-up.
// PRE: none; empty email or activity is reported, not assumed away
// POST: On success Patch describes the optimistic row to add
// POST: On any failure the returned error is non-nil and no Patch is set;
// validation failures issue no API call
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	in := activity.SignupInput{Email: input.Email, Activity: input.Activity}.Normalize()
	if err := in.Validate(); err != nil {
		msg, _ := activity.ValidationMessage(err)
		observability.RecordBoardEvent("signup_invalid")
		return SignupResult{Message: msg, Kind: board.KindError}, err
	}

	resp, err := deps.API.Signup(ctx, in.Activity, in.Email)
	if err != nil {
		if apiErr, ok := activitiesapi.AsAPIError(err); ok {
			observability.RecordBoardEvent("signup_rejected")
			return SignupResult{Message: orDefault(apiErr.Detail, MsgGenericHTTPError), Kind: board.KindError}, err
		}
		observability.RecordBoardEvent("signup_failed")
		slog.Error("board_event", "event", "signup_failed", "activity", in.Activity, "error", err)
		return SignupResult{Message: MsgSignupFailed, Kind: board.KindError}, err
	}

	observability.RecordBoardEvent("signup_succeeded")
	slog.Info("board_event", "event", "signup_succeeded", "activity", in.Activity)
	notifyParticipant(ctx, deps.Notifier, noticeSignedUp, in.Email, in.Activity)

	return SignupResult{
		Message: orDefault(resp.Message, MsgSignupOK),
		Kind:    board.KindSuccess,
		Patch:   &board.Patch{Activity: in.Activity, Email: in.Email},
	}, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
