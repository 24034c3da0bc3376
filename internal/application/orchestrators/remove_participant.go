package orchestrators

import (
	"context"
	"log/slog"

	"activityboard/internal/adapters/activitiesapi"
	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
	"activityboard/internal/observability"
)

// RemovalAPI is the slice of the Activities API used by removal.
type RemovalAPI interface {
	RemoveParticipant(ctx context.Context, activityName, email string) (activitiesapi.Message, error)
}

// RemoveParticipantInput carries a remove click.
type RemoveParticipantInput struct {
	Email     string
	Activity  string
	Confirmed bool
}

// RemoveParticipantDeps holds dependencies for RemoveParticipant.
type RemoveParticipantDeps struct {
	API      RemovalAPI
	Notifier Notifier // optional
}

// RemoveParticipantResult describes the feedback of a removal attempt.
// Message is empty when the removal was aborted before any request.
type RemoveParticipantResult struct {
	Message string
	Kind    board.ToastKind
}

// ExecuteRemoveParticipant removes a participant after confirmation.
// PRE: Confirmed is true, otherwise board.ErrNotConfirmed is returned
// POST: No API call is made unless the click was confirmed and complete
// INVARIANT: No optimistic change; the roster changes only by re-fetch
func ExecuteRemoveParticipant(ctx context.Context, input RemoveParticipantInput, deps RemoveParticipantDeps) (RemoveParticipantResult, error) {
	if !input.Confirmed {
		observability.RecordBoardEvent("removal_declined")
		return RemoveParticipantResult{}, board.ErrNotConfirmed
	}
	in := activity.RemovalInput{Email: input.Email, Activity: input.Activity}
	if err := in.Validate(); err != nil {
		return RemoveParticipantResult{Message: MsgGenericHTTPError, Kind: board.KindError}, err
	}

	resp, err := deps.API.RemoveParticipant(ctx, in.Activity, in.Email)
	if err != nil {
		if apiErr, ok := activitiesapi.AsAPIError(err); ok {
			observability.RecordBoardEvent("removal_rejected")
			return RemoveParticipantResult{Message: orDefault(apiErr.Detail, MsgGenericHTTPError), Kind: board.KindError}, err
		}
		observability.RecordBoardEvent("removal_failed")
		slog.Error("board_event", "event", "removal_failed", "activity", in.Activity, "error", err)
		return RemoveParticipantResult{Message: MsgRemovalFailed, Kind: board.KindError}, err
	}

	observability.RecordBoardEvent("removal_succeeded")
	slog.Info("board_event", "event", "removal_succeeded", "activity", in.Activity)
	notifyParticipant(ctx, deps.Notifier, noticeRemoved, in.Email, in.Activity)

	return RemoveParticipantResult{Message: orDefault(resp.Message, MsgRemovalOK), Kind: board.KindSuccess}, nil
}
