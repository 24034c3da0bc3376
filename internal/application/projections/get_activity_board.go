package projections

import (
	"context"
	"log/slog"

	"activityboard/internal/domain/activity"
	"activityboard/internal/domain/board"
	"activityboard/internal/observability"
)

// CatalogSource is the read side of the Activities API.
type CatalogSource interface {
	ListActivities(ctx context.Context) (activity.Catalog, error)
}

// GetActivityBoardQuery carries the view the fetch replaces.
type GetActivityBoardQuery struct {
	// Previous is the view on screen; its options survive a failed fetch.
	Previous board.View
}

// GetActivityBoardDeps holds dependencies for the board projection.
type GetActivityBoardDeps struct {
	Source CatalogSource
}

// GetActivityBoardResult is the outcome of one catalog fetch.
type GetActivityBoardResult struct {
	View board.View
	// LoadErr is the fetch failure, already logged. The view shows the
	// failure placeholder.
	LoadErr error
}

// QueryGetActivityBoard fetches the catalog and renders it.
// PRE: deps.Source is set
// POST: View is either the rendered catalog or the failure placeholder
// INVARIANT: Fetch failures never propagate as an error return
func QueryGetActivityBoard(ctx context.Context, query GetActivityBoardQuery, deps GetActivityBoardDeps) GetActivityBoardResult {
	cat, err := deps.Source.ListActivities(ctx)
	if err != nil {
		observability.RecordBoardEvent("fetch_failed")
		slog.Error("board_event", "event", "fetch_failed", "error", err)
		return GetActivityBoardResult{View: query.Previous.Failed(), LoadErr: err}
	}
	observability.RecordBoardEvent("fetch_succeeded")
	return GetActivityBoardResult{View: board.Render(cat)}
}
