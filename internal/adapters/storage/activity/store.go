package activity

import (
	"context"

	domain "activityboard/internal/domain/activity"
)

// Store persists the activity catalog and rosters.
type Store interface {
	List(ctx context.Context) (domain.Catalog, error)
	Save(ctx context.Context, value domain.Activity) error
	AddParticipant(ctx context.Context, name, email string) error
	RemoveParticipant(ctx context.Context, name, email string) error
}
