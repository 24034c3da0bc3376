package orchestrators

import (
	"context"
	"log/slog"

	"activityboard/internal/domain/activity"
)

// ActivityStoreForSeed defines the store interface needed by SeedActivities.
type ActivityStoreForSeed interface {
	Save(ctx context.Context, a activity.Activity) error
	List(ctx context.Context) (activity.Catalog, error)
}

// SeedActivitiesDeps holds dependencies for SeedActivities.
type SeedActivitiesDeps struct {
	Store ActivityStoreForSeed
}

// DefaultActivities is the Mergington High School catalog served by the
// reference API.
func DefaultActivities() []activity.Activity {
	return []activity.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Basketball Team",
			Description:     "Competitive basketball training and inter-school games",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 6:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu"},
		},
		{
			Name:            "Soccer Club",
			Description:     "Outdoor soccer practice and weekend matches",
			Schedule:        "Wednesdays, 3:30 PM - 5:30 PM; Saturdays, 10:00 AM - 12:00 PM",
			MaxParticipants: 22,
			Participants:    []string{"noah@mergington.edu", "ava@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore painting, drawing and mixed media",
			Schedule:        "Mondays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"isabella@mergington.edu"},
		},
		{
			Name:            "Drama Club",
			Description:     "Acting, stagecraft and the annual school play",
			Schedule:        "Thursdays, 3:30 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"mia@mergington.edu", "lucas@mergington.edu"},
		},
		{
			Name:            "Math Club",
			Description:     "Problem solving and preparation for math competitions",
			Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"ethan@mergington.edu"},
		},
		{
			Name:            "Debate Team",
			Description:     "Develop public speaking and argumentation skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 12,
			Participants:    []string{"charlotte@mergington.edu", "james@mergington.edu"},
		},
	}
}

// ExecuteSeedActivities stores the default catalog if the store is empty.
// POST: Store holds at least the default activities; an existing catalog is left untouched
func ExecuteSeedActivities(ctx context.Context, deps SeedActivitiesDeps) error {
	existing, err := deps.Store.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil // Already seeded
	}

	defaults := DefaultActivities()
	for _, a := range defaults {
		if err := a.Validate(); err != nil {
			return err
		}
		if err := deps.Store.Save(ctx, a); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "activities_seeded", "activities", len(defaults))
	return nil
}
