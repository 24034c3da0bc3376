package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"activityboard/internal/domain/activity"
)

// Placeholder texts rendered by the board.
const (
	LoadingText        = "Loading activities..."
	LoadFailedText     = "Failed to load activities. Please try again later."
	NoParticipantsText = "No participants yet"
	SelectPlaceholder  = "-- Select an activity --"
)

// ErrNotConfirmed is returned when a removal is attempted without confirmation.
var ErrNotConfirmed = errors.New("removal not confirmed")

// Status of the rendered catalog.
type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Participant is one roster row.
type Participant struct {
	Email    string `json:"email"`
	Initials string `json:"initials"`
	Pending  bool   `json:"pending,omitempty"`
}

// Card is the rendered form of one activity.
type Card struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Schedule        string        `json:"schedule"`
	MaxParticipants int           `json:"max_participants"`
	SpotsLeft       int           `json:"spots_left"`
	Participants    []Participant `json:"participants"`
}

// ParticipantCount is the number shown in the roster heading.
func (c Card) ParticipantCount() int {
	return len(c.Participants)
}

// Option is one entry of the activity selection control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Patch is an optimistic sign-up applied before the authoritative re-fetch.
type Patch struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// View is the rendered board. Apart from Pending it is a pure function of
// the catalog snapshot it was rendered from.
type View struct {
	Status    Status   `json:"status"`
	Cards     []Card   `json:"cards"`
	Options   []Option `json:"options"`
	ErrorText string   `json:"error_text,omitempty"`
	Pending   []Patch  `json:"pending,omitempty"`
}

// Loading returns the initial view shown before the first fetch completes.
func Loading() View {
	return View{
		Status:  StatusLoading,
		Options: []Option{{Value: "", Label: SelectPlaceholder}},
	}
}

// Render builds a view from a catalog snapshot.
// PRE: none
// POST: Cards and Options are sorted by activity name; Pending is empty
func Render(cat activity.Catalog) View {
	sorted := cat.Sorted()
	v := View{
		Status:  StatusLoaded,
		Cards:   make([]Card, 0, len(sorted)),
		Options: make([]Option, 0, len(sorted)+1),
	}
	v.Options = append(v.Options, Option{Value: "", Label: SelectPlaceholder})
	for _, a := range sorted {
		card := Card{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			SpotsLeft:       a.SpotsLeft(),
			Participants:    make([]Participant, 0, len(a.Participants)),
		}
		for _, email := range a.Participants {
			card.Participants = append(card.Participants, Participant{
				Email:    email,
				Initials: activity.Initials(email),
			})
		}
		v.Cards = append(v.Cards, card)
		v.Options = append(v.Options, Option{Value: a.Name, Label: a.Name})
	}
	return v
}

// Failed replaces the card list with the error placeholder. Options from the
// previous render are kept.
func (v View) Failed() View {
	return View{
		Status:    StatusFailed,
		Options:   append([]Option(nil), v.Options...),
		ErrorText: LoadFailedText,
	}
}

// Card looks up a card by activity name.
func (v View) Card(name string) (Card, bool) {
	for _, c := range v.Cards {
		if c.Name == name {
			return c, true
		}
	}
	return Card{}, false
}

// Apply returns a copy of v with the optimistic patch applied: the
// participant row is appended, spots left drops by one and the patch is
// recorded as pending. A patch for an unknown card leaves v unchanged.
// INVARIANT: v itself is not mutated
func (v View) Apply(p Patch) View {
	idx := -1
	for i, c := range v.Cards {
		if c.Name == p.Activity {
			idx = i
			break
		}
	}
	if idx < 0 {
		return v
	}

	out := v
	out.Cards = append([]Card(nil), v.Cards...)
	card := out.Cards[idx]
	card.Participants = append(append([]Participant(nil), card.Participants...), Participant{
		Email:    p.Email,
		Initials: activity.Initials(p.Email),
		Pending:  true,
	})
	card.SpotsLeft--
	out.Cards[idx] = card
	out.Pending = append(append([]Patch(nil), v.Pending...), p)
	return out
}

// ToastKind styles the feedback message.
type ToastKind string

const (
	KindInfo    ToastKind = "info"
	KindSuccess ToastKind = "success"
	KindError   ToastKind = "error"
)

// ToastTTL is how long a toast stays visible.
const ToastTTL = 5 * time.Second

// Toast is a transient feedback message.
type Toast struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Kind      ToastKind `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewToast creates a toast that expires ToastTTL after now.
func NewToast(text string, kind ToastKind, now time.Time) Toast {
	return Toast{
		ID:        uuid.New().String(),
		Text:      text,
		Kind:      kind,
		ExpiresAt: now.Add(ToastTTL),
	}
}

// Expired reports whether the toast should no longer be shown.
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RemainingMs is the dismiss delay handed to the page script.
func (t Toast) RemainingMs(now time.Time) int64 {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// SignupForm carries the sign-up form values. They are kept after a failed
// submission and cleared after a successful one.
type SignupForm struct {
	Email    string `json:"email"`
	Activity string `json:"activity"`
}

// RemoveClick is the payload of a remove button.
type RemoveClick struct {
	Email     string `json:"email"`
	Activity  string `json:"activity"`
	Confirmed bool   `json:"confirm"`
}

// ConfirmPrompt is the question asked before a removal.
func ConfirmPrompt(email, activityName string) string {
	return fmt.Sprintf("Remove %s from %s?", email, activityName)
}
