package activity

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Domain errors
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrActivityRequired = errors.New("activity is required")
	ErrActivityNotFound = errors.New("activity not found")
	ErrAlreadySignedUp  = errors.New("participant is already signed up")
	ErrNotSignedUp      = errors.New("participant is not signed up")
	ErrActivityFull     = errors.New("activity is full")
)

// User-facing validation messages shown on the board.
const (
	MsgEmailRequired    = "Please provide a valid email"
	MsgActivityRequired = "Please select an activity"
)

var validate = validator.New()

// Activity is one entry of the catalog. Name is the catalog key and is not
// part of the wire record.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the remaining capacity.
// INVARIANT: a missing participant list counts as zero participants
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Validate checks the catalog record.
// PRE: Activity struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("activity name cannot be empty")
	}
	if a.MaxParticipants < 0 {
		return errors.New("max participants cannot be negative")
	}
	return nil
}

// Catalog maps activity name to Activity.
type Catalog map[string]Activity

// UnmarshalJSON decodes the listing payload and copies each key into Name.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]Activity
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Catalog, len(raw))
	for name, a := range raw {
		a.Name = name
		out[name] = a
	}
	*c = out
	return nil
}

// Names returns the activity names in collation order, the same order a
// browser's localeCompare produces. Ties fall back to byte order so the
// result never depends on map iteration.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	col := collate.New(language.English)
	sort.SliceStable(names, func(i, j int) bool {
		if cmp := col.CompareString(names[i], names[j]); cmp != 0 {
			return cmp < 0
		}
		return names[i] < names[j]
	})
	return names
}

// Sorted returns the activities ordered by Names.
func (c Catalog) Sorted() []Activity {
	names := c.Names()
	out := make([]Activity, 0, len(names))
	for _, name := range names {
		a := c[name]
		a.Name = name
		out = append(out, a)
	}
	return out
}

var localPartSeparators = regexp.MustCompile(`[._-]`)

// Initials derives the participant badge from the email local part.
// The local part is split on '.', '_' and '-'; the first character of each
// of the first two tokens is kept and uppercased. Empty tokens contribute
// nothing, so "a..b" yields "A".
// POST: Returns one or two characters, or "?" when nothing remains
func Initials(email string) string {
	local, _, _ := strings.Cut(email, "@")
	tokens := localPartSeparators.Split(local, -1)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	var b strings.Builder
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		b.WriteRune(r)
	}
	out := strings.ToUpper(b.String())
	if out == "" {
		return "?"
	}
	return out
}

// SignupInput is the typed payload of the sign-up form.
type SignupInput struct {
	Email    string `validate:"required"`
	Activity string `validate:"required"`
}

// Normalize trims the email the way the form does before validation.
func (in SignupInput) Normalize() SignupInput {
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// Validate checks the non-emptiness preconditions in form order: email first.
// POST: Returns ErrEmailRequired or ErrActivityRequired, nil otherwise
func (in SignupInput) Validate() error {
	return fieldError(validate.Struct(in))
}

// RemovalInput is the typed payload of a remove click.
type RemovalInput struct {
	Email    string `validate:"required"`
	Activity string `validate:"required"`
}

// Validate checks that both halves of the removal target are present.
func (in RemovalInput) Validate() error {
	return fieldError(validate.Struct(in))
}

func fieldError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	switch fieldErrs[0].StructField() {
	case "Email":
		return ErrEmailRequired
	case "Activity":
		return ErrActivityRequired
	}
	return err
}

// ValidationMessage maps a validation error to the text shown to the user.
func ValidationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrEmailRequired):
		return MsgEmailRequired, true
	case errors.Is(err, ErrActivityRequired):
		return MsgActivityRequired, true
	}
	return "", false
}
